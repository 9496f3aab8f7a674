package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"monkquest/internal/storage"
)

func seededEngine(t *testing.T, store Store) *Engine {
	t.Helper()
	ctx := context.Background()
	e, clock := newTestEngine(t, store)
	deadline := clock.Now().Add(time.Hour)
	a := mustCreate(t, e, "Ship it", PriorityHigh, &deadline)
	mustCreate(t, e, "Plan next", PriorityLow, nil)
	mustComplete(t, e, a.ID)
	if _, err := e.CreateGuild(ctx, "Crew"); err != nil {
		t.Fatalf("CreateGuild: %v", err)
	}
	if _, err := e.StartMonkMode(ctx, 28); err != nil {
		t.Fatalf("StartMonkMode: %v", err)
	}
	return e
}

func TestSnapshotRoundTripBothFormats(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			src := seededEngine(t, nil)
			doc := src.ExportSnapshot()
			data, err := EncodeSnapshot(doc, f)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}

			decoded, err := DecodeSnapshot(data, f)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			dst, _ := newTestEngine(t, newSQLiteStore(t, ""))
			if err := dst.ImportSnapshot(context.Background(), decoded); err != nil {
				t.Fatalf("import: %v", err)
			}

			want, got := src.Snapshot(), dst.Snapshot()
			if len(got.Tasks) != 2 || got.Tasks[0].Title != "Ship it" || !got.Tasks[0].Completed {
				t.Fatalf("tasks = %+v", got.Tasks)
			}
			if got.Stats.Level != want.Stats.Level || got.Stats.CurrentExp != want.Stats.CurrentExp {
				t.Fatalf("stats = %+v, want %+v", got.Stats, want.Stats)
			}
			if got.Stats.MonkMode == nil || got.Stats.MonkMode.TotalDays != 28 {
				t.Fatalf("monk mode lost: %+v", got.Stats.MonkMode)
			}
			if got.Guild == nil || got.Guild.InviteCode != want.Guild.InviteCode {
				t.Fatalf("guild = %+v", got.Guild)
			}
		})
	}
}

func TestExportUsesDocumentFieldNames(t *testing.T) {
	e := seededEngine(t, nil)
	data, err := EncodeSnapshot(e.ExportSnapshot(), FormatJSON)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, key := range []string{`"version": 1`, `"exportedAt"`, `"tasks"`, `"user"`, `"guild"`, `"currentExp"`, `"monkMode"`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("export missing %s:\n%s", key, data)
		}
	}
}

func TestImportMissingFieldsRejectedWithoutChanges(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	e := seededEngine(t, store)
	before := e.Snapshot()

	docs := map[string]string{
		"missing tasks": `{"version":1,"user":{"level":9}}`,
		"missing user":  `{"version":1,"tasks":[]}`,
		"null tasks":    `{"tasks":null,"user":{}}`,
		"not an object": `[1,2,3]`,
		"broken":        `{"tasks":[`,
	}
	for name, doc := range docs {
		_, err := DecodeSnapshot([]byte(doc), FormatJSON)
		var ie ImportError
		if !errors.As(err, &ie) {
			t.Fatalf("%s: expected ImportError, got %v", name, err)
		}
	}

	after := e.Snapshot()
	if len(after.Tasks) != len(before.Tasks) || after.Stats.Level != before.Stats.Level {
		t.Fatalf("state changed by rejected import")
	}
	if err := e.ImportSnapshot(ctx, nil); err == nil {
		t.Fatalf("nil document should be rejected")
	}
}

func TestImportRejectsDuplicateIDs(t *testing.T) {
	e := seededEngine(t, nil)
	doc := e.ExportSnapshot()
	doc.Tasks = append(doc.Tasks, doc.Tasks[0])
	err := e.ImportSnapshot(context.Background(), &doc)
	var ie ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("expected ImportError, got %v", err)
	}
}

func TestImportStoreFailureKeepsState(t *testing.T) {
	store := &memStore{}
	e := seededEngine(t, store)
	before := e.Snapshot()
	store.failReplace = errStore

	doc := Snapshot{Version: SnapshotVersion, Tasks: nil, User: DefaultStats()}
	if err := e.ImportSnapshot(context.Background(), &doc); !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	after := e.Snapshot()
	if len(after.Tasks) != len(before.Tasks) || after.Guild == nil || after.Stats.MonkMode == nil {
		t.Fatalf("in-memory state changed after failed import")
	}
}

func TestImportFailsMonkModeAlreadyBelowMinimum(t *testing.T) {
	e, clock := newTestEngine(t, nil)
	start := clock.Now().Add(-48 * time.Hour)
	deadline := start.Add(time.Hour)
	done := start.Add(2 * time.Hour)

	doc := Snapshot{
		Version: SnapshotVersion,
		Tasks: []storage.Task{{
			ID: 1, Title: "late", Priority: string(PriorityMedium), Exp: 25,
			Deadline: &deadline, Completed: true, CompletedAt: &done,
		}},
		User: DefaultStats(),
	}
	doc.User.MonkMode = &storage.MonkMode{
		Active: true, StartDate: start, EndDate: start.Add(28 * 24 * time.Hour),
		Duration: "4 Weeks", TotalDays: 28, MinSuccessRate: 50,
	}

	if err := e.ImportSnapshot(context.Background(), &doc); err != nil {
		t.Fatalf("import: %v", err)
	}
	if e.Snapshot().Stats.MonkMode != nil {
		t.Fatalf("imported session at 0%% should have failed")
	}
	notices := e.DrainNotices()
	if len(notices) != 1 || notices[0].Kind != NoticeMonkFailed {
		t.Fatalf("notices = %+v", notices)
	}
}

func TestImportStoreFailureQueuesNoMonkNotice(t *testing.T) {
	store := &memStore{failReplace: errStore}
	e, clock := newTestEngine(t, store)
	start := clock.Now().Add(-time.Hour)
	doc := Snapshot{
		Version: SnapshotVersion,
		Tasks:   []storage.Task{{ID: 1, Title: "dropped", Priority: string(PriorityLow), Deleted: true, DeletedAt: timePtr(clock.Now())}},
		User:    DefaultStats(),
	}
	doc.User.MonkMode = &storage.MonkMode{Active: true, StartDate: start, TotalDays: 7, MinSuccessRate: 50}

	if err := e.ImportSnapshot(context.Background(), &doc); !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if n := e.DrainNotices(); len(n) != 0 {
		t.Fatalf("notices after failed import = %+v", n)
	}
}

func TestImportNormalizesStatsAndTimers(t *testing.T) {
	e, clock := newTestEngine(t, nil)
	data := `{
	  "tasks": [{"id": 3, "title": "running", "priority": "LOW", "exp": 25, "isRunning": true, "timeSpent": 4}],
	  "user": {"level": 0, "nextLevelExp": 0}
	}`
	doc, err := DecodeSnapshot([]byte(data), FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := e.ImportSnapshot(context.Background(), doc); err != nil {
		t.Fatalf("import: %v", err)
	}
	st := e.Snapshot()
	if st.Stats.Level != 1 || st.Stats.NextLevelExp != BaseLevelExp || st.Stats.Class != DefaultClass {
		t.Fatalf("stats not normalized: %+v", st.Stats)
	}
	task := st.Tasks[0]
	if task.LastUpdated == nil || !task.LastUpdated.Equal(clock.Now()) || task.TimeSpent != 4 {
		t.Fatalf("running timer not normalized: %+v", task)
	}
	if next := mustCreate(t, e, "after import", PriorityLow, nil); next.ID != 4 {
		t.Fatalf("next id = %d, want 4", next.ID)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "JSON": FormatJSON, "yml": FormatYAML, "yaml": FormatYAML} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Fatalf("expected error for toml")
	}
	if FormatFromPath("backup.YML") != FormatYAML || FormatFromPath("backup.json") != FormatJSON {
		t.Fatalf("FormatFromPath mismatch")
	}
}
