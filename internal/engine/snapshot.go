package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"monkquest/internal/storage"
)

const SnapshotVersion = 1

// Snapshot is the full-state export document.
type Snapshot struct {
	Version    int               `json:"version" yaml:"version"`
	ExportedAt time.Time         `json:"exportedAt" yaml:"exportedAt"`
	Tasks      []storage.Task    `json:"tasks" yaml:"tasks"`
	User       storage.UserStats `json:"user" yaml:"user"`
	Guild      *storage.Guild    `json:"guild" yaml:"guild"`
}

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", ValidationError{Field: "format", Reason: fmt.Sprintf("unknown format %q (json|yaml)", s)}
	}
}

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// requiredSnapshotFields must be present (and non-null) for an import to proceed.
var requiredSnapshotFields = []string{"tasks", "user"}

func (e *Engine) ExportSnapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state.clone()
	tasks := st.Tasks
	if tasks == nil {
		tasks = []storage.Task{}
	}
	return Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: e.now().UTC(),
		Tasks:      tasks,
		User:       st.Stats,
		Guild:      st.Guild,
	}
}

func EncodeSnapshot(s Snapshot, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		data, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("encode yaml snapshot: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json snapshot: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// DecodeSnapshot parses an export document, rejecting it when a required
// top-level field is absent.
func DecodeSnapshot(data []byte, f Format) (*Snapshot, error) {
	unmarshal := json.Unmarshal
	if f == FormatYAML {
		unmarshal = yaml.Unmarshal
	}

	var raw map[string]any
	if err := unmarshal(data, &raw); err != nil {
		return nil, ImportError{Reason: "malformed document: " + err.Error()}
	}
	if raw == nil {
		return nil, ImportError{Reason: "empty document"}
	}
	for _, k := range requiredSnapshotFields {
		if v, ok := raw[k]; !ok || v == nil {
			return nil, ImportError{Reason: fmt.Sprintf("missing required field %q", k)}
		}
	}

	var s Snapshot
	if err := unmarshal(data, &s); err != nil {
		return nil, ImportError{Reason: "malformed document: " + err.Error()}
	}
	if s.Version > SnapshotVersion {
		return nil, ImportError{Reason: fmt.Sprintf("unsupported version %d", s.Version)}
	}
	return &s, nil
}

// ImportSnapshot replaces the whole store with s. Nothing changes, in memory
// or on disk, when validation or the write fails.
func (e *Engine) ImportSnapshot(ctx context.Context, s *Snapshot) error {
	if s == nil {
		return ImportError{Reason: "empty document"}
	}
	seen := make(map[int64]bool, len(s.Tasks))
	for _, t := range s.Tasks {
		if t.ID == 0 {
			continue
		}
		if seen[t.ID] {
			return ImportError{Reason: fmt.Sprintf("duplicate task id %d", t.ID)}
		}
		seen[t.ID] = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tasks, _ := RecoverTasks(s.Tasks, e.now())
	next := State{
		Stats: normalizeStats(cloneStats(s.User)),
		Tasks: tasks,
		Guild: cloneGuild(s.Guild),
	}
	monk := MonkCheckTasks(&next.Stats, next.Tasks)
	if next.Guild != nil {
		next.Guild, _ = syncUserMember(next.Guild, next.Stats)
	}

	if err := e.store.ReplaceAll(ctx, next.Tasks, next.Stats, next.Guild); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	e.state = next
	e.dirty = false
	e.breach.Reset()
	if monk != MonkUnchanged {
		e.monkNotice(monk, nil)
	}
	e.log.Info("snapshot imported", "tasks", len(next.Tasks), "level", next.Stats.Level)
	return nil
}
