package engine

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"monkquest/internal/storage"
)

// DefaultDisplayName names the user's own guild member when no profile name is set.
const DefaultDisplayName = "You"

func displayName(st storage.UserStats) string {
	if n := strings.TrimSpace(st.Name); n != "" {
		return n
	}
	return DefaultDisplayName
}

func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func userMember(st storage.UserStats) storage.GuildMember {
	return storage.GuildMember{
		ID:     uuid.NewString(),
		Name:   displayName(st),
		Level:  st.Level,
		Class:  st.Class,
		IsUser: true,
	}
}

// syncUserMember mirrors the user's name, level and class into their guild
// member. It returns a modified copy only when a value actually differs.
func syncUserMember(g *storage.Guild, st storage.UserStats) (*storage.Guild, bool) {
	idx := slices.IndexFunc(g.Members, func(m storage.GuildMember) bool { return m.IsUser })
	if idx < 0 {
		out := cloneGuild(g)
		out.Members = append([]storage.GuildMember{userMember(st)}, out.Members...)
		return out, true
	}

	m := g.Members[idx]
	name := displayName(st)
	if m.Name == name && m.Level == st.Level && m.Class == st.Class {
		return g, false
	}
	out := cloneGuild(g)
	out.Members[idx].Name = name
	out.Members[idx].Level = st.Level
	out.Members[idx].Class = st.Class
	return out, true
}

// CreateGuild founds a local guild with the user as its first member.
func (e *Engine) CreateGuild(ctx context.Context, name string) (*storage.Guild, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError{Field: "guild name", Reason: "name is required"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Guild != nil {
		return nil, StateError{Op: "create guild", Reason: "already in guild " + e.state.Guild.Name}
	}

	next := e.state.clone()
	next.Guild = &storage.Guild{
		ID:         uuid.NewString(),
		Name:       name,
		InviteCode: newInviteCode(),
		Members:    []storage.GuildMember{userMember(next.Stats)},
	}
	e.apply(ctx, next, changeGuild)
	return cloneGuild(e.state.Guild), nil
}

// AddMember tracks another player on the local leaderboard.
func (e *Engine) AddMember(ctx context.Context, name string, level int, class string) (storage.GuildMember, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.GuildMember{}, ValidationError{Field: "member name", Reason: "name is required"}
	}
	if level < 1 {
		level = 1
	}
	class = strings.TrimSpace(class)
	if class == "" {
		class = DefaultClass
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Guild == nil {
		return storage.GuildMember{}, StateError{Op: "add member", Reason: "no guild"}
	}

	m := storage.GuildMember{ID: uuid.NewString(), Name: name, Level: level, Class: class}
	next := e.state.clone()
	next.Guild.Members = append(next.Guild.Members, m)
	e.apply(ctx, next, changeGuild)
	return m, nil
}

// RemoveMember drops a tracked player. The user's own member cannot be removed.
func (e *Engine) RemoveMember(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Guild == nil {
		return StateError{Op: "remove member", Reason: "no guild"}
	}
	idx := slices.IndexFunc(e.state.Guild.Members, func(m storage.GuildMember) bool { return m.ID == id })
	if idx < 0 {
		return NotFoundError{Kind: "guild member", ID: id}
	}
	if e.state.Guild.Members[idx].IsUser {
		return StateError{Op: "remove member", Reason: "use leave to exit the guild"}
	}

	next := e.state.clone()
	next.Guild.Members = slices.Delete(next.Guild.Members, idx, idx+1)
	e.apply(ctx, next, changeGuild)
	return nil
}

func (e *Engine) LeaveGuild(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Guild == nil {
		return StateError{Op: "leave guild", Reason: "no guild"}
	}
	next := e.state.clone()
	next.Guild = nil
	e.apply(ctx, next, changeGuild)
	return nil
}

// Leaderboard orders members by level, highest first, then by name.
func Leaderboard(g *storage.Guild) []storage.GuildMember {
	if g == nil {
		return nil
	}
	out := append([]storage.GuildMember(nil), g.Members...)
	slices.SortStableFunc(out, func(a, b storage.GuildMember) int {
		if c := cmp.Compare(b.Level, a.Level); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}
