package engine

import (
	"fmt"
	"time"
)

type NoticeKind string

const (
	NoticeReminder      NoticeKind = "reminder"
	NoticeLevelUp       NoticeKind = "level_up"
	NoticeMilestone     NoticeKind = "milestone"
	NoticeMonkCompleted NoticeKind = "monk_completed"
	NoticeMonkFailed    NoticeKind = "monk_failed"
	NoticeMonkBreached  NoticeKind = "monk_breached"
)

// Notice is a user-facing message produced by the engine and shown by
// whichever presentation layer drains it.
type Notice struct {
	Kind  NoticeKind
	Title string
	Body  string
	At    time.Time
}

// notice queues a message. Caller holds e.mu.
func (e *Engine) notice(kind NoticeKind, title, body string) {
	e.notices = append(e.notices, Notice{Kind: kind, Title: title, Body: body, At: e.now()})
}

// DrainNotices returns queued notices oldest first and clears the queue.
func (e *Engine) DrainNotices() []Notice {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := e.notices
	e.notices = nil
	return out
}

func levelUpBody(level int) string {
	return fmt.Sprintf("You reached level %d.", level)
}

// notify sends a desktop notification. Failures are logged and swallowed.
func (e *Engine) notify(title, body string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(title, body); err != nil {
		e.log.Debug("notification failed", "title", title, "err", err)
	}
}
