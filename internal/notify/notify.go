// Package notify delivers engine notices to the desktop.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// AppName is shown as the notification source on platforms that support it.
const AppName = "monkquest"

type Notifier interface {
	Notify(title, body string) error
}

// Desktop posts native notifications through the OS notification service.
type Desktop struct {
	Icon string
	Log  *slog.Logger
}

func NewDesktop(log *slog.Logger) *Desktop {
	beeep.AppName = AppName
	return &Desktop{Log: log}
}

func (d *Desktop) Notify(title, body string) error {
	if err := beeep.Notify(title, body, d.Icon); err != nil {
		if d.Log != nil {
			d.Log.Debug("desktop notification failed", "title", title, "err", err)
		}
		return err
	}
	return nil
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(string, string) error { return nil }

// New returns a Desktop notifier when enabled and Nop otherwise.
func New(enabled bool, log *slog.Logger) Notifier {
	if !enabled {
		return Nop{}
	}
	return NewDesktop(log)
}
