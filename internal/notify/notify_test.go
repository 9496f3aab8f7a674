package notify

import (
	"errors"
	"testing"
)

func TestNewDisabledReturnsNop(t *testing.T) {
	n := New(false, nil)
	if _, ok := n.(Nop); !ok {
		t.Fatalf("expected Nop, got %T", n)
	}
	if err := n.Notify("t", "b"); err != nil {
		t.Fatalf("nop notify: %v", err)
	}
}

func TestNewEnabledReturnsDesktop(t *testing.T) {
	n := New(true, nil)
	if _, ok := n.(*Desktop); !ok {
		t.Fatalf("expected *Desktop, got %T", n)
	}
}

type message struct {
	title string
	body  string
}

// recorder keeps every notification in memory.
type recorder struct {
	sent []message
	err  error
}

func (r *recorder) Notify(title, body string) error {
	r.sent = append(r.sent, message{title: title, body: body})
	return r.err
}

func send(n Notifier, title, body string) error {
	return n.Notify(title, body)
}

func TestNotifierErrorsReachTheCaller(t *testing.T) {
	boom := errors.New("no bus")
	r := &recorder{err: boom}
	if err := send(r, "Reminder", "Write tests"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(r.sent) != 1 || r.sent[0].title != "Reminder" || r.sent[0].body != "Write tests" {
		t.Fatalf("unexpected sent: %+v", r.sent)
	}
	if err := send(Nop{}, "Reminder", "Write tests"); err != nil {
		t.Fatalf("nop notify: %v", err)
	}
}
