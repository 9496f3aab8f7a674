package engine

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"monkquest/internal/storage"
)

// MaxAvatarBytes is the largest image stored inline on the profile.
const MaxAvatarBytes = 500_000

// SetProfile updates the display name and class label. An empty class keeps the current one.
func (e *Engine) SetProfile(ctx context.Context, name, class string) storage.UserStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.clone()
	next.Stats.Name = strings.TrimSpace(name)
	if c := strings.TrimSpace(class); c != "" {
		next.Stats.Class = c
	}
	e.apply(ctx, next, changeStats)
	return cloneStats(e.state.Stats)
}

// SetAvatar stores data inline as a data URI. Oversized images are rejected
// without touching the profile.
func (e *Engine) SetAvatar(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return ValidationError{Field: "avatar", Reason: "image is empty"}
	}
	if len(data) > MaxAvatarBytes {
		return AvatarTooLargeError{Size: len(data), Limit: MaxAvatarBytes}
	}
	uri := "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.clone()
	next.Stats.Avatar = uri
	e.apply(ctx, next, changeStats)
	return nil
}

func (e *Engine) ClearAvatar(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.clone()
	next.Stats.Avatar = ""
	e.apply(ctx, next, changeStats)
}
