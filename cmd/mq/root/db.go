package root

import (
	"context"
	"fmt"
	"io"
	"os"

	"monkquest/internal/config"
	"monkquest/internal/engine"
	"monkquest/internal/notify"
	"monkquest/internal/storage"
	"monkquest/internal/ui"
)

func currentConfig() (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}
	return config.Load(configPath)
}

// openEngine opens the database and loads the engine. The returned cleanup
// flushes pending timer progress and closes the database.
func openEngine(ctx context.Context) (*engine.Engine, func(), error) {
	c, err := currentConfig()
	if err != nil {
		return nil, nil, err
	}
	log := c.NewLogger(os.Stderr)

	db, err := storage.Open(ctx, c.DBPath)
	if err != nil {
		return nil, nil, err
	}
	store := storage.NewStore(db)

	eng := engine.New(ctx, store, engine.Options{
		Logger:         log,
		Notifier:       notify.New(c.Notifications, log),
		MinSuccessRate: &c.MinSuccessRate,
	})
	cleanup := func() {
		if err := eng.Close(ctx); err != nil {
			log.Warn("final flush failed", "err", err)
		}
		_ = store.Close()
	}
	return eng, cleanup, nil
}

// printNotices writes queued engine notices (level ups, milestones, ...).
func printNotices(w io.Writer, eng *engine.Engine) {
	for _, n := range eng.DrainNotices() {
		icon := ui.IconBell
		switch n.Kind {
		case engine.NoticeLevelUp:
			icon = ui.IconTrophy
		case engine.NoticeMilestone, engine.NoticeMonkCompleted:
			icon = ui.IconPeak
		case engine.NoticeMonkFailed, engine.NoticeMonkBreached:
			icon = ui.IconWarn
		}
		line := fmt.Sprintf("%s %s", icon, ui.Gold.Render(n.Title))
		if n.Body != "" {
			line += " " + ui.Muted.Render(n.Body)
		}
		fmt.Fprintln(w, line)
	}
}
