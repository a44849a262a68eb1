package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/shandysiswandi/exportviz/internal/activity"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.activity.enabled") {
		closer, err := activity.New(activity.Dependency{
			Config:    a.config,
			Router:    a.router,
			Goroutine: a.goroutine,
			Context:   a.ctx,
			ID:        a.uuid,
			Revision:  a.revision,
		})
		if err != nil {
			slog.Error("failed to init module activity", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			if a.closerFn == nil {
				a.closerFn = map[string]func(context.Context) error{}
			}
			a.closerFn["Activity"] = closer
		}
	}
}
