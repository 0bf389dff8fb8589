package vocabulary

import (
	"context"

	"go.uber.org/zap"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
	"github.com/0xcro3dile/eley-go/internal/domain/ports"
)

// Reloader re-reads the vocabulary file whenever it changes and hands the
// result to apply. A file that fails to load is logged and the previous
// vocabulary stays in effect.
type Reloader struct {
	path    string
	watcher ports.FileWatcher
	apply   func(entities.Vocabulary)
	logger  *zap.Logger
}

// NewReloader creates a Reloader for path.
func NewReloader(path string, watcher ports.FileWatcher, apply func(entities.Vocabulary), logger *zap.Logger) *Reloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reloader{path: path, watcher: watcher, apply: apply, logger: logger}
}

// Run watches until ctx is done or the watcher stops.
func (r *Reloader) Run(ctx context.Context) error {
	events, err := r.watcher.Watch(ctx, r.path)
	if err != nil {
		return err
	}
	r.logger.Info("watching vocabulary", zap.String("path", r.path))

	for event := range events {
		switch event.Operation {
		case ports.FileCreated, ports.FileModified:
			r.reload()
		case ports.FileDeleted:
			r.logger.Warn("vocabulary file removed, keeping current vocabulary", zap.String("path", r.path))
		}
	}
	return ctx.Err()
}

func (r *Reloader) reload() {
	v, err := Load(r.path)
	if err != nil {
		r.logger.Warn("vocabulary reload failed, keeping current vocabulary", zap.Error(err))
		return
	}
	r.apply(v)
	r.logger.Info("vocabulary reloaded", zap.String("path", r.path))
}
