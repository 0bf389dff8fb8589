package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/0xcro3dile/eley-go/internal/adapters/device"
	"github.com/0xcro3dile/eley-go/internal/adapters/fallback"
	"github.com/0xcro3dile/eley-go/internal/adapters/filewatcher"
	"github.com/0xcro3dile/eley-go/internal/adapters/speech"
	"github.com/0xcro3dile/eley-go/internal/adapters/storage"
	"github.com/0xcro3dile/eley-go/internal/adapters/vocabulary"
	"github.com/0xcro3dile/eley-go/internal/adapters/websearch"
	"github.com/0xcro3dile/eley-go/internal/config"
	"github.com/0xcro3dile/eley-go/internal/domain/ports"
	"github.com/0xcro3dile/eley-go/internal/domain/usecases"
)

// app holds the wired components for one command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	resolver *usecases.AnswerResolver
	closers  []func() error
}

// newApp opens the stores and builds the resolver. Store load failures are
// fatal.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	knowledge, quota, err := a.openStores()
	if err != nil {
		return nil, err
	}

	fb, err := a.buildFallback()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.resolver, err = usecases.NewAnswerResolver(ctx, knowledge, quota, fb, usecases.ResolverConfig{
		QueryLimit:   cfg.Quota.Limit,
		Cutoff:       cfg.Matcher.Cutoff,
		CacheAnswers: cfg.Fallback.CacheAnswers,
	}, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openStores() (ports.KnowledgeStore, ports.QuotaStore, error) {
	switch a.cfg.Storage.Backend {
	case "sqlite":
		db, err := storage.NewSQLiteStore(a.cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.logger.Debug("using sqlite storage", zap.String("path", a.cfg.Storage.SQLitePath))
		return db.Knowledge(), db.Quota(), nil
	case "memory":
		mem := storage.NewMemoryStore()
		return mem.Knowledge(), mem.Quota(), nil
	default:
		knowledge := storage.NewJSONKnowledgeStore(a.cfg.Storage.KnowledgePath)
		quota := storage.NewJSONQuotaStore(a.cfg.Storage.QuotaPath)
		a.logger.Debug("using json storage",
			zap.String("knowledge", knowledge.Path()),
			zap.String("quota", quota.Path()),
		)
		return knowledge, quota, nil
	}
}

// buildFallback returns nil when no provider is usable; the resolver then
// never spends quota.
func (a *app) buildFallback() (ports.FallbackService, error) {
	fc := a.cfg.Fallback
	if !a.cfg.FallbackEnabled() {
		if fc.Provider == "wolfram" {
			a.logger.Warn("no Wolfram|Alpha app id configured, fallback disabled")
		}
		return nil, nil
	}

	var svc ports.FallbackService
	switch fc.Provider {
	case "wolfram":
		w, err := fallback.NewWolframService(fc.AppID, fc.BaseURL, fc.Timeout)
		if err != nil {
			return nil, err
		}
		svc = w
	case "ollama":
		svc = fallback.NewOllamaService(fc.BaseURL, fc.Model, fc.Timeout)
	default:
		return nil, fmt.Errorf("unknown fallback provider %q", fc.Provider)
	}

	if fc.MaxRetries > 0 {
		svc = fallback.WithRetry(svc, fc.MaxRetries)
	}
	a.logger.Debug("fallback ready", zap.String("provider", fc.Provider), zap.Int("max_retries", fc.MaxRetries))
	return svc, nil
}

// assistantOptions select the optional collaborators.
type assistantOptions struct {
	speak  bool
	device bool
	output io.Writer
}

// newAssistant builds the assistant. Optional collaborators that fail to
// start are logged and left out.
func (a *app) newAssistant(ctx context.Context, opts assistantOptions) (*usecases.Assistant, error) {
	vocab, err := vocabulary.Load(a.cfg.Vocabulary.Path)
	if err != nil {
		return nil, err
	}

	deps := usecases.AssistantDeps{
		Resolver: a.resolver,
		Search:   websearch.NewBrowserSearcher(a.cfg.Search.BaseURL, nil),
		Output:   opts.output,
		Logger:   a.logger,
	}

	if opts.device && a.cfg.Device.Port != "" {
		dc := a.cfg.Device
		ctrl, err := device.Open(ctx, dc.Port, dc.Baud, dc.Timeout, dc.Settle)
		if err != nil {
			a.logger.Warn("device unavailable", zap.String("port", dc.Port), zap.Error(err))
		} else {
			deps.Device = ctrl
			a.closers = append(a.closers, ctrl.Close)
		}
	}

	if opts.speak {
		sc := a.cfg.Speech
		deps.Speech = speech.NewGTTSService(sc.TTSURL, sc.Lang, sc.AudioDir, 0)
		player, err := speech.NewCommandPlayer(sc.Player)
		if err != nil {
			a.logger.Warn("audio playback disabled", zap.Error(err))
		} else {
			deps.Player = player
		}
	}

	return usecases.NewAssistant(vocab, deps), nil
}

// watchVocabulary keeps the assistant's vocabulary in sync with its file
// until ctx is done. It returns nil when watching is not configured.
func (a *app) watchVocabulary(ctx context.Context, assistant *usecases.Assistant) error {
	path := a.cfg.Vocabulary.Path
	if path == "" || !a.cfg.Vocabulary.Watch {
		return nil
	}

	watcher, err := filewatcher.NewFSNotifyWatcher(a.logger)
	if err != nil {
		return fmt.Errorf("starting vocabulary watcher: %w", err)
	}
	defer watcher.Stop()

	err = vocabulary.NewReloader(path, watcher, assistant.SetVocabulary, a.logger).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the stores and device.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
