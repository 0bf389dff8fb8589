// Package usecases - ingest.go bulk-teaches facts from documents.
package usecases

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/0xcro3dile/eley-go/internal/domain/ports"
)

// IngestResult summarizes one import.
type IngestResult struct {
	Added   int
	Skipped int // blank question or answer
}

// IngestUseCase imports facts from documents into the knowledge base.
type IngestUseCase struct {
	loader   ports.FactLoader
	resolver *AnswerResolver
	logger   *zap.Logger
}

// NewIngestUseCase creates an IngestUseCase with injected dependencies.
func NewIngestUseCase(loader ports.FactLoader, resolver *AnswerResolver, logger *zap.Logger) *IngestUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestUseCase{loader: loader, resolver: resolver, logger: logger}
}

// Ingest loads path and teaches every complete fact in it, in document
// order. It stops at the first persistence failure.
func (uc *IngestUseCase) Ingest(ctx context.Context, path string) (IngestResult, error) {
	var result IngestResult

	facts, err := uc.loader.Load(ctx, path)
	if err != nil {
		return result, fmt.Errorf("loading %s: %w", path, err)
	}

	for _, f := range facts {
		if strings.TrimSpace(f.Question) == "" || strings.TrimSpace(f.Answer) == "" {
			result.Skipped++
			continue
		}
		if err := uc.resolver.Teach(ctx, f.Question, f.Answer); err != nil {
			return result, err
		}
		result.Added++
	}

	uc.logger.Info("facts imported", zap.String("path", path), zap.Int("added", result.Added), zap.Int("skipped", result.Skipped))
	return result, nil
}
