// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces.
// They contain NO framework code, just business logic.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
	"github.com/0xcro3dile/eley-go/internal/domain/ports"
)

// ErrIncompleteFact is returned by Teach when the question or answer is
// blank.
var ErrIncompleteFact = errors.New("question and answer are required")

// ResolverConfig holds the resolution policy.
type ResolverConfig struct {
	QueryLimit   int     // fallback queries allowed over the store's lifetime
	Cutoff       float64 // matcher acceptance threshold
	CacheAnswers bool    // store fallback answers as new facts
}

// AnswerResolver answers questions from the knowledge store and, within
// quota, from the fallback service.
type AnswerResolver struct {
	mu        sync.Mutex
	knowledge ports.KnowledgeStore
	quota     ports.QuotaStore
	fallback  ports.FallbackService
	matcher   *Matcher
	logger    *zap.Logger

	kb    *entities.KnowledgeBase
	state entities.QuotaState

	limit        int
	cacheAnswers bool
}

// NewAnswerResolver loads the knowledge base and quota state and returns a
// resolver over them. fallback may be nil, in which case unknown questions
// get no answer and the quota is never spent. Load failures are returned
// as-is and are meant to halt startup.
func NewAnswerResolver(
	ctx context.Context,
	knowledge ports.KnowledgeStore,
	quota ports.QuotaStore,
	fallback ports.FallbackService,
	cfg ResolverConfig,
	logger *zap.Logger,
) (*AnswerResolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.QueryLimit < 0 {
		cfg.QueryLimit = 0
	}

	kb, err := knowledge.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading knowledge base: %w", err)
	}
	state, err := quota.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading quota: %w", err)
	}

	logger.Info("resolver ready",
		zap.Int("facts", len(kb.Questions)),
		zap.Int("query_count", state.QueryCount),
		zap.Int("query_limit", cfg.QueryLimit),
		zap.Bool("cache_answers", cfg.CacheAnswers),
	)

	return &AnswerResolver{
		knowledge:    knowledge,
		quota:        quota,
		fallback:     fallback,
		matcher:      NewMatcher(cfg.Cutoff),
		logger:       logger,
		kb:           kb,
		state:        state,
		limit:        cfg.QueryLimit,
		cacheAnswers: cfg.CacheAnswers,
	}, nil
}

// Resolve produces an Outcome for question. The returned error is non-nil
// only when persisting the quota or a cached fact failed; the Outcome is
// still valid in that case.
func (r *AnswerResolver) Resolve(ctx context.Context, question string) (entities.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(question) == "" {
		return entities.NoAnswer(), nil
	}

	// 1. Closest known question
	if match, ok := r.matcher.FindBestMatch(question, r.kb.KnownQuestions()); ok {
		if answer, ok := r.kb.AnswerFor(match); ok {
			r.logger.Debug("answered from knowledge base", zap.String("question", question), zap.String("match", match))
			return entities.Answered(answer, entities.SourceCached), nil
		}
	}

	// 2. Verbatim hit
	if answer, ok := r.kb.AnswerFor(question); ok {
		return entities.Answered(answer, entities.SourceCached), nil
	}

	// 3. Quota
	if !r.state.CanQuery(r.limit) {
		r.logger.Info("fallback quota exhausted", zap.Int("query_count", r.state.QueryCount), zap.Int("query_limit", r.limit))
		return entities.QuotaExceeded(), nil
	}

	if r.fallback == nil {
		return entities.NoAnswer(), nil
	}

	// 4. Fallback; every issued attempt is counted.
	answer, queryErr := r.fallback.Query(ctx, question)
	saveErr := r.recordQueryLocked(ctx)

	var outcome entities.Outcome
	switch {
	case queryErr != nil:
		r.logger.Warn("fallback query failed", zap.String("question", question), zap.Error(queryErr))
		outcome = entities.FallbackFailed(queryErr.Error())
	case strings.TrimSpace(answer) == "":
		outcome = entities.NoAnswer()
	default:
		outcome = entities.Answered(answer, entities.SourceFallback)
		if r.cacheAnswers {
			saveErr = errors.Join(saveErr, r.addFactLocked(ctx, question, answer))
		}
	}
	return outcome, saveErr
}

// Teach records a fact explicitly. The question is normalized before
// storing.
func (r *AnswerResolver) Teach(ctx context.Context, question, answer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entities.NormalizeQuestion(question) == "" || strings.TrimSpace(answer) == "" {
		return ErrIncompleteFact
	}
	return r.addFactLocked(ctx, question, answer)
}

// Facts returns a snapshot of the known facts.
func (r *AnswerResolver) Facts() []entities.Fact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kb.Clone().Questions
}

// Quota returns the current fallback usage and its limit.
func (r *AnswerResolver) Quota() (count, limit int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.QueryCount, r.limit
}

func (r *AnswerResolver) recordQueryLocked(ctx context.Context) error {
	r.state = r.state.Record()
	if err := r.quota.Save(ctx, r.state); err != nil {
		r.logger.Error("persisting quota", zap.Int("query_count", r.state.QueryCount), zap.Error(err))
		return fmt.Errorf("saving quota: %w", err)
	}
	return nil
}

func (r *AnswerResolver) addFactLocked(ctx context.Context, question, answer string) error {
	question = entities.NormalizeQuestion(question)

	// The in-memory base only changes once the document is on disk.
	next := r.kb.Clone()
	next.AddFact(question, strings.TrimSpace(answer))
	if err := r.knowledge.Save(ctx, next); err != nil {
		r.logger.Error("persisting knowledge base", zap.String("question", question), zap.Error(err))
		return fmt.Errorf("saving knowledge base: %w", err)
	}
	r.kb = next
	r.logger.Info("fact recorded", zap.String("question", question), zap.Int("facts", len(r.kb.Questions)))
	return nil
}
