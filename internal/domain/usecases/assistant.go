// Package usecases - assistant.go turns utterances into replies and runs the
// listen/respond/speak loop.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
	"github.com/0xcro3dile/eley-go/internal/domain/ports"
)

// Reply is the assistant's answer to one utterance.
type Reply struct {
	Text    string
	Intent  entities.Intent
	Outcome *entities.Outcome // set for IntentQuestion
	Done    bool              // the user asked to quit
}

// AssistantDeps are the collaborators of an Assistant. Only Resolver is
// required; a nil collaborator disables its feature.
type AssistantDeps struct {
	Resolver *AnswerResolver
	Search   ports.WebSearcher
	Device   ports.DeviceController
	Speech   ports.SpeechOutput
	Player   ports.AudioPlayer
	Output   io.Writer // transcript of replies, optional
	Rand     *rand.Rand
	Logger   *zap.Logger
}

type lexicon struct {
	vocab  entities.Vocabulary
	router *IntentRouter
}

// Assistant dispatches classified utterances to their handlers.
type Assistant struct {
	deps    AssistantDeps
	lexicon atomic.Pointer[lexicon]
	rngMu   sync.Mutex
	logger  *zap.Logger
}

// NewAssistant creates an Assistant speaking vocab.
func NewAssistant(vocab entities.Vocabulary, deps AssistantDeps) *Assistant {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	a := &Assistant{deps: deps, logger: deps.Logger}
	a.SetVocabulary(vocab)
	return a
}

// SetVocabulary swaps the word lists and phrasebook. Safe to call while
// replies are being produced.
func (a *Assistant) SetVocabulary(vocab entities.Vocabulary) {
	a.lexicon.Store(&lexicon{vocab: vocab, router: NewIntentRouter(vocab)})
}

// Vocabulary returns the vocabulary in use.
func (a *Assistant) Vocabulary() entities.Vocabulary {
	return a.lexicon.Load().vocab
}

// Respond produces the reply for one utterance. Per-utterance failures are
// logged and turned into user-facing messages.
func (a *Assistant) Respond(ctx context.Context, utterance string) Reply {
	lx := a.lexicon.Load()
	res := lx.vocab.Responses
	intent := lx.router.Classify(utterance)
	reply := Reply{Intent: intent}

	switch intent.Kind {
	case entities.IntentQuit:
		reply.Text = a.pick(res.Goodbye)
		reply.Done = true

	case entities.IntentThanks:
		reply.Text = a.pick(res.Thanks)

	case entities.IntentOffensive:
		reply.Text = a.pick(res.Apology)

	case entities.IntentEmotion:
		reply.Text = res.EmotionDefault
		for _, e := range lx.vocab.Emotions {
			if e.Label == intent.Emotion && e.Reply != "" {
				reply.Text = e.Reply
				break
			}
		}

	case entities.IntentSearch:
		reply.Text = a.search(ctx, intent.Query, res)

	case entities.IntentJoke:
		reply.Text = a.pick(lx.vocab.Jokes)

	case entities.IntentDevice:
		reply.Text = a.device(ctx, intent.Command, res)

	default:
		outcome, err := a.deps.Resolver.Resolve(ctx, intent.Text)
		if err != nil {
			a.logger.Error("persisting resolution", zap.Error(err))
		}
		reply.Outcome = &outcome
		reply.Text = a.describe(outcome, res)
	}

	a.logger.Debug("reply",
		zap.String("intent", intent.Kind.String()),
		zap.String("utterance", utterance),
		zap.String("reply", reply.Text),
	)
	return reply
}

// Run listens for utterances and answers each one until the user quits,
// the input is exhausted or ctx is cancelled.
func (a *Assistant) Run(ctx context.Context, input ports.SpeechInput) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		utterance, err := input.Listen(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		var recErr *entities.RecognitionError
		if errors.As(err, &recErr) {
			a.logger.Warn("could not understand input", zap.Error(err))
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("listening: %w", err)
		}
		if strings.TrimSpace(utterance) == "" {
			continue
		}

		reply := a.Respond(ctx, utterance)
		a.Say(ctx, reply.Text)
		if reply.Done {
			return nil
		}
	}
}

// Say writes text to the transcript and speaks it. Speech failures are
// logged only.
func (a *Assistant) Say(ctx context.Context, text string) {
	if a.deps.Output != nil {
		fmt.Fprintf(a.deps.Output, "ELEY: %s\n", text)
	}
	if a.deps.Speech == nil || text == "" {
		return
	}
	path, err := a.deps.Speech.Synthesize(ctx, text)
	if err != nil {
		a.logger.Warn("speech synthesis failed", zap.Error(err))
		return
	}
	if a.deps.Player == nil {
		return
	}
	if err := a.deps.Player.Play(ctx, path); err != nil {
		a.logger.Warn("audio playback failed", zap.String("path", path), zap.Error(err))
	}
}

func (a *Assistant) describe(outcome entities.Outcome, res entities.Responses) string {
	switch outcome.Kind {
	case entities.OutcomeAnswered:
		return outcome.Answer
	case entities.OutcomeQuotaExceeded:
		return res.QuotaExceeded
	case entities.OutcomeFallbackError:
		if res.NoAnswer != "" {
			return res.NoAnswer
		}
	}
	if len(res.Confused) > 0 {
		return a.pick(res.Confused)
	}
	return res.NoAnswer
}

func (a *Assistant) search(ctx context.Context, query string, res entities.Responses) string {
	if a.deps.Search == nil {
		return res.SearchFailed
	}
	status, err := a.deps.Search.Search(ctx, query)
	if err != nil {
		a.logger.Warn("web search failed", zap.String("query", query), zap.Error(err))
		return res.SearchFailed
	}
	return status
}

func (a *Assistant) device(ctx context.Context, cmd entities.DeviceCommand, res entities.Responses) string {
	if a.deps.Device == nil {
		return res.NoDevice
	}
	ack, err := a.deps.Device.Send(ctx, cmd)
	if err != nil {
		a.logger.Warn("device command failed", zap.String("command", string(cmd)), zap.Error(err))
		return res.DeviceFailed
	}
	a.logger.Info("device response", zap.String("command", string(cmd)), zap.String("response", ack))
	return ack
}

func (a *Assistant) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	a.rngMu.Lock()
	defer a.rngMu.Unlock()
	return pool[a.deps.Rand.IntN(len(pool))]
}
