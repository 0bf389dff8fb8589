package usecases

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
)

// scriptedInput implements ports.SpeechInput for testing
type scriptedInput struct {
	lines []string
	errs  []error
}

func (s *scriptedInput) Listen(ctx context.Context) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line, err := s.lines[0], s.errs[0]
	s.lines, s.errs = s.lines[1:], s.errs[1:]
	return line, err
}

func script(steps ...any) *scriptedInput {
	in := &scriptedInput{}
	for _, step := range steps {
		switch v := step.(type) {
		case string:
			in.lines = append(in.lines, v)
			in.errs = append(in.errs, nil)
		case error:
			in.lines = append(in.lines, "")
			in.errs = append(in.errs, v)
		}
	}
	return in
}

type mockSearcher struct {
	queries []string
	err     error
}

func (m *mockSearcher) Search(ctx context.Context, query string) (string, error) {
	m.queries = append(m.queries, query)
	return "I found this information online.", m.err
}

type mockDevice struct {
	sent []entities.DeviceCommand
	err  error
}

func (m *mockDevice) Send(ctx context.Context, cmd entities.DeviceCommand) (string, error) {
	m.sent = append(m.sent, cmd)
	return "ok:" + string(cmd), m.err
}

func (m *mockDevice) Close() error { return nil }

type mockSpeech struct {
	texts []string
	err   error
}

func (m *mockSpeech) Synthesize(ctx context.Context, text string) (string, error) {
	m.texts = append(m.texts, text)
	return "response.mp3", m.err
}

type mockPlayer struct {
	played []string
	err    error
}

func (m *mockPlayer) Play(ctx context.Context, path string) error {
	m.played = append(m.played, path)
	return m.err
}

func newTestAssistant(t *testing.T, fb *mockFallback, deps AssistantDeps) *Assistant {
	t.Helper()
	ks := &mockKnowledgeStore{kb: knowledgeWith(entities.Fact{Question: "what is 2+2", Answer: "4"})}
	deps.Resolver = newTestResolver(t, ks, &mockQuotaStore{}, fb, ResolverConfig{QueryLimit: 1})
	return NewAssistant(testVocabulary(), deps)
}

func TestAssistant_SmallTalk(t *testing.T) {
	a := newTestAssistant(t, nil, AssistantDeps{})
	ctx := context.Background()

	assert.Equal(t, "You're welcome!", a.Respond(ctx, "thank you").Text)
	assert.Equal(t, "I apologize if I offended you.", a.Respond(ctx, "you insult me").Text)
	assert.Equal(t, "I'm sorry to hear that.", a.Respond(ctx, "i am sad").Text)
	assert.Equal(t, "I'm here to chat! What's on your mind?", a.Respond(ctx, "i am so happy").Text)
	assert.Contains(t, a.Vocabulary().Jokes, a.Respond(ctx, "tell me a joke").Text)

	quit := a.Respond(ctx, "quit")
	assert.True(t, quit.Done)
	assert.Equal(t, "Goodbye!", quit.Text)
}

func TestAssistant_QuestionOutcomes(t *testing.T) {
	fb := &mockFallback{answer: ""}
	a := newTestAssistant(t, fb, AssistantDeps{})
	ctx := context.Background()

	cached := a.Respond(ctx, "what is 2+2")
	require.NotNil(t, cached.Outcome)
	assert.Equal(t, "4", cached.Text)

	miss := a.Respond(ctx, "who discovered penicillin")
	assert.Equal(t, entities.OutcomeNoAnswer, miss.Outcome.Kind)
	assert.Equal(t, "Could you rephrase that?", miss.Text)

	limited := a.Respond(ctx, "who discovered radium")
	assert.Equal(t, entities.OutcomeQuotaExceeded, limited.Outcome.Kind)
	assert.Equal(t, "Query limit reached. Please try again later.", limited.Text)
}

func TestAssistant_FallbackErrorReadsAsNoAnswer(t *testing.T) {
	fb := &mockFallback{err: errors.New("timeout")}
	a := newTestAssistant(t, fb, AssistantDeps{})

	reply := a.Respond(context.Background(), "distance to andromeda")

	assert.Equal(t, entities.OutcomeFallbackError, reply.Outcome.Kind)
	assert.Equal(t, "Sorry, I couldn't find an answer for that.", reply.Text)
}

func TestAssistant_SearchAndDevice(t *testing.T) {
	searcher := &mockSearcher{}
	device := &mockDevice{}
	a := newTestAssistant(t, nil, AssistantDeps{Search: searcher, Device: device})
	ctx := context.Background()

	assert.Equal(t, "I found this information online.", a.Respond(ctx, "google golang").Text)
	assert.Equal(t, []string{"golang"}, searcher.queries)

	assert.Equal(t, "ok:turn_on", a.Respond(ctx, "turn on the fan").Text)
	assert.Equal(t, "ok:turn_off", a.Respond(ctx, "turn off the fan").Text)
	assert.Equal(t, []entities.DeviceCommand{entities.DeviceOn, entities.DeviceOff}, device.sent)

	searcher.err = errors.New("no browser")
	device.err = errors.New("port closed")
	assert.Equal(t, "Sorry, I couldn't perform the Google search.", a.Respond(ctx, "google golang").Text)
	assert.Equal(t, "The device did not respond.", a.Respond(ctx, "turn on the fan").Text)
}

func TestAssistant_MissingCollaborators(t *testing.T) {
	a := newTestAssistant(t, nil, AssistantDeps{})
	ctx := context.Background()

	assert.Equal(t, "Sorry, I couldn't perform the Google search.", a.Respond(ctx, "google golang").Text)
	assert.Equal(t, "No device is connected.", a.Respond(ctx, "turn on the fan").Text)
}

func TestAssistant_RunUntilQuit(t *testing.T) {
	var out bytes.Buffer
	speech := &mockSpeech{}
	player := &mockPlayer{}
	a := newTestAssistant(t, nil, AssistantDeps{Output: &out, Speech: speech, Player: player})

	in := script(
		"what is 2+2",
		&entities.RecognitionError{Err: errors.New("unintelligible")},
		"",
		"quit",
		"never read",
	)
	require.NoError(t, a.Run(context.Background(), in))

	assert.Equal(t, "ELEY: 4\nELEY: Goodbye!\n", out.String())
	assert.Equal(t, []string{"4", "Goodbye!"}, speech.texts)
	assert.Len(t, player.played, 2)
	assert.Equal(t, []string{"never read"}, in.lines)
}

func TestAssistant_RunStopsAtEOF(t *testing.T) {
	a := newTestAssistant(t, nil, AssistantDeps{})
	require.NoError(t, a.Run(context.Background(), script("what is 2+2")))
}

func TestAssistant_RunSurvivesSpeechFailures(t *testing.T) {
	var out bytes.Buffer
	speech := &mockSpeech{err: errors.New("tts offline")}
	player := &mockPlayer{}
	a := newTestAssistant(t, nil, AssistantDeps{Output: &out, Speech: speech, Player: player})

	require.NoError(t, a.Run(context.Background(), script("thank you", "quit")))

	assert.Len(t, speech.texts, 2)
	assert.Empty(t, player.played, "nothing to play when synthesis fails")
}

func TestAssistant_RunReturnsListenErrors(t *testing.T) {
	a := newTestAssistant(t, nil, AssistantDeps{})

	err := a.Run(context.Background(), script(errors.New("device unplugged")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "device unplugged")
}

func TestAssistant_RunHonoursCancellation(t *testing.T) {
	a := newTestAssistant(t, nil, AssistantDeps{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, a.Run(ctx, script("what is 2+2")), context.Canceled)
}

func TestAssistant_SetVocabulary(t *testing.T) {
	a := newTestAssistant(t, nil, AssistantDeps{})
	vocab := testVocabulary()
	vocab.QuitWord = "bye"
	vocab.Responses.Goodbye = []string{"See you later!"}

	a.SetVocabulary(vocab)

	reply := a.Respond(context.Background(), "bye")
	assert.True(t, reply.Done)
	assert.Equal(t, "See you later!", reply.Text)
	assert.False(t, a.Respond(context.Background(), "quit").Done)
}
