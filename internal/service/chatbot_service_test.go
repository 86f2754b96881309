package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"datasense-be/internal/config"
	"datasense-be/internal/dto"
	"datasense-be/internal/pkg/logger"
	"datasense-be/pkg/chat"
	"datasense-be/pkg/rag/executor"
	"datasense-be/pkg/rag/premium"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	premium bool
	err     error
	seen    []chat.Turn
}

func (f *fakeClassifier) Classify(ctx context.Context, history []chat.Turn) (bool, error) {
	f.seen = history
	return f.premium, f.err
}

type fakeResponder struct {
	answer string
	err    error
	delay  time.Duration
	seen   []chat.Turn
}

func (f *fakeResponder) Respond(ctx context.Context, history []chat.Turn) (string, error) {
	f.seen = history
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.answer, f.err
}

type fakePremium struct {
	mu   sync.Mutex
	reqs []premium.Request
}

func (f *fakePremium) Run(ctx context.Context, req premium.Request) premium.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return premium.OutcomeCompleted
}

// inlineScheduler runs tasks synchronously so tests can assert on them.
type inlineScheduler struct {
	names []string
}

func (s *inlineScheduler) Go(name string, task executor.Task) error {
	s.names = append(s.names, name)
	return task(context.Background())
}

type fixture struct {
	classifier *fakeClassifier
	responder  *fakeResponder
	premium    *fakePremium
	scheduler  *inlineScheduler
}

func newFixture(policy string) (*fixture, IChatbotService) {
	f := &fixture{
		classifier: &fakeClassifier{},
		responder:  &fakeResponder{answer: "Hi there"},
		premium:    &fakePremium{},
		scheduler:  &inlineScheduler{},
	}
	svc := NewChatbotService(f.classifier, f.responder, f.premium, f.scheduler, policy, logger.NewNopLogger())
	return f, svc
}

func priorHistory() []chat.Turn {
	return []chat.Turn{
		{Role: chat.RoleUser, Content: "hello"},
		{Role: chat.RoleAssistant, Content: "Hi! How can I help?"},
	}
}

func TestChat_AppendsExactlyOneTurn(t *testing.T) {
	f, svc := newFixture(config.ClassifierPolicyFail)
	prior := priorHistory()

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{
		Message:     chat.TextInput("Which food suits puppies?"),
		ChatHistory: prior,
		ClientID:    "c1",
	})
	require.NoError(t, err)

	require.Len(t, res.ChatHistory, len(prior)+1)
	assert.Equal(t, chat.Turn{Role: chat.RoleUser, Content: "Which food suits puppies?"}, res.ChatHistory[2])
	assert.Equal(t, "Hi there", res.GeminiResponse)
	assert.False(t, res.PremiumApplicable)
	assert.Len(t, prior, 2)

	assert.Equal(t, res.ChatHistory, f.classifier.seen)
	assert.Equal(t, res.ChatHistory, f.responder.seen)
}

func TestChat_StructuredInput(t *testing.T) {
	_, svc := newFixture(config.ClassifierPolicyFail)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{
		Message: chat.StructuredInput(chat.Turn{Role: chat.RoleUser, Content: "hi"}),
	})
	require.NoError(t, err)
	assert.Len(t, res.ChatHistory, 1)
}

func TestChat_InvalidInput(t *testing.T) {
	_, svc := newFixture(config.ClassifierPolicyFail)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: chat.TextInput("   ")})
	assert.ErrorIs(t, err, chat.ErrEmptyMessage)

	_, err = svc.Chat(context.Background(), &dto.ChatRequest{
		Message: chat.StructuredInput(chat.Turn{Role: chat.RoleAssistant, Content: "x"}),
	})
	assert.ErrorIs(t, err, chat.ErrInvalidRole)
}

func TestChat_SchedulesPremium(t *testing.T) {
	f, svc := newFixture(config.ClassifierPolicyFail)
	f.classifier.premium = true

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{
		Message:  chat.TextInput("Which food suits puppies?"),
		ClientID: "c1",
	})
	require.NoError(t, err)
	assert.True(t, res.PremiumApplicable)

	require.Len(t, f.premium.reqs, 1)
	req := f.premium.reqs[0]
	assert.Equal(t, "c1", req.ClientID)
	assert.Equal(t, "Which food suits puppies?", req.Question)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, []string{"premium:" + req.ID}, f.scheduler.names)
}

func TestChat_PremiumWithoutClientIDIsSkipped(t *testing.T) {
	f, svc := newFixture(config.ClassifierPolicyFail)
	f.classifier.premium = true

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: chat.TextInput("q")})
	require.NoError(t, err)
	assert.True(t, res.PremiumApplicable)
	assert.Empty(t, f.premium.reqs)
}

func TestChat_NotPremiumSkipsScheduling(t *testing.T) {
	f, svc := newFixture(config.ClassifierPolicyFail)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: chat.TextInput("thanks"), ClientID: "c1"})
	require.NoError(t, err)
	assert.Empty(t, f.scheduler.names)
}

func TestChat_ResponderFailureFailsTurn(t *testing.T) {
	f, svc := newFixture(config.ClassifierPolicyNotPremium)
	boom := errors.New("model unavailable")
	f.responder.err = boom
	f.classifier.premium = true

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: chat.TextInput("q"), ClientID: "c1"})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, res)
	assert.Empty(t, f.premium.reqs)
}

func TestChat_ClassifierFailurePolicy(t *testing.T) {
	boom := errors.New("schema violation")

	t.Run("fail", func(t *testing.T) {
		f, svc := newFixture(config.ClassifierPolicyFail)
		f.classifier.err = boom

		_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: chat.TextInput("q")})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("not_premium keeps the answer", func(t *testing.T) {
		f, svc := newFixture(config.ClassifierPolicyNotPremium)
		f.classifier.err = boom
		f.responder.delay = 50 * time.Millisecond

		res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: chat.TextInput("q"), ClientID: "c1"})
		require.NoError(t, err)
		assert.Equal(t, "Hi there", res.GeminiResponse)
		assert.False(t, res.PremiumApplicable)
		assert.Empty(t, f.premium.reqs)
	})
}
