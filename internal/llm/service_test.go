package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

type fakeModel struct {
	reply string
	err   error
	last  []llms.MessageContent
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.last = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	resp, err := f.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, opts...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func newTestService(model llms.Model) *Service {
	return &Service{llm: model, model: "test-model", logger: zap.NewNop()}
}

func TestChatRoleMapping(t *testing.T) {
	fake := &fakeModel{reply: "  hello there \n"}
	svc := newTestService(fake)

	reply, err := svc.Chat(context.Background(), []Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "again"},
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)

	require.Len(t, fake.last, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, fake.last[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, fake.last[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, fake.last[2].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, fake.last[3].Role)
}

func TestChatModelError(t *testing.T) {
	svc := newTestService(&fakeModel{err: errors.New("connection refused")})

	_, err := svc.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate completion")
}

func TestChatNoChoices(t *testing.T) {
	svc := newTestService(&emptyModel{})

	_, err := svc.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, Options{})
	assert.EqualError(t, err, "llm returned no choices")
}

type emptyModel struct{}

func (emptyModel) GenerateContent(context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{}, nil
}

func (emptyModel) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return "", nil
}

func TestAvailable(t *testing.T) {
	assert.True(t, newTestService(&fakeModel{reply: "pong"}).Available(context.Background()))
	assert.False(t, newTestService(&fakeModel{err: errors.New("down")}).Available(context.Background()))
}

func TestModel(t *testing.T) {
	assert.Equal(t, "test-model", newTestService(&fakeModel{}).Model())
}

func TestCountTokensFallback(t *testing.T) {
	svc := newTestService(&fakeModel{})

	// Without an encoding, counts degrade to a bytes/4 estimate.
	assert.Equal(t, 0, svc.countTokens("abc"))
	assert.Equal(t, 25, svc.countTokens(strings.Repeat("word ", 20)))
}
