package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

type fakeModel struct {
	content  string
	err      error
	calls    int
	messages []llms.MessageContent
	options  llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	f.messages = messages
	for _, opt := range options {
		opt(&f.options)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.content}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestGeneratorRequestsJSON(t *testing.T) {
	model := &fakeModel{content: ` {"matchedJobs": []} `}
	g := newGenerator(model, "gpt-test", zap.NewNop())

	output, err := g.GenerateContent(context.Background(), "match this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output != `{"matchedJobs": []}` {
		t.Fatalf("unexpected output: %q", output)
	}

	if !model.options.JSONMode {
		t.Fatalf("expected json mode to be requested")
	}

	if len(model.messages) != 1 {
		t.Fatalf("expected a single message, got %d", len(model.messages))
	}

	part, ok := model.messages[0].Parts[0].(llms.TextContent)
	if !ok || part.Text != "match this" {
		t.Fatalf("unexpected message part: %#v", model.messages[0].Parts[0])
	}

	if g.Model() != "gpt-test" {
		t.Fatalf("unexpected model name: %s", g.Model())
	}
}

func TestGeneratorErrors(t *testing.T) {
	callErr := errors.New("rate limited")
	model := &fakeModel{err: callErr}
	g := newGenerator(model, "gpt-test", zap.NewNop())

	if _, err := g.GenerateContent(context.Background(), "prompt"); !errors.Is(err, callErr) {
		t.Fatalf("expected wrapped call error, got %v", err)
	}

	if model.calls != 1 {
		t.Fatalf("expected single call, got %d", model.calls)
	}

	blank := newGenerator(&fakeModel{content: "  "}, "gpt-test", zap.NewNop())
	if _, err := blank.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for blank response")
	}

	if _, err := g.GenerateContent(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator("", "", "", zap.NewNop()); err == nil {
		t.Fatal("expected error without api key")
	}
}
