package services

import (
  "context"
  "fmt"
  "testing"
  "time"

  "github.com/google/uuid"
  "github.com/stretchr/testify/require"

  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/providers"
)

type fakeProvider struct {
  name  string
  model string
  text  string
  err   error
  delay time.Duration
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Model() string { return f.model }

func (f *fakeProvider) Complete(ctx context.Context, prompt string) (*providers.Completion, error) {
  if f.delay > 0 {
    select {
    case <-ctx.Done():
      return nil, ctx.Err()
    case <-time.After(f.delay):
    }
  }
  if f.err != nil {
    return nil, f.err
  }
  return &providers.Completion{Text: f.text, Model: f.model}, nil
}

func testLogger(t *testing.T) *logger.Logger {
  t.Helper()
  log, err := logger.New("development")
  require.NoError(t, err)
  return log
}

func TestDispatchReturnsResultsInRegistryOrder(t *testing.T) {
  set := []providers.ModelProvider{
    &fakeProvider{name: "chatgpt", model: "gpt-test", text: "answer one", delay: 20 * time.Millisecond},
    &fakeProvider{name: "claude", model: "claude-test", text: "answer two"},
    &fakeProvider{name: "gemini", model: "gemini-test", text: "answer three", delay: 10 * time.Millisecond},
  }
  d := NewDispatcher(testLogger(t), set, nil, 3, time.Second)

  results := d.Dispatch(context.Background(), uuid.New(), "prompt")
  require.Len(t, results, 3)
  require.Equal(t, "chatgpt", results[0].Provider)
  require.Equal(t, "claude", results[1].Provider)
  require.Equal(t, "gemini", results[2].Provider)
  require.Equal(t, "answer one", results[0].Text)
}

func TestDispatchFailedProviderDoesNotAbortBatch(t *testing.T) {
  set := []providers.ModelProvider{
    &fakeProvider{name: "chatgpt", model: "gpt-test", err: fmt.Errorf("rate limited")},
    &fakeProvider{name: "claude", model: "claude-test", text: "still answered"},
  }
  d := NewDispatcher(testLogger(t), set, nil, 2, time.Second)

  results := d.Dispatch(context.Background(), uuid.New(), "prompt")
  require.Len(t, results, 2)
  require.Error(t, results[0].Err)
  require.Empty(t, results[0].Text)
  require.NoError(t, results[1].Err)
  require.Equal(t, "still answered", results[1].Text)
}

func TestDispatchHonorsPerCallTimeout(t *testing.T) {
  set := []providers.ModelProvider{
    &fakeProvider{name: "chatgpt", model: "gpt-test", text: "too slow", delay: 500 * time.Millisecond},
  }
  d := NewDispatcher(testLogger(t), set, nil, 1, 50*time.Millisecond)

  results := d.Dispatch(context.Background(), uuid.New(), "prompt")
  require.Len(t, results, 1)
  require.Error(t, results[0].Err)
}

func TestDispatcherProviders(t *testing.T) {
  set := []providers.ModelProvider{
    &fakeProvider{name: "chatgpt", model: "gpt-test"},
    &fakeProvider{name: "claude", model: "claude-test"},
  }
  d := NewDispatcher(testLogger(t), set, nil, 0, 0)
  require.Equal(t, []string{"chatgpt", "claude"}, d.Providers())
}
