package services

import (
  "context"
  "encoding/json"
  "time"

  "github.com/google/uuid"
  "golang.org/x/sync/errgroup"
  "gorm.io/datatypes"

  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/providers"
  "github.com/harborhq/harbor-backend/internal/repos"
  "github.com/harborhq/harbor-backend/internal/types"
)

// ProviderResponse is one backend's answer to a prompt. Err is set when the
// call failed after retries; the scan treats that as zero matches rather than
// aborting the batch.
type ProviderResponse struct {
  Provider string
  Model    string
  Text     string
  Err      error
}

type Dispatcher interface {
  // Dispatch sends the prompt to every registered provider concurrently and
  // returns one entry per provider, in registry order.
  Dispatch(ctx context.Context, runID uuid.UUID, prompt string) []ProviderResponse
  Providers() []string
}

type dispatcher struct {
  log         *logger.Logger
  providers   []providers.ModelProvider
  aiLogRepo   repos.AICallLogRepo
  concurrency int
  timeout     time.Duration
}

func NewDispatcher(
  baseLog *logger.Logger,
  providerSet []providers.ModelProvider,
  aiLogRepo repos.AICallLogRepo,
  concurrency int,
  timeout time.Duration,
) Dispatcher {
  if concurrency <= 0 {
    concurrency = 4
  }
  if timeout <= 0 {
    timeout = 60 * time.Second
  }
  return &dispatcher{
    log:         baseLog.With("service", "Dispatcher"),
    providers:   providerSet,
    aiLogRepo:   aiLogRepo,
    concurrency: concurrency,
    timeout:     timeout,
  }
}

func (d *dispatcher) Providers() []string {
  out := make([]string, 0, len(d.providers))
  for _, p := range d.providers {
    out = append(out, p.Name())
  }
  return out
}

func (d *dispatcher) Dispatch(ctx context.Context, runID uuid.UUID, prompt string) []ProviderResponse {
  results := make([]ProviderResponse, len(d.providers))

  g, gctx := errgroup.WithContext(ctx)
  g.SetLimit(d.concurrency)

  for i, p := range d.providers {
    i, p := i, p
    g.Go(func() error {
      callCtx, cancel := context.WithTimeout(gctx, d.timeout)
      defer cancel()

      started := time.Now()
      completion, err := p.Complete(callCtx, prompt)
      latency := time.Since(started)

      res := ProviderResponse{Provider: p.Name(), Model: p.Model()}
      if err != nil {
        res.Err = err
        d.log.Warn("provider call failed; continuing with remaining models",
          "provider", p.Name(),
          "latency", latency.String(),
          "error", err,
        )
      } else {
        res.Text = completion.Text
        res.Model = completion.Model
      }
      results[i] = res

      d.recordCall(runID, p, prompt, completion, err, latency)

      // Provider failures degrade the scan, they never abort it.
      return nil
    })
  }

  _ = g.Wait()
  return results
}

func (d *dispatcher) recordCall(
  runID uuid.UUID,
  p providers.ModelProvider,
  prompt string,
  completion *providers.Completion,
  callErr error,
  latency time.Duration,
) {
  if d.aiLogRepo == nil {
    return
  }

  row := &types.AICallLog{
    ID:        uuid.New(),
    Provider:  p.Name(),
    Model:     p.Model(),
    Prompt:    prompt,
    Success:   callErr == nil,
    LatencyMS: latency.Milliseconds(),
    CreatedAt: time.Now(),
    UpdatedAt: time.Now(),
  }
  if runID != uuid.Nil {
    id := runID
    row.RunID = &id
  }
  if callErr != nil {
    row.Error = callErr.Error()
  }
  if completion != nil {
    row.Response = completion.Text
    row.Model = completion.Model
    if raw, err := json.Marshal(completion.Usage); err == nil {
      row.Usage = datatypes.JSON(raw)
    }
  }

  // Accounting is best-effort; a logging failure must not affect the scan.
  logCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  if _, err := d.aiLogRepo.Create(logCtx, nil, []*types.AICallLog{row}); err != nil {
    d.log.Warn("failed to record AI call", "provider", p.Name(), "error", err)
  }
}
