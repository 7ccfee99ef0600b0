package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harborhq/harbor-backend/internal/logger"
)

func newTestHTTPJSONClient(t *testing.T, baseURL string) *httpJSONClient {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &httpJSONClient{
		log:        log,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		maxRetries: 3,
	}
}

// A canceled caller must get out of the retry loop immediately, not ride
// out the Retry-After backoff.
func TestDoReturnsPromptlyOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestHTTPJSONClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := client.do(ctx, http.MethodPost, "/v1/test", map[string]string{"q": "x"}, nil)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected an error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("cancellation took %v; backoff sleep is not honoring the context", elapsed)
	}
}

func TestIsRetryableErrTreatsCancellationAsFatal(t *testing.T) {
	if isRetryableErr(context.Canceled) {
		t.Fatal("context.Canceled must not be retryable")
	}
	if !isRetryableErr(&providerHTTPError{StatusCode: http.StatusTooManyRequests}) {
		t.Fatal("429 should be retryable")
	}
	if isRetryableErr(&providerHTTPError{StatusCode: http.StatusBadRequest}) {
		t.Fatal("400 should not be retryable")
	}
}
