package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"
)

func TestRetryOn503_StopsOnNonRetryableError(t *testing.T) {
	calls := 0
	_, err := retryOn503(context.Background(), 3, func() (*genai.GenerateContentResponse, error) {
		calls++
		return nil, errors.New("400 bad request")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryOn503_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	want := &genai.GenerateContentResponse{}
	got, err := retryOn503(context.Background(), 3, func() (*genai.GenerateContentResponse, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("503 model overloaded")
		}
		return want, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatal("expected the second attempt's response")
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRetryOn503_BackoffHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := retryOn503(ctx, 3, func() (*genai.GenerateContentResponse, error) {
		return nil, errors.New("503 model overloaded")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("backoff ignored cancellation, took %v", elapsed)
	}
}
