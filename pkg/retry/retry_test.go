package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsAfterRetries(t *testing.T) {
	cfg := &Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}

	callCount := 0
	err := Do(context.Background(), cfg, func() error {
		callCount++
		if callCount < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected success after retries, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestDo_ExhaustsRetries(t *testing.T) {
	cfg := &Config{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}

	wantErr := errors.New("still broken")
	callCount := 0
	err := Do(context.Background(), cfg, func() error {
		callCount++
		return wantErr
	})

	if err != wantErr {
		t.Errorf("expected %v, got %v", wantErr, err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls (1 + 2 retries), got %d", callCount)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	cfg := &Config{
		MaxRetries:   5,
		InitialDelay: time.Hour, // Would block forever without cancellation
		MaxDelay:     time.Hour,
		Multiplier:   2.0,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, cfg, func() error {
		return errors.New("transient")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDoWithResult_ReturnsValue(t *testing.T) {
	cfg := &Config{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}

	callCount := 0
	got, err := DoWithResult(context.Background(), cfg, func() (int, error) {
		callCount++
		if callCount < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	if err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}
