package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Retryability(t *testing.T) {
	if !IsRetryable(ErrTransport("connection reset")) {
		t.Fatalf("transport errors must be retryable")
	}
	if !IsRetryable(ErrRateLimit("429")) {
		t.Fatalf("rate limit errors must be retryable")
	}
	if IsRetryable(ErrParse(CodeMissingField, "no tag")) {
		t.Fatalf("parse errors must not be retryable")
	}
	if IsRetryable(ErrConfig(CodeInvalidConfig, "bad")) {
		t.Fatalf("config errors must not be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Fatalf("plain errors must not be retryable")
	}
}

func TestDomainError_RetryabilitySurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("calling provider: %w", ErrRateLimit("slow down"))
	if !IsRetryable(wrapped) {
		t.Fatalf("retryability must survive error wrapping")
	}
	if GetCategory(wrapped) != ErrCatProvider {
		t.Fatalf("category must survive error wrapping, got %s", GetCategory(wrapped))
	}
}

func TestDomainError_Category(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorCategory
	}{
		{ErrTransport("x"), ErrCatTransport},
		{ErrProvider(CodeOverloaded, "x", true), ErrCatProvider},
		{ErrParse(CodeEmptyResponse, "x"), ErrCatParse},
		{ErrConfig(CodeMissingInput, "x"), ErrCatConfig},
		{ErrNotFound("provider", "openai"), ErrCatConfig},
		{errors.New("plain"), ErrCatInternal},
	}
	for _, tc := range cases {
		if got := GetCategory(tc.err); got != tc.want {
			t.Fatalf("GetCategory(%v) = %s, want %s", tc.err, got, tc.want)
		}
		if !IsCategory(tc.err, tc.want) {
			t.Fatalf("IsCategory(%v, %s) = false", tc.err, tc.want)
		}
	}
}

func TestDomainError_CauseChain(t *testing.T) {
	cause := errors.New("underlying")
	err := ErrConfig(CodeRenderFailed, "rendering template").WithCause(cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable via errors.Is")
	}
	if err.Error() == "" {
		t.Fatalf("expected non-empty message")
	}
}

func TestStepError_Extraction(t *testing.T) {
	cause := ErrRateLimit("throttled")
	step := &StepError{Stage: StageCritique, Attempts: 3, Cause: cause}
	wrapped := fmt.Errorf("workflow: %w", step)

	got, ok := AsStepError(wrapped)
	if !ok {
		t.Fatalf("expected StepError to be extractable")
	}
	if got.Stage != StageCritique || got.Attempts != 3 {
		t.Fatalf("unexpected step error: %+v", got)
	}
	if got.Category() != ErrCatProvider {
		t.Fatalf("expected provider category, got %s", got.Category())
	}
	if GetCategory(wrapped) != ErrCatProvider {
		t.Fatalf("category must unwrap through the step error")
	}
}
