package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestUserMessageUsesFixedWording(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{WrapError(ErrEmptyKnowledgeBase, "compose", errors.New("count=0")), "No posts in the database"},
		{WrapError(ErrNoMatch, "compose", errors.New("0 results")), "Unable to find similar posts"},
		{NewValidationError("validate", "Product Name, Brand Values and Description are mandatory"), "**Error:** Product Name"},
	}
	for _, tc := range cases {
		got := UserMessage(tc.err, "Error generating prompt")
		if !strings.HasPrefix(got, FailureMarker) {
			t.Fatalf("expected failure marker, got %q", got)
		}
		if !strings.Contains(got, tc.want) {
			t.Fatalf("expected %q in %q", tc.want, got)
		}
	}
}

func TestUserMessageIncludesTitleAndCause(t *testing.T) {
	err := &GenerationError{Backend: BackendPerplexity, Model: "sonar", Cause: errors.New("quota exceeded")}
	got := UserMessage(err, "Error generating prompt")
	if !strings.Contains(got, "**Error generating prompt:**") || !strings.Contains(got, "quota exceeded") {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestGenerationErrorKinds(t *testing.T) {
	appErr := &GenerationError{Backend: BackendOllama, Model: "m", Cause: errors.New("model not found")}
	if !IsKind(appErr, ErrGeneration) || IsKind(appErr, ErrConnectivity) {
		t.Fatalf("expected generation kind only, got %v", appErr)
	}

	netErr := &GenerationError{Backend: BackendOllama, Model: "m", Cause: WrapError(ErrConnectivity, "generate", errors.New("dial tcp"))}
	if !IsKind(netErr, ErrConnectivity) || IsKind(netErr, ErrGeneration) {
		t.Fatalf("expected connectivity kind only, got %v", netErr)
	}

	var typed *GenerationError
	if !errors.As(netErr, &typed) || typed.Backend != BackendOllama {
		t.Fatalf("expected typed generation error")
	}
}
