package services_test

import (
	"context"
	"testing"

	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithPhase(ctx, "summarization")
	ctx = services.WithItemURL(ctx, "https://example.com/a")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if phase, ok := services.PhaseFromContext(ctx); !ok || phase != "summarization" {
		t.Fatalf("unexpected phase: %v %v", phase, ok)
	}
	if url, ok := services.ItemURLFromContext(ctx); !ok || url != "https://example.com/a" {
		t.Fatalf("unexpected url: %v %v", url, ok)
	}
}

func TestPhaseBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithPhase(ctx, "")
	if _, ok := services.PhaseFromContext(ctx); ok {
		t.Fatal("expected no phase value")
	}
}
