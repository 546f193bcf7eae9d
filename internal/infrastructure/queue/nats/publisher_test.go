package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
)

func TestIngestedMessageCarriesPostID(t *testing.T) {
	msg := newIngestedMsg("posts.ingested", "sunset_post_1")
	if msg.Subject != "posts.ingested" || string(msg.Data) != "sunset_post_1" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if msg.Header.Get(nats.MsgIdHdr) != "sunset_post_1" {
		t.Fatalf("expected dedup header, got %v", msg.Header)
	}
}

func TestWrapPublishErrorKinds(t *testing.T) {
	if err := wrapPublishError(nats.ErrConnectionClosed); !domain.IsKind(err, domain.ErrConnectivity) {
		t.Fatalf("expected connectivity for closed connection, got %v", err)
	}
	if err := wrapPublishError(nats.ErrMaxPayload); domain.IsKind(err, domain.ErrConnectivity) || !errors.Is(err, nats.ErrMaxPayload) {
		t.Fatalf("expected plain publish error, got %v", err)
	}
	if wrapPublishError(nil) != nil {
		t.Fatalf("expected nil")
	}
	if classifyNATSError(context.Canceled).RecordFailure {
		t.Fatalf("canceled publish should not trip the breaker")
	}
}
