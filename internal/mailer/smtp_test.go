package mailer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/v-anushka05/mockmate-backend/internal/model"
)

func TestSendRejectsMalformedAddresses(t *testing.T) {
	transport, err := NewSMTPTransport("localhost", 2525, false, "user", "pass", "noreply@mockmate.com")
	if err != nil {
		t.Fatalf("NewSMTPTransport: %v", err)
	}

	// Address construction fails before any network activity, so a bad
	// recipient must surface as caller input, not a transient failure.
	_, err = transport.Send(context.Background(), &Message{
		To:      "not-an-address",
		Subject: "Welcome",
		HTML:    "<p>hi</p>",
	})

	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	var de *model.DeliveryError
	if errors.As(err, &de) {
		t.Fatalf("err = %v, must not be a delivery error", err)
	}
}

func TestClassifyDeliveryError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind model.DeliveryKind
	}{
		{"deadline", context.DeadlineExceeded, model.DeliveryTimeout},
		{"auth reply", fmt.Errorf("535 5.7.8 authentication credentials invalid"), model.DeliveryAuth},
		{"refused", fmt.Errorf("dial tcp 127.0.0.1:587: connection refused"), model.DeliveryConnectivity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var de *model.DeliveryError
			if !errors.As(classifyDeliveryError(tc.err), &de) {
				t.Fatal("expected a delivery error")
			}
			if de.Kind != tc.kind {
				t.Errorf("kind = %s, want %s", de.Kind, tc.kind)
			}
		})
	}
}
