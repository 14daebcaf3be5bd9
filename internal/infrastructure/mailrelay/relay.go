// Package mailrelay fans a rendered email out to the preview store and any
// configured real transports.
package mailrelay

import (
	"context"
	"log/slog"

	"github.com/thlight-panel/internal/domain"
)

// Recorder keeps the canonical copy of every message and assigns its id.
type Recorder interface {
	Send(ctx context.Context, msg domain.OutboundEmail) (string, error)
}

// Transport delivers a message to a real inbox or channel.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, msg domain.OutboundEmail) error
}

// Relay records every message, then forwards it to each transport.
// Transport failures are logged and never surface to the caller.
type Relay struct {
	recorder   Recorder
	transports []Transport
}

func New(recorder Recorder, transports ...Transport) *Relay {
	return &Relay{recorder: recorder, transports: transports}
}

// Send returns the recorder's id. Only a recorder failure is an error.
func (r *Relay) Send(ctx context.Context, msg domain.OutboundEmail) (string, error) {
	emailID, err := r.recorder.Send(ctx, msg)
	if err != nil {
		return "", err
	}
	for _, t := range r.transports {
		if err := t.Deliver(ctx, msg); err != nil {
			slog.Warn("email transport failed", "transport", t.Name(), "to", msg.To, "email_id", emailID, "err", err)
			continue
		}
		slog.Debug("email delivered", "transport", t.Name(), "to", msg.To, "email_id", emailID)
	}
	return emailID, nil
}
