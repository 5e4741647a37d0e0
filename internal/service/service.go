// Package service holds the application logic between the HTTP handlers and
// the stores. Every operation takes the acting account explicitly; there is
// no ambient session state.
package service

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Publisher is the real-time community channel. Delivery is fire-and-forget:
// services log failures and never fail the request over them.
type Publisher interface {
	Publish(ctx context.Context, communityID uint64, event string, payload any) error
}

// TokenStore keeps the active access token per account.
type TokenStore interface {
	Add(userID uint64, token string) error
	Get(userID uint64) (string, error)
	Extend(userID uint64) error
	Delete(userID uint64) error
}

// Mailer delivers best-effort OTP emails; the notification record is the
// copy of record, so a nil Mailer simply skips delivery.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

func publish(ctx context.Context, p Publisher, communityID uint64, event string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, communityID, event, payload); err != nil {
		log.Warn().Err(err).Uint64("community", communityID).Str("event", event).
			Msg("realtime publish failed")
	}
}
