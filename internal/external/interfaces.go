package external

import (
	"context"

	"droughtwatch/internal/types"
)

// EmailProvider abstracts the email delivery service. Implementations
// transmit pre-rendered content and return the provider's message ID for
// correlation; the alert service logs a notification only after a confirmed
// send.
type EmailProvider interface {
	Send(ctx context.Context, input SendInput) (providerMsgID string, err error)
}

// SendInput carries one pre-rendered email.
type SendInput struct {
	To       string
	ToName   string
	Subject  string
	BodyHTML string
	BodyText string
}

// WeatherProvider abstracts the current-conditions source. Implementations
// return a snapshot in the engine's units: Celsius, mm/24h, percent, km/h.
type WeatherProvider interface {
	Current(ctx context.Context, location string) (types.WeatherSnapshot, error)
}
