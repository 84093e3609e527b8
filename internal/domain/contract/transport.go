package contract

import "context"

// MessageTransport defines the interface for outbound message delivery.
// Implementations must accept a single recipient or several; with several
// the provider fans out to a group thread. This allows mocking in tests
// while keeping the real implementation simple.
type MessageTransport interface {
	// Send delivers body to the given phone numbers and returns the
	// provider-assigned message id.
	Send(ctx context.Context, to []string, body string) (sid string, err error)
}
