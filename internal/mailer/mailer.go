package mailer

import "context"

type Message struct {
	To      string
	From    string
	Subject string
	Body    string
}

// Sender delivers notification mail. Implementations must be safe to
// call concurrently; delivery failures are the caller's to log, not to
// retry here.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
