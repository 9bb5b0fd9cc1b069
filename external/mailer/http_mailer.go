package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/oakmontlabs/timepunch/internal/mailer"
)

// HTTPSender posts mail as JSON to a delivery webhook. An empty URL
// disables delivery, which keeps local setups working without a mail
// provider.
type HTTPSender struct {
	deliveryURL string
	client      *http.Client
}

func NewHTTPSender(deliveryURL string) mailer.Sender {
	return &HTTPSender{
		deliveryURL: deliveryURL,
		client:      &http.Client{},
	}
}

func (s *HTTPSender) Send(ctx context.Context, msg mailer.Message) error {
	if s.deliveryURL == "" {
		return nil
	}

	b, err := json.Marshal(map[string]string{
		"to":      msg.To,
		"from":    msg.From,
		"subject": msg.Subject,
		"body":    msg.Body,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.deliveryURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return fmt.Errorf("mail delivery returned status %d", resp.StatusCode)
	}
	return nil
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
