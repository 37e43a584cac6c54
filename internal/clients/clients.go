// Package clients holds the HTTP clients for the comms and engagement
// collaborators. Every call is fire-and-forget: dispatched on a background
// goroutine, bounded by a timeout, authenticated with a short-lived service
// JWT, and never surfaced to the caller.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fitnease/fitnease-auth/pkg/logging"
	"github.com/fitnease/fitnease-auth/pkg/tokens"
)

const (
	requestTimeout  = 30 * time.Second
	serviceName     = "fitnease-auth"
	serviceTokenTTL = 5 * time.Minute
)

type Client struct {
	BaseURL   string
	JWTSecret []byte
	HTTP      *http.Client
}

func newClient(baseURL string, secret []byte) *Client {
	return &Client{
		BaseURL:   baseURL,
		JWTSecret: secret,
		HTTP:      &http.Client{Timeout: requestTimeout},
	}
}

// dispatch runs fn detached from the request lifecycle. The request context
// only contributes its logger.
func (c *Client) dispatch(ctx context.Context, op string, fn func(ctx context.Context) error) {
	l := logging.FromContext(ctx).With("component", "clients", "op", op)
	bg := logging.IntoContext(context.WithoutCancel(ctx), l)
	go func() {
		callCtx, cancel := context.WithTimeout(bg, requestTimeout)
		defer cancel()
		if err := fn(callCtx); err != nil {
			l.Error("downstream_call_failed", "error", err)
			return
		}
		l.Info("downstream_call_ok")
	}()
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) error {
	return c.do(ctx, http.MethodPost, path, payload)
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}

	serviceToken, err := tokens.SignServiceToken(serviceName, c.JWTSecret, serviceTokenTTL)
	if err != nil {
		return fmt.Errorf("sign service token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+serviceToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return fmt.Errorf("%s %s: status %d", method, path, res.StatusCode)
	}
	return nil
}
