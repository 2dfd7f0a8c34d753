// Package graphql performs authenticated calls against the directory's
// GraphQL-over-HTTP endpoint.
//
// Every call obtains a fresh bearer credential from the session accessor,
// posts the request, and classifies the outcome into exactly one of four
// failure kinds (ErrUnauthenticated, *TransportError, *APIError,
// ErrEmptyResponse) or a well-formed data payload. Callers branch with
// errors.Is / errors.As instead of matching strings.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dkurov/campdir/internal/idp"
	"github.com/dkurov/campdir/internal/logging"
)

// Request is a GraphQL document plus its variables, opaque to this layer.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// TokenSource yields the credential attached to outbound requests. The
// accessor owns caching and refresh; the client fetches fresh every call.
type TokenSource interface {
	Session(ctx context.Context) (*idp.SessionInfo, error)
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Client posts GraphQL requests with an injected bearer credential.
type Client struct {
	endpoint string
	tokens   TokenSource
	httpc    *http.Client
	log      logging.Logger
}

// NewClient builds a Client for the given endpoint. A nil httpc falls back
// to a client with a sane timeout.
func NewClient(endpoint string, tokens TokenSource, httpc *http.Client, log logging.Logger) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{endpoint: endpoint, tokens: tokens, httpc: httpc, log: log}
}

// Execute sends the request and unmarshals the data payload into out.
// Without a credential it fails immediately and never touches the network.
func (c *Client) Execute(ctx context.Context, req Request, out any) error {
	sess, err := c.tokens.Session(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if sess.Token == "" {
		return ErrUnauthenticated
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", sess.Token)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Warn(ctx, "API request failed", "status", resp.StatusCode)
		return &TransportError{StatusCode: resp.StatusCode}
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if len(parsed.Errors) > 0 {
		return &APIError{Message: parsed.Errors[0].Message}
	}
	if len(parsed.Data) == 0 || string(parsed.Data) == "null" {
		return ErrEmptyResponse
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(parsed.Data, out); err != nil {
		return fmt.Errorf("decoding data payload: %w", err)
	}
	return nil
}
