// Package transport provides the HTTP plumbing shared by remote
// directory and geolocation clients: authentication, JSON decoding, and
// mapping of HTTP failures onto the contactsync error taxonomy.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/syncline/contactsync/pkg/constants"
	"github.com/syncline/contactsync/pkg/errors"
)

// Authenticator applies credentials to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request)
}

// BearerAuth sets an Authorization: Bearer header.
type BearerAuth struct {
	Token string
}

// Apply implements Authenticator.
func (a *BearerAuth) Apply(req *http.Request) {
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}
}

// NoAuth sends requests unauthenticated.
type NoAuth struct{}

// Apply implements Authenticator.
func (a *NoAuth) Apply(_ *http.Request) {}

// Client provides HTTP client functionality with authentication.
type Client struct {
	name string // service name used in error messages
	http *http.Client
	auth Authenticator
}

// New creates a new transport client for the named service.
func New(name string, auth Authenticator) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	return &Client{
		name: name,
		http: &http.Client{Timeout: constants.DefaultHTTPTimeout},
		auth: auth,
	}
}

// Do performs an HTTP request with authentication and common headers applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.auth.Apply(req)
	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.wrapTransportError(req.Context(), err)
	}
	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.NewConfigError(c.name, "building GET "+url, err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	return c.DecodeResponse(resp, out)
}

// PostJSON performs a POST request with a JSON body and decodes the JSON
// response into out. out may be nil when the body is irrelevant.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.WrapParse("json", url, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.NewConfigError(c.name, "building POST "+url, err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	return c.DecodeResponse(resp, out)
}

// PatchJSON performs a PATCH request with a JSON body and decodes the
// JSON response into out. out may be nil when the body is irrelevant.
func (c *Client) PatchJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.WrapParse("json", url, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		return errors.NewConfigError(c.name, "building PATCH "+url, err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	return c.DecodeResponse(resp, out)
}

// DecodeResponse checks the response status and decodes the body into out.
// Non-2xx statuses become APIErrors that map onto the sentinel taxonomy.
func (c *Client) DecodeResponse(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorBody(resp.Body)
		return &errors.APIError{
			Directory:  c.name,
			StatusCode: resp.StatusCode,
			Message:    msg,
			Endpoint:   resp.Request.URL.Path,
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WrapParse("json", resp.Request.URL.Path, err)
	}
	return nil
}

// wrapTransportError maps client-side failures onto the taxonomy so the
// retry policy can distinguish timeouts from hard failures.
func (c *Client) wrapTransportError(ctx context.Context, err error) error {
	switch {
	case ctx.Err() == context.Canceled:
		return errors.ErrCanceled
	case ctx.Err() == context.DeadlineExceeded:
		return &errors.APIError{Directory: c.name, Message: err.Error(), Err: errors.ErrTimeout}
	}
	if t, ok := err.(interface{ Timeout() bool }); ok && t.Timeout() {
		return &errors.APIError{Directory: c.name, Message: err.Error(), Err: errors.ErrTimeout}
	}
	return &errors.APIError{Directory: c.name, Message: err.Error(), Err: errors.ErrUnavailable}
}

// readErrorBody extracts a short error message from a failed response.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 2048))
	if err != nil || len(data) == 0 {
		return "no response body"
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil && body.Message != "" {
		return body.Message
	}
	return string(data)
}
