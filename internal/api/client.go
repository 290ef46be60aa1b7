// Package api is the gateway to the TerrePro API. Every page goes through it
// so that credentials, error reporting and cancellation behave the same way.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBodyBytes  = 1 << 20
	maxBodyBytes       = 64 << 20
)

type ResponseKind int

const (
	JSON ResponseKind = iota
	Binary
)

// Request describes one call relative to the API base URL.
type Request struct {
	Method string
	Path   string
	Body   any
	Kind   ResponseKind
}

// Response is a 2xx answer. Body is only populated for Binary requests.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

type Client struct {
	baseURL string
	http    *http.Client
	maxBody int64
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		maxBody: maxBodyBytes,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do issues an authenticated call with "Authorization: Bearer <token>". An
// empty token fails with ErrNoToken without touching the network. For JSON
// requests the 2xx body is decoded into out when out is non-nil.
func (c *Client) Do(ctx context.Context, token string, req Request, out any) (*Response, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	return c.send(ctx, token, req, out)
}

// DoPublic issues a call without credentials (login, registration).
func (c *Client) DoPublic(ctx context.Context, req Request, out any) (*Response, error) {
	return c.send(ctx, "", req, out)
}

func (c *Client) send(ctx context.Context, token string, req Request, out any) (*Response, error) {
	op := req.Method + " " + req.Path

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s body: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Kind == JSON {
		httpReq.Header.Set("Accept", "application/json")
	} else {
		httpReq.Header.Set("Accept", "*/*")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	httpReq.Header.Set("X-Request-ID", requestIDFrom(ctx))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp)
	}

	result := &Response{Status: resp.StatusCode, Header: resp.Header}

	if req.Kind == Binary {
		data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
		if err != nil {
			return nil, &TransportError{Op: op, Err: err}
		}
		if int64(len(data)) > c.maxBody {
			return nil, fmt.Errorf("%s response: %w", op, ErrBodyTooLarge)
		}
		result.Body = data
		return result, nil
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		return result, nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBody)).Decode(out); err != nil {
		if ctx.Err() != nil {
			return nil, &TransportError{Op: op, Err: ctx.Err()}
		}
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return result, nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: GenericAPIMessage}

	var payload struct {
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Errors  json.RawMessage `json:"errors"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err := json.Unmarshal(data, &payload); err != nil {
		return apiErr
	}

	switch {
	case strings.TrimSpace(payload.Message) != "":
		apiErr.Message = payload.Message
		apiErr.FromAPI = true
	case strings.TrimSpace(payload.Error) != "":
		apiErr.Message = payload.Error
		apiErr.FromAPI = true
	}
	apiErr.Fields = decodeFieldErrors(payload.Errors)
	return apiErr
}

// decodeFieldErrors accepts {"field": ["msg", ...]} as well as {"field": "msg"}.
func decodeFieldErrors(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 {
		return nil
	}
	var many map[string][]string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	var single map[string]string
	if err := json.Unmarshal(raw, &single); err == nil {
		out := make(map[string][]string, len(single))
		for k, v := range single {
			out[k] = []string{v}
		}
		return out
	}
	return nil
}

type requestIDKey struct{}

// WithRequestID tags outbound calls made with ctx so they can be correlated
// with the page request in the API logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
