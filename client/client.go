package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vitalvas/blih/envelope"
)

const (
	// Version is the protocol client version advertised in the user agent.
	Version = "1.7"

	// DefaultBaseURL is the origin of the public service.
	DefaultBaseURL = "https://blih.epitech.eu"

	// DefaultUserAgent identifies this client to the service.
	DefaultUserAgent = "blih-" + Version

	// DefaultTimeout bounds a whole request/response exchange.
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

// Config configures a Client. Everything but Signer has a default.
type Config struct {
	// Signer signs every request body. Required.
	Signer envelope.Signer

	// BaseURL is the service origin. Defaults to DefaultBaseURL.
	BaseURL string

	// UserAgent defaults to DefaultUserAgent.
	UserAgent string

	// Timeout bounds each exchange. Defaults to DefaultTimeout; negative
	// disables it.
	Timeout time.Duration

	// Proxy is an explicit proxy URL. When empty the environment decides.
	Proxy string

	// Transport is the base transport. When nil a clone of
	// http.DefaultTransport is used.
	Transport *http.Transport

	// GenerateRequestID returns the X-Request-ID for a request. Defaults
	// to a random UUID.
	GenerateRequestID func() string

	// Logger receives request traces. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Client sends signed operations to the service.
type Client struct {
	base      *url.URL
	signer    envelope.Signer
	http      *http.Client
	requestID func() string
	log       zerolog.Logger
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	if cfg.Signer == nil {
		return nil, ErrNoSigner
	}

	rawBase := cfg.BaseURL
	if rawBase == "" {
		rawBase = DefaultBaseURL
	}

	base, err := parseBaseURL(rawBase)
	if err != nil {
		return nil, err
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	timeout := cfg.Timeout
	switch {
	case timeout == 0:
		timeout = DefaultTimeout
	case timeout < 0:
		timeout = 0
	}

	requestID := cfg.GenerateRequestID
	if requestID == nil {
		requestID = func() string { return uuid.New().String() }
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	return &Client{
		base:   base,
		signer: cfg.Signer,
		http: &http.Client{
			Transport: NewTransport(cfg.Transport, userAgent, cfg.Proxy),
			Timeout:   timeout,
			// A redirect would replay the request without its body.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		requestID: requestID,
		log:       log,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https: %q", ErrInvalidBaseURL, raw)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host: %q", ErrInvalidBaseURL, raw)
	}

	return u, nil
}

// BaseURL returns the service origin the client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Identity returns the user requests are signed for.
func (c *Client) Identity() string {
	return c.signer.KeyID()
}

// Do signs op, sends it and classifies the answer. It returns a *Response
// for a 200 with a JSON object body and a *TransportError, *ProtocolError
// or *DecodeError otherwise.
func (c *Client) Do(ctx context.Context, op Operation) (*Response, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	env, err := envelope.Build(c.signer, op.Payload())
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding envelope: %w", err)
	}

	target := c.base.String() + op.Path()

	req, err := http.NewRequestWithContext(ctx, op.Method(), target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	id := c.requestID()
	if id != "" {
		req.Header.Set(RequestIDHeader, id)
	}

	c.log.Debug().
		Str("method", op.Method()).
		Str("path", op.Path()).
		Str("user", env.User).
		Str("request_id", id).
		Msg("sending request")
	c.log.Trace().
		Str("signature", abbreviate(env.Signature)).
		Bool("data", env.HasData()).
		Msg("signed envelope")

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("request_id", id).Msg("request failed")
		return nil, &TransportError{Method: op.Method(), URL: c.base.String(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Method: op.Method(), URL: c.base.String(), Err: err}
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", id).
		Msg("response received")

	if rid := resp.Header.Get(RequestIDHeader); rid != "" {
		id = rid
	}

	return classify(resp.StatusCode, resp.Header, respBody, id)
}

// classify turns a status and body into a Response or a typed failure.
func classify(status int, header http.Header, body []byte, requestID string) (*Response, error) {
	if status != http.StatusOK {
		return nil, &ProtocolError{Status: status, Message: errorMessage(body)}
	}

	data, err := decodeObject(body)
	if err != nil {
		return nil, &DecodeError{Status: status, Body: body, Err: err}
	}

	return &Response{
		Status:    status,
		Header:    header,
		Body:      body,
		Data:      data,
		RequestID: requestID,
	}, nil
}

// abbreviate shortens a signature for trace output.
func abbreviate(sig string) string {
	const keep = 16
	if len(sig) <= keep {
		return sig
	}

	return sig[:keep] + "..."
}
