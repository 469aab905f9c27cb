// Package remote is the HTTP backend of the slot store.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/javiermolinar/hourly/internal/api"
	"github.com/javiermolinar/hourly/internal/slot"
)

// DefaultTimeout bounds every request when no client is supplied.
const DefaultTimeout = 5 * time.Second

// ErrNoBaseURL is returned when the client was built without a base URL.
var ErrNoBaseURL = errors.New("remote: base url is empty")

// StatusError is a non-2xx response without a more specific meaning.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Msg)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

// Client talks to the slot-time and appointments endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: DefaultHTTPClient(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultHTTPClient returns an http.Client with DefaultTimeout.
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// ListSlots fetches every slot of a consultant.
func (c *Client) ListSlots(ctx context.Context, consultantID string) ([]slot.Slot, error) {
	var body []api.Slot
	q := url.Values{"consultant_id": {consultantID}}
	if err := c.do(ctx, http.MethodGet, "/slot-time", q, nil, &body); err != nil {
		return nil, err
	}

	out := make([]slot.Slot, 0, len(body))
	for _, s := range body {
		out = append(out, s.ToSlot())
	}
	return out, nil
}

// CreateSlots posts the whole batch in one request.
// Any non-2xx response means nothing was created.
func (c *Client) CreateSlots(ctx context.Context, consultantID string, drafts []slot.Draft) (int, error) {
	req := api.NewCreateSlotsRequest(consultantID, drafts)

	var body api.CreateSlotsResponse
	if err := c.do(ctx, http.MethodPost, "/slot-time", nil, req, &body); err != nil {
		if isStatus(err, http.StatusConflict) {
			return 0, fmt.Errorf("%w: %v", slot.ErrDuplicateSlot, err)
		}
		return 0, err
	}
	if body.Created == 0 && len(body.Slots) > 0 {
		return len(body.Slots), nil
	}
	if body.Created == 0 {
		return len(drafts), nil
	}
	return body.Created, nil
}

// DeleteSlot deletes one slot. 409 maps to slot.ErrSlotBooked and 404 to
// slot.ErrSlotNotFound.
func (c *Client) DeleteSlot(ctx context.Context, id slot.ID) error {
	err := c.do(ctx, http.MethodDelete, "/slot-time/"+url.PathEscape(string(id)), nil, nil, nil)
	switch {
	case isStatus(err, http.StatusConflict):
		return fmt.Errorf("%w: %v", slot.ErrSlotBooked, err)
	case isStatus(err, http.StatusNotFound):
		return fmt.Errorf("%w: %v", slot.ErrSlotNotFound, err)
	default:
		return err
	}
}

// ListAppointments fetches the appointments of a consultant.
func (c *Client) ListAppointments(ctx context.Context, consultantID string) ([]slot.Appointment, error) {
	var body []api.Appointment
	q := url.Values{"consultant_id": {consultantID}}
	if err := c.do(ctx, http.MethodGet, "/appointments", q, nil, &body); err != nil {
		return nil, err
	}

	out := make([]slot.Appointment, 0, len(body))
	for _, a := range body {
		out = append(out, a.ToAppointment())
	}
	return out, nil
}

// Health checks that the backend answers.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c.baseURL == "" {
		return ErrNoBaseURL
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Msg: errorMessage(resp.Body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

func errorMessage(r io.Reader) string {
	var body api.ErrorResponse
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}

func isStatus(err error, code int) bool {
	var serr *StatusError
	return errors.As(err, &serr) && serr.Code == code
}
