// Package recordservice is the HTTP client for the remote student store.
//
// The store is an external collaborator: any server with the students
// REST contract works, whether the bundled students-api or a hosted mock
// API. The client shapes outgoing records the way those stores expect and
// turns failures into the apperr taxonomy.
package recordservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/student-directory/internal/apperr"
	"github.com/aanand-mishra/student-directory/internal/types"
)

const (
	// MaxPayloadLen is the largest JSON body the client will send.
	MaxPayloadLen = 1_000_000
	// MaxAvatarURLLen is the longest avatar URL sent as-is; longer URLs
	// are swapped for a placeholder.
	MaxAvatarURLLen = 200
)

// Client talks to one students collection, e.g.
// http://localhost:8082/api/students.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithClock sets the time source used to seed placeholder avatars.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New returns a Client for the collection at baseURL. Requests carry no
// timeout of their own; they end when the caller's context does.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Payload is the body sent on create and update.
type Payload struct {
	Name   string    `json:"name"`
	Age    types.Age `json:"age"`
	Group  string    `json:"group"`
	Email  string    `json:"email"`
	Avatar string    `json:"avatar"`
}

// PrepareCreate shapes d for a create. Placeholders are seeded with the
// current time in milliseconds.
func (c *Client) PrepareCreate(d types.Draft) Payload {
	return shape(d, strconv.FormatInt(c.now().UnixMilli(), 10))
}

// PrepareUpdate shapes d for an update of id. Placeholders are seeded
// with the id, so the picture stays the same across edits.
func (c *Client) PrepareUpdate(id string, d types.Draft) Payload {
	return shape(d, id)
}

// shape builds the request body. Text fields go out as typed; only the
// avatar is normalised.
func shape(d types.Draft, seed string) Payload {
	avatar := strings.TrimSpace(d.Avatar)
	switch {
	case types.IsEmbedded(avatar):
	case avatar == "", len(avatar) > MaxAvatarURLLen:
		avatar = types.PlaceholderAvatar(seed)
	}
	return Payload{
		Name:   d.Name,
		Age:    types.Age(strings.TrimSpace(d.Age)),
		Group:  d.Group,
		Email:  d.Email,
		Avatar: avatar,
	}
}

// ListAll fetches every record.
func (c *Client) ListAll(ctx context.Context) ([]types.Student, error) {
	c.log.Debug("fetching students")

	var out []types.Student
	if err := c.do(ctx, http.MethodGet, c.baseURL, nil, &out); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	if out == nil {
		out = []types.Student{}
	}
	c.log.Info("students fetched", slog.Int("count", len(out)))
	return out, nil
}

// Get fetches one record by id.
func (c *Client) Get(ctx context.Context, id string) (types.Student, error) {
	var out types.Student
	if err := c.do(ctx, http.MethodGet, c.itemURL(id), nil, &out); err != nil {
		return types.Student{}, fmt.Errorf("get student %s: %w", id, err)
	}
	return out, nil
}

// Create sends a new record; the server assigns its id.
func (c *Client) Create(ctx context.Context, d types.Draft) (types.Student, error) {
	p := c.PrepareCreate(d)
	c.log.Info("creating student", payloadAttrs(p)...)

	var out types.Student
	if err := c.send(ctx, http.MethodPost, c.baseURL, p, &out); err != nil {
		c.log.Error("error creating student", slog.String("error", err.Error()))
		return types.Student{}, fmt.Errorf("create student: %w", err)
	}
	c.log.Info("student created", slog.String("id", out.ID))
	return out, nil
}

// Update replaces the record with the given id.
func (c *Client) Update(ctx context.Context, id string, d types.Draft) (types.Student, error) {
	p := c.PrepareUpdate(id, d)
	c.log.Info("updating student", append([]any{slog.String("id", id)}, payloadAttrs(p)...)...)

	var out types.Student
	if err := c.send(ctx, http.MethodPut, c.itemURL(id), p, &out); err != nil {
		c.log.Error("error updating student", slog.String("id", id), slog.String("error", err.Error()))
		return types.Student{}, fmt.Errorf("update student %s: %w", id, err)
	}
	if out.ID == "" {
		out.ID = id
	}
	return out, nil
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	c.log.Info("deleting student", slog.String("id", id))

	if err := c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil); err != nil {
		c.log.Error("error deleting student", slog.String("id", id), slog.String("error", err.Error()))
		return fmt.Errorf("delete student %s: %w", id, err)
	}
	return nil
}

func (c *Client) itemURL(id string) string {
	return c.baseURL + "/" + url.PathEscape(id)
}

// send encodes p, enforcing MaxPayloadLen before anything goes out.
func (c *Client) send(ctx context.Context, method, target string, p Payload, out any) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	c.log.Debug("request data size", slog.Int("characters", len(body)))
	if len(body) > MaxPayloadLen {
		return fmt.Errorf("request data too large (%d characters): %w", len(body), apperr.ErrPayloadTooLarge)
	}
	return c.do(ctx, method, target, body, out)
}

func (c *Client) do(ctx context.Context, method, target string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", apperr.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ServerError{Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	return nil
}

func statusError(status int, body []byte) error {
	msg := serverMessage(body)
	switch status {
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("request entity too large: %w", apperr.ErrPayloadTooLarge)
	case http.StatusUnsupportedMediaType:
		return fmt.Errorf("unsupported media type: %w", apperr.ErrUnsupportedMedia)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, &ServerError{Status: status, Message: msg})
	}
	return &ServerError{Status: status, Message: msg}
}

// serverMessage pulls the explanation out of an error body: its
// "message" or "error" field, else a short plain-text body.
func serverMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	text := strings.TrimSpace(string(body))
	if text != "" && len(text) <= 200 && !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "<") {
		return text
	}
	return ""
}

// payloadAttrs logs a payload without dumping embedded images.
func payloadAttrs(p Payload) []any {
	return []any{
		slog.String("name", p.Name),
		slog.String("group", p.Group),
		slog.String("avatar", summarize(p.Avatar)),
	}
}

func summarize(avatar string) string {
	if avatar == "" {
		return "none"
	}
	r := []rune(avatar)
	if len(r) <= 50 {
		return avatar
	}
	return fmt.Sprintf("%s... (%d chars)", string(r[:50]), len(r))
}
