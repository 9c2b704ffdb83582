// Package storeclient is the HTTP client for the isle-server todos API.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/marcus/isle/internal/models"
)

// Sentinel errors for common HTTP error classes.
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)

// Client talks to an isle-server instance.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a new store client.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// List fetches all rows ordered by id ascending.
func (c *Client) List() ([]models.Todo, error) {
	var todos []models.Todo
	if err := c.do("GET", "/v1/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// Create inserts a new item and returns the stored row with its assigned id.
func (c *Client) Create(text string) (*models.Todo, error) {
	body := map[string]string{"text": text}
	var todo models.Todo
	if err := c.do("POST", "/v1/todos", body, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// SetCompleted updates only the completed flag of the row with the given id.
func (c *Client) SetCompleted(id int64, completed bool) (*models.Todo, error) {
	body := map[string]bool{"completed": completed}
	var todo models.Todo
	if err := c.do("PATCH", fmt.Sprintf("/v1/todos/%d", id), body, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Delete removes the row with the given id.
func (c *Client) Delete(id int64) error {
	return c.do("DELETE", fmt.Sprintf("/v1/todos/%d", id), nil, nil)
}

// ChangesTail fetches the most recent journal entries in ascending seq order.
func (c *Client) ChangesTail(limit int) ([]models.Change, error) {
	var changes []models.Change
	if err := c.do("GET", fmt.Sprintf("/v1/todos/changes?limit=%d", limit), nil, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// HealthCheck hits the /healthz endpoint to verify server reachability.
func (c *Client) HealthCheck() error {
	return c.do("GET", "/healthz", nil, nil)
}

// Subscription is a live handle on the server's change feed.
// C is closed when the subscription ends for any reason; after that,
// Err reports the terminating error, if any.
type Subscription struct {
	C <-chan models.Change

	conn      *websocket.Conn
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// Subscribe opens a websocket to the change-event stream. Events arrive on
// the returned subscription's channel until the context is canceled, Close
// is called, or the connection drops.
func (c *Client) Subscribe(ctx context.Context) (*Subscription, error) {
	wsURL := httpToWS(c.BaseURL) + "/v1/todos/stream"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("dial stream: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan models.Change)
	sub := &Subscription{C: ch, conn: conn, cancel: cancel}

	// Close the socket when the context ends so the blocked read returns.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(ch)
		defer cancel()
		for {
			var change models.Change
			if err := conn.ReadJSON(&change); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					sub.setErr(err)
					slog.Debug("stream read", "err", err)
				}
				return
			}
			if !models.IsValidChangeAction(change.Action) {
				slog.Debug("stream: dropping event with unknown action", "action", change.Action)
				continue
			}
			select {
			case ch <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub, nil
}

// Close releases the subscription. Safe to call multiple times and on every
// exit path; the event channel is closed once the reader unwinds.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.cancel()
	})
}

// Err returns the error that terminated the subscription, or nil for a clean close.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// httpToWS rewrites an http(s) base URL to its ws(s) equivalent.
func httpToWS(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

// apiError is the standard error body from the server.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

// do executes an HTTP request against the server, decoding a JSON response
// into result when non-nil.
func (c *Client) do(method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Code != "" {
			switch resp.StatusCode {
			case http.StatusNotFound:
				return fmt.Errorf("%w: %s", ErrNotFound, errResp.Error.Message)
			case http.StatusBadRequest:
				return fmt.Errorf("%w: %s", ErrBadRequest, errResp.Error.Message)
			default:
				return fmt.Errorf("%s: %s", errResp.Error.Code, errResp.Error.Message)
			}
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
