// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcthuva007/Acadamist/models"
	"github.com/mcthuva007/Acadamist/store"
)

type State int

const (
	Connecting State = iota
	Connected
	Disconnected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// DefaultFallbackPath is used when Options.FallbackPath is empty.
const DefaultFallbackPath = "acadamist-local.json"

const requestTimeout = 10 * time.Second

var (
	ErrRequestFailed = errors.New("request failed")
	ErrClosed        = errors.New("agent closed")
)

type Options struct {
	// BaseURL is the server root, e.g. http://localhost:3000.
	BaseURL      string
	FallbackPath string

	HTTPClient *http.Client
	Dialer     *websocket.Dialer

	// Reconnect, when positive, is the delay between dial attempts after
	// the channel is lost or a Connect fails. Zero disables reconnecting.
	Reconnect time.Duration
}

// Agent mirrors the server state and serves reads and writes from the
// fallback file whenever the live channel is unavailable.
type Agent struct {
	base   *url.URL
	client *http.Client
	dialer *websocket.Dialer
	local  *store.Store

	reconnect time.Duration
	ctx       context.Context
	cancel    context.CancelFunc

	mu           sync.Mutex
	state        State
	localMode    bool
	view         models.Document
	conn         *websocket.Conn
	dialing      bool
	reconnecting bool
	closed       bool
	// calendarPushed is set once the current channel delivered a calendar;
	// the fetch made on connect must not overwrite it.
	calendarPushed bool
	onChange       func(models.Document)

	wg sync.WaitGroup
}

// New creates an agent that has not connected yet and loads the fallback
// file.
func New(ctx context.Context, opts Options) (*Agent, error) {
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", opts.BaseURL)
	}

	if opts.FallbackPath == "" {
		opts.FallbackPath = DefaultFallbackPath
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: requestTimeout}
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}

	local := store.New(store.NewFileBackend(opts.FallbackPath), nil)
	local.Load(ctx)

	agentCtx, cancel := context.WithCancel(context.Background())
	return &Agent{
		base:      base,
		client:    opts.HTTPClient,
		dialer:    opts.Dialer,
		local:     local,
		reconnect: opts.Reconnect,
		ctx:       agentCtx,
		cancel:    cancel,
		state:     Connecting,
		view:      models.NewDocument(),
	}, nil
}

// OnChange registers fn to be called with the current view after every
// change, local or pushed. fn runs on the agent's goroutines and must not
// block for long.
func (a *Agent) OnChange(fn func(doc models.Document)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Local reports whether reads and writes currently use the fallback file.
func (a *Agent) Local() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.usingLocalLocked()
}

func (a *Agent) usingLocalLocked() bool {
	return a.localMode || a.state != Connected
}

// Connect opens the live channel and fetches the calendar once. It returns
// an error only when the channel cannot be opened; the agent is then
// Disconnected and keeps working from the fallback file. With
// Options.Reconnect set it keeps dialing in the background until Close.
// Calling Connect while connected or while another dial is in flight
// returns nil without dialing again.
func (a *Agent) Connect(ctx context.Context) error {
	err := a.connect(ctx)
	if err != nil && !errors.Is(err, ErrClosed) {
		a.startReconnect()
	}
	return err
}

func (a *Agent) connect(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	if a.conn != nil || a.dialing {
		a.mu.Unlock()
		return nil
	}
	a.dialing = true
	a.state = Connecting
	a.mu.Unlock()

	conn, _, err := a.dialer.DialContext(ctx, a.socketURL(), nil)

	a.mu.Lock()
	a.dialing = false
	if err != nil {
		a.state = Disconnected
		a.mu.Unlock()
		slog.Warn("server not available, using local storage", "error", err)
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if a.closed {
		a.state = Disconnected
		a.mu.Unlock()
		conn.Close()
		return ErrClosed
	}
	a.conn = conn
	a.state = Connected
	a.calendarPushed = false
	a.wg.Add(1)
	a.mu.Unlock()
	slog.Info("connected to server", "url", a.base.String())

	go a.readLoop(conn)

	if err := a.fetchEvents(ctx); err != nil {
		a.mu.Lock()
		a.localMode = true
		a.mu.Unlock()
		slog.Warn("failed to fetch events, using local storage", "error", err)
	}
	a.notify()
	return nil
}

// startReconnect runs reconnectLoop unless it is disabled or already running.
func (a *Agent) startReconnect() {
	if a.reconnect <= 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.reconnecting {
		return
	}
	a.reconnecting = true
	a.wg.Add(1)
	go a.reconnectLoop()
}

func (a *Agent) reconnectLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.reconnect)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			a.mu.Lock()
			a.reconnecting = false
			a.mu.Unlock()
			return
		case <-ticker.C:
		}

		err := a.connect(a.ctx)

		a.mu.Lock()
		// A channel that dropped again before we got here was not handed
		// off to a new loop, so keep going.
		if errors.Is(err, ErrClosed) || a.closed || a.conn != nil || a.dialing {
			a.reconnecting = false
			a.mu.Unlock()
			return
		}
		a.mu.Unlock()
	}
}

// Close shuts the live channel, stops reconnecting and waits for the
// agent's goroutines. The agent cannot connect again afterwards; local
// reads and writes keep working.
func (a *Agent) Close() error {
	a.mu.Lock()
	a.closed = true
	conn := a.conn
	a.conn = nil
	a.state = Disconnected
	a.mu.Unlock()
	a.cancel()

	var err error
	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = conn.Close()
	}
	a.wg.Wait()
	a.client.CloseIdleConnections()
	return err
}

// Snapshot returns the document the agent currently shows.
func (a *Agent) Snapshot() models.Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewLocked()
}

func (a *Agent) Votes() models.Tally {
	return a.Snapshot().CrushVotes
}

func (a *Agent) Events() models.Calendar {
	return a.Snapshot().CalendarEvents
}

func (a *Agent) viewLocked() models.Document {
	if a.usingLocalLocked() {
		return a.local.Snapshot()
	}
	return a.view.Clone()
}

// Vote counts one vote for name.
func (a *Agent) Vote(ctx context.Context, name string) (models.Tally, error) {
	if a.Local() {
		votes, err := a.local.SubmitVote(name)
		if err != nil {
			return nil, err
		}
		a.notify()
		return votes, nil
	}

	var resp models.VoteResponse
	if err := a.do(ctx, http.MethodPost, "/api/vote", models.VoteRequest{Name: name}, &resp); err != nil {
		return nil, err
	}
	return resp.Votes, nil
}

// AddEvent appends event to the day identified by key.
func (a *Agent) AddEvent(ctx context.Context, key string, event models.Event) (models.Calendar, error) {
	if a.Local() {
		events, err := a.local.AddEvent(key, &event)
		if err != nil {
			return nil, err
		}
		a.notify()
		return events, nil
	}

	var resp models.EventsResponse
	req := models.AddEventRequest{Key: key, Event: &event}
	if err := a.do(ctx, http.MethodPost, "/api/events", req, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// DeleteEvent removes the event at index from the day identified by key.
func (a *Agent) DeleteEvent(ctx context.Context, key string, index int) (models.Calendar, error) {
	if a.Local() {
		events, err := a.local.DeleteEvent(key, strconv.Itoa(index))
		if err != nil {
			return nil, err
		}
		a.notify()
		return events, nil
	}

	var resp models.EventsResponse
	if err := a.do(ctx, http.MethodDelete, eventPath(key, index), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// UpdateEvent replaces the event at index. Offline the edit is applied to
// the fallback file. Online it is sent as PUT, which the server does not
// serve, so the call fails and nothing changes.
func (a *Agent) UpdateEvent(ctx context.Context, key string, index int, event models.Event) (models.Calendar, error) {
	if a.Local() {
		events, err := a.local.UpdateEvent(key, strconv.Itoa(index), &event)
		if err != nil {
			return nil, err
		}
		a.notify()
		return events, nil
	}

	var resp models.EventsResponse
	req := models.UpdateEventRequest{Event: &event}
	if err := a.do(ctx, http.MethodPut, eventPath(key, index), req, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (a *Agent) fetchEvents(ctx context.Context) error {
	var events models.Calendar
	if err := a.do(ctx, http.MethodGet, "/api/events", nil, &events); err != nil {
		return err
	}
	if events == nil {
		events = models.Calendar{}
	}

	a.mu.Lock()
	if !a.calendarPushed {
		a.view.CalendarEvents = events
	}
	a.mu.Unlock()
	return nil
}

// do sends body as JSON and decodes a 2xx response into out.
func (a *Agent) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr models.ErrorResponse
		json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
		if apiErr.Message != "" {
			return fmt.Errorf("%w: %s %s: %s: %s", ErrRequestFailed, method, path, resp.Status, apiErr.Message)
		}
		return fmt.Errorf("%w: %s %s: %s", ErrRequestFailed, method, path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (a *Agent) readLoop(conn *websocket.Conn) {
	defer a.wg.Done()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			a.mu.Lock()
			dropped := a.conn == conn
			if dropped {
				a.conn = nil
				a.state = Disconnected
				conn.Close()
			}
			a.mu.Unlock()
			slog.Info("disconnected from server, using local storage")
			a.notify()
			if dropped {
				a.startReconnect()
			}
			return
		}

		if err := a.apply(data); err != nil {
			slog.Warn("ignoring frame", "error", err)
			continue
		}
		a.notify()
	}
}

// apply replaces the part of the view a pushed frame carries.
func (a *Agent) apply(data []byte) error {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}

	switch f.Event {
	case models.EventVoteUpdate:
		votes := models.Tally{}
		if err := json.Unmarshal(f.Data, &votes); err != nil {
			return fmt.Errorf("failed to decode %s: %w", f.Event, err)
		}
		a.mu.Lock()
		a.view.CrushVotes = votes
		a.mu.Unlock()
	case models.EventCalendarUpdate:
		events := models.Calendar{}
		if err := json.Unmarshal(f.Data, &events); err != nil {
			return fmt.Errorf("failed to decode %s: %w", f.Event, err)
		}
		a.mu.Lock()
		a.view.CalendarEvents = events
		a.calendarPushed = true
		a.mu.Unlock()
	default:
		return fmt.Errorf("unknown event %q", f.Event)
	}
	return nil
}

func (a *Agent) notify() {
	a.mu.Lock()
	fn := a.onChange
	var doc models.Document
	if fn != nil {
		doc = a.viewLocked()
	}
	a.mu.Unlock()

	if fn != nil {
		fn(doc)
	}
}

func (a *Agent) socketURL() string {
	u := *a.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += "/socket"
	return u.String()
}

func eventPath(key string, index int) string {
	return "/api/events/" + url.PathEscape(key) + "/" + strconv.Itoa(index)
}
