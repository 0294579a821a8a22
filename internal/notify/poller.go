// Package notify keeps the client's notification snapshot fresh by
// polling the backend on a fixed interval. Polling is the sole source of
// freshness; there is no push channel. The poller is a cancellable task
// with an explicit lifecycle so it never outlives the program the way an
// untracked timer would.
package notify

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/adchat/internal/api"
	"github.com/nhle/adchat/internal/model"
)

// State represents the current state of the polling loop.
type State int

const (
	Idle State = iota
	Running
	Error
)

// Status holds the poller state and the time of the last successful fetch.
type Status struct {
	State     State
	LastFetch time.Time
	Err       error
}

// SnapshotMsg is a tea.Msg carrying a fresh notification snapshot. Each
// snapshot replaces the previous one wholesale; the client never mutates
// its local copy.
type SnapshotMsg struct {
	UnreadCount   int
	Notifications []model.Notification
	Err           error
}

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 15 * time.Second

// Poller periodically fetches the notification snapshot from the backend.
type Poller struct {
	client   *api.Client
	interval time.Duration

	status    Status
	resultCh  chan SnapshotMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a Poller that refreshes every interval. Intervals at or
// below zero fall back to 30 seconds.
func New(client *api.Client, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		client:    client,
		interval:  interval,
		resultCh:  make(chan SnapshotMsg, 16),
		triggerCh: make(chan struct{}, 16),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a subscription command
// that delivers SnapshotMsg values to the Bubble Tea runtime. The first
// fetch happens immediately. Calling Start on a running poller is a no-op.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine. The poller cannot be restarted.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate fetch outside the regular interval,
// used after mark-read calls to re-sync with the server-authoritative
// state.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// Channel full; a fetch is already queued.
	}
}

// GetStatus returns the current poller status.
func (p *Poller) GetStatus() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// loop runs the polling loop until Stop is called.
func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Fetch once at startup.
	p.fetch()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.fetch()
		case <-p.triggerCh:
			p.fetch()
		}
	}
}

// fetch performs a single snapshot fetch and sends the result on the
// result channel.
func (p *Poller) fetch() {
	p.setStatus(Running, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	snapshot, err := p.client.GetNotifications(ctx)
	if err != nil {
		p.setStatus(Error, err)
		p.sendResult(SnapshotMsg{Err: err})
		return
	}

	p.setStatus(Idle, nil)
	p.sendResult(SnapshotMsg{
		UnreadCount:   snapshot.UnreadCount,
		Notifications: snapshot.Notifications,
	})
}

// setStatus updates the poller status.
func (p *Poller) setStatus(state State, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Err = err
	if state == Idle && err == nil {
		p.status.LastFetch = time.Now()
	}
}

// sendResult sends a SnapshotMsg on the result channel without blocking.
func (p *Poller) sendResult(msg SnapshotMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller.
	}
}

// waitForResult returns a tea.Cmd that waits for the next snapshot from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next snapshot.
// Call this after processing a SnapshotMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
