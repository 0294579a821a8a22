// Package session implements the chat submission state machine shared by
// the main chat view and the floating widget. Every submission receives a
// monotonic sequence number; outcomes are applied to the transcript
// strictly in submission order, with out-of-order arrivals buffered until
// their turn. This keeps the visible transcript stable even when the
// backend answers slow requests after fast ones.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/adchat/internal/model"
)

// Fixed user-facing strings, matching the admissions site's tone.
const (
	// ApologyText replaces the bot reply after a transport or parse failure.
	ApologyText = "Xin lỗi, đã có lỗi xảy ra. Vui lòng thử lại sau."

	// NoResponseText replaces the bot reply when the backend answered
	// without a response field.
	NoResponseText = "Xin lỗi, tôi không thể trả lời câu hỏi này lúc này."
)

// Outcome is the terminal result of a single submission.
type Outcome struct {
	// Reply is the backend's answer; empty means the response field
	// was absent and the fallback text is used.
	Reply string

	// Sources carries any retrieved-document citations.
	Sources []model.SourceCitation

	// Failed marks a transport or parse failure. Failures are swallowed
	// into a fixed apology message, never surfaced structurally.
	Failed bool
}

// Applied is a bot message appended to the transcript when an outcome
// was applied, together with its citations for rendering.
type Applied struct {
	Message model.ChatMessage
	Sources []model.SourceCitation
}

// Session holds the transcript and request-ordering state for one
// conversation. It is not safe for concurrent use; in the Bubble Tea
// runtime all calls happen on the update loop.
type Session struct {
	transcript []model.ChatMessage
	limit      int

	nextSeq   uint64
	nextApply uint64
	pending   int
	buffered  map[uint64]Outcome

	now func() time.Time
}

// New creates an empty session. limit caps the in-memory transcript;
// oldest entries are evicted past it. A non-positive limit disables
// eviction.
func New(limit int) *Session {
	return &Session{
		limit:     limit,
		nextSeq:   1,
		nextApply: 1,
		buffered:  make(map[uint64]Outcome),
		now:       time.Now,
	}
}

// Submit registers a user submission. Whitespace-only text is silently
// dropped and no sequence number is consumed. On success the trimmed user
// message has already been appended to the transcript (optimistic, no
// rollback) and the returned sequence number must be passed to Apply once
// the request settles.
func (s *Session) Submit(text string) (seq uint64, msg model.ChatMessage, ok bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, model.ChatMessage{}, false
	}

	seq = s.nextSeq
	s.nextSeq++
	s.pending++

	msg = model.ChatMessage{
		ID:        uuid.NewString(),
		Text:      trimmed,
		Sender:    model.SenderUser,
		Timestamp: s.now(),
	}
	s.append(msg)

	return seq, msg, true
}

// Apply records the outcome for a submission and drains every outcome
// that is now ready in submission order. The returned slice holds the bot
// messages appended to the transcript, oldest first; it is empty when the
// outcome arrived ahead of an earlier still-pending submission.
func (s *Session) Apply(seq uint64, out Outcome) []Applied {
	if seq < s.nextApply || seq >= s.nextSeq {
		return nil
	}
	if _, dup := s.buffered[seq]; dup {
		return nil
	}

	s.buffered[seq] = out
	s.pending--

	var applied []Applied
	for {
		next, ok := s.buffered[s.nextApply]
		if !ok {
			break
		}
		delete(s.buffered, s.nextApply)
		s.nextApply++

		msg := model.ChatMessage{
			ID:        uuid.NewString(),
			Text:      botText(next),
			Sender:    model.SenderBot,
			Timestamp: s.now(),
		}
		s.append(msg)

		sources := next.Sources
		if next.Failed {
			sources = nil
		}
		applied = append(applied, Applied{Message: msg, Sources: sources})
	}

	return applied
}

// botText selects the transcript text for an outcome.
func botText(out Outcome) string {
	if out.Failed {
		return ApologyText
	}
	if out.Reply == "" {
		return NoResponseText
	}
	return out.Reply
}

// append adds a message to the transcript, evicting the oldest entries
// past the configured limit.
func (s *Session) append(msg model.ChatMessage) {
	s.transcript = append(s.transcript, msg)
	if s.limit > 0 && len(s.transcript) > s.limit {
		overflow := len(s.transcript) - s.limit
		s.transcript = append(s.transcript[:0:0], s.transcript[overflow:]...)
	}
}

// Typing reports whether a typing indicator should be shown: true while
// any submission is awaiting its outcome. The indicator is derived from
// the pending count, so it can never be duplicated or leak.
func (s *Session) Typing() bool {
	return s.pending > 0
}

// Pending returns the number of submissions awaiting an outcome.
func (s *Session) Pending() int {
	return s.pending
}

// Messages returns the transcript in display order. The returned slice
// is owned by the session and must not be mutated.
func (s *Session) Messages() []model.ChatMessage {
	return s.transcript
}

// SetNow overrides the clock used for message timestamps, for tests.
func (s *Session) SetNow(now func() time.Time) {
	s.now = now
}

// Reset clears the transcript and drops every in-flight submission.
// Sequence numbers stay monotonic across resets so an outcome that
// settles late cannot collide with a post-reset submission.
func (s *Session) Reset() {
	s.transcript = nil
	s.nextApply = s.nextSeq
	s.pending = 0
	s.buffered = make(map[uint64]Outcome)
}
