// Package assembler merges a stream of speech-recognition events into an
// ordered transcript of finalized turns. Fragments for one utterance arrive
// cumulatively, so a later fragment for the same speaker supersedes the
// provisional turn instead of appending to it.
package assembler

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rammohanpatel/AI-Interviewer/internal/models"
)

// EventType discriminates the transcript ingestion events.
type EventType string

const (
	EventFragment    EventType = "fragment"
	EventSpeechStart EventType = "speech-start"
	EventSpeechEnd   EventType = "speech-end"
	EventCallEnd     EventType = "call-end"
)

// Event is one speaker action arriving from the speech transport.
type Event struct {
	Type    EventType `json:"type"`
	Role    string    `json:"role,omitempty"`
	Content string    `json:"content,omitempty"`
}

// DefaultQuietInterval is how long the assembler waits without fragments
// before finalizing the provisional turn. Covers transports that never send
// an explicit speech-end.
const DefaultQuietInterval = 2 * time.Second

// Assembler holds the per-session transcript state. Transport callbacks for a
// session are serialized, but the quiet timer fires on its own goroutine, so
// all state is guarded by one mutex.
type Assembler struct {
	mu            sync.Mutex
	provisional   *models.Turn
	lastFinalized string
	finalized     []models.Turn
	ended         bool

	quiet    time.Duration
	timer    *time.Timer
	timerGen uint64
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithQuietInterval overrides the finalize timeout.
func WithQuietInterval(d time.Duration) Option {
	return func(a *Assembler) { a.quiet = d }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

func New(logger *zap.Logger, opts ...Option) *Assembler {
	a := &Assembler{
		quiet:  DefaultQuietInterval,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HandleEvent dispatches one transport event. Malformed events are dropped,
// never fatal: the assembler degrades to "fragment ignored".
func (a *Assembler) HandleEvent(event Event) {
	switch event.Type {
	case EventFragment:
		role, ok := models.ParseRole(event.Role)
		if !ok {
			a.logger.Debug("dropping fragment with unknown role", zap.String("role", event.Role))
			return
		}
		a.Fragment(role, event.Content)
	case EventSpeechStart:
		// informational only, the next fragment opens the turn
	case EventSpeechEnd:
		a.SpeechEnd()
	case EventCallEnd:
		a.End()
	default:
		a.logger.Debug("dropping unknown event", zap.String("type", string(event.Type)))
	}
}

// Fragment applies one speech fragment with the given role and cumulative
// content.
func (a *Assembler) Fragment(role models.Role, content string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ended {
		return
	}
	// duplicate/empty guard
	if content == "" || content == a.lastFinalized {
		return
	}

	switch {
	case a.provisional == nil:
		a.provisional = &models.Turn{Role: role, Content: content}
	case a.provisional.Role != role:
		a.finalizeLocked()
		a.provisional = &models.Turn{Role: role, Content: content}
	default:
		// same speaker, cumulative fragment supersedes
		a.provisional.Content = content
	}

	a.rescheduleLocked()
}

// SpeechEnd finalizes the provisional turn immediately, independent of the
// quiet timeout.
func (a *Assembler) SpeechEnd() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ended {
		return
	}
	a.stopTimerLocked()
	a.finalizeLocked()
}

// End finalizes any remaining provisional turn and returns the full
// transcript. The assembler accepts no further events afterwards. An empty
// result means "no transcript"; downstream must refuse to score it.
func (a *Assembler) End() []models.Turn {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.ended {
		a.stopTimerLocked()
		a.finalizeLocked()
		a.ended = true
	}

	out := make([]models.Turn, len(a.finalized))
	copy(out, a.finalized)
	return out
}

// Turns returns a snapshot of the turns finalized so far.
func (a *Assembler) Turns() []models.Turn {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.Turn, len(a.finalized))
	copy(out, a.finalized)
	return out
}

func (a *Assembler) finalizeLocked() {
	if a.provisional == nil {
		return
	}
	if a.provisional.Content != a.lastFinalized {
		a.provisional.Timestamp = a.now().UTC().Format(time.RFC3339)
		a.finalized = append(a.finalized, *a.provisional)
		a.lastFinalized = a.provisional.Content
	}
	a.provisional = nil
}

// rescheduleLocked cancels and re-arms the quiet timer atomically with the
// state change that triggered it. The generation counter invalidates a
// callback that already fired but has not taken the mutex yet: timer.Stop
// returns false for it, and without the check it would finalize the turn the
// caller just superseded.
func (a *Assembler) rescheduleLocked() {
	a.stopTimerLocked()
	gen := a.timerGen
	a.timer = time.AfterFunc(a.quiet, func() { a.onQuiet(gen) })
}

func (a *Assembler) stopTimerLocked() {
	a.timerGen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Assembler) onQuiet(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ended || gen != a.timerGen {
		return
	}
	a.timer = nil
	a.finalizeLocked()
}
