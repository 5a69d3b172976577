// Package result holds the current origin/translated pair shown by every UI
// surface, a short history of completed runs and the event fan-out that
// pushes changes to subscribers.
package result

import (
	"sync"
	"time"

	"github.com/light4/christina/internal/syncx"
)

// Placeholders shown before the first run completes.
const (
	PlaceholderOrigin     = "それにも、当然ながら関心があった。"
	PlaceholderTranslated = "对此，我当然很感兴趣。"
)

// Result is one origin/translated pair.
type Result struct {
	Origin     string    `json:"origin"`
	Translated string    `json:"translated"`
	RunID      string    `json:"run_id,omitempty"`
	Source     string    `json:"source,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type EventKind string

const (
	EventOrigin  EventKind = "origin"
	EventResult  EventKind = "result"
	EventError   EventKind = "error"
	EventSkipped EventKind = "skipped"
)

// Event is pushed to subscribers whenever a run publishes or fails.
type Event struct {
	Kind   EventKind `json:"type"`
	Result Result    `json:"result"`
	Error  string    `json:"error,omitempty"`
}

type state struct {
	current Result
	history []Result
}

// Store is safe for concurrent use. Writers are pipeline runs, which the
// manager serializes; readers are HTTP handlers, the tray and gRPC calls.
type Store struct {
	state      *syncx.RWGuard[state]
	maxHistory int
	eventBuf   int

	subMu sync.Mutex
	subs  map[chan Event]struct{}
}

// NewStore creates a store holding the placeholders.
func NewStore(maxHistory, eventBuffer int) *Store {
	return &Store{
		state: syncx.NewGuard(state{current: Result{
			Origin:     PlaceholderOrigin,
			Translated: PlaceholderTranslated,
			UpdatedAt:  time.Now(),
		}}),
		maxHistory: maxHistory,
		eventBuf:   eventBuffer,
		subs:       make(map[chan Event]struct{}),
	}
}

// Current returns a copy of the current pair.
func (s *Store) Current() Result {
	return s.state.Get().current
}

// SetOrigin publishes freshly recognized text. The translated slot keeps
// its previous value until SetTranslated.
func (s *Store) SetOrigin(runID, source, origin string) Result {
	var out Result
	s.state.Write(func(st *state) {
		st.current.Origin = origin
		st.current.RunID = runID
		st.current.Source = source
		st.current.UpdatedAt = time.Now()
		out = st.current
	})
	s.Emit(Event{Kind: EventOrigin, Result: out})
	return out
}

// SetTranslated publishes the translation for the current origin.
func (s *Store) SetTranslated(translated string) Result {
	var out Result
	s.state.Write(func(st *state) {
		st.current.Translated = translated
		st.current.UpdatedAt = time.Now()
		out = st.current
	})
	return out
}

// Set replaces both slots at once.
func (s *Store) Set(r Result) Result {
	r.UpdatedAt = time.Now()
	s.state.Write(func(st *state) { st.current = r })
	return r
}

// Commit appends the current pair to the history and emits it as a result.
func (s *Store) Commit() Result {
	var out Result
	s.state.Write(func(st *state) {
		out = st.current
		st.history = append(st.history, out)
		if len(st.history) > s.maxHistory {
			st.history = st.history[len(st.history)-s.maxHistory:]
		}
	})
	s.Emit(Event{Kind: EventResult, Result: out})
	return out
}

// History returns completed results, oldest first.
func (s *Store) History() []Result {
	return syncx.View(s.state, func(st *state) []Result {
		out := make([]Result, len(st.history))
		copy(out, st.history)
		return out
	})
}

// Subscribe returns a channel of future events and a function that
// unsubscribes and closes it.
func (s *Store) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, s.eventBuf)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

// Emit sends an event to every subscriber (non-blocking).
func (s *Store) Emit(event Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
