package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindguard/backend/internal/analysis/reply"
	"github.com/mindguard/backend/internal/model/chat"
	"github.com/mindguard/backend/internal/service/classifier"
)

var (
	ErrEmptyMessage    = errors.New("message text is empty")
	ErrReplyInProgress = errors.New("a reply is already in progress")
)

// EventType distinguishes feed events.
type EventType string

const (
	EventMessage EventType = "message"
	EventTyping  EventType = "typing"
)

// Event notifies subscribers of an appended message or a typing-flag change.
type Event struct {
	Type    EventType
	Message chat.Message
	Typing  bool
}

// Store holds one conversation: an append-only committed list, at most one
// pending optimistic entry, and the responding flag. At most one
// classification round-trip is in flight at a time.
type Store struct {
	mu         sync.RWMutex
	committed  []chat.Message
	pending    *chat.Message
	responding bool

	classifier classifier.Client

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewStore seeds a conversation with the assistant greeting.
func NewStore(client classifier.Client) *Store {
	s := &Store{
		classifier: client,
		subs:       make(map[int]chan Event),
	}
	s.committed = []chat.Message{{
		ID:        uuid.NewString(),
		Role:      chat.RoleAssistant,
		Content:   reply.Greeting,
		CreatedAt: time.Now().UTC(),
	}}
	return s
}

// Snapshot returns the render projection: committed messages merged with the
// pending overlay, plus the typing flag. The returned slice is a copy.
func (s *Store) Snapshot() chat.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	merged := make([]chat.Message, 0, len(s.committed)+1)
	merged = append(merged, s.committed...)
	if s.pending != nil {
		merged = append(merged, *s.pending)
	}
	return chat.Snapshot{Messages: merged, IsResponding: s.responding}
}

// Subscribe registers a feed channel. The cancel func must be called when
// the subscriber goes away.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 32)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Submit runs one Idle → Awaiting-Reply → Idle cycle: trim, stage the user
// message optimistically, commit it, call the classifier exactly once, and
// append either the formatted verdict or the fixed apology. The responding
// flag is cleared on every path.
func (s *Store) Submit(ctx context.Context, raw string) (chat.Message, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	userMsg := chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleUser,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	if s.responding {
		s.mu.Unlock()
		return chat.Message{}, ErrReplyInProgress
	}
	s.responding = true
	s.pending = &userMsg
	s.mu.Unlock()

	s.publish(Event{Type: EventTyping, Typing: true})
	s.publish(Event{Type: EventMessage, Message: userMsg})

	// Reconcile the overlay into the committed list before the round-trip.
	s.mu.Lock()
	s.committed = append(s.committed, userMsg)
	s.pending = nil
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.responding = false
		s.mu.Unlock()
		s.publish(Event{Type: EventTyping, Typing: false})
	}()

	content := reply.Fallback
	prediction, err := s.classifier.Classify(ctx, text)
	if err != nil {
		log.Printf("[conversation] classification failed: %v", err)
	} else {
		content = reply.FromPrediction(prediction.Label, prediction.Probability)
	}

	assistant := chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleAssistant,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.committed = append(s.committed, assistant)
	s.mu.Unlock()

	s.publish(Event{Type: EventMessage, Message: assistant})
	return assistant, nil
}

// publish fans an event out to subscribers. Slow subscribers drop events
// rather than blocking the submit path.
func (s *Store) publish(event Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
