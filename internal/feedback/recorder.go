package feedback

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventKind identifies the feedback transition that produced an event.
type EventKind string

const (
	EventLiked     EventKind = "liked"
	EventUnliked   EventKind = "unliked"
	EventDisagreed EventKind = "disagreed"
)

// Event is one feedback signal emitted to the analytics collaborator.
// Exactly one event is emitted per agreement transition.
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	ImageRef  string    `json:"image_ref"`
	SiteName  string    `json:"site_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Recorder receives feedback events. Implementations must not block the
// caller for a visible duration.
type Recorder interface {
	Record(Event)
}

// NoopRecorder discards all events. Used when no analytics sink is configured.
type NoopRecorder struct{}

// Record implements Recorder.
func (NoopRecorder) Record(Event) {}

// MemoryRecorder collects events in memory. Used in tests and for local
// inspection of the feedback stream.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

// Record implements Recorder.
func (m *MemoryRecorder) Record(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

// Events returns a copy of all recorded events in emission order.
func (m *MemoryRecorder) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// LogRecorder emits events to a structured logger. The default sink for
// the CLI and web surfaces, where there is no analytics backend.
type LogRecorder struct {
	logger *zap.Logger
}

// NewLogRecorder creates a recorder that logs each event.
func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

// Record implements Recorder.
func (l *LogRecorder) Record(e Event) {
	l.logger.Info("feedback event",
		zap.String("id", e.ID),
		zap.String("kind", string(e.Kind)),
		zap.String("image_ref", e.ImageRef),
		zap.String("site_name", e.SiteName),
	)
}

// newEvent builds an event with a fresh UUID and timestamp.
func newEvent(kind EventKind, imageRef, siteName string) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		ImageRef:  imageRef,
		SiteName:  siteName,
		CreatedAt: time.Now(),
	}
}
