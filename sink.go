package syncsim

import (
	"io"
	"sync"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// EventSink receives the progress events of every actor.
//
// Append must be safe for concurrent use. Events of one actor arrive in the
// order that actor emitted them; no order across actors is implied.
type EventSink interface {
	Append(ev Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ev Event)

// Append implements EventSink.
func (f SinkFunc) Append(ev Event) { f(ev) }

// Discard drops every event.
var Discard EventSink = discard{}

type discard struct{}

func (discard) Append(Event) {}

// Tee fans each event out to all non-nil sinks, in order.
func Tee(sinks ...EventSink) EventSink {
	out := make([]EventSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return Discard
	case 1:
		return out[0]
	}
	return SinkFunc(func(ev Event) {
		for _, s := range out {
			s.Append(ev)
		}
	})
}

// MemorySink records events in arrival order.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// Append implements EventSink.
func (m *MemorySink) Append(ev Event) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (m *MemorySink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Lines renders the recorded events.
func (m *MemorySink) Lines() []string {
	evs := m.Events()
	lines := make([]string, len(evs))
	for i, ev := range evs {
		lines[i] = ev.String()
	}
	return lines
}

// Len returns the number of recorded events.
func (m *MemorySink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// WriterSink writes one line per event to an io.Writer.
type WriterSink struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

// NewWriterSink returns a sink that writes to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Append implements EventSink. Write errors are logged and dropped; a
// broken output must not stall the actors.
func (s *WriterSink) Append(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf[:0], ev.String()...)
	s.buf = append(s.buf, '\n')
	if _, err := s.w.Write(s.buf); err != nil {
		log.Warn("failed to write event", zap.Stringer("actor", ev.Actor), zap.Error(err))
	}
}

// LogSink reports events through a zap logger.
type LogSink struct {
	lg *zap.Logger
}

// NewLogSink returns a sink logging to lg, or to the global pingcap logger
// if lg is nil.
func NewLogSink(lg *zap.Logger) *LogSink {
	if lg == nil {
		lg = log.L()
	}
	return &LogSink{lg: lg}
}

// Append implements EventSink.
func (s *LogSink) Append(ev Event) {
	fields := []zap.Field{
		zap.Stringer("actor", ev.Actor),
		zap.Stringer("kind", ev.Kind),
	}
	switch ev.Actor.Role {
	case RoleProducer, RoleConsumer:
		fields = append(fields, zap.Int("slot", ev.Slot))
	case RoleReader:
		if ev.Kind == KindReading {
			fields = append(fields, zap.Int("readers", ev.Readers))
		}
	}
	s.lg.Info(ev.String(), fields...)
}
