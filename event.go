package syncsim

import (
	"fmt"
	"time"
)

// Role is the part an actor plays in a simulation.
type Role uint8

const (
	RoleDriver Role = iota
	RoleProducer
	RoleConsumer
	RoleReader
	RoleWriter
)

func (r Role) String() string {
	switch r {
	case RoleDriver:
		return "Driver"
	case RoleProducer:
		return "Producer"
	case RoleConsumer:
		return "Consumer"
	case RoleReader:
		return "Reader"
	case RoleWriter:
		return "Writer"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// Actor identifies one simulated process.
type Actor struct {
	Role Role
	ID   int
}

func (a Actor) String() string {
	return fmt.Sprintf("%s %d", a.Role, a.ID)
}

// EventKind enumerates the state transitions actors report.
type EventKind uint8

const (
	KindProducerWaiting EventKind = iota + 1
	KindProduced
	KindConsumerWaiting
	KindConsumed

	KindReaderWaitingWriteLock
	KindReaderWaitingPriority
	KindReaderLocksResource
	KindReading
	KindReaderFinished
	KindReaderUnlocksResource

	KindWriterLocksPriority
	KindWriterUnlocksPriority
	KindWriterLocksResource
	KindWriting
	KindWriterFinished
	KindWriterUnlocksResource
	KindWriterWaiting

	KindTimeUp
	KindSimulationOver
)

var kindNames = map[EventKind]string{
	KindProducerWaiting:        "producer_waiting",
	KindProduced:               "produced",
	KindConsumerWaiting:        "consumer_waiting",
	KindConsumed:               "consumed",
	KindReaderWaitingWriteLock: "reader_waiting_write_lock",
	KindReaderWaitingPriority:  "reader_waiting_priority",
	KindReaderLocksResource:    "reader_locks_resource",
	KindReading:                "reading",
	KindReaderFinished:         "reader_finished",
	KindReaderUnlocksResource:  "reader_unlocks_resource",
	KindWriterLocksPriority:    "writer_locks_priority",
	KindWriterUnlocksPriority:  "writer_unlocks_priority",
	KindWriterLocksResource:    "writer_locks_resource",
	KindWriting:                "writing",
	KindWriterFinished:         "writer_finished",
	KindWriterUnlocksResource:  "writer_unlocks_resource",
	KindWriterWaiting:          "writer_waiting",
	KindTimeUp:                 "time_up",
	KindSimulationOver:         "simulation_over",
}

func (k EventKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is one reported transition.
//
// Slot is meaningful for bounded-buffer events. Readers carries the reader
// count after KindReading and KindReaderFinished. Name is the simulation
// name on driver events.
type Event struct {
	Actor   Actor
	Kind    EventKind
	Slot    int
	Readers int
	Name    string
	At      time.Time
}

// String renders the human-readable progress line.
func (e Event) String() string {
	a := e.Actor
	switch e.Kind {
	case KindProducerWaiting:
		return fmt.Sprintf("%s waiting, buffer of position %d is full...", a, e.Slot)
	case KindProduced:
		return fmt.Sprintf("%s produced in position %d", a, e.Slot)
	case KindConsumerWaiting:
		return fmt.Sprintf("%s waiting, buffer of position %d is empty...", a, e.Slot)
	case KindConsumed:
		return fmt.Sprintf("%s consumed in position %d", a, e.Slot)

	case KindReaderWaitingWriteLock:
		return fmt.Sprintf("Reader process: Reader process %d waiting, write lock is active...", a.ID)
	case KindReaderWaitingPriority:
		return fmt.Sprintf("Reader process: Reader process %d waiting, write priority lock is active...", a.ID)
	case KindReaderLocksResource:
		return fmt.Sprintf("Reader process: Reader process %d locks the resource.", a.ID)
	case KindReading:
		return fmt.Sprintf("Reader process: Reader process %d is reading... Currently %d readers are accessing the resource.", a.ID, e.Readers)
	case KindReaderFinished:
		return fmt.Sprintf("Reader process: Reader process %d finished reading.", a.ID)
	case KindReaderUnlocksResource:
		return fmt.Sprintf("Reader process: Reader process %d unlocks the resource.", a.ID)

	case KindWriterLocksPriority:
		return fmt.Sprintf("Writer process: Writer process %d locks the priority lock.", a.ID)
	case KindWriterUnlocksPriority:
		return fmt.Sprintf("Writer process: Writer process %d unlocks the priority lock.", a.ID)
	case KindWriterLocksResource:
		return fmt.Sprintf("Writer process: Writer process %d locks the resource.", a.ID)
	case KindWriting:
		return fmt.Sprintf("Writer process: Writer process %d is writing...", a.ID)
	case KindWriterFinished:
		return fmt.Sprintf("Writer process: Writer process %d finished writing.", a.ID)
	case KindWriterUnlocksResource:
		return fmt.Sprintf("Writer process: Writer process %d unlocks the resource.", a.ID)
	case KindWriterWaiting:
		return fmt.Sprintf("Writer process: Writer process %d waiting, read locks or another write lock are active...", a.ID)

	case KindTimeUp:
		return "Time is up! Stopping all processes."
	case KindSimulationOver:
		return fmt.Sprintf("Simulation of %s is over.", e.Name)
	default:
		return fmt.Sprintf("%s: %s", a, e.Kind)
	}
}
