package syncsim

import (
	"sync"
	"time"
)

// Fixed cast of the reader-writer scenario.
const (
	DefaultReaders = 5
	DefaultWriters = 2
)

// SharedResource is the resource readers and writers compete for.
//
// primary guards the resource. priority never guards data: a writer holds
// its write side to announce intent, and readers only look at it. serial
// orders reader lock/unlock announcements so that "first reader locks" and
// "last reader unlocks" are reported without interleaving.
//
// Lock order: priority before primary. Readers never take priority.
type SharedResource struct {
	primary  RWLock
	priority RWLock
	serial   sync.Mutex
}

// NewSharedResource returns an unlocked resource.
func NewSharedResource() *SharedResource {
	return &SharedResource{}
}

// WriteLocked reports whether a writer holds the resource.
func (r *SharedResource) WriteLocked() bool {
	return r.primary.IsWriteLocked()
}

// PriorityLocked reports whether a writer has announced write intent.
func (r *SharedResource) PriorityLocked() bool {
	return r.priority.IsWriteLocked()
}

// Readers reports how many readers hold the resource.
func (r *SharedResource) Readers() int {
	return r.primary.Readers()
}

// Reader repeatedly reads the SharedResource, deferring to writers.
type Reader struct {
	actorBase
	res   *SharedResource
	start time.Duration
}

// Run loops until stop opens. Every lock it takes is released before it
// returns.
func (r *Reader) Run(stop *Latch) error {
	if err := r.cfg.sleep(stop, r.start); err != nil {
		return err
	}
	for !stop.IsOpen() {
		if err := r.cycle(stop); err != nil {
			return err
		}
	}
	return ErrStopped
}

func (r *Reader) cycle(stop *Latch) error {
	t := r.cfg.timings
	// Advisory checks: the lock state may change right after we look. The
	// RWLock itself keeps readers and writers apart; these checks only make
	// room for a writer that has signaled intent.
	switch {
	case r.res.primary.IsWriteLocked():
		r.emitKind(KindReaderWaitingWriteLock)
		return r.cfg.sleep(stop, t.Backoff)
	case r.res.priority.IsWriteLocked():
		r.emitKind(KindReaderWaitingPriority)
		return r.cfg.sleep(stop, t.Backoff)
	}

	if err := r.acquire(stop); err != nil {
		return err
	}
	err := r.cfg.sleep(stop, t.Read)
	r.release()
	if err != nil {
		return err
	}
	return r.cfg.sleep(stop, t.ReadPause)
}

func (r *Reader) acquire(stop *Latch) error {
	r.res.serial.Lock()
	defer r.res.serial.Unlock()
	if err := r.res.primary.RLockUntil(stop); err != nil {
		return err
	}
	// All reader lock transitions happen under serial, so the count is exact.
	n := r.res.primary.Readers()
	if n == 1 {
		r.emitKind(KindReaderLocksResource)
	}
	r.emit(Event{Kind: KindReading, Readers: n})
	return nil
}

func (r *Reader) release() {
	r.res.serial.Lock()
	defer r.res.serial.Unlock()
	r.emit(Event{Kind: KindReaderFinished, Readers: r.res.primary.Readers() - 1})
	if left := r.res.primary.RUnlock(); left == 0 {
		r.emit(Event{Kind: KindReaderUnlocksResource})
	}
}

// Writer repeatedly writes the SharedResource. It announces intent by
// holding the priority lock until it gets the resource.
type Writer struct {
	actorBase
	res   *SharedResource
	start time.Duration

	// Only touched by the writer's own goroutine.
	hasPriorityLock bool
}

// Run loops until stop opens. Both the priority lock and the resource
// lock are released on every exit path.
func (w *Writer) Run(stop *Latch) error {
	defer func() {
		if w.hasPriorityLock {
			w.releasePriority()
		}
	}()
	if err := w.cfg.sleep(stop, w.start); err != nil {
		return err
	}
	for !stop.IsOpen() {
		if err := w.cycle(stop); err != nil {
			return err
		}
	}
	return ErrStopped
}

func (w *Writer) cycle(stop *Latch) error {
	t := w.cfg.timings
	if !w.hasPriorityLock {
		if err := w.res.priority.LockUntil(stop); err != nil {
			return err
		}
		w.hasPriorityLock = true
		w.emitKind(KindWriterLocksPriority)
	}

	if w.res.primary.IsWriteLocked() || w.res.primary.Readers() > 0 {
		// Keep the priority lock: readers keep deferring while we wait.
		w.emitKind(KindWriterWaiting)
		return w.cfg.sleep(stop, t.Backoff)
	}

	// A reader may still slip in between the check and here; LockUntil
	// then waits for it to leave.
	if err := w.res.primary.LockUntil(stop); err != nil {
		return err
	}
	w.emitKind(KindWriterLocksResource)
	if w.hasPriorityLock {
		w.releasePriority()
	}
	err := w.write(stop)
	w.emitKind(KindWriterUnlocksResource)
	w.res.primary.Unlock()
	if err != nil {
		return err
	}
	return w.cfg.sleep(stop, t.WriteCooldown)
}

func (w *Writer) write(stop *Latch) error {
	w.emitKind(KindWriting)
	if err := w.cfg.sleep(stop, w.cfg.timings.Write); err != nil {
		return err
	}
	w.emitKind(KindWriterFinished)
	return nil
}

func (w *Writer) releasePriority() {
	w.emitKind(KindWriterUnlocksPriority)
	w.hasPriorityLock = false
	w.res.priority.Unlock()
}

// ReaderWriterEngine runs readers and writers over one SharedResource.
type ReaderWriterEngine struct {
	crew
	res     *SharedResource
	readers []*Reader
	writers []*Writer
}

var _ Engine = (*ReaderWriterEngine)(nil)

// NewReaderWriterEngine builds the reader-writer simulation. The scenario
// is meant to run with DefaultReaders and DefaultWriters; other counts are
// accepted for experiments.
//
// Writer 1 starts immediately and every other actor Timings.Stagger later,
// giving the first writer a head start.
func NewReaderWriterEngine(
	numReaders, numWriters int,
	sink EventSink,
	stop *Latch,
	opts ...Option,
) *ReaderWriterEngine {
	cfg := newConfig(opts)
	if sink == nil {
		sink = Discard
	}
	e := &ReaderWriterEngine{
		crew: crew{name: "Reader-Writer", stop: stop},
		res:  NewSharedResource(),
	}
	for i := 1; i <= numWriters; i++ {
		w := &Writer{
			actorBase: actorBase{actor: Actor{RoleWriter, i}, sink: sink, cfg: cfg},
			res:       e.res,
		}
		if i > 1 {
			w.start = cfg.timings.Stagger
		}
		e.writers = append(e.writers, w)
		e.actors = append(e.actors, w)
	}
	for i := 1; i <= numReaders; i++ {
		r := &Reader{
			actorBase: actorBase{actor: Actor{RoleReader, i}, sink: sink, cfg: cfg},
			res:       e.res,
		}
		if numWriters > 0 {
			r.start = cfg.timings.Stagger
		}
		e.readers = append(e.readers, r)
		e.actors = append(e.actors, r)
	}
	return e
}

// Resource returns the shared resource.
func (e *ReaderWriterEngine) Resource() *SharedResource {
	return e.res
}

// Readers returns the reader actors.
func (e *ReaderWriterEngine) Readers() []*Reader {
	return e.readers
}

// Writers returns the writer actors.
func (e *ReaderWriterEngine) Writers() []*Writer {
	return e.writers
}
