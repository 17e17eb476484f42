package syncsim

// Producer fills the slots of a Buffer in round-robin order.
type Producer struct {
	actorBase
	buf *Buffer
}

// Consumer empties the slots of a Buffer in round-robin order.
type Consumer struct {
	actorBase
	buf *Buffer
}

// Run visits every slot in turn, cursor advancing (i+1) mod len whether or
// not this producer had to wait there, until stop opens.
func (p *Producer) Run(stop *Latch) error {
	return scan(stop, p.buf, &p.actorBase, p.buf.Produce)
}

// Run is the consuming mirror of Producer.Run.
func (c *Consumer) Run(stop *Latch) error {
	return scan(stop, c.buf, &c.actorBase, c.buf.Consume)
}

func scan(
	stop *Latch,
	buf *Buffer,
	a *actorBase,
	op func(stop *Latch, i int, report func(EventKind)) error,
) error {
	for i := 0; !stop.IsOpen(); i = (i + 1) % buf.Len() {
		slot := i
		report := func(kind EventKind) {
			a.emit(Event{Kind: kind, Slot: slot})
		}
		if err := op(stop, slot, report); err != nil {
			return err
		}
		// Post-transition processing, outside the slot lock.
		if err := a.cfg.sleep(stop, a.cfg.timings.Process); err != nil {
			return err
		}
	}
	return ErrStopped
}

// BoundedBufferEngine runs producers and consumers over one shared Buffer.
type BoundedBufferEngine struct {
	crew
	buf       *Buffer
	producers []*Producer
	consumers []*Consumer
}

var _ Engine = (*BoundedBufferEngine)(nil)

// NewBoundedBufferEngine builds the producer-consumer simulation. The counts
// and size must already be validated as positive. Actors are numbered from
// 1 within their role.
func NewBoundedBufferEngine(
	bufferSize, numProducers, numConsumers int,
	sink EventSink,
	stop *Latch,
	opts ...Option,
) *BoundedBufferEngine {
	cfg := newConfig(opts)
	if sink == nil {
		sink = Discard
	}
	e := &BoundedBufferEngine{
		crew: crew{name: "Producer-Consumer", stop: stop},
		buf:  NewBuffer(bufferSize),
	}
	for i := 1; i <= numProducers; i++ {
		p := &Producer{
			actorBase: actorBase{actor: Actor{RoleProducer, i}, sink: sink, cfg: cfg},
			buf:       e.buf,
		}
		e.producers = append(e.producers, p)
		e.actors = append(e.actors, p)
	}
	for i := 1; i <= numConsumers; i++ {
		c := &Consumer{
			actorBase: actorBase{actor: Actor{RoleConsumer, i}, sink: sink, cfg: cfg},
			buf:       e.buf,
		}
		e.consumers = append(e.consumers, c)
		e.actors = append(e.actors, c)
	}
	return e
}

// Buffer returns the shared buffer.
func (e *BoundedBufferEngine) Buffer() *Buffer {
	return e.buf
}

// Producers returns the producer actors.
func (e *BoundedBufferEngine) Producers() []*Producer {
	return e.producers
}

// Consumers returns the consumer actors.
func (e *BoundedBufferEngine) Consumers() []*Consumer {
	return e.consumers
}
