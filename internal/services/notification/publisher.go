package notification

import (
	"context"
	"errors"
	"log"
	"sync"

	"pazar/pkg/rabbitmq"
)

var (
	ErrQueueFull = errors.New("notification queue is full")
	ErrClosed    = errors.New("notification dispatcher is closed")
)

// Publisher hands an event to the delivery side. Publish must not block on delivery.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Emit publishes event and logs a failure instead of returning it. Callers
// invoke it only after their transaction committed.
func Emit(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		log.Printf("component=notification msg=\"publish failed\" type=%s recipient_id=%d err=%v",
			event.Type, event.RecipientID, err)
	}
}

// HandlerFunc delivers a single event.
type HandlerFunc func(ctx context.Context, event Event) error

// Dispatcher delivers events in-process on a single worker goroutine.
type Dispatcher struct {
	mu      sync.RWMutex
	closed  bool
	events  chan Event
	handler HandlerFunc
	wg      sync.WaitGroup
}

// NewDispatcher starts the worker. Close drains the queue and stops it.
func NewDispatcher(handler HandlerFunc, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	d := &Dispatcher{
		events:  make(chan Event, buffer),
		handler: handler,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for event := range d.events {
		if err := d.handler(context.Background(), event); err != nil {
			log.Printf("component=notification msg=\"delivery failed\" type=%s recipient_id=%d err=%v",
				event.Type, event.RecipientID, err)
		}
	}
}

func (d *Dispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.events)
	d.mu.Unlock()
	d.wg.Wait()
}

// AMQPPublisher sends events to the exchange, keyed by event type.
type AMQPPublisher struct {
	producer *rabbitmq.Producer
}

func NewAMQPPublisher(producer *rabbitmq.Producer) *AMQPPublisher {
	return &AMQPPublisher{producer: producer}
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	return p.producer.Publish(ctx, string(event.Type), event)
}
