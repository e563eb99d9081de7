package broker

import (
	"context"
	"log"
	"os"

	"festivelo/pkg/event"

	"github.com/redis/go-redis/v9"
)

// HandlerFunc consumes one change event from a subscription.
type HandlerFunc func(event.Event)

// Broker is a thin redis pub/sub wrapper carrying change events between the
// trip store and the realtime layer. Delivery is fire-and-forget: a lost
// message is never retried here, clients reconcile via the CRUD read path.
type Broker struct {
	rdb      *redis.Client
	ctx      context.Context
	cancel   context.CancelFunc
	handlers map[string]HandlerFunc
}

func New() *Broker {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("[BROKER] invalid redis url:", err)
	}

	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithCancel(context.Background())

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("[BROKER] redis ping failed:", err)
	}

	return &Broker{
		rdb:      rdb,
		ctx:      ctx,
		cancel:   cancel,
		handlers: make(map[string]HandlerFunc),
	}
}

func (b *Broker) Publish(channel string, evt event.Event) error {
	data, err := evt.Marshal()
	if err != nil {
		return err
	}
	return b.rdb.Publish(b.ctx, channel, data).Err()
}

// On registers a handler for a given event type. The empty type is the
// catch-all, invoked when no exact match exists. Call before Subscribe.
func (b *Broker) On(eventType string, fn HandlerFunc) {
	b.handlers[eventType] = fn
}

// Subscribe opens a process-lifetime subscription on the given channels and
// dispatches decoded events to registered handlers. Events are handled in
// arrival order on a single goroutine so commit order is preserved.
func (b *Broker) Subscribe(channels ...string) {
	sub := b.rdb.Subscribe(b.ctx, channels...)
	ch := sub.Channel()

	go func() {
		defer sub.Close()
		for {
			select {
			case <-b.ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					log.Println("[BROKER] subscription closed")
					return
				}
				evt, err := event.Unmarshal([]byte(msg.Payload))
				if err != nil {
					continue
				}
				fn, ok := b.handlers[evt.Type]
				if !ok {
					fn, ok = b.handlers[""]
				}
				if ok {
					fn(evt)
				}
			}
		}
	}()
}

func (b *Broker) Close() {
	b.cancel()
	b.rdb.Close()
}
