// Package redis publishes feed updates and signals over Redis PubSub so
// out-of-process displays can subscribe without connecting to the
// gateway directly. Publish failures are logged and dropped; the tick
// path never blocks on Redis.
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"signalbotv1/internal/model"
)

// PublisherConfig configures the Redis publisher.
type PublisherConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// Publisher writes updates and signals to Redis PubSub channels.
type Publisher struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (p *Publisher) Client() *goredis.Client { return p.client }

// New creates a new Publisher and pings the server.
func New(cfg PublisherConfig) (*Publisher, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Publisher{client: client}, nil
}

// Run reads updates from updateCh and publishes them to
// "pub:feed:<symbol>". Blocks until ctx is cancelled or the channel is
// closed.
func (p *Publisher) Run(ctx context.Context, updateCh <-chan model.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updateCh:
			if !ok {
				return
			}
			ch := "pub:feed:" + u.Symbol
			if err := p.client.Publish(ctx, ch, u.JSON()).Err(); err != nil {
				log.Printf("[redis] publish %s failed: %v", ch, err)
			}
		}
	}
}

// RunSignals publishes newly generated signals to "pub:signal:<symbol>".
func (p *Publisher) RunSignals(ctx context.Context, symbol string, signalCh <-chan model.Signal) {
	ch := "pub:signal:" + symbol
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signalCh:
			if !ok {
				return
			}
			if err := p.client.Publish(ctx, ch, sig.JSON()).Err(); err != nil {
				log.Printf("[redis] publish %s failed: %v", ch, err)
			}
		}
	}
}

// Close releases the client connection.
func (p *Publisher) Close() error { return p.client.Close() }
