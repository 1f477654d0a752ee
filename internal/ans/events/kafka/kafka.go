// Package kafka streams NameAssigned events to a Kafka topic. Delivery is
// best effort: a broker outage opens a circuit breaker and events are
// dropped until a probe succeeds; bindings are never affected.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"ans/internal/ans/events"
	"ans/internal/ans/metrics"
	"ans/pkg/platform/circuit"
	"ans/pkg/platform/sentinel"
)

const (
	sinkName = "kafka"

	defaultPublishTimeout = 5 * time.Second
)

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Publisher produces one record per event, keyed by address.
type Publisher struct {
	client  producer
	admin   *kadm.Client
	topic   string
	timeout time.Duration
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Publisher.
type Option func(*Publisher)

func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithPublishTimeout bounds each Publish call, including broker retries.
func WithPublishTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithBreaker replaces the default breaker (5 failures, 30s cooldown).
func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Publisher) {
		p.breaker = b
	}
}

// New connects to brokers. The topic is not created; see EnsureTopic.
func New(brokers []string, topic string, opts ...Option) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	p := newPublisher(nil, topic, opts...)
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RecordDeliveryTimeout(p.timeout),
		kgo.ProduceRequestTimeout(p.timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	p.client = client
	p.admin = kadm.NewClient(client)
	return p, nil
}

func newPublisher(client producer, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		client:  client,
		topic:   topic,
		timeout: defaultPublishTimeout,
		breaker: circuit.New(sinkName, circuit.WithFailureThreshold(5), circuit.WithCooldown(30*time.Second)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// EnsureTopic creates the topic if it does not exist yet. It gives up after
// the publish timeout.
func (p *Publisher) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	if p.admin == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	resp, err := p.admin.CreateTopics(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	for _, r := range resp.Sorted() {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Publish produces event synchronously and waits at most the publish
// timeout for the broker. While the breaker is open it returns
// sentinel.ErrUnavailable without contacting the broker.
func (p *Publisher) Publish(ctx context.Context, event events.NameAssigned) error {
	if !p.breaker.Allow() {
		p.record("skipped")
		return fmt.Errorf("kafka publisher %w: circuit open", sentinel.ErrUnavailable)
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(strings.ToLower(event.Address.Hex())),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event", Value: []byte("name_assigned")},
		},
	}

	produceCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.client.ProduceSync(produceCtx, record).FirstErr(); err != nil {
		p.record("failed")
		if change := p.breaker.RecordFailure(); change.Opened {
			p.logger.WarnContext(ctx, "kafka circuit opened", "topic", p.topic, "error", err)
		}
		return fmt.Errorf("produce name assignment: %w", err)
	}

	p.record("delivered")
	if change := p.breaker.RecordSuccess(); change.Closed {
		p.logger.InfoContext(ctx, "kafka circuit closed", "topic", p.topic)
	}
	return nil
}

// Close flushes nothing; ProduceSync has already waited for every record.
func (p *Publisher) Close() {
	p.client.Close()
}

func (p *Publisher) record(outcome string) {
	if p.metrics != nil {
		p.metrics.RecordEvent(sinkName, outcome)
	}
}
