//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"ans/internal/ans/events"
	"ans/internal/ans/events/kafka"
	"ans/pkg/domain"
	"ans/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
}

func (s *KafkaPublisherSuite) TestPublishedEventIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	const topic = "ans.names.it"

	p, err := kafka.New(s.redpanda.Brokers, topic)
	s.Require().NoError(err)
	defer p.Close()
	s.Require().NoError(p.EnsureTopic(ctx, 1, 1))
	s.Require().NoError(p.EnsureTopic(ctx, 1, 1), "existing topic is fine")

	ev := events.NameAssigned{
		Address:    domain.DeriveAddress(domain.ZeroAddress, 1),
		Name:       "streamed",
		AssignedAt: time.Now().UTC(),
	}
	s.Require().NoError(p.Publish(ctx, ev))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	var got events.NameAssigned
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(ev.Address, got.Address)
	s.Equal("streamed", got.Name)
}
