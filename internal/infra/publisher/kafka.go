package publisher

import (
	"context"
	"encoding/json"

	"github.com/twmb/franz-go/pkg/kgo"

	"storefront-core/internal/pkg/config"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/commands"
)

// KafkaPublisher emits order lifecycle events keyed by order id, so all
// events of one order land on the same partition and stay ordered.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, func(), error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to create kafka client")
	}
	return &KafkaPublisher{client: client, topic: cfg.Topic}, client.Close, nil
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, ev commands.OrderPlacedEvent) error {
	return p.produce(ctx, "order.placed", ev.OrderID.String(), ev)
}

func (p *KafkaPublisher) PublishOrderPaid(ctx context.Context, ev commands.OrderPaidEvent) error {
	return p.produce(ctx, "order.paid", ev.OrderID.String(), ev)
}

func (p *KafkaPublisher) produce(ctx context.Context, eventType, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(err, "failed to marshal event")
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event-type", Value: []byte(eventType)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return errs.Wrap(err, "failed to produce event")
	}
	return nil
}
