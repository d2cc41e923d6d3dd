// Package worker drains the audit outbox into Kafka. Postgres is the staging
// area; Kafka is the long-term audit sink. The worker polls for unpublished
// rows, produces them, and stamps them published.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"geovault/pkg/platform/audit/store/postgres"
)

// Source is the outbox side of the pipeline. *postgres.Store satisfies it.
type Source interface {
	NextPending(ctx context.Context, limit int) ([]postgres.PendingRow, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Producer is the Kafka side. *kgo.Client satisfies it; tests swap a fake.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Worker moves outbox rows to Kafka in batches.
type Worker struct {
	source   Source
	producer Producer
	topic    string
	logger   *slog.Logger

	interval  time.Duration
	batchSize int
}

// New builds an outbox worker. Interval and batch size have conservative
// defaults suitable for the audit volume of a single domain node.
func New(source Source, producer Producer, topic string, logger *slog.Logger) *Worker {
	return &Worker{
		source:    source,
		producer:  producer,
		topic:     topic,
		logger:    logger,
		interval:  2 * time.Second,
		batchSize: 100,
	}
}

// NewKafkaClient connects a franz-go producer and ensures the audit topic
// exists before the worker starts draining into it.
func NewKafkaClient(ctx context.Context, brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, err
	}

	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, err
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, r.Err
		}
	}
	return client, nil
}

// Run polls until the context is cancelled. One failed batch is logged and
// retried on the next tick; rows are only stamped after Kafka acks them.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "audit outbox drain failed", "error", err)
			}
		}
	}
}

func (w *Worker) drainOnce(ctx context.Context) error {
	rows, err := w.source.NextPending(ctx, w.batchSize)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	records := make([]*kgo.Record, 0, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		records = append(records, &kgo.Record{
			Topic: w.topic,
			Key:   []byte(row.ID.String()),
			Value: row.Payload,
		})
		ids = append(ids, row.ID)
	}

	if err := w.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return err
	}
	return w.source.MarkPublished(ctx, ids)
}
