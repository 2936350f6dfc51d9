package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/retail-pos/internal/config"
	"github.com/tuanvumaihuynh/retail-pos/internal/repository"
	"github.com/tuanvumaihuynh/retail-pos/internal/storage/db"
	"github.com/tuanvumaihuynh/retail-pos/internal/storage/mq"
	"github.com/tuanvumaihuynh/retail-pos/pkg/ptr"
)

// Service drains the outbox table and publishes the pending sale and
// product events to Kafka. Messages stay in the table with their error
// recorded when publishing fails, so the next sweep retries them.
type Service struct {
	cfg           config.Relay
	logger        *slog.Logger
	db            db.DB
	outboxMsgRepo repository.OutboxMsgRepository
	mqProducer    mq.Producer

	stopChan chan struct{}
}

func NewService(
	cfg config.Relay,
	logger *slog.Logger,
	db db.DB,
	outboxMsgRepo repository.OutboxMsgRepository,
	mqProducer mq.Producer,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        logger.With(slog.String("service", "relay")),
		db:            db,
		outboxMsgRepo: outboxMsgRepo,
		mqProducer:    mqProducer,
		stopChan:      make(chan struct{}),
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.run(ctx)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
		}
	}
}

func (s *Service) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-time.After(s.cfg.Interval):
			if err := s.sweep(ctx); err != nil {
				s.logger.ErrorContext(ctx, "error relaying outbox msgs", slog.Any("error", err))
			}
		}
	}
}

// sweep publishes one batch of unprocessed messages. Listing and
// marking run in the same transaction so a crashed sweep leaves the
// batch unprocessed.
func (s *Service) sweep(ctx context.Context) error {
	return s.db.WithTx(ctx, func(db db.DB) error {
		outboxMsgs, err := s.outboxMsgRepo.
			WithDB(db).
			ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{
				//nolint:gosec
				BatchSize: int32(s.cfg.BatchSize),
			})
		if err != nil {
			return fmt.Errorf("list unprocessed outbox msgs: %w", err)
		}

		if len(outboxMsgs) == 0 {
			return nil
		}

		s.logger.InfoContext(ctx, "relaying outbox msgs", slog.Int("count", len(outboxMsgs)))

		items := make([]repository.BulkUpdateOutboxMsgsItem, 0, len(outboxMsgs))
		var (
			mu     sync.Mutex
			wg     sync.WaitGroup
			failed int
		)

		for _, outboxMsg := range outboxMsgs {
			msg := outboxMsg
			wg.Go(func() {
				item := s.publish(ctx, msg)

				mu.Lock()
				items = append(items, item)
				if item.Error != nil {
					failed++
				}
				mu.Unlock()
			})
		}

		wg.Wait()

		if failed > 0 {
			s.logger.WarnContext(ctx, "some outbox msgs failed to publish",
				slog.Int("failed", failed),
				slog.Int("count", len(outboxMsgs)),
			)
		}

		if err := s.outboxMsgRepo.
			WithDB(db).
			BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
				Items: items,
			}); err != nil {
			return fmt.Errorf("bulk update outbox msgs: %w", err)
		}

		return nil
	})
}

func (s *Service) publish(ctx context.Context, msg repository.ListUnprocessedOutboxMsgsResult) repository.BulkUpdateOutboxMsgsItem {
	produceMsg := mq.ProduceMsg{
		Topic:        msg.Topic,
		Headers:      msg.Headers,
		Payload:      msg.Payload,
		PartitionKey: msg.PartitionKey,
	}
	if err := s.mqProducer.Produce(ctx, produceMsg); err != nil {
		s.logger.ErrorContext(ctx,
			"error producing message",
			slog.String("outbox_msg_id", msg.ID.String()),
			slog.String("topic", msg.Topic),
			slog.Any("error", err),
		)
		return repository.BulkUpdateOutboxMsgsItem{
			ID:    msg.ID,
			Error: ptr.New(err.Error()),
		}
	}

	return repository.BulkUpdateOutboxMsgsItem{ID: msg.ID}
}
