package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/retail-pos/internal/storage/mq"
)

// Service is the event service. It consumes the domain events this
// application publishes through the outbox.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:     logger,
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := registerHandler(s.mqConsumer, TopicProductCreated, s.handleProductCreatedEvent); err != nil {
		return nil, err
	}
	if err := registerHandler(s.mqConsumer, TopicProductLowStock, s.handleProductLowStockEvent); err != nil {
		return nil, err
	}
	if err := registerHandler(s.mqConsumer, TopicSaleCompleted, s.handleSaleCompletedEvent); err != nil {
		return nil, err
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func registerHandler[T any](consumer mq.Consumer, topic string, handle func(ctx context.Context, ev T) error) error {
	err := consumer.RegisterHandler(topic, func(ctx context.Context, topic string, payload []byte) error {
		var ev T
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("unmarshal %s event: %w", topic, err)
		}

		if err := handle(ctx, ev); err != nil {
			return fmt.Errorf("handle %s event: %w", topic, err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("register %s event handler: %w", topic, err)
	}

	return nil
}

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "handling product created event", slog.Any("event", ev))
	return nil
}

func (s *Service) handleProductLowStockEvent(ctx context.Context, ev ProductLowStockEvent) error {
	s.logger.WarnContext(ctx, "product is low on stock",
		slog.String("product_id", ev.ProductID),
		slog.String("name", ev.Name),
		slog.Int("stock", ev.Stock),
		slog.Int("low_stock_threshold", ev.LowStockThreshold),
	)
	return nil
}

func (s *Service) handleSaleCompletedEvent(ctx context.Context, ev SaleCompletedEvent) error {
	s.logger.InfoContext(ctx, "handling sale completed event",
		slog.String("sale_id", ev.SaleID),
		slog.String("sale_number", ev.SaleNumber),
		slog.Float64("total_amount", ev.TotalAmount),
		slog.Int("item_count", ev.ItemCount),
	)
	return nil
}
