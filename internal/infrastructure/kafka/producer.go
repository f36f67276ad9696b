package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    10,
		BatchTimeout: 500 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warnf("Kafka producer error: %s", err.Error())
			}
		},
	}

	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}
}

// WriteRawMessage публикует готовый payload с ключом агрегата, чтобы события одного заказа попадали в одну партицию.
func (p *Producer) WriteRawMessage(ctx context.Context, req *usecase.WriteRawMessageReq) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(req.Key),
		Value: req.Payload,
	})
}

func (p *Producer) EnsureTopic(timeout time.Duration) error {
	conn, err := kafka.Dial(p.cfg.NetworkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(p.cfg.Topic)
	if err == nil && len(partitions) > 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.CreateTopics(kafka.TopicConfig{
			Topic:             p.cfg.Topic,
			NumPartitions:     p.cfg.Partitions,
			ReplicationFactor: p.cfg.ReplicationFactor,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create topic %s: %w", p.cfg.Topic, err))
		}
		return nil
	case <-time.After(timeout):
		_ = conn.Close()
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("timeout: %v, topic: %s", timeout, p.cfg.Topic))
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// EncodeOrderCreated кодирует событие как google.protobuf.Struct.
// Цена передаётся строкой с двумя знаками после запятой, чтобы не терять точность.
func (p *Producer) EncodeOrderCreated(event *usecase.OrderCreatedEvent) ([]byte, error) {
	return EncodeOrderCreated(event)
}

func EncodeOrderCreated(event *usecase.OrderCreatedEvent) ([]byte, error) {
	const op = "kafka.EncodeOrderCreated"

	msg, err := structpb.NewStruct(map[string]interface{}{
		"event_id":     event.EventID,
		"event_type":   usecase.EventOrderCreated,
		"order_id":     event.OrderID,
		"user_id":      event.UserID,
		"username":     event.Username,
		"product_id":   event.ProductID,
		"product_name": event.ProductName,
		"price":        domain.CentsToDecimal(event.Price).StringFixed(2),
		"created_at":   event.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	payload, err := proto.Marshal(msg)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return payload, nil
}

// DecodeOrderCreated разбирает payload события. Используется потребителями и тестами.
func DecodeOrderCreated(payload []byte) (map[string]interface{}, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(payload, &msg); err != nil {
		return nil, e.Wrap("kafka.DecodeOrderCreated", err)
	}

	return msg.AsMap(), nil
}
