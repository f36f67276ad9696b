package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	outboxChannel     = "outbox_pending"
	outboxBatchSize   = 10
	notifyWaitTimeout = 30 * time.Second
	reconnectBase     = 500 * time.Millisecond
	reconnectMax      = 30 * time.Second
)

// OutboxWorker доставляет события из outbox_events в Kafka.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	dbConnStr string
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	dbConnStr string,
) *OutboxWorker {
	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		dbConnStr: dbConnStr,
	}
}

// Start разбирает накопившиеся события и подписывается на NOTIFY outbox_pending.
func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		w.logger.Infof("Draining pending outbox events on startup...")
		w.drain(ctx)
		w.listenOutboxNotifications(ctx)
	}()
}

// Stop останавливает воркер и ждёт завершения горутин.
func (w *OutboxWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	var (
		conn    *pgx.Conn
		attempt int
	)

	connect := func() error {
		c, err := pgx.Connect(ctx, w.dbConnStr)
		if err != nil {
			return e.Wrap("failed to connect for LISTEN", err)
		}

		if _, err := c.Exec(ctx, "LISTEN "+outboxChannel); err != nil {
			_ = c.Close(ctx)
			return e.Wrap("failed to LISTEN", err)
		}

		conn = c
		w.logger.Infof("Subscribed to '%s' channel", outboxChannel)
		return nil
	}

	defer func() {
		if conn != nil {
			_ = conn.Close(context.Background())
		}
	}()

	for ctx.Err() == nil {
		if conn == nil {
			if err := connect(); err != nil {
				delay := jitter.ExponentialBackoff(reconnectBase, reconnectMax, attempt, jitter.DefaultJitter)
				attempt++
				w.logger.Warnf("LISTEN connect failed (attempt %d), retry in %s: %v", attempt, delay, err)
				if !sleepCtx(ctx, delay) {
					return
				}
				continue
			}
			attempt = 0
			// События могли появиться, пока соединения не было
			w.drain(ctx)
		}

		waitCtx, cancel := context.WithTimeout(ctx, notifyWaitTimeout)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				// Периодически подбираем события, доставка которых ранее не удалась
				w.drain(ctx)
				continue
			}

			w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			_ = conn.Close(context.Background())
			conn = nil
			continue
		}

		if notif != nil && notif.Channel == outboxChannel {
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		}
	}
}

// drain обрабатывает пачки, пока в outbox остаются ожидающие события.
func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch возвращает true, если пачка была полной и все её события доставлены.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, outboxBatchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	delivered := 0
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			w.logger.Errorf(err, "outbox event %s not delivered", event.EventID)
			if err := w.repo.ReleaseToPending(ctx, event.ID); err != nil {
				w.logger.Warnf("release to pending failed: %v", err)
			}
			continue
		}
		delivered++

		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	return delivered == len(events) && len(events) == outboxBatchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	err := w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.AggregateID, event.Payload))
	if err == nil {
		return nil
	}

	if isRetryableError(err) {
		return e.Wrap("Temporary Kafka failure, will retry", err)
	}
	return e.Wrap("Permanent Kafka failure", err)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
