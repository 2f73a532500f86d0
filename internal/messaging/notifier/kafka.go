package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/colibie/events-app-api/internal/config"
)

const topic = "events-app"

type resourceUpdateMessage struct {
	Resource string     `json:"resource"`
	Id       string     `json:"id"`
	Change   ChangeType `json:"change"`
}

type kafkaNotifier struct {
	logger *zap.SugaredLogger
	w      *kafka.Writer
}

func NewKafkaNotifier(ctx context.Context, wg *sync.WaitGroup, logger *zap.SugaredLogger, cfg config.KafkaConfig) Notifier {
	w := &kafka.Writer{
		Addr:        kafka.TCP(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		Topic:       topic,
		Async:       true,
		Balancer:    &kafka.LeastBytes{},
		ErrorLogger: zap.NewStdLog(zap.L()),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		logger.Info("shutting down kafka writer")
		if err := w.Close(); err != nil {
			logger.Errorw("failed to close kafka writer", "error", err)
		}
	}()

	return &kafkaNotifier{
		logger: logger,
		w:      w,
	}
}

func (k *kafkaNotifier) ResourceUpdate(ctx context.Context, resource string, id string, change ChangeType) error {
	msg := resourceUpdateMessage{Resource: resource, Id: id, Change: change}

	bytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := k.w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(id),
		Value:   bytes,
		Headers: []kafka.Header{{Key: "X-Resource-Type", Value: []byte(resource)}},
	}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
