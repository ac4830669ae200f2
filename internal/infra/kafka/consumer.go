package kafka

import (
	"context"
	"encoding/json"
	"time"

	"avdb-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// FetchJobHandler 处理抓取任务的回调函数
type FetchJobHandler func(ctx context.Context, job *FetchJob) error

// StartFetchJobConsumer 启动抓取任务消费者（阻塞，需在 goroutine 或 worker 主循环中运行）
// ctx 取消后会自动停止
func StartFetchJobConsumer(ctx context.Context, brokers []string, topic, groupID string, handler FetchJobHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka fetch job consumer stopped")
	}()

	logger.Info("Kafka fetch job consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var job FetchJob
		if err := json.Unmarshal(msg.Value, &job); err != nil {
			logger.Error("Failed to unmarshal fetch job",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		logger.Info("Received fetch job",
			zap.String("asp", job.ASPName),
			zap.Int("page", job.Page),
		)

		if err := handler(ctx, &job); err != nil {
			logger.Error("Failed to handle fetch job",
				zap.String("asp", job.ASPName),
				zap.Int("page", job.Page),
				zap.Error(err),
			)
		}
	}
}
