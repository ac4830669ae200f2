package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"avdb-go/internal/config"
	"avdb-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var producer *kafka.Writer

// FetchJob 目录抓取任务消息体：指示 worker 拉取某个 ASP 的一页商品
type FetchJob struct {
	ASPName string `json:"asp_name"`
	Page    int    `json:"page"`
	Keyword string `json:"keyword,omitempty"`
}

// InitProducer 初始化 Kafka 生产者
func InitProducer(cfg *config.KafkaConfig) error {
	producer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
	)

	return nil
}

// SendFetchJob 发送抓取任务到 Kafka
func SendFetchJob(ctx context.Context, topic string, job *FetchJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal fetch job: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(fmt.Sprintf("%s-%d", job.ASPName, job.Page)),
		Value: payload,
	}

	if err := producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send fetch job: %w", err)
	}

	logger.Info("Fetch job sent",
		zap.String("asp", job.ASPName),
		zap.Int("page", job.Page),
		zap.String("topic", topic),
	)

	return nil
}

// CloseProducer 关闭生产者
func CloseProducer() error {
	if producer == nil {
		return nil
	}
	logger.Info("Kafka producer closed")
	return producer.Close()
}
