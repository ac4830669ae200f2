package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"avdb-go/internal/asp"
	"avdb-go/internal/config"
	"avdb-go/internal/infra/database"
	infraKafka "avdb-go/internal/infra/kafka"
	"avdb-go/internal/model"
	"avdb-go/internal/repository"
	"avdb-go/pkg/logger"

	"go.uber.org/zap"
)

// worker 进程：消费抓取任务，调用伙伴目录 API，把原始载荷写入暂存表
// 归一化由 API 侧的 process-raw-data 定时任务完成
func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	rawProductRepo := repository.NewRawProductRepository(database.Get())
	aspClient := asp.NewClient(&cfg.ASP)
	fetchDelay := cfg.Cron.FetchDelayDuration()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	fetchTopic := cfg.Kafka.Topics["product_fetch"]
	groupID := "avdb-go-fetch-worker"

	logger.Info("Fetch worker started",
		zap.String("topic", fetchTopic),
		zap.String("group", groupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.Strings("asp_partners", aspClient.Names()),
	)

	handler := func(ctx context.Context, job *infraKafka.FetchJob) error {
		items, err := aspClient.FetchPage(ctx, job.ASPName, job.Page, job.Keyword)
		if err != nil {
			return fmt.Errorf("fetch %s page %d: %w", job.ASPName, job.Page, err)
		}

		stored := 0
		for i := range items {
			payload, err := json.Marshal(&items[i])
			if err != nil {
				logger.Warn("Marshal item payload failed",
					zap.String("asp", job.ASPName),
					zap.String("original_id", items[i].OriginalID),
					zap.Error(err))
				continue
			}
			raw := &model.RawProduct{
				ASPName:    job.ASPName,
				OriginalID: items[i].OriginalID,
				Payload:    payload,
			}
			if err := rawProductRepo.Upsert(raw); err != nil {
				logger.Warn("Store raw product failed",
					zap.String("asp", job.ASPName),
					zap.String("original_id", items[i].OriginalID),
					zap.Error(err))
				continue
			}
			stored++
		}

		logger.Info("Fetch job completed",
			zap.String("asp", job.ASPName),
			zap.Int("page", job.Page),
			zap.Int("fetched", len(items)),
			zap.Int("stored", stored),
		)

		// 固定间隔限速，连续抓取时不打爆伙伴侧接口
		time.Sleep(fetchDelay)
		return nil
	}

	infraKafka.StartFetchJobConsumer(ctx, cfg.Kafka.Brokers, fetchTopic, groupID, handler)
	logger.Info("Fetch worker stopped")
}
