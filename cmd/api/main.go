package main

import (
	"fmt"
	"net/http"
	"time"

	"avdb-go/internal/api/handler"
	"avdb-go/internal/api/middleware"
	"avdb-go/internal/api/router"
	"avdb-go/internal/asp"
	"avdb-go/internal/config"
	"avdb-go/internal/infra/database"
	infraES "avdb-go/internal/infra/elasticsearch"
	infraKafka "avdb-go/internal/infra/kafka"
	infraMinio "avdb-go/internal/infra/minio"
	infraRedis "avdb-go/internal/infra/redis"
	"avdb-go/internal/model"
	"avdb-go/internal/repository"
	"avdb-go/internal/service"
	"avdb-go/pkg/logger"

	_ "avdb-go/api/openapi"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title AVDB-Go API
// @version 1.0
// @description 成人影片情报聚合与联盟导购 API 服务
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@avdb.example.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host 127.0.0.1:8000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

func main() {
	// 加载配置文件
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 初始化日志系统
	if err := logger.Init(
		cfg.Log.Level,
		cfg.Log.Format,
		cfg.Log.Output,
		cfg.Log.FilePath,
	); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	// 自动迁移数据库表
	if err := database.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.ProductSource{},
		&model.ProductSale{},
		&model.Performer{},
		&model.Tag{},
		&model.FavoriteList{},
		&model.FavoriteListItem{},
		&model.RawProduct{},
	); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	// 初始化Redis
	if err := infraRedis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to init redis", zap.Error(err))
	}
	defer infraRedis.Close()

	// 初始化MinIO（可选，未启用时跳过封面镜像）
	if err := infraMinio.Init(&cfg.MinIO); err != nil {
		logger.Warn("MinIO init failed, thumbnail mirroring disabled", zap.Error(err))
	}

	// 初始化Kafka生产者
	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		logger.Fatal("Failed to init kafka producer", zap.Error(err))
	}
	defer infraKafka.CloseProducer()

	// 初始化 Elasticsearch（可选，失败则搜索降级到 DB）
	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Warn("Elasticsearch init failed, search will fallback to DB", zap.Error(err))
	} else {
		defer infraES.Close()
		if err := infraES.InitIndexes(); err != nil {
			logger.Warn("Elasticsearch index init failed", zap.Error(err))
		}
	}

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	// 创建Gin路由器（不使用默认中间件）
	r := gin.New()

	// 使用自定义中间件
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())

	// 初始化依赖（Repository -> Service -> Handler）
	db := database.Get()
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	performerRepo := repository.NewPerformerRepository(db)
	tagRepo := repository.NewTagRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	favoriteListRepo := repository.NewFavoriteListRepository(db)
	rawProductRepo := repository.NewRawProductRepository(db)

	cache := infraRedis.NewCache(infraRedis.Get(), cfg.Redis.CacheTTLDuration())
	aspClient := asp.NewClient(&cfg.ASP)

	authService := service.NewAuthService(userRepo)
	productService := service.NewProductService(productRepo, saleRepo, tagRepo, cache)
	performerService := service.NewPerformerService(performerRepo, cache)
	saleService := service.NewSaleService(saleRepo, favoriteListRepo)
	favoriteListService := service.NewFavoriteListService(favoriteListRepo)
	searchService := service.NewSearchService(productRepo, performerRepo, saleRepo, cache)
	ingestService := service.NewIngestService(rawProductRepo, productRepo, performerRepo, tagRepo, saleRepo)
	enrichService := service.NewEnrichService(productRepo, saleRepo, performerRepo, cache)

	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	performerHandler := handler.NewPerformerHandler(performerService)
	saleHandler := handler.NewSaleHandler(saleService)
	favoriteListHandler := handler.NewFavoriteListHandler(favoriteListService)
	searchHandler := handler.NewSearchHandler(searchService)
	cronHandler := handler.NewCronHandler(ingestService, enrichService, aspClient)

	// 注册基础路由
	r.GET("/healthz", healthCheckHandler)
	r.GET("/", rootHandler)

	// Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册业务路由
	router.Setup(r, authHandler, productHandler, performerHandler, saleHandler, favoriteListHandler, searchHandler, cronHandler)

	// 启动服务器
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
	)
	logger.Info("Configuration loaded",
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		zap.String("redis", cfg.Redis.Addr()),
		zap.String("minio", cfg.MinIO.Endpoint),
		zap.Strings("asp_partners", aspClient.Names()),
	)

	// 启动HTTP服务器
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// healthCheckHandler 健康检查接口
func healthCheckHandler(c *gin.Context) {
	cfg := config.Get()

	logger.Debug("Health check requested", zap.String("ip", c.ClientIP()))

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   cfg.App.Name,
		"version":   cfg.App.Version,
		"mode":      cfg.App.Mode,
	})
}

// rootHandler 根路径处理器
func rootHandler(c *gin.Context) {
	cfg := config.Get()

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Welcome to %s API", cfg.App.Name),
		"project": cfg.App.Name,
		"version": cfg.App.Version,
		"mode":    cfg.App.Mode,
		"docs":    fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.App.Port),
	})
}
