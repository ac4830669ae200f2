package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Cron          CronConfig          `mapstructure:"cron"`
	ASP           ASPConfig           `mapstructure:"asp"`
	Enrichment    EnrichmentConfig    `mapstructure:"enrichment"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Mode    string `mapstructure:"mode"`
	Port    int    `mapstructure:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
}

// DSN 返回PostgreSQL连接字符串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	CacheTTL int    `mapstructure:"cache_ttl"` // 秒，列表缓存默认过期时间
}

// Addr 返回Redis地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CacheTTLDuration 返回列表缓存过期时间
func (r *RedisConfig) CacheTTLDuration() time.Duration {
	if r.CacheTTL <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(r.CacheTTL) * time.Second
}

// MinIOConfig MinIO配置（商品封面镜像存储）
type MinIOConfig struct {
	Endpoint  string   `mapstructure:"endpoint"`
	AccessKey string   `mapstructure:"access_key"`
	SecretKey string   `mapstructure:"secret_key"`
	UseSSL    bool     `mapstructure:"use_ssl"`
	Buckets   []string `mapstructure:"buckets"`
	PublicURL string   `mapstructure:"public_url"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string          `mapstructure:"brokers"`
	Topics  map[string]string `mapstructure:"topics"`
}

// ElasticsearchConfig Elasticsearch配置
type ElasticsearchConfig struct {
	Hosts []string          `mapstructure:"hosts"`
	Index map[string]string `mapstructure:"index"`
}

// CronConfig 定时任务配置
type CronConfig struct {
	Secret     string `mapstructure:"secret"`      // Bearer 密钥，为空则所有 cron 接口拒绝
	BatchSize  int    `mapstructure:"batch_size"`  // 单次处理的最大行数
	TimeboxSec int    `mapstructure:"timebox_sec"` // 单次调用的时间上限（秒）
	FetchDelay int    `mapstructure:"fetch_delay"` // 外部 API 调用间隔（毫秒）
}

// Timebox 返回单次 cron 调用的时间上限
func (c *CronConfig) Timebox() time.Duration {
	if c.TimeboxSec <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.TimeboxSec) * time.Second
}

// FetchDelayDuration 返回外部调用间隔
func (c *CronConfig) FetchDelayDuration() time.Duration {
	if c.FetchDelay <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.FetchDelay) * time.Millisecond
}

// BatchLimit 返回单次处理的最大行数
func (c *CronConfig) BatchLimit() int {
	if c.BatchSize <= 0 {
		return 100
	}
	return c.BatchSize
}

// ASPPartner 单个联盟伙伴（ASP）配置
type ASPPartner struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	AffiliateID string `mapstructure:"affiliate_id"`
	PageSize    int    `mapstructure:"page_size"`
}

// ASPConfig 联盟伙伴配置，key 为 ASP 名称（FANZA/MGS/SOKMIL/DUGA）
type ASPConfig struct {
	Partners map[string]ASPPartner `mapstructure:"partners"`
	Timeout  int                   `mapstructure:"timeout"` // 秒
}

// TimeoutDuration 返回伙伴 API 超时时间
func (a *ASPConfig) TimeoutDuration() time.Duration {
	if a.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.Timeout) * time.Second
}

// EnrichmentConfig 内容增强相关的第三方 API 配置
// 对应 key 为空时，相应的 cron 分支直接返回 not configured
type EnrichmentConfig struct {
	IndexingAPIKey   string `mapstructure:"indexing_api_key"`
	IndexingEndpoint string `mapstructure:"indexing_endpoint"`
	SiteBaseURL      string `mapstructure:"site_base_url"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// ExpireDuration 返回过期时间
func (j *JWTConfig) ExpireDuration() time.Duration {
	return time.Duration(j.ExpireHours) * time.Hour
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// 全局配置实例
var globalConfig *Config

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件路径
	v.SetConfigFile(configPath)

	// 设置配置文件类型
	v.SetConfigType("yaml")

	// 读取环境变量
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 解析配置到结构体
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 保存到全局变量
	globalConfig = &cfg

	return &cfg, nil
}

// Set 直接注入配置（测试用）
func Set(cfg *Config) {
	globalConfig = cfg
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded, please call Load() first")
	}
	return globalConfig
}

// GetApp 获取应用配置
func GetApp() *AppConfig {
	return &Get().App
}

// GetDatabase 获取数据库配置
func GetDatabase() *DatabaseConfig {
	return &Get().Database
}

// GetRedis 获取Redis配置
func GetRedis() *RedisConfig {
	return &Get().Redis
}

// GetMinIO 获取MinIO配置
func GetMinIO() *MinIOConfig {
	return &Get().MinIO
}

// GetKafka 获取Kafka配置
func GetKafka() *KafkaConfig {
	return &Get().Kafka
}

// GetElasticsearch 获取Elasticsearch配置
func GetElasticsearch() *ElasticsearchConfig {
	return &Get().Elasticsearch
}

// GetCron 获取定时任务配置
func GetCron() *CronConfig {
	return &Get().Cron
}

// GetASP 获取联盟伙伴配置
func GetASP() *ASPConfig {
	return &Get().ASP
}

// GetEnrichment 获取内容增强配置
func GetEnrichment() *EnrichmentConfig {
	return &Get().Enrichment
}

// GetJWT 获取JWT配置
func GetJWT() *JWTConfig {
	return &Get().JWT
}

// GetLog 获取日志配置
func GetLog() *LogConfig {
	return &Get().Log
}
