package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	App        AppConfig        `mapstructure:"app"`
	SSLCommerz SSLCommerzConfig `mapstructure:"sslcommerz"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Push       PushConfig       `mapstructure:"push"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

// DSN 返回 gorm postgres 驱动使用的连接串
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode, c.TimeZone)
}

// URL 返回 golang-migrate 使用的连接串
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // 小时
}

type AppConfig struct {
	Env         string `mapstructure:"env"`
	Debug       bool   `mapstructure:"debug"`
	FrontendURL string `mapstructure:"frontend_url"` // 支付结果页所在前端
	BackendURL  string `mapstructure:"backend_url"`  // 网关回调使用的公网地址
}

// SSLCommerzConfig 托管收银台配置
type SSLCommerzConfig struct {
	StoreID       string        `mapstructure:"store_id"`
	StorePassword string        `mapstructure:"store_password"`
	IsLive        bool          `mapstructure:"is_live"`
	BaseURL       string        `mapstructure:"base_url"` // 为空时按 is_live 选择沙箱/生产
	Currency      string        `mapstructure:"currency"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type PushConfig struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	AppKey          int64  `mapstructure:"app_key"`
	RegionID        string `mapstructure:"region_id"` // e.g., "cn-hangzhou"
}

type WorkerConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
	MaxRetry  int `mapstructure:"max_retry"`
}

var GlobalConfig Config

// Validate 验证配置
func (c *Config) Validate() error {
	// JWT 配置验证
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret in production")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	// 数据库配置验证
	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}

	if c.App.FrontendURL == "" {
		return errors.New("app.frontend_url is required for payment result redirects")
	}

	// 网关凭证允许缺省（仅货到付款可用），但只配一半说明配置写错了
	if (c.SSLCommerz.StoreID == "") != (c.SSLCommerz.StorePassword == "") {
		return errors.New("sslcommerz store_id and store_password must be set together")
	}
	if c.SSLCommerz.StoreID != "" && c.App.BackendURL == "" {
		return errors.New("app.backend_url is required when sslcommerz is configured")
	}

	return nil
}

// GatewayConfigured 网关凭证是否齐全
func (c *Config) GatewayConfigured() bool {
	return c.SSLCommerz.StoreID != "" && c.SSLCommerz.StorePassword != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("jwt.expire", 24)
	v.SetDefault("redis.db", 0)
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.debug", true)
	v.SetDefault("sslcommerz.currency", "BDT")
	v.SetDefault("sslcommerz.timeout", 15*time.Second)
	v.SetDefault("catalog.cache_ttl", 5*time.Minute)
	v.SetDefault("kafka.topic", "order_events")
	v.SetDefault("worker.workers", 4)
	v.SetDefault("worker.queue_size", 1000)
	v.SetDefault("worker.max_retry", 3)
}

// Load 从指定目录加载配置，按 APP_ENV 选择 config.<env>.yaml
func Load(paths ...string) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	configName := "config"
	if env != "dev" {
		configName = "config." + env
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./configs", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// 绑定环境变量，如 SSLCOMMERZ_STORE_ID
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// 与原部署脚本保持一致的环境变量覆盖
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		cfg.JWT.Secret = jwtSecret
	}
	if storeID := os.Getenv("SSLCOMMERZ_STORE_ID"); storeID != "" {
		cfg.SSLCommerz.StoreID = storeID
	}
	if storePass := os.Getenv("SSLCOMMERZ_STORE_PASSWORD"); storePass != "" {
		cfg.SSLCommerz.StorePassword = storePass
	}
	if os.Getenv("SSLCOMMERZ_IS_LIVE") == "true" {
		cfg.SSLCommerz.IsLive = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfig 加载配置并写入 GlobalConfig
func LoadConfig() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	GlobalConfig = *cfg
	return cfg, nil
}
