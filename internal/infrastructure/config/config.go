package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/mq"
	"github.com/xiebiao/bookworld/pkg/tracing"
)

const (
	envPrefix         = "BOOKWORLD"
	defaultJWTSecret  = "your-secret-key-change-in-production"
	DriverMySQL       = "mysql"
	DriverMemory      = "memory"
	defaultConfigName = "config"
)

// Config 全局配置
// 加载顺序：.env → config/config.yaml（或config.<BOOKWORLD_ENV>.yaml）→ BOOKWORLD_*环境变量 → 默认值
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      logger.Config  `mapstructure:"log"`
	Order    OrderConfig    `mapstructure:"order"`
	Courier  CourierConfig  `mapstructure:"courier"`
	Media    MediaConfig    `mapstructure:"media"`
	MQ       mq.Config      `mapstructure:"mq"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Tracing  tracing.Config `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// StorageConfig 存储后端
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // mysql | memory
	// TxMaxAttempts 事务冲突（死锁、锁等待超时、版本冲突）时整体重跑的最大次数
	TxMaxAttempts int `mapstructure:"tx_max_attempts"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN 生成MySQL连接字符串，loc需要URL编码
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, url.QueryEscape(d.Loc))
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// CartTTL 购物车闲置过期时间
	CartTTL time.Duration `mapstructure:"cart_ttl"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpire  time.Duration `mapstructure:"access_token_expire"`
	RefreshTokenExpire time.Duration `mapstructure:"refresh_token_expire"`
}

// OrderConfig 下单相关参数，金额为主货币单位
type OrderConfig struct {
	DuplicateWindow       time.Duration `mapstructure:"duplicate_window"`
	FreeDeliveryThreshold int64         `mapstructure:"free_delivery_threshold"`
	DeliveryCharge        int64         `mapstructure:"delivery_charge"`
	CODFee                int64         `mapstructure:"cod_fee"`
	LowStockThreshold     int           `mapstructure:"low_stock_threshold"`
}

// CourierConfig Steadfast快递接口
type CourierConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	SecretKey        string        `mapstructure:"secret_key"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// MediaConfig MinIO对象存储
type MediaConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	PublicURL string `mapstructure:"public_url"`
	Folder    string `mapstructure:"folder"`
	MaxSize   int64  `mapstructure:"max_size"` // 字节
	ThumbSize int    `mapstructure:"thumb_size"`
}

// WorkerConfig 后台任务
type WorkerConfig struct {
	Concurrency     int    `mapstructure:"concurrency"`
	CourierSyncCron string `mapstructure:"courier_sync_cron"`
	SyncBatchSize   int    `mapstructure:"sync_batch_size"`
	EventQueue      string `mapstructure:"event_queue"`
}

// Load 加载配置
func Load() (*Config, error) {
	return LoadFrom("./config", ".")
}

// LoadFrom 从指定目录加载配置
func LoadFrom(paths ...string) (*Config, error) {
	// .env不覆盖已存在的环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("读取.env失败: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetConfigName(defaultConfigName)
	if env := os.Getenv(envPrefix + "_ENV"); env != "" {
		v.SetConfigName(defaultConfigName + "." + env)
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		logger.Warn("未找到配置文件，使用默认配置和环境变量", nil)
	}

	// BOOKWORLD_DATABASE_PASSWORD → database.password
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.tx_max_attempts", 5)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "bookworld")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "Local")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.cart_ttl", 30*24*time.Hour)

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.access_token_expire", 2*time.Hour)
	v.SetDefault("jwt.refresh_token_expire", 7*24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.enable_caller", false)

	v.SetDefault("order.duplicate_window", time.Hour)
	v.SetDefault("order.free_delivery_threshold", 1000)
	v.SetDefault("order.delivery_charge", 180)
	v.SetDefault("order.cod_fee", 10)
	v.SetDefault("order.low_stock_threshold", 5)

	v.SetDefault("courier.base_url", "https://portal.packzy.com/api/v1")
	v.SetDefault("courier.api_key", "")
	v.SetDefault("courier.secret_key", "")
	v.SetDefault("courier.timeout", 15*time.Second)
	v.SetDefault("courier.failure_threshold", 5)
	v.SetDefault("courier.open_timeout", 30*time.Second)

	v.SetDefault("media.endpoint", "")
	v.SetDefault("media.access_key", "")
	v.SetDefault("media.secret_key", "")
	v.SetDefault("media.use_ssl", false)
	v.SetDefault("media.public_url", "")
	v.SetDefault("media.bucket", "bookworld")
	v.SetDefault("media.folder", "bookshop")
	v.SetDefault("media.max_size", 5<<20)
	v.SetDefault("media.thumb_size", 300)

	v.SetDefault("mq.enabled", false)
	v.SetDefault("mq.url", "")
	v.SetDefault("mq.exchange", "bookworld.events")
	v.SetDefault("mq.exchange_type", "topic")

	v.SetDefault("worker.concurrency", 5)
	v.SetDefault("worker.courier_sync_cron", "*/30 * * * *")
	v.SetDefault("worker.sync_batch_size", 100)
	v.SetDefault("worker.event_queue", "bookworld.order-events")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("tracing.service_name", "bookworld")
	v.SetDefault("tracing.insecure", true)
}

// Validate 配置校验
func Validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}
	if cfg.Server.Mode == "release" && cfg.JWT.Secret == defaultJWTSecret {
		return fmt.Errorf("生产环境必须修改JWT密钥")
	}
	switch cfg.Storage.Driver {
	case DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("不支持的存储后端: %q", cfg.Storage.Driver)
	}
	if cfg.Storage.TxMaxAttempts <= 0 {
		return fmt.Errorf("storage.tx_max_attempts必须大于0")
	}
	if cfg.Order.DuplicateWindow <= 0 {
		return fmt.Errorf("order.duplicate_window必须大于0")
	}
	if cfg.MQ.Enabled && cfg.MQ.URL == "" {
		return fmt.Errorf("mq已启用但未配置url")
	}
	return nil
}
