package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/weiawesome/framez/internal/imageproc"
	pkgconfig "github.com/weiawesome/framez/pkg/config"
	"github.com/weiawesome/framez/pkg/database"
	"github.com/weiawesome/framez/pkg/jwt"
	"github.com/weiawesome/framez/pkg/pubsub"
	"github.com/weiawesome/framez/pkg/storage"
)

type Config struct {
	Server     ServerConfig
	Database   database.Config
	Redis      RedisConfig
	Cache      CacheConfig
	PubSub     pubsub.Config `mapstructure:"pubsub"`
	Kafka      KafkaConfig
	Storage    StorageConfig
	Assets     AssetsConfig
	Reconciler ReconcilerConfig
	JWT        jwt.Config `mapstructure:"jwt"`
	Log        LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	AuthorTTL time.Duration `mapstructure:"author_ttl"`
}

// KafkaConfig covers both the notification producer and the users CDC
// consumer. An empty broker list disables both.
type KafkaConfig struct {
	Brokers           string `mapstructure:"brokers"`
	NotificationTopic string `mapstructure:"notification_topic"`
	CDCTopic          string `mapstructure:"cdc_topic"`
	GroupID           string `mapstructure:"group_id"`
}

type StorageConfig struct {
	Type  string              `mapstructure:"type"` // local, s3
	Local storage.LocalConfig `mapstructure:"local"`
	S3    storage.S3Config    `mapstructure:"s3"`
}

type AssetsConfig struct {
	Post   imageproc.Preset `mapstructure:"post"`
	Avatar imageproc.Preset `mapstructure:"avatar"`
}

type ReconcilerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	TopN     int           `mapstructure:"top_n"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_upload_bytes", 10<<20)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "framez")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.file_path", "./data/framez.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.slow_query", "200ms")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.author_ttl", "5m")

	v.SetDefault("pubsub.driver", "redis")
	v.SetDefault("pubsub.buffer", 16)
	v.SetDefault("pubsub.redis.pool_size", 10)
	v.SetDefault("pubsub.redis.read_timeout", "3s")
	v.SetDefault("pubsub.redis.write_timeout", "3s")

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.notification_topic", "framez.notifications")
	v.SetDefault("kafka.cdc_topic", "dbserver1.public.users")
	v.SetDefault("kafka.group_id", "framez-api")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local.base_path", "./data/media")
	v.SetDefault("storage.local.public_url", "/media")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.url_expiry", "168h")

	v.SetDefault("assets.post.max_width", 1080)
	v.SetDefault("assets.post.quality", 70)
	v.SetDefault("assets.avatar.max_width", 400)
	v.SetDefault("assets.avatar.quality", 80)

	v.SetDefault("reconciler.interval", "60s")
	v.SetDefault("reconciler.top_n", 100)

	v.SetDefault("jwt.issuer", "framez")
	v.SetDefault("jwt.access_duration", "15m")
	v.SetDefault("jwt.refresh_duration", "168h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

var envBindings = map[string]string{
	"server.port":                  "PORT",
	"database.driver":              "DB_DRIVER",
	"database.host":                "DB_HOST",
	"database.port":                "DB_PORT",
	"database.user":                "DB_USER",
	"database.password":            "DB_PASSWORD",
	"database.dbname":              "DB_NAME",
	"database.sslmode":             "DB_SSLMODE",
	"database.file_path":           "DB_FILE_PATH",
	"redis.address":                "REDIS_ADDRESS",
	"redis.password":               "REDIS_PASSWORD",
	"redis.db":                     "REDIS_DB",
	"kafka.brokers":                "KAFKA_BROKERS",
	"kafka.notification_topic":     "KAFKA_NOTIFICATION_TOPIC",
	"kafka.cdc_topic":              "KAFKA_CDC_TOPIC",
	"kafka.group_id":               "KAFKA_GROUP_ID",
	"storage.type":                 "STORAGE_TYPE",
	"storage.s3.endpoint":          "S3_ENDPOINT",
	"storage.s3.bucket":            "S3_BUCKET",
	"storage.s3.access_key_id":     "S3_ACCESS_KEY_ID",
	"storage.s3.secret_access_key": "S3_SECRET_ACCESS_KEY",
	"storage.s3.public_url":        "S3_PUBLIC_URL",
	"jwt.secret":                   "JWT_SECRET",
	"reconciler.interval":          "RECONCILER_INTERVAL",
	"reconciler.top_n":             "RECONCILER_TOP_N",
	"log.level":                    "LOG_LEVEL",
}

// Load reads ./config/config.yaml (optional), applies defaults and binds
// the environment. The pubsub Redis address follows redis.* unless set.
func Load() (*Config, error) {
	v, err := pkgconfig.Load(pkgconfig.Options{Path: "./config", Name: "config"})
	if err != nil {
		return nil, err
	}

	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.PubSub.Redis.Address == "" {
		cfg.PubSub.Redis.Address = cfg.Redis.Address
		cfg.PubSub.Redis.Password = cfg.Redis.Password
		cfg.PubSub.Redis.DB = cfg.Redis.DB
	}
	cfg.Storage.Type = strings.ToLower(cfg.Storage.Type)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Type {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when storage.type is s3")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required (JWT_SECRET)")
	}
	for name, p := range map[string]imageproc.Preset{"post": c.Assets.Post, "avatar": c.Assets.Avatar} {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("assets.%s: %w", name, err)
		}
	}
	return nil
}
