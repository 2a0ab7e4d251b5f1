package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	BackendNone     = "none"
	BackendRabbitMQ = "rabbitmq"
	BackendPubSub   = "pubsub"
	BackendRedis    = "redis"
	BackendMinio    = "minio"
	BackendGCS      = "gcs"
)

type Config struct {
	Env        string
	ServerPort int
	LogLevel   string
	Database   DatabaseConfig
	Auth       AuthConfig
	Bootstrap  BootstrapConfig
	Events     EventsConfig
	Storage    StorageConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
	// Path is the SQLite database file. Empty selects a shared in-memory
	// database named after DBName.
	Path        string
	AutoMigrate bool
}

// InMemory reports whether the database is a shared in-memory SQLite database.
func (c DatabaseConfig) InMemory() bool {
	return c.Driver == DriverSQLite && (c.Path == "" || c.Path == ":memory:")
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// BootstrapConfig drives start-up seeding.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
	SeedCountries bool
}

type EventsConfig struct {
	Backend  string
	Channel  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
	Redis    RedisConfig
}

type RabbitMQConfig struct {
	URL             string
	PrefetchCount   int
	QueueDurable    bool
	QueueAutoDelete bool
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

// LoadConfig reads configuration from the environment and, when path is not
// empty, from a YAML file. Environment variables take precedence over the
// file. Keys map to variables by upper-casing and replacing dots with
// underscores (db.host -> DB_HOST).
func LoadConfig(path string) (Config, error) {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		Env:        v.GetString("env"),
		ServerPort: v.GetInt("server_port"),
		LogLevel:   v.GetString("log_level"),
		Database: DatabaseConfig{
			Driver:      strings.ToLower(v.GetString("db.driver")),
			Host:        v.GetString("db.host"),
			Port:        v.GetInt("db.port"),
			User:        v.GetString("db.user"),
			Password:    v.GetString("db.password"),
			DBName:      v.GetString("db.name"),
			UseSSL:      v.GetBool("db.use_ssl"),
			Path:        v.GetString("db.path"),
			AutoMigrate: v.GetBool("db.auto_migrate"),
		},
		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(v.GetString("jwt_secret")),
			TokenTTL:  v.GetDuration("token_ttl"),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    strings.TrimSpace(v.GetString("admin.email")),
			AdminPassword: v.GetString("admin.password"),
			SeedCountries: v.GetBool("seed.countries"),
		},
		Events: EventsConfig{
			Backend: strings.ToLower(v.GetString("events.backend")),
			Channel: v.GetString("events.channel"),
			RabbitMQ: RabbitMQConfig{
				URL:             v.GetString("rabbitmq.url"),
				PrefetchCount:   v.GetInt("rabbitmq.prefetch_count"),
				QueueDurable:    v.GetBool("rabbitmq.queue_durable"),
				QueueAutoDelete: v.GetBool("rabbitmq.queue_auto_delete"),
			},
			PubSub: PubSubConfig{
				ProjectID:          v.GetString("pubsub.project_id"),
				CredentialsFile:    v.GetString("pubsub.credentials_file"),
				SubscriptionSuffix: v.GetString("pubsub.subscription_suffix"),
			},
			Redis: RedisConfig{
				Addr:     v.GetString("redis.addr"),
				Password: v.GetString("redis.password"),
				DB:       v.GetInt("redis.db"),
			},
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(v.GetString("storage.backend")),
			Minio: MinioConfig{
				Endpoint:  v.GetString("minio.endpoint"),
				AccessKey: v.GetString("minio.access_key"),
				SecretKey: v.GetString("minio.secret_key"),
				Bucket:    v.GetString("minio.bucket"),
				UseSSL:    v.GetBool("minio.use_ssl"),
			},
			GCS: GCSConfig{
				Bucket:          v.GetString("gcs.bucket"),
				ProjectID:       v.GetString("gcs.project_id"),
				CredentialsFile: v.GetString("gcs.credentials_file"),
			},
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "prod")
	v.SetDefault("server_port", 8080)
	v.SetDefault("log_level", "info")

	v.SetDefault("db.driver", DriverPostgres)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "hbnb")
	v.SetDefault("db.password", "password")
	v.SetDefault("db.name", "hbnb_db")
	v.SetDefault("db.use_ssl", false)
	v.SetDefault("db.path", "")
	v.SetDefault("db.auto_migrate", false)

	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 24*time.Hour)

	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("seed.countries", false)

	v.SetDefault("events.backend", BackendNone)
	v.SetDefault("events.channel", "hbnb.entities")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.prefetch_count", 10)
	v.SetDefault("rabbitmq.queue_durable", true)
	v.SetDefault("rabbitmq.queue_auto_delete", false)
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.credentials_file", "")
	v.SetDefault("pubsub.subscription_suffix", "-sub")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.backend", BackendNone)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "hbnb-photos")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("gcs.bucket", "")
	v.SetDefault("gcs.project_id", "")
	v.SetDefault("gcs.credentials_file", "")
}

// Validate checks settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}

	switch c.Events.Backend {
	case "", BackendNone, BackendRabbitMQ, BackendPubSub, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unsupported events backend %q", c.Events.Backend))
	}

	switch c.Storage.Backend {
	case "", BackendNone, BackendMinio, BackendGCS:
	default:
		errs = append(errs, fmt.Errorf("unsupported storage backend %q", c.Storage.Backend))
	}

	if c.Bootstrap.AdminEmail != "" && c.Bootstrap.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set"))
	}

	return errors.Join(errs...)
}
