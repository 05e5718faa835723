package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	Log        LogConfig       `mapstructure:"log"`
	Firebase   FirebaseConfig  `mapstructure:"firebase"`
	KeepSet    KeepSetConfig   `mapstructure:"keep_set"`
	Demo       DemoConfig      `mapstructure:"demo"`
	Reconcile  ReconcileConfig `mapstructure:"reconcile"`
	Admin      AdminConfig     `mapstructure:"admin"`
	Plans      PlansConfig     `mapstructure:"plans"`
	Archive    ArchiveConfig   `mapstructure:"archive"`
	MySQL      DatabaseConfig  `mapstructure:"mysql"`
	ClickHouse DatabaseConfig  `mapstructure:"clickhouse"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Kafka      KafkaConfig     `mapstructure:"kafka"`
	Audit      AuditConfig     `mapstructure:"audit"`
	HTTP       HTTPConfig      `mapstructure:"http"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Metrics    MetricsConfig   `mapstructure:"metrics"`
}

// ---- Leaf structs ----

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"` // console|json
}

type FirebaseConfig struct {
	EnvFile         string `mapstructure:"env_file"`
	LeadsCollection string `mapstructure:"leads_collection"`
	UsersCollection string `mapstructure:"users_collection"`
}

type KeepSetConfig struct {
	Path string `mapstructure:"path"`
}

type DemoConfig struct {
	Tokens   []string `mapstructure:"tokens"`
	Prefixes []string `mapstructure:"prefixes"`
	Limit    int      `mapstructure:"limit"`
}

type ReconcileConfig struct {
	BatchSize int `mapstructure:"batch_size"`
}

type AdminConfig struct {
	Provision ProvisionConfig `mapstructure:"provision"`
	Verify    VerifyConfig    `mapstructure:"verify"`
}

type ProvisionConfig struct {
	Email       string   `mapstructure:"email"`
	Password    string   `mapstructure:"password"`
	DisplayName string   `mapstructure:"display_name"`
	Role        string   `mapstructure:"role"`
	Permissions []string `mapstructure:"permissions"`
}

type VerifyConfig struct {
	Email           string `mapstructure:"email"`
	DefaultPassword string `mapstructure:"default_password"`
	DisplayName     string `mapstructure:"display_name"`
	Role            string `mapstructure:"role"`
}

type PlansConfig struct {
	Backend   string        `mapstructure:"backend"` // file|redis
	Dir       string        `mapstructure:"dir"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type ArchiveConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	GroupID        string   `mapstructure:"group_id"`
	MinBytes       int      `mapstructure:"min_bytes"`
	MaxBytes       int      `mapstructure:"max_bytes"`
	CommitInterval int      `mapstructure:"commit_interval_ms"`
}

type AuditConfig struct {
	Topic     string        `mapstructure:"topic"`
	BatchSize int           `mapstructure:"batch_size"`
	BatchWait time.Duration `mapstructure:"batch_wait"`
}

type HTTPConfig struct {
	Addr         string   `mapstructure:"addr"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type RateLimitConfig struct {
	RPS int `mapstructure:"rps"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// Load reads embedded defaults, merges user YAML (if present), and applies env overrides (BCH_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, fmt.Errorf("read defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.MergeInConfig(); err != nil {
				return Config{}, fmt.Errorf("merge %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("stat %s: %w", path, err)
		}
	}

	// env override (BCH_*), e.g. BCH_MYSQL_DSN
	v.SetEnvPrefix("BCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
