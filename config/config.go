package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	AES      AESConfig      `mapstructure:"aes"`
	Log      LogConfig      `mapstructure:"log"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Kekspay  KekspayConfig  `mapstructure:"kekspay"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key, encrypts stored secret keys
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// AdminConfig holds the shop administrator credentials for the admin API.
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"` // argon2id encoded hash
}

// KekspayConfig holds provider endpoints and the bootstrap values used to
// seed the persisted gateway settings on first start.
type KekspayConfig struct {
	PayBaseURL     string        `mapstructure:"pay_base_url"`
	APIBaseURL     string        `mapstructure:"api_base_url"`
	TestAPIBaseURL string        `mapstructure:"test_api_base_url"`
	RefundTimeout  time.Duration `mapstructure:"refund_timeout"`
	SiteURL        string        `mapstructure:"site_url"`
	CallbackURL    string        `mapstructure:"callback_url"`
	NonceTTL       time.Duration `mapstructure:"nonce_ttl"`
	SettingsTTL    time.Duration `mapstructure:"settings_ttl"`

	Enabled         bool   `mapstructure:"enabled"`
	TestMode        bool   `mapstructure:"test_mode"`
	UseLogger       bool   `mapstructure:"use_logger"`
	PaidOrderStatus string `mapstructure:"paid_order_status"`

	Live CredentialsConfig `mapstructure:"live"`
	Test CredentialsConfig `mapstructure:"test"`
}

// CredentialsConfig is one CID/TID/secret triple as issued by the provider.
type CredentialsConfig struct {
	CID       string `mapstructure:"cid"`
	TID       string `mapstructure:"tid"`
	SecretKey string `mapstructure:"secret_key"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: KPG_ (KEKS Pay Gateway).
// Nested keys use underscore: KPG_DATABASE_HOST, KPG_KEKSPAY_LIVE_TID, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "kekspay_gateway")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "12h")
	v.SetDefault("jwt.issuer", "kekspay-gateway")
	v.SetDefault("aes.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password_hash", "")
	v.SetDefault("kekspay.pay_base_url", "https://kekspay.hr/")
	v.SetDefault("kekspay.api_base_url", "https://ewa.erstebank.hr/eretailer/")
	v.SetDefault("kekspay.test_api_base_url", "https://kekspayuat.erstebank.hr/eretailer/")
	v.SetDefault("kekspay.refund_timeout", "55s")
	v.SetDefault("kekspay.site_url", "http://localhost:8080")
	v.SetDefault("kekspay.callback_url", "http://localhost:8080/wc-api/wc-kekspay")
	v.SetDefault("kekspay.nonce_ttl", "1h")
	v.SetDefault("kekspay.settings_ttl", "10m")
	v.SetDefault("kekspay.enabled", false)
	v.SetDefault("kekspay.test_mode", true)
	v.SetDefault("kekspay.use_logger", true)
	v.SetDefault("kekspay.paid_order_status", "processing")
	for _, mode := range []string{"live", "test"} {
		v.SetDefault("kekspay."+mode+".cid", "")
		v.SetDefault("kekspay."+mode+".tid", "")
		v.SetDefault("kekspay."+mode+".secret_key", "")
	}

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: KPG_DATABASE_HOST -> database.host
	v.SetEnvPrefix("KPG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
