package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PaymentConfig berisi kredensial dan URL gateway bank (3D_PAY_HOSTING).
// Dimuat sekali saat start dan tidak diubah lagi.
type PaymentConfig struct {
	GatewayURL string `mapstructure:"gateway_url"`
	ClientID   string `mapstructure:"client_id"`
	StoreKey   string `mapstructure:"store_key"`
	StoreType  string `mapstructure:"store_type"`
	OkURL      string `mapstructure:"ok_url"`
	FailURL    string `mapstructure:"fail_url"`
	Currency   string `mapstructure:"currency"`
	TranType   string `mapstructure:"tran_type"`
	Lang       string `mapstructure:"lang"`
	Encoding   string `mapstructure:"encoding"`
	// HashScheme: "sorted" (key=value&...) atau "positional" (konkatenasi berurutan).
	HashScheme string `mapstructure:"hash_scheme"`
}

type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	ProductTTL time.Duration `mapstructure:"product_ttl"`
}

type KafkaConfig struct {
	Brokers          []string `mapstructure:"brokers"`
	OrderEventsTopic string   `mapstructure:"order_events_topic"`
	// RelaySpec adalah jadwal cron untuk relay outbox notifikasi.
	RelaySpec   string `mapstructure:"relay_spec"`
	MaxAttempts int    `mapstructure:"max_attempts"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// Settings adalah konfigurasi aplikasi yang dibaca lewat viper.
type Settings struct {
	Payment PaymentConfig `mapstructure:"payment"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Auth    AuthConfig    `mapstructure:"auth"`
}

var ErrMissingStoreKey = errors.New("payment store key is not configured")

func setDefaults(v *viper.Viper) {
	v.SetDefault("payment.gateway_url", "https://torus-stage-halkbankmacedonia.asseco-see.com.tr/fim/est3Dgate")
	v.SetDefault("payment.client_id", "")
	v.SetDefault("payment.store_key", "")
	v.SetDefault("payment.store_type", "3D_PAY_HOSTING")
	v.SetDefault("payment.ok_url", "http://localhost:8080/api/v1/payments/callback")
	v.SetDefault("payment.fail_url", "http://localhost:8080/api/v1/payments/callback")
	v.SetDefault("payment.currency", "807")
	v.SetDefault("payment.tran_type", "Auth")
	v.SetDefault("payment.lang", "en")
	v.SetDefault("payment.encoding", "UTF-8")
	v.SetDefault("payment.hash_scheme", "sorted")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.product_ttl", 10*time.Minute)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.order_events_topic", "order.confirmed")
	v.SetDefault("kafka.relay_spec", "*/15 * * * * *")
	v.SetDefault("kafka.max_attempts", 10)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 72*time.Hour)
}

// LoadSettings membaca default, file YAML opsional (STORE_CONFIG_FILE) lalu env
// dengan prefix STORE_, misalnya STORE_PAYMENT_STORE_KEY.
func LoadSettings() (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("STORE_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	// AutomaticEnv tidak memecah slice dari env, jadi brokers ditangani manual.
	if raw := os.Getenv("STORE_KAFKA_BROKERS"); raw != "" {
		s.Kafka.Brokers = strings.Split(raw, ",")
	}

	if s.Payment.StoreKey == "" {
		return s, ErrMissingStoreKey
	}
	return s, nil
}
