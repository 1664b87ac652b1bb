package config

import (
	"os"
	"time"
)

// PriceTiers are the per-tier prices in the asset's smallest unit,
// string-encoded to avoid precision loss on the wire.
type PriceTiers struct {
	Basic   string
	Premium string
	High    string
}

// Config is the immutable startup configuration. Loaded once in main and
// injected; nothing mutates it afterwards.
type Config struct {
	Port        string
	ServiceName string
	DevMode     bool

	// Payment surface
	FacilitatorURL     string
	FacilitatorTimeout time.Duration
	PaymentRecipient   string
	Network            string
	Asset              string
	SponsoredGas       bool
	Prices             PriceTiers

	// Gate secrets and thresholds
	MagicSpell    string
	MinTrustScore int64

	// Infrastructure (empty value disables the integration)
	DatabaseURL    string
	RedisURL       string
	KafkaBrokers   string
	JaegerEndpoint string
}

func Load() *Config {
	return &Config{
		Port:        envOr("PORT", "8080"),
		ServiceName: envOr("SERVICE_NAME", "x402-gateway"),
		DevMode:     os.Getenv("APP_ENV") == "development",

		FacilitatorURL:     envOr("FACILITATOR_URL", "http://localhost:8003/facilitator"),
		FacilitatorTimeout: durationOr("FACILITATOR_TIMEOUT", 5*time.Second),
		PaymentRecipient:   envOr("PAYMENT_RECIPIENT_ADDRESS", "0x0d0b4c628d57f3ffafa1259f1403595c1c07d0e7a0995018fd59e72d1aebfc8c"),
		Network:            envOr("PAYMENT_NETWORK", "aptos:2"),
		Asset:              envOr("PAYMENT_ASSET", "0xa"),
		SponsoredGas:       true,
		Prices: PriceTiers{
			Basic:   envOr("PRICE_BASIC", "100"),
			Premium: envOr("PRICE_PREMIUM", "500"),
			High:    envOr("PRICE_HIGH", "1000"),
		},

		MagicSpell:    envOr("MAGIC_SPELL", "0xf2dbdeb981aca16eb5cb33eab7"),
		MinTrustScore: 10_000_000,

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		JaegerEndpoint: os.Getenv("JAEGER_ENDPOINT"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
