package config

import (
	"fmt"
	"time"
)

type GatewayConfig struct {
	App struct {
		Env string `mapstructure:"env"`
	} `mapstructure:"app"`
	Server  ServerConfig `mapstructure:"server"`
	Log     LogConfig    `mapstructure:"log"`
	Backend struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"backend"`
	Session struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"session"`
	Redis struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"redis"`
	Aggregator struct {
		Concurrency int `mapstructure:"concurrency"`
	} `mapstructure:"aggregator"`
	Booking struct {
		CapacityCeiling   int     `mapstructure:"capacity_ceiling"`
		MaxCNICPhotoBytes int     `mapstructure:"max_cnic_photo_bytes"`
		DriverFeePerDay   float64 `mapstructure:"driver_fee_per_day"`
	} `mapstructure:"booking"`
	Events struct {
		Driver       string `mapstructure:"driver"`
		AMQPURL      string `mapstructure:"amqp_url"`
		AMQPQueue    string `mapstructure:"amqp_queue"`
		KafkaBrokers string `mapstructure:"kafka_brokers"`
		KafkaTopic   string `mapstructure:"kafka_topic"`
	} `mapstructure:"events"`
}

func (c *GatewayConfig) KafkaBrokers() []string {
	return splitList(c.Events.KafkaBrokers)
}

func (c *GatewayConfig) ProdLike() bool {
	return isProdLike(c.App.Env)
}

func LoadGateway() (*GatewayConfig, error) {
	v := newViper()
	v.SetDefault("server.port", "8080")
	v.SetDefault("backend.url", "http://localhost:5000")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("session.secret", defaultSessionSecret)
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("redis.url", "")
	v.SetDefault("aggregator.concurrency", 4)
	v.SetDefault("booking.capacity_ceiling", 1000)
	v.SetDefault("booking.max_cnic_photo_bytes", 2<<20)
	v.SetDefault("booking.driver_fee_per_day", 700000)
	v.SetDefault("events.driver", "none")
	v.SetDefault("events.amqp_url", "")
	v.SetDefault("events.amqp_queue", "reservation.events")
	v.SetDefault("events.kafka_brokers", "")
	v.SetDefault("events.kafka_topic", "reservation-events")
	_ = v.BindEnv("server.port", "GATEWAY_PORT", "SERVER_PORT")
	_ = v.BindEnv("events.amqp_url", "EVENTS_AMQP_URL", "AMQP_URL", "RABBITMQ_URL")
	_ = v.BindEnv("events.kafka_brokers", "EVENTS_KAFKA_BROKERS", "KAFKA_BROKERS")

	cfg := &GatewayConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode gateway config: %w", err)
	}
	if err := validateGateway(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateGateway(cfg *GatewayConfig) error {
	if err := validateLog(cfg.Log); err != nil {
		return err
	}
	if cfg.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL must not be empty")
	}
	if cfg.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be > 0")
	}
	if cfg.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if cfg.Aggregator.Concurrency < 1 {
		return fmt.Errorf("AGGREGATOR_CONCURRENCY must be >= 1")
	}
	if cfg.Booking.CapacityCeiling < 1 {
		return fmt.Errorf("BOOKING_CAPACITY_CEILING must be >= 1")
	}
	if cfg.Booking.MaxCNICPhotoBytes < 1 {
		return fmt.Errorf("BOOKING_MAX_CNIC_PHOTO_BYTES must be >= 1")
	}
	if cfg.Booking.DriverFeePerDay < 0 {
		return fmt.Errorf("BOOKING_DRIVER_FEE_PER_DAY must be >= 0")
	}

	if cfg.ProdLike() && isEmptyOrDefault(cfg.Session.Secret, defaultSessionSecret) {
		return fmt.Errorf("in prod/release SESSION_SECRET must be set and not default")
	}
	return nil
}
