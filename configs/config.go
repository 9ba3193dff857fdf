package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	// Pending controls the ephemeral pending-order store. Entries for
	// abandoned checkouts are reclaimed by TTL.
	Pending struct {
		TTL        time.Duration `koanf:"ttl"`
		MaxEntries int           `koanf:"max_entries"`
	} `koanf:"pending"`

	Gateway struct {
		BaseURL          string        `koanf:"base_url"`
		APIKey           string        `koanf:"api_key"`
		PublishableKey   string        `koanf:"publishable_key"`
		CheckoutBaseURL  string        `koanf:"checkout_base_url"`
		SuccessURL       string        `koanf:"success_url"`
		CancelURL        string        `koanf:"cancel_url"`
		SessionsPageSize int           `koanf:"sessions_page_size"`
		RequestTimeout   time.Duration `koanf:"request_timeout"`
		MinorUnitFactor  int64         `koanf:"minor_unit_factor"`
		MinorUnitFloor   int64         `koanf:"minor_unit_floor"`
	} `koanf:"gateway"`

	Shipping struct {
		DomesticFee      float64 `koanf:"domestic_fee"`
		NeighborFee      float64 `koanf:"neighbor_fee"`
		GulfBaseFee      float64 `koanf:"gulf_base_fee"`
		GulfExtraItemFee float64 `koanf:"gulf_extra_item_fee"`
	} `koanf:"shipping"`

	Checkout struct {
		DepositAmount float64 `koanf:"deposit_amount"`
	} `koanf:"checkout"`

	Rabbit struct {
		URL string `koanf:"url"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers []string `koanf:"brokers"`
		GroupID string   `koanf:"group_id"`
		Topic   string   `koanf:"topic"`
	} `koanf:"kafka"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix MAHEN_, nested with __)
	// e.g. MAHEN_GATEWAY__API_KEY, MAHEN_MYSQL__DSN
	if err := k.Load(env.Provider("MAHEN_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "MAHEN_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Gateway.SessionsPageSize <= 0 {
		c.Gateway.SessionsPageSize = 50
	}
	if c.Gateway.MinorUnitFactor <= 0 {
		c.Gateway.MinorUnitFactor = 1000
	}
	if c.Gateway.MinorUnitFloor <= 0 {
		c.Gateway.MinorUnitFloor = 100
	}
	if c.Gateway.RequestTimeout <= 0 {
		c.Gateway.RequestTimeout = 15 * time.Second
	}
	if c.Shipping.DomesticFee <= 0 {
		c.Shipping.DomesticFee = 2
	}
	if c.Shipping.NeighborFee <= 0 {
		c.Shipping.NeighborFee = 4
	}
	if c.Shipping.GulfBaseFee <= 0 {
		c.Shipping.GulfBaseFee = 7
	}
	if c.Shipping.GulfExtraItemFee <= 0 {
		c.Shipping.GulfExtraItemFee = 3
	}
	if c.Checkout.DepositAmount <= 0 {
		c.Checkout.DepositAmount = 10
	}
	if c.Pending.TTL <= 0 {
		c.Pending.TTL = 24 * time.Hour
	}
	if c.Pending.MaxEntries <= 0 {
		c.Pending.MaxEntries = 10000
	}
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn required")
	}
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url required")
	}
	if c.Gateway.APIKey == "" {
		return fmt.Errorf("gateway.api_key required")
	}
	return nil
}
