package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is resolved once at startup. Live/test selection happens here and
// nowhere else: the rest of the code never looks at ENV.
type Config struct {
	Env        string `validate:"required,oneof=development production"`
	RunAddress string `validate:"required"`
	BaseURL    string `validate:"required,url"`

	DodoAPIKey          string `validate:"required"`
	DodoAPIBase         string `validate:"required,url"`
	DodoWebhookSecret   string `validate:"required"`
	DodoCheckoutBaseURL string `validate:"required,url"`
	NonVegProductID     string `validate:"required"`
	VegProductID        string

	GoogleServiceAccountEmail string `validate:"required,email"`
	GooglePrivateKey          string `validate:"required"`
	GoogleSheetID             string `validate:"required"`

	BrevoAPIKey string `validate:"required"`
}

func (c *Config) IsTestMode() bool {
	return c.Env == EnvDevelopment
}

// Load reads the process environment (plus an optional .env file in the
// working directory) and resolves the mode-dependent keys.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}
	v.AutomaticEnv()

	v.SetDefault("ENV", EnvProduction)
	v.SetDefault("RUN_ADDRESS", "localhost:8080")
	v.SetDefault("DODO_CHECKOUT_BASE_URL", "https://checkout.dodopayments.com/buy")

	cfg := &Config{
		Env:                 v.GetString("ENV"),
		RunAddress:          v.GetString("RUN_ADDRESS"),
		BaseURL:             v.GetString("BASE_URL"),
		DodoCheckoutBaseURL: v.GetString("DODO_CHECKOUT_BASE_URL"),

		GoogleServiceAccountEmail: v.GetString("GOOGLE_SERVICE_ACCOUNT_EMAIL"),
		GoogleSheetID:             v.GetString("GOOGLE_SHEET_ID"),

		BrevoAPIKey: v.GetString("BREVO_API_KEY"),
	}

	// Key material often arrives with literal "\n" from env managers.
	cfg.GooglePrivateKey = strings.ReplaceAll(v.GetString("GOOGLE_PRIVATE_KEY"), `\n`, "\n")

	if cfg.Env == EnvDevelopment {
		cfg.DodoAPIKey = v.GetString("DODO_API_KEY_TEST")
		cfg.DodoWebhookSecret = v.GetString("DODO_TEST_PAYMENTS_WEBHOOK_KEY")
		cfg.NonVegProductID = v.GetString("DODO_TEST_PRODUCT_ID")
		cfg.VegProductID = v.GetString("DODO_TEST_VEG_PRODUCT_ID")
		cfg.DodoAPIBase = "https://test.dodopayments.com"
	} else {
		cfg.DodoAPIKey = v.GetString("DODO_API_KEY_LIVE")
		cfg.DodoWebhookSecret = v.GetString("DODO_LIVE_PAYMENTS_WEBHOOK_KEY")
		cfg.NonVegProductID = v.GetString("DODO_LIVE_PRODUCT_ID")
		cfg.VegProductID = v.GetString("DODO_LIVE_VEG_PRODUCT_ID")
		cfg.DodoAPIBase = "https://live.dodopayments.com"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}
