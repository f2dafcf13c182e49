package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RefreshInterval time.Duration
	PGDSN           string

	EtherscanAPIKey  string
	EtherscanBaseURL string
	EtherscanPage    int
	EtherscanOffset  int
	HTTPTimeout      time.Duration

	ExplorerBaseURL string
	Contract        string
	TokenContract   string
	TokenName       string
	LogoURL         string

	WebhookID    string
	WebhookToken string
	EmojiName    string
	EmojiID      string

	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
// Secrets (webhook id/token, API key) are the values typically supplied
// through BUYBACK_* environment variables.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BUYBACK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("refresh-interval", time.Minute)
	v.SetDefault("etherscan-base-url", "https://api.etherscan.io")
	v.SetDefault("etherscan-page", 1)
	v.SetDefault("etherscan-offset", 100)
	v.SetDefault("http-timeout", 10*time.Second)
	v.SetDefault("explorer-base-url", "https://etherscan.io")
	v.SetDefault("token-name", "yAxis V2 (YAXIS)")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RefreshInterval:  v.GetDuration("refresh-interval"),
		PGDSN:            v.GetString("pg-dsn"),
		EtherscanAPIKey:  v.GetString("etherscan-api-key"),
		EtherscanBaseURL: v.GetString("etherscan-base-url"),
		EtherscanPage:    v.GetInt("etherscan-page"),
		EtherscanOffset:  v.GetInt("etherscan-offset"),
		HTTPTimeout:      v.GetDuration("http-timeout"),
		ExplorerBaseURL:  v.GetString("explorer-base-url"),
		Contract:         v.GetString("contract"),
		TokenContract:    v.GetString("token-contract"),
		TokenName:        v.GetString("token-name"),
		LogoURL:          v.GetString("logo-url"),
		WebhookID:        v.GetString("webhook-id"),
		WebhookToken:     v.GetString("webhook-token"),
		EmojiName:        v.GetString("emoji-name"),
		EmojiID:          v.GetString("emoji-id"),
		LogLevel:         v.GetString("log-level"),
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}

	contract, err := normalizeAddress(c.Contract, "contract")
	if err != nil {
		return err
	}
	c.Contract = contract

	tokenContract, err := normalizeAddress(c.TokenContract, "token-contract")
	if err != nil {
		return err
	}
	c.TokenContract = tokenContract

	return nil
}

func normalizeAddress(value, name string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%s address is required", name)
	}
	if !common.IsHexAddress(value) {
		return "", fmt.Errorf("%s address %q is not a valid hex address", name, value)
	}
	return common.HexToAddress(value).Hex(), nil
}
