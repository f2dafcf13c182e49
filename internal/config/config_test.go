package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

const (
	contractFlag = "0x00005cb031fff3c96d655c4e5161fa13564e0a2d"
	tokenFlag    = "0x0ada190c81b814548ddc2f6adc4a689ce7c1fe73"
)

func testFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("contract", "", "")
	flags.String("token-contract", "", "")
	if err := flags.Parse([]string{
		"--contract=" + contractFlag,
		"--token-contract=" + tokenFlag,
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return flags
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", testFlags(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RefreshInterval != time.Minute {
		t.Fatalf("refresh interval = %v, want 1m", cfg.RefreshInterval)
	}
	if cfg.EtherscanBaseURL != "https://api.etherscan.io" {
		t.Fatalf("unexpected etherscan base url: %q", cfg.EtherscanBaseURL)
	}
	if cfg.EtherscanPage != 1 || cfg.EtherscanOffset != 100 {
		t.Fatalf("unexpected page/offset: %d/%d", cfg.EtherscanPage, cfg.EtherscanOffset)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel)
	}
}

func TestLoadNormalizesAddresses(t *testing.T) {
	cfg, err := Load("", testFlags(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Addresses come back EIP-55 checksummed.
	if cfg.Contract == contractFlag {
		t.Fatalf("contract address was not normalized: %q", cfg.Contract)
	}
	if len(cfg.Contract) != 42 {
		t.Fatalf("unexpected contract address: %q", cfg.Contract)
	}
}

func TestLoadRejectsBadAddress(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("contract", "", "")
	flags.String("token-contract", "", "")
	if err := flags.Parse([]string{
		"--contract=not-an-address",
		"--token-contract=" + tokenFlag,
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if _, err := Load("", flags); err == nil {
		t.Fatalf("expected error for invalid contract address")
	}
}

func TestLoadRequiresContract(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if _, err := Load("", flags); err == nil {
		t.Fatalf("expected error when contract address is missing")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BUYBACK_WEBHOOK_ID", "env-id")
	t.Setenv("BUYBACK_WEBHOOK_TOKEN", "env-token")
	t.Setenv("BUYBACK_ETHERSCAN_API_KEY", "env-key")

	cfg, err := Load("", testFlags(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.WebhookID != "env-id" || cfg.WebhookToken != "env-token" {
		t.Fatalf("webhook env override not applied: %+v", cfg)
	}
	if cfg.EtherscanAPIKey != "env-key" {
		t.Fatalf("api key env override not applied: %q", cfg.EtherscanAPIKey)
	}
}
