package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bgbahoue/yaxis-bot/internal/config"
	"github.com/bgbahoue/yaxis-bot/internal/etherscan"
	"github.com/bgbahoue/yaxis-bot/internal/notify"
	"github.com/bgbahoue/yaxis-bot/internal/price"
	"github.com/bgbahoue/yaxis-bot/internal/storage/postgres"
	"github.com/bgbahoue/yaxis-bot/internal/worker"
)

func main() {
	root := &cobra.Command{
		Use:          "watcher",
		Short:        "MetaVault buyback watcher",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the buyback watcher",
		RunE:  runWatcher,
	}

	runCmd.Flags().Duration("refresh-interval", time.Minute, "polling interval")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	runCmd.Flags().String("etherscan-api-key", "", "Etherscan API key")
	runCmd.Flags().String("etherscan-base-url", "https://api.etherscan.io", "Etherscan API base URL")
	runCmd.Flags().Int("etherscan-page", 1, "tokentx page number")
	runCmd.Flags().Int("etherscan-offset", 100, "tokentx page size")
	runCmd.Flags().Duration("http-timeout", 10*time.Second, "HTTP client timeout")
	runCmd.Flags().String("explorer-base-url", "https://etherscan.io", "block explorer base URL")
	runCmd.Flags().String("contract", "", "MetaVault contract address")
	runCmd.Flags().String("token-contract", "", "token contract address")
	runCmd.Flags().String("token-name", "yAxis V2 (YAXIS)", "token name as shown in the tracker page title")
	runCmd.Flags().String("logo-url", "", "thumbnail logo URL for notifications")
	runCmd.Flags().String("webhook-id", "", "Discord webhook id")
	runCmd.Flags().String("webhook-token", "", "Discord webhook token")
	runCmd.Flags().String("emoji-name", "yaxis", "token emoji name")
	runCmd.Flags().String("emoji-id", "", "token emoji id")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runWatcher(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	ledger := etherscan.NewClient(etherscan.Config{
		BaseURL: cfg.EtherscanBaseURL,
		APIKey:  cfg.EtherscanAPIKey,
		Page:    cfg.EtherscanPage,
		Offset:  cfg.EtherscanOffset,
	}, httpClient)

	scraper := price.NewTokenPageScraper(cfg.ExplorerBaseURL, cfg.TokenContract, cfg.TokenName, httpClient)
	resolver := price.NewResolver(store, scraper, logger)

	notifier, err := notify.NewDiscordNotifier(notify.Config{
		WebhookID:       cfg.WebhookID,
		WebhookToken:    cfg.WebhookToken,
		ExplorerBaseURL: cfg.ExplorerBaseURL,
		Contract:        cfg.Contract,
		LogoURL:         cfg.LogoURL,
		EmojiName:       cfg.EmojiName,
		EmojiID:         cfg.EmojiID,
	}, logger)
	if err != nil {
		return err
	}

	pipeline := worker.NewPipeline(cfg.Contract, ledger, resolver, store, notifier, logger)
	scheduler := worker.NewScheduler(cfg.RefreshInterval, pipeline, store, logger)

	logger.Info("watcher start",
		zap.Duration("refresh_interval", cfg.RefreshInterval),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("contract", cfg.Contract),
		zap.String("token_contract", cfg.TokenContract),
		zap.String("etherscan", cfg.EtherscanBaseURL),
		zap.String("webhook_id", cfg.WebhookID),
	)

	return scheduler.Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
