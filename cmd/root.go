package cmd

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/turinglabs/kbchat/core/config"
)

var rootCmd = &cobra.Command{
	Use:   "kbchat",
	Short: "Knowledge-base conversational query API",
	Long: `kbchat answers questions over an ingested knowledge base with
conversation memory, response caching and provider-side context caching.`,
}

func init() {
	// .env is optional; real deployments set environment variables directly.
	if err := godotenv.Load(); err == nil {
		logrus.Debug("[INIT] Loaded environment from .env")
	}

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("[INIT] Invalid configuration: %v", err)
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	logrus.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"provider":    cfg.AI.Provider,
	}).Info("[INIT] Configuration loaded")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
