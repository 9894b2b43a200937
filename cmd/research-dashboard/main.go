// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-dashboard CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-dashboard/internal/config"
	"github.com/pdiddy/research-dashboard/internal/logger"
	"github.com/pdiddy/research-dashboard/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	// log receives diagnostics; command output goes to stdout.
	log *zap.SugaredLogger = zap.NewNop().Sugar()

	// cfg is the resolved configuration.
	cfg config.Config
)

// rootCmd is the base command for the research-dashboard CLI.
var rootCmd = &cobra.Command{
	Use:   "research-dashboard",
	Short: "Explore a corpus of research publications",
	Long: `research-dashboard maintains a local corpus of research publications and
answers two kinds of questions over it: which publications are semantically
closest to a query, and how publications, keywords, and authors connect.

Populate the corpus with "corpus import" and "corpus fetch", embed it with
"corpus embed", then use rank, similar, graph, or dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mode := viper.GetString("log")
		verbose := viper.GetBool("verbose")
		l, err := logger.New(mode, verbose)
		if err != nil {
			return err
		}
		log = l

		s, err := secrets.Load(".secrets/", log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log.Debugw("loaded secrets", "keys", keys)
		}

		c, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		c.Embedding.HuggingFaceAPIKey = loadedSecrets.Get(secrets.HuggingFaceAPIKey)
		c.Embedding.CohereAPIKey = loadedSecrets.Get(secrets.CohereAPIKey)
		if c.Corpus.DatabaseURL == "" {
			c.Corpus.DatabaseURL = loadedSecrets.Get(secrets.DatabaseURL)
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./research-dashboard.yaml or ~/.config/research-dashboard/research-dashboard.yaml)")
	pf.String("corpus-dir", "corpus", "base directory for the local corpus (contains index/)")
	pf.String("log", "dev", "log mode: dev, prod, or off")
	pf.BoolP("verbose", "v", false, "enable debug logging")

	_ = viper.BindPFlag("corpus.dir", pf.Lookup("corpus-dir"))
	_ = viper.BindPFlag("log", pf.Lookup("log"))
	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
}

func initConfig() {
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-dashboard")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-dashboard"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_DASHBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
