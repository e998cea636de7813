// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-digest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/secrets"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the paper-digest CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-digest",
	Short: "Daily arXiv digest driven by Claude recommendations",
	Long: `paper-digest fetches recent arXiv papers matching a configured query,
asks Claude to classify them against your research interests, renders the
accepted papers into a Markdown digest, and emails it.

One invocation produces one digest. Papers that have already been digested
are remembered and never emailed twice.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-digest.yaml or ~/.config/paper-digest/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-digest"))
		}
	}

	viper.SetEnvPrefix("PAPER_DIGEST")
	viper.AutomaticEnv()

	viper.SetDefault("fetch.max_results", 50)
	viper.SetDefault("fetch.timezone", "UTC")
	viper.SetDefault("http.timeout", "30s")
	viper.SetDefault("http.user_agent", "paper-digest/"+version)
	viper.SetDefault("ai.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("ai.max_retries", 3)
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("store.path", filepath.Join("state", "digest.db"))
	viper.SetDefault("output.dir", "output")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadPipelineConfig assembles the run configuration from viper settings
// and loaded secrets.
func loadPipelineConfig() types.PipelineConfig {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}

	return types.PipelineConfig{
		Fetch: types.FetchConfig{
			HTTPConfig: httpCfg,
			Query:      viper.GetString("fetch.query"),
			MaxResults: viper.GetInt("fetch.max_results"),
			Timezone:   viper.GetString("fetch.timezone"),
		},
		Recommend: types.RecommendConfig{
			AIConfig: types.AIConfig{
				Model:      viper.GetString("ai.model"),
				APIKey:     loadedSecrets["anthropic-api-key"],
				MaxRetries: viper.GetInt("ai.max_retries"),
			},
			ResearchInterests: viper.GetStringSlice("recommend.research_interests"),
		},
		Store: types.StoreConfig{
			Path: viper.GetString("store.path"),
		},
		Output: types.OutputConfig{
			Dir: viper.GetString("output.dir"),
		},
		SMTP: types.SMTPConfig{
			Host:     viper.GetString("smtp.host"),
			Port:     viper.GetInt("smtp.port"),
			Username: viper.GetString("smtp.username"),
			From:     viper.GetString("smtp.from"),
			To:       viper.GetStringSlice("smtp.to"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
