package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/arxiv"
	"github.com/pdiddy/paper-digest/internal/notify"
	"github.com/pdiddy/paper-digest/internal/pipeline"
	"github.com/pdiddy/paper-digest/internal/recommend"
	"github.com/pdiddy/paper-digest/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, recommend, render, and email one digest",
	Long: `Run executes the full digest pipeline once: fetch recent papers from
arXiv, drop papers digested in earlier runs, ask the model which of the rest
match your research interests, render the Markdown digest and bibliography,
and email them. Paper IDs are recorded only after the email is sent, so a
failed run retries the same papers next time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadPipelineConfig()
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if cfg.Fetch.Query == "" {
			return fmt.Errorf("fetch.query is not configured")
		}
		if len(cfg.Recommend.ResearchInterests) == 0 {
			return fmt.Errorf("recommend.research_interests is not configured")
		}
		if cfg.Recommend.APIKey == "" {
			return fmt.Errorf("missing anthropic-api-key in .secrets/")
		}

		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		client := &http.Client{Timeout: cfg.Fetch.Timeout}
		deps := pipeline.Deps{
			Source: arxiv.NewClient(client),
			Store:  st,
			Backend: &recommend.ClaudeBackend{
				APIKey:     cfg.Recommend.APIKey,
				Model:      cfg.Recommend.Model,
				MaxRetries: cfg.Recommend.MaxRetries,
				Client:     client,
			},
			Notifier: notify.NewMailer(cfg.SMTP, loadedSecrets["smtp-password"]),
		}

		summary, err := pipeline.Run(cmd.Context(), deps, cfg, pipeline.Options{DryRun: dryRun}, os.Stderr)
		if err != nil {
			return err
		}

		fmt.Printf("fetched: %d, new: %d, recommended: %d, sent: %v\n",
			summary.Fetched, summary.New, summary.Recommended, summary.Sent)
		return nil
	},
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "render artifacts but skip email and processed-ID update")

	rootCmd.AddCommand(runCmd)
}
