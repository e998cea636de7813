package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/arxiv"
	"github.com/pdiddy/paper-digest/internal/store"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "List new papers without calling the model",
	Long: `Fetch queries arXiv with the configured query and prints the papers
that have not been digested yet. Nothing is recommended, rendered, emailed,
or marked as processed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadPipelineConfig()
		if cfg.Fetch.Query == "" {
			return fmt.Errorf("fetch.query is not configured")
		}

		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		seen, err := st.Load()
		if err != nil {
			return err
		}

		client := arxiv.NewClient(&http.Client{Timeout: cfg.Fetch.Timeout})
		papers, err := client.Fetch(cmd.Context(), cfg.Fetch)
		if err != nil {
			return err
		}

		fresh := 0
		for _, p := range papers {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			fresh++
			fmt.Printf("%s  %s  %s\n", p.ID, p.Published.Format("2006-01-02"), p.Title)
		}

		fmt.Fprintf(os.Stderr, "%d fetched, %d new\n", len(papers), fresh)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
