package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect and seed the processed-ID store",
	Long: `Store manages the SQLite database of paper IDs that have already been
digested. A paper whose ID is in the store is never emailed again.`,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all processed paper IDs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadPipelineConfig()
		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		entries, err := st.List()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s  %s\n", e.FirstSeen, e.ID)
		}
		fmt.Printf("%d processed papers\n", len(entries))
		return nil
	},
}

var storeAddCmd = &cobra.Command{
	Use:   "add [id...]",
	Short: "Mark paper IDs as processed without emailing them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadPipelineConfig()
		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Append(args); err != nil {
			return err
		}
		fmt.Printf("recorded %d IDs\n", len(args))
		return nil
	},
}

func init() {
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeAddCmd)

	rootCmd.AddCommand(storeCmd)
}
