package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"memoriakit/internal/adapters/sqlite"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed entries by ID, comment, or kind",
	Long: `Search the entry index of the sequence root. Run 'sync' first to
build or refresh the index.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx := sqlite.NewIndex()
		if err := idx.Open(sequenceRoot); err != nil {
			return err
		}
		defer idx.Close()

		results, err := idx.Search(args[0])
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("no results")
			return nil
		}
		for _, r := range results {
			fmt.Printf("%s[%d]  %s  %s  %s\n", r.Path, r.Position, r.Kind, r.EntryID, r.Comment)
		}
		return nil
	},
}

var syncFull bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Build or refresh the entry index",
	Long: `Index the entry headers of every features and sequence file under
the sequence root. Incremental by default: only files whose mtime
changed since the last sync are re-parsed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx := sqlite.NewIndex()
		if err := idx.Open(sequenceRoot); err != nil {
			return err
		}
		defer idx.Close()

		if syncFull || idx.NeedsFullRebuild() {
			s, err := idx.SyncFull()
			if err != nil {
				return err
			}
			fmt.Printf("full sync: %d files, %d entries in %s\n",
				s.FilesScanned, s.EntriesAdded, s.Duration.Round(0))
			return nil
		}

		s, err := idx.SyncIncremental()
		if err != nil {
			return err
		}
		fmt.Printf("incremental sync: %d files (%d unchanged), +%d/-%d entries in %s\n",
			s.FilesScanned, s.FilesUnchanged, s.EntriesAdded, s.EntriesRemoved, s.Duration.Round(0))
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "rebuild the index from scratch")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(syncCmd)
}
