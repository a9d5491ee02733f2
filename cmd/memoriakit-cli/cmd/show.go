package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Print the raw text of one entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}

		session, err := openSession(cmdContext())
		if err != nil {
			return err
		}

		block, err := session.EntryAt(index)
		if err != nil {
			return err
		}
		fmt.Print(block.Raw)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
