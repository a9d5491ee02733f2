package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var entryFromFile string

// entryText reads the entry text for replace/append: from --from when
// set, otherwise from stdin.
func entryText() (string, error) {
	if entryFromFile != "" {
		data, err := os.ReadFile(entryFromFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var replaceCmd = &cobra.Command{
	Use:   "replace <index>",
	Short: "Replace one entry with new text of the same kind",
	Long: `Replace the entry at the given index. The replacement text is read
from --from or stdin and must parse to exactly one entry of the same
kind as the entry it replaces.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}
		text, err := entryText()
		if err != nil {
			return err
		}

		ctx := cmdContext()
		session, err := openSession(ctx)
		if err != nil {
			return err
		}
		if err := session.ReplaceEntry(ctx, index, text); err != nil {
			return err
		}
		return finishEdit(ctx, session)
	},
}

var appendCmd = &cobra.Command{
	Use:   "append",
	Short: "Append a new entry at the end of the file",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := entryText()
		if err != nil {
			return err
		}

		ctx := cmdContext()
		session, err := openSession(ctx)
		if err != nil {
			return err
		}
		if err := session.AppendEntry(ctx, text); err != nil {
			return err
		}
		return finishEdit(ctx, session)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete the entry at an index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}

		ctx := cmdContext()
		session, err := openSession(ctx)
		if err != nil {
			return err
		}
		if err := session.DeleteEntry(ctx, index); err != nil {
			return err
		}
		return finishEdit(ctx, session)
	},
}

func init() {
	for _, c := range []*cobra.Command{replaceCmd, appendCmd} {
		c.Flags().StringVar(&entryFromFile, "from", "", "read the entry text from this file instead of stdin")
	}
	rootCmd.AddCommand(replaceCmd)
	rootCmd.AddCommand(appendCmd)
	rootCmd.AddCommand(deleteCmd)
}
