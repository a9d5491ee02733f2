package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"memoriakit/internal/domain"
)

var (
	renameDir  string
	newseqFrom string
)

var renameCmd = &cobra.Command{
	Use:   "rename <old-name> <new-name>",
	Short: "Rename a sequence file or effect folder",
	Long: `Rename a file or folder inside the sequence tree. The rename
refuses to overwrite an existing target. With --dir the rename happens
inside that folder; without it, inside the sequence root (folder
renames).

Examples:
  memoriakit-cli rename ef0123 ef0200
  memoriakit-cli rename --dir ef0123 main.seq intro.seq`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := sequenceRoot
		if renameDir != "" {
			dir = filepath.Join(sequenceRoot, renameDir)
		}
		if err := seqRepo.Rename(dir, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("renamed %s -> %s\n", args[0], args[1])
		return nil
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir [name]",
	Short: "Create a new effect folder under the sequence root",
	Long: `Create a new ef#### effect folder. Without an argument the next
free folder number is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		} else {
			folders, err := seqRepo.ScanRoot(sequenceRoot)
			if err != nil {
				return err
			}
			var names []string
			for _, folder := range folders {
				names = append(names, folder.Name)
			}
			name = domain.SuggestFolderName(names)
		}

		path, err := seqRepo.CreateFolder(sequenceRoot, name)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var newseqCmd = &cobra.Command{
	Use:   "newseq <folder> <name>",
	Short: "Create a new sequence file inside an effect folder",
	Long: `Create a .seq file inside an effect folder under the sequence
root. The extension is added when missing. With --from the new file
starts with that file's contents; otherwise it starts empty.

Examples:
  memoriakit-cli newseq ef0123 intro
  memoriakit-cli newseq ef0123 hit.seq --from base.seq`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := ""
		if newseqFrom != "" {
			data, err := os.ReadFile(newseqFrom)
			if err != nil {
				return err
			}
			body = string(data)
		}
		path, err := seqRepo.CreateFile(filepath.Join(sequenceRoot, args[0]), args[1], body)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	renameCmd.Flags().StringVar(&renameDir, "dir", "", "effect folder containing the file to rename")
	newseqCmd.Flags().StringVar(&newseqFrom, "from", "", "file whose contents seed the new sequence")
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(newseqCmd)
}
