package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"memoriakit/internal/domain"
)

var listPrefix string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the entries of the edited file",
	Long: `List the entries of the file selected by --file: index, kind,
entry ID, and header comment.

Examples:
  memoriakit-cli list -f AbilityFeatures.txt
  memoriakit-cli list -f AbilityFeatures.txt --prefix '>SA'
  memoriakit-cli list -f ef0123/main.seq`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext()
		session, err := openSession(ctx)
		if err != nil {
			return err
		}

		doc := session.Document()
		indices := make([]int, 0, len(doc.Blocks))
		if listPrefix == "" {
			for i := range doc.Blocks {
				indices = append(indices, i)
			}
		} else {
			indices = doc.FilterByHeaderPrefix(listPrefix)
		}

		for _, i := range indices {
			b := &doc.Blocks[i]
			fmt.Printf("[%d] %s\n", i, describeBlock(b))
		}
		return nil
	},
}

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List the effect folders under the sequence root",
	RunE: func(cmd *cobra.Command, args []string) error {
		folders, err := seqRepo.ScanRoot(sequenceRoot)
		if err != nil {
			return err
		}
		for _, folder := range folders {
			fmt.Printf("%s  (%d files)\n", folder.Name, len(folder.Files))
			for _, file := range folder.Files {
				fmt.Printf("  %s\n", file)
			}
		}

		var names []string
		for _, folder := range folders {
			names = append(names, folder.Name)
		}
		fmt.Printf("next: %s\n", domain.SuggestFolderName(names))
		return nil
	},
}

func describeBlock(b *domain.Block) string {
	switch b.Kind {
	case domain.KindInstruction:
		op, _ := b.Field("Op")
		return fmt.Sprintf("%s  %s", b.Kind, op)
	case domain.KindComment:
		text, _ := b.Field("Text")
		return fmt.Sprintf("%s  %s", b.Kind, text)
	case domain.KindBlank:
		return b.Kind.String()
	case domain.KindUnknown:
		return fmt.Sprintf("%s  %s", b.Kind, b.Header())
	default:
		comment, _ := b.Field("Comment")
		return fmt.Sprintf("%s %s  %s", b.Kind, domain.EntryID(b), comment)
	}
}

func init() {
	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "only list entries whose header starts with this prefix")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(foldersCmd)
}
