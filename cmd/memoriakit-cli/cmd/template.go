package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"memoriakit/internal/domain"
)

var (
	templateValues []string
	templateCopy   bool
	templateSlot   int
	exportPackName string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "List, render, import, export, and insert entry templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, tpl := range registry.List() {
			fmt.Printf("%s/%s  [%s]", tpl.Category, tpl.Name, tpl.Kind)
			if len(tpl.Placeholders) > 0 {
				names := make([]string, len(tpl.Placeholders))
				for i, p := range tpl.Placeholders {
					names[i] = p.Name
				}
				fmt.Printf("  {%s}", strings.Join(names, ", "))
			}
			fmt.Println()
			if tpl.Description != "" {
				fmt.Printf("    %s\n", tpl.Description)
			}
		}
		return nil
	},
}

var templateRenderCmd = &cobra.Command{
	Use:   "render <category> <name>",
	Short: "Render a template to stdout or the clipboard",
	Long: `Render a template with the placeholder values given via --set.
Every placeholder in the body must receive a value; missing ones are
reported together. With --copy the result goes to the clipboard
instead of stdout.

Example:
  memoriakit-cli template render Defense auto-potion --set id=11 --set condition=IsDamaged`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := lookupTemplate(args[0], args[1])
		if err != nil {
			return err
		}

		rendered, err := tpl.Render(parseValues(templateValues))
		if err != nil {
			return err
		}

		if templateCopy {
			if err := clipboard.WriteAll(rendered); err != nil {
				return fmt.Errorf("copying to clipboard: %w", err)
			}
			fmt.Fprintln(os.Stderr, "copied to clipboard")
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

var templateInsertCmd = &cobra.Command{
	Use:   "insert <category> <name>",
	Short: "Render a template and insert it into the edited file",
	Long: `Render a template and insert the result into the file selected by
--file: appended by default, or replacing the entry at --slot (the
replaced entry must be of the same kind).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := lookupTemplate(args[0], args[1])
		if err != nil {
			return err
		}

		ctx := cmdContext()
		session, err := openSession(ctx)
		if err != nil {
			return err
		}
		if err := session.InsertTemplate(ctx, tpl, parseValues(templateValues), templateSlot); err != nil {
			return err
		}
		return finishEdit(ctx, session)
	},
}

var templateImportCmd = &cobra.Command{
	Use:   "import <pack.json>",
	Short: "Import a template pack",
	Long: `Validate and import a template pack. The import is all-or-nothing:
a malformed entry or a duplicate rejects the whole pack. On success
the pack file is copied into the template directory so future runs
load it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		templates, err := registry.ImportPack(f)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d templates\n", len(templates))

		if templateDir == "" {
			fmt.Fprintln(os.Stderr, "no template directory configured; pack not persisted")
			return nil
		}
		if err := os.MkdirAll(templateDir, 0755); err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		dest := filepath.Join(templateDir, filepath.Base(args[0]))
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return fmt.Errorf("persisting pack: %w", err)
		}
		fmt.Printf("saved to %s\n", dest)
		return nil
	},
}

var templateExportCmd = &cobra.Command{
	Use:   "export <out.json> [name...]",
	Short: "Export templates as a pack",
	Long: `Export the named templates (or all templates when no names are
given) to a pack file in deterministic order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		if err := registry.ExportPack(f, exportPackName, args[1:]); err != nil {
			os.Remove(args[0])
			return err
		}
		fmt.Printf("exported to %s\n", args[0])
		return nil
	},
}

func lookupTemplate(category, name string) (domain.Template, error) {
	for _, tpl := range registry.Find(name) {
		if tpl.Category == category {
			return tpl, nil
		}
	}
	return domain.Template{}, fmt.Errorf("no template %q in category %q", name, category)
}

// parseValues turns repeated --set key=value flags into a map.
func parseValues(pairs []string) map[string]string {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		if k, v, ok := strings.Cut(pair, "="); ok {
			values[k] = v
		}
	}
	return values
}

func init() {
	for _, c := range []*cobra.Command{templateRenderCmd, templateInsertCmd} {
		c.Flags().StringArrayVar(&templateValues, "set", nil, "placeholder value as key=value (repeatable)")
	}
	templateRenderCmd.Flags().BoolVar(&templateCopy, "copy", false, "copy the rendered text to the clipboard")
	templateInsertCmd.Flags().IntVar(&templateSlot, "slot", -1, "entry index to replace (default: append)")
	templateExportCmd.Flags().StringVar(&exportPackName, "pack-name", "export", "name recorded in the pack file")

	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateRenderCmd)
	templateCmd.AddCommand(templateInsertCmd)
	templateCmd.AddCommand(templateImportCmd)
	templateCmd.AddCommand(templateExportCmd)
	rootCmd.AddCommand(templateCmd)
}
