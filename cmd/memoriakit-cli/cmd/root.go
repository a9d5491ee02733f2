package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"memoriakit/internal/adapters/filesystem"
	"memoriakit/internal/application"
	"memoriakit/internal/config"
	"memoriakit/internal/ctxlog"
	"memoriakit/internal/domain"
	"memoriakit/internal/ports"
)

var (
	featuresPath string
	sequenceRoot string
	templateDir  string
	asSequence   bool
	noSave       bool
	verbose      bool

	cfg      *config.Config
	store    ports.DocumentStore
	seqRepo  ports.SequenceRepository
	registry *application.TemplateRegistry
)

var rootCmd = &cobra.Command{
	Use:   "memoriakit-cli",
	Short: "CLI for editing FF9 ability-features and battle SFX sequence files",
	Long: `memoriakit-cli edits Memoria mod files from the command line:
ability-features entry files (>SA / >AA blocks) and battle special
effect sequence files (ef#### folders of .seq files).

Every edit re-serializes the file byte-identically outside the changed
entry, and writes go through an atomic temp-file-then-rename.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if featuresPath == "" {
			featuresPath = cfg.FeaturesPath
		}
		if sequenceRoot == "" {
			sequenceRoot = cfg.SequenceRoot
		}
		if templateDir == "" {
			templateDir = cfg.TemplateDir
		}

		store = filesystem.NewStore()
		seqRepo = filesystem.NewSequenceRepo()

		registry = application.NewTemplateRegistry()
		if templateDir != "" {
			if _, err := registry.LoadPackDir(cmdContext(), templateDir); err != nil {
				slog.Warn("could not load template directory", "dir", templateDir, "error", err)
			}
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&featuresPath, "file", "f", "", "path to the file to edit (default from config)")
	rootCmd.PersistentFlags().StringVarP(&sequenceRoot, "root", "r", "", "path to the battle SFX sequence root (default from config)")
	rootCmd.PersistentFlags().StringVar(&templateDir, "templates", "", "directory of template pack JSON files (default from config)")
	rootCmd.PersistentFlags().BoolVar(&asSequence, "seq", false, "treat the edited file as a sequence file regardless of extension")
	rootCmd.PersistentFlags().BoolVar(&noSave, "no-save", false, "apply the edit in memory and print the result without writing the file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func cmdContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.Default())
}

// fileFormat decides the parse format of the edited file: the --seq
// flag forces sequence parsing, otherwise the .seq extension does.
func fileFormat(path string) domain.Format {
	if asSequence || isSeqPath(path) {
		return domain.FormatSequence
	}
	return domain.FormatFeatures
}

func isSeqPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), domain.SeqExtension)
}

// openSession opens the file selected by --file.
func openSession(ctx context.Context) (*application.Session, error) {
	return application.Open(ctx, store, seqRepo, featuresPath, fileFormat(featuresPath))
}

// finishEdit saves the session, or prints the edited document when
// --no-save is set.
func finishEdit(ctx context.Context, session *application.Session) error {
	if noSave {
		fmt.Print(session.Document().Serialize())
		return nil
	}
	return session.Save(ctx)
}
