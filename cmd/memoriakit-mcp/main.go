package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"memoriakit/internal/adapters/filesystem"
	mcpadapter "memoriakit/internal/adapters/mcp"
	"memoriakit/internal/application"
	"memoriakit/internal/config"
	"memoriakit/internal/ctxlog"
	"memoriakit/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("memoriakit-mcp: %v", err)
	}

	fileFlag := flag.String("file", cfg.FeaturesPath, "path to the file to edit")
	seqFlag := flag.Bool("seq", false, "treat the file as a sequence file regardless of extension")
	templatesFlag := flag.String("templates", cfg.TemplateDir, "directory of template pack JSON files")
	flag.Parse()

	// MCP speaks on stdout; logs must go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	format := domain.FormatFeatures
	if *seqFlag || strings.EqualFold(filepath.Ext(*fileFlag), domain.SeqExtension) {
		format = domain.FormatSequence
	}

	store := filesystem.NewStore()
	seqRepo := filesystem.NewSequenceRepo()
	session, err := application.Open(ctx, store, seqRepo, *fileFlag, format)
	if err != nil {
		log.Fatalf("memoriakit-mcp: %v", err)
	}

	registry := application.NewTemplateRegistry()
	if *templatesFlag != "" {
		if _, err := registry.LoadPackDir(ctx, *templatesFlag); err != nil {
			logger.Warn("could not load template directory", "dir", *templatesFlag, "error", err)
		}
	}

	mcpServer := server.NewMCPServer(
		"memoriakit-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check — returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, session, registry)
	mcpadapter.RegisterWriteTools(mcpServer, session, registry)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("memoriakit-mcp: %v", err)
	}
}
