package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/docforge-hq/docforge/internal/analyzer"
	"github.com/docforge-hq/docforge/internal/changelog"
	"github.com/docforge-hq/docforge/internal/config"
	"github.com/docforge-hq/docforge/internal/render"
	"github.com/docforge-hq/docforge/pkg/model"
)

var version = "dev"

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:     "docforge",
		Short:   "DocForge - structural documentation from source trees",
		Long:    `DocForge extracts functions, structs, endpoints and component dependencies from a repository and renders documentation from them.`,
		Version: version,
	}

	// Add subcommands
	rootCmd.AddCommand(docsCmd())
	rootCmd.AddCommand(modelCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(changelogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func analyzePath(path string) (*model.Snapshot, error) {
	project, err := config.LoadProjectConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}
	return analyzer.New(project).Analyze(path)
}

// writeOrPrint writes content to path, or stdout when path is empty.
func writeOrPrint(path, content string) error {
	if path == "" {
		fmt.Print(content)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("wrote document")
	return nil
}

func docsCmd() *cobra.Command {
	var (
		path   string
		output string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Render a markdown overview of a repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := analyzePath(path)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if title == "" {
				title = filepath.Base(mustAbs(path))
			}
			md, err := render.Readme(title, snap)
			if err != nil {
				return err
			}
			return writeOrPrint(output, md)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Repository path to analyze")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Document title (default: directory name)")

	return cmd
}

func modelCmd() *cobra.Command {
	var (
		path   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "model",
		Short: "Extract the structural snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := analyzePath(path)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal snapshot: %w", err)
			}
			return writeOrPrint(output, string(data)+"\n")
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Repository path to analyze")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func graphCmd() *cobra.Command {
	var (
		path   string
		output string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render a PlantUML component diagram",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := analyzePath(path)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if title == "" {
				title = filepath.Base(mustAbs(path))
			}
			return writeOrPrint(output, render.ComponentDiagram(title, snap.Components))
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Repository path to analyze")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Diagram title (default: directory name)")

	return cmd
}

func changelogCmd() *cobra.Command {
	var (
		path   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Generate a changelog from commits since the last tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := changelog.Collect(path)
			if err != nil {
				return fmt.Errorf("failed to collect changelog: %w", err)
			}
			return writeOrPrint(output, cl.Markdown())
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Repository path")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func mustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
