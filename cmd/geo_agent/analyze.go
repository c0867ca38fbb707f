package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/geo-visibility/internal/cache"
	"github.com/jonathan/geo-visibility/internal/config"
	"github.com/jonathan/geo-visibility/internal/logging"
	"github.com/jonathan/geo-visibility/internal/observability"
	"github.com/jonathan/geo-visibility/internal/pipeline"
	"github.com/jonathan/geo-visibility/internal/types"
)

var (
	analyzeConfigPath string
	analyzeUser       string
	analyzeOut        string
	analyzeVerbose    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze one website and print the report as JSON",
	Long: `Runs the full analysis pipeline for a URL and writes the AnalysisResult JSON.

With --user the result is reused from, and saved to, the configured store for 24 hours.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json file (environment variables override it)")
	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "User ID (UUID) whose recent analyses may be reused")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Output file (default: stdout)")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print pipeline progress and a report summary to stderr")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	userID, err := parseUserID(analyzeUser)
	if err != nil {
		return err
	}

	cfg, err := config.Load(analyzeConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// stdout carries the report
	logger, err := logging.NewTo(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	var onProgress pipeline.ProgressCallback
	if analyzeVerbose {
		onProgress = progressPrinter(cmd.ErrOrStderr())
	}
	analyzer, err := pipeline.New(ctx, cfg, logger, onProgress)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}
	defer func() { _ = analyzer.Close() }()

	var store cache.Store
	if userID != uuid.Nil {
		st, err := openStorage(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()
		store = st.Store
	}

	service := cache.NewService(analyzer, store, time.Duration(cfg.CacheTTL), logger)
	out, err := service.Analyze(ctx, userID, args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	logger.WithFields(logrus.Fields{"url": out.NormalizedURL, "cached": out.Cached}).Info("analysis complete")

	if analyzeVerbose {
		var result types.AnalysisResult
		if err := json.Unmarshal(out.Body, &result); err != nil {
			logger.WithError(err).Warn("failed to decode report for summary")
		} else {
			observability.NewPrinter(cmd.ErrOrStderr()).PrintSummary(&result)
		}
	}

	return writeReport(cmd.OutOrStdout(), analyzeOut, out.Body)
}

func parseUserID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --user %q: %w", s, err)
	}
	return id, nil
}

// writeReport indents body and writes it to path, or to w when path is empty.
func writeReport(w io.Writer, path string, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	buf.WriteByte('\n')

	if path == "" {
		_, err := w.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func progressPrinter(w io.Writer) pipeline.ProgressCallback {
	return func(e pipeline.ProgressEvent) {
		fmt.Fprintf(w, "[%s] %s\n", e.Step, e.Message)
	}
}
