package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ai-research-agent/internal/pkg/logger"
	"ai-research-agent/internal/session"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	transcriptLevel  string
	transcriptLimit  int
	transcriptOffset int
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript <session-dir>",
	Short: "Print a session transcript",
	Long:  `Print the transcript of a session directory (or a transcript file), optionally filtered by level.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscript,
}

func init() {
	transcriptCmd.Flags().StringVar(&transcriptLevel, "level", "", "only show entries of this level (DEBUG, INFO, WARN, ERROR)")
	transcriptCmd.Flags().IntVar(&transcriptLimit, "limit", 0, "maximum entries to show (0 shows all)")
	transcriptCmd.Flags().IntVar(&transcriptOffset, "offset", 0, "entries to skip")
	rootCmd.AddCommand(transcriptCmd)
}

// transcriptPath accepts either a session directory or the transcript file itself.
func transcriptPath(arg string) (string, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return filepath.Join(arg, session.TranscriptFileName), nil
	}
	return arg, nil
}

func runTranscript(cmd *cobra.Command, args []string) error {
	path, err := transcriptPath(args[0])
	if err != nil {
		return err
	}

	entries, err := logger.ReadLogFile(path, strings.ToUpper(transcriptLevel), transcriptLimit, transcriptOffset)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}
	for _, entry := range entries {
		printEntry(cmd.OutOrStdout(), entry)
	}
	return nil
}

var levelColors = map[string]*color.Color{
	"DEBUG": color.New(color.Faint),
	"INFO":  color.New(color.FgCyan),
	"WARN":  color.New(color.FgYellow),
	"ERROR": color.New(color.FgRed, color.Bold),
}

func printEntry(out io.Writer, entry logger.LogEntry) {
	level := entry.Level
	if c, ok := levelColors[level]; ok {
		level = c.Sprintf("%-5s", level)
	}
	fmt.Fprintf(out, "%s %s [%s] %s", entry.Timestamp, level, entry.Module, entry.Message)
	if len(entry.Details) > 0 {
		if details, err := json.Marshal(entry.Details); err == nil {
			fmt.Fprintf(out, " %s", details)
		}
	}
	fmt.Fprintln(out)
}
