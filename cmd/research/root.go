package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"ai-research-agent/internal/bootstrap"
	"ai-research-agent/internal/config"
	"ai-research-agent/internal/session"
	"ai-research-agent/internal/tracer"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	flagProvider    string
	flagModel       string
	flagStore       string
	flagFilesDir    string
	flagLogsDir     string
	flagRetention   string
	flagConcurrency int
)

var rootCmd = &cobra.Command{
	Use:   "research",
	Short: "Decompose a research request, research each subtopic and write a report",
	Long: `research turns a free-form request into a topic and a few focused subtopics,
researches each subtopic with a search-augmented model, saves the findings as notes
and synthesizes them into a single markdown report.

Without a subcommand it reads one request per line until exit, quit, q or end of input.`,
	SilenceUsage: true,
	RunE:         runInteractive,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagProvider, "provider", "", "LLM provider: moonshot or ollama (env LLM_PROVIDER)")
	flags.StringVar(&flagModel, "model", "", "model name override (env LLM_MODEL)")
	flags.StringVar(&flagStore, "store", "", "document store: file, postgres, redis or memory (env STORE_BACKEND)")
	flags.StringVar(&flagFilesDir, "files-dir", "", "root directory of the file store (env FILES_DIR)")
	flags.StringVar(&flagLogsDir, "logs-dir", "", "directory for session transcripts (env LOGS_DIR)")
	flags.StringVar(&flagRetention, "notes", "", "note retention between runs: keep or clear (env NOTES_RETENTION)")
	flags.IntVar(&flagConcurrency, "concurrency", 0, "subtopics researched at once (env RESEARCH_CONCURRENCY)")
}

// loadConfig reads the environment and applies flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Load()
	flags := cmd.Flags()

	if flags.Changed("provider") {
		cfg.Ai.LLMProvider = strings.ToLower(flagProvider)
	}
	if flags.Changed("model") {
		cfg.Ai.LLMModel = flagModel
	}
	if flags.Changed("store") {
		cfg.Store.Backend = strings.ToLower(flagStore)
	}
	if flags.Changed("files-dir") {
		cfg.Store.FilesDir = flagFilesDir
	}
	if flags.Changed("logs-dir") {
		cfg.App.LogsDir = flagLogsDir
	}
	if flags.Changed("notes") {
		cfg.Store.NotesRetention = strings.ToLower(flagRetention)
	}
	if flags.Changed("concurrency") {
		cfg.Research.Concurrency = flagConcurrency
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type app struct {
	cfg            *config.Config
	session        *session.Session
	container      *bootstrap.Container
	shutdownTracer func(context.Context) error
}

func startApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(cfg.App.LogsDir, cfg.App.LogConsole, cfg.IsProduction())
	if err != nil {
		return nil, err
	}

	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled)

	container, err := bootstrap.NewContainer(cfg, sess, cmd.OutOrStdout())
	if err != nil {
		_ = sess.Close()
		_ = shutdownTracer(context.Background())
		return nil, err
	}
	if err := container.Start(ctx); err != nil {
		container.Close()
		_ = sess.Close()
		_ = shutdownTracer(context.Background())
		return nil, fmt.Errorf("start progress consumer: %w", err)
	}

	return &app{cfg: cfg, session: sess, container: container, shutdownTracer: shutdownTracer}, nil
}

func (a *app) Close() {
	a.container.Close()
	_ = a.session.Close()
	_ = a.shutdownTracer(context.Background())
}

func isExitCommand(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit", "q":
		return true
	}
	return false
}

func printBanner(out io.Writer, a *app) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintln(out, "AI Research Agent")
	fmt.Fprintf(out, "Provider: %s | Store: %s\n", a.cfg.Ai.LLMProvider, a.cfg.Store.Backend)
	fmt.Fprintf(out, "Session logs: %s\n", a.session.Dir)
	fmt.Fprintln(out, "Type a research request, or 'exit' to quit.")
}

func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := startApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	printBanner(out, a)

	prompt := color.New(color.FgYellow, color.Bold)
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	input := readLines(readCtx, cmd.InOrStdin())
	for {
		prompt.Fprint(out, "\nResearch request: ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			sayGoodbye(out, a)
			return nil
		case in, ok := <-input:
			if !ok {
				sayGoodbye(out, a)
				return nil
			}
			if in.err != nil {
				return in.err
			}
			line = strings.TrimSpace(in.text)
		}

		if line == "" {
			continue
		}
		if isExitCommand(line) {
			sayGoodbye(out, a)
			return nil
		}
		a.container.Pipeline.Run(ctx, line)
	}
}

func sayGoodbye(out io.Writer, a *app) {
	fmt.Fprintf(out, "\nGoodbye. Session logs saved to %s\n", a.session.Dir)
}

type inputLine struct {
	text string
	err  error
}

// readLines feeds lines from r until EOF or ctx is done so the loop can also watch for Ctrl+C.
func readLines(ctx context.Context, r io.Reader) <-chan inputLine {
	ch := make(chan inputLine)
	send := func(in inputLine) bool {
		select {
		case ch <- in:
			return true
		case <-ctx.Done():
			return false
		}
	}
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if !send(inputLine{text: scanner.Text()}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(inputLine{err: err})
		}
	}()
	return ch
}
