package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"ai-research-agent/internal/service"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <request>",
	Short: "Research a single request and exit",
	Long:  `Run the full pipeline once. The command fails when no report could be written.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := startApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.container.Pipeline.Run(ctx, strings.Join(args, " "))
	fmt.Fprintf(cmd.OutOrStdout(), "Session logs: %s\n", a.session.Dir)
	if result.FinalState != string(service.StateDone) {
		return fmt.Errorf("research aborted: %s", result.FailureReason)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Report.Location)
	return nil
}
