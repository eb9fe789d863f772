package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/duedate/reminder/internal/service"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Send today's deadline reminder emails",
	Long: `Runs the reminder dispatch once: every reminder whose deadline minus one of
its offsets is today is emailed to its client or group, and each attempt is
recorded in reminder_status. Exits non-zero when any send failed.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runOnce,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.dispatcher.Run(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("reminder run aborted")
	}
	return exitErr(summary, err)
}

// exitErr turns a run result into the command's error; any failed send
// makes the process exit non-zero
func exitErr(summary service.Summary, err error) error {
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d reminder emails failed to send", summary.Failed, summary.Attempted())
	}
	return nil
}
