package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/no-panic/callserver/internal/logging"
	"github.com/no-panic/callserver/internal/ui"
	"github.com/no-panic/callserver/internal/version"
)

var flagLogLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "callserver",
	Short: "WebRTC signaling server for no_panic video sessions",
	Long: `callserver relays WebRTC signaling (SDP offers/answers and ICE candidates)
between the patient and the therapist of a no_panic session. Browsers join the
room named after their session over a WebSocket and the server forwards their
signaling payloads to the other members of the room.`,
	Version: version.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(flagLogLevel)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError(err.Error())
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL, else info)")
}
