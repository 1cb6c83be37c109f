package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/no-panic/callserver/internal/config"
	"github.com/no-panic/callserver/internal/server"
	"github.com/no-panic/callserver/internal/signaling"
)

var (
	flagEnvFile      string
	flagAddr         string
	flagOrigins      string
	flagEventRate    float64
	flagEventBurst   int
	flagSendBuffer   int
	flagStrictSignal bool
	flagReportErrors bool
	flagSTUN         string
	flagTURN         string
	flagTURNUser     string
	flagTURNPass     string
	flagICEServers   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the signaling server",
	Long: `Run the signaling server.

Every flag falls back to an environment variable (also read from .env) and
then to a built-in default.

Examples:
  callserver serve
  callserver serve --addr :9000 --origins https://app.nopanic.com.br
  callserver serve --turn turn.nopanic.com.br --turn-user nopanic --turn-pass secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(serveOptions(cmd))
		if err != nil {
			return err
		}

		logger := slog.Default()
		hub := signaling.NewHub(signaling.HubOptions{
			Relay:        signaling.RelayOptions{RequireMembership: cfg.RequireMembership},
			ReportErrors: cfg.ReportErrors,
			Logger:       logger,
		})

		return server.New(cfg, hub, logger).Run(cmd.Context())
	},
}

// serveOptions passes on only the flags the user actually set, so unset
// flags fall through to the environment.
func serveOptions(cmd *cobra.Command) config.Options {
	opts := config.Options{
		EnvFile:        flagEnvFile,
		Addr:           flagAddr,
		AllowedOrigins: flagOrigins,
		STUNServer:     flagSTUN,
		TURNServer:     flagTURN,
		TURNUser:       flagTURNUser,
		TURNPass:       flagTURNPass,
		ICEServers:     flagICEServers,
	}
	flags := cmd.Flags()
	if flags.Changed("event-rate") {
		opts.EventRate = &flagEventRate
	}
	if flags.Changed("event-burst") {
		opts.EventBurst = &flagEventBurst
	}
	if flags.Changed("send-buffer") {
		opts.SendBuffer = &flagSendBuffer
	}
	if flags.Changed("strict-signal") {
		opts.RequireMembership = &flagStrictSignal
	}
	if flags.Changed("report-errors") {
		opts.ReportErrors = &flagReportErrors
	}
	return opts
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()
	f.StringVar(&flagEnvFile, "env-file", "", "Path of the .env file (default .env)")
	f.StringVarP(&flagAddr, "addr", "a", "", "Listen address [ADDR] (default :8080)")
	f.StringVarP(&flagOrigins, "origins", "o", "", "Comma separated allowed origins [ALLOWED_ORIGINS] (default *)")
	f.Float64Var(&flagEventRate, "event-rate", config.DefaultEventRate, "Events per second accepted per connection, 0 disables [EVENT_RATE]")
	f.IntVar(&flagEventBurst, "event-burst", config.DefaultEventBurst, "Burst size of the per connection limit [EVENT_BURST]")
	f.IntVar(&flagSendBuffer, "send-buffer", config.DefaultSendBuffer, "Outbound queue length per connection [SEND_BUFFER]")
	f.BoolVar(&flagStrictSignal, "strict-signal", false, "Drop signals for rooms the sender has not joined [SIGNAL_REQUIRE_MEMBERSHIP]")
	f.BoolVar(&flagReportErrors, "report-errors", false, "Answer dropped events with an error message [REPORT_ERRORS]")
	f.StringVarP(&flagSTUN, "stun", "s", "", "STUN server URL [STUN_SERVER]")
	f.StringVarP(&flagTURN, "turn", "t", "", "TURN server host [TURN_SERVER]")
	f.StringVarP(&flagTURNUser, "turn-user", "u", "", "TURN username [TURN_USERNAME]")
	f.StringVarP(&flagTURNPass, "turn-pass", "p", "", "TURN password [TURN_PASSWORD]")
	f.StringVar(&flagICEServers, "ice-servers", "", "ICE servers as a JSON array, replaces --stun/--turn [ICE_SERVERS]")
}
