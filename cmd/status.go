package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/no-panic/callserver/internal/signaling"
	"github.com/no-panic/callserver/internal/ui"
)

const (
	defaultStatusURL = "http://localhost:8080"
	statusTimeout    = 5 * time.Second
)

var (
	flagStatusURL  string
	flagStatusJSON bool
)

var errBadStatus = errors.New("unexpected response from server")

// serverReport is what the status command collects.
type serverReport struct {
	Server     string           `json:"server"`
	Stats      signaling.Stats  `json:"status"`
	ICEServers []iceServerEntry `json:"iceServers"`
}

type iceServerEntry struct {
	URLs     []string `json:"urls"`
	Username string   `json:"username,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connections, rooms and ICE servers of a running server",
	Long: `Query a running call server.

Examples:
  callserver status
  callserver status --url https://call.nopanic.com.br --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		base := statusBase(flagStatusURL)

		ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
		defer cancel()

		stopSpinner := func() {}
		if !flagStatusJSON {
			stopSpinner = ui.RunConnectionSpinner("Querying " + base + "...")
		}
		report, err := fetchReport(ctx, http.DefaultClient, base)
		stopSpinner()
		if err != nil {
			return err
		}

		return printReport(cmd.OutOrStdout(), report, flagStatusJSON)
	},
}

// statusBase resolves the server URL: flag, then CALLSERVER_URL, then the default.
func statusBase(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("CALLSERVER_URL"); v != "" {
		return v
	}
	return defaultStatusURL
}

func fetchReport(ctx context.Context, client *http.Client, base string) (*serverReport, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", base)
	}

	report := &serverReport{Server: u.String()}
	if err := getJSON(ctx, client, u.JoinPath("status").String(), &report.Stats); err != nil {
		return nil, err
	}
	if err := getJSON(ctx, client, u.JoinPath("ice-servers").String(), &report.ICEServers); err != nil {
		return nil, err
	}
	return report, nil
}

func getJSON(ctx context.Context, client *http.Client, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("query %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("query %s: %w: %s", target, errBadStatus, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}
	return nil
}

func printReport(w io.Writer, report *serverReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	rows := make([]ui.ICEServerRow, len(report.ICEServers))
	for i, s := range report.ICEServers {
		rows[i] = ui.ICEServerRow{URLs: s.URLs, Username: s.Username}
	}

	fmt.Fprintln(w, ui.StatusView(ui.StatusSummary{
		Server:      report.Server,
		Connections: report.Stats.Connections,
		Rooms:       report.Stats.Rooms,
	}))
	fmt.Fprintln(w, ui.TitleStyle.Render("ICE servers"))
	fmt.Fprintln(w, ui.ICEServersView(rows))
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&flagStatusURL, "url", "", "Base URL of the server [CALLSERVER_URL] (default "+defaultStatusURL+")")
	statusCmd.Flags().BoolVar(&flagStatusJSON, "json", false, "Print the report as JSON")
}
