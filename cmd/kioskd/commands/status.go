package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/kioskd/pkg/session"
)

var (
	statusAddr string
	statusJSON bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running daemon's session status",
	Long: `Query a running kioskd daemon's /mode endpoint and display the
desktop session state: per-service supervisor states, whether the stack
is running, and the current kiosk mode.

Examples:
  # Query the default address
  kioskd status

  # Query a custom address
  kioskd status --addr 127.0.0.1:9100

  # Raw JSON output
  kioskd status --json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "127.0.0.1:9001", "daemon address (host:port)")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the raw JSON response")
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + statusAddr + "/mode")
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s: %w", statusAddr, err)
	}
	defer resp.Body.Close()

	var payload struct {
		session.Status
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("unexpected response from daemon: %w", err)
	}

	if statusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Printf("Stack running:  %t\n", payload.Running)
	fmt.Printf("Current mode:   %s\n", payload.CurrentMode)
	fmt.Printf("Kiosk script:   %s\n", payload.KioskScript)
	fmt.Println("Services:")
	for name, state := range payload.Services {
		fmt.Printf("  %-20s %s\n", name, state)
	}
	if payload.LastSwitchTS > 0 {
		fmt.Printf("Last switch:    %s\n", formatTS(payload.LastSwitchTS))
	}
	if payload.LastApplyTS > 0 {
		fmt.Printf("Last apply:     %s\n", formatTS(payload.LastApplyTS))
	}
	return nil
}

func formatTS(unixSec float64) string {
	return time.Unix(int64(unixSec), 0).Format("2006-01-02 15:04:05")
}
