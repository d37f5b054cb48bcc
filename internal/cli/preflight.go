package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nearfac/internal/distmatrix"
)

// preflightCmd represents the preflight command
var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Check network connectivity and API credential",
	Long: `Preflight runs the same advisory checks the run command performs
before a batch: an outbound connectivity probe and a one-element
Distance Matrix query to verify the API key.

Example:
  NEARFAC_API_KEY=... nearfac preflight`,
	RunE: runPreflight,
}

func init() {
	rootCmd.AddCommand(preflightCmd)
}

func runPreflight(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Fprintf(os.Stderr, "Testing network connectivity...\n")
	if err := distmatrix.CheckNetwork(ctx, distmatrix.DefaultProbeURL, 10*time.Second); err != nil {
		return fmt.Errorf("network check failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Network reachable\n")

	key := apiKey()
	if key == "" {
		return fmt.Errorf("no API key: set NEARFAC_API_KEY or GOOGLE_MAPS_API_KEY")
	}

	fmt.Fprintf(os.Stderr, "Testing API connection...\n")
	client := distmatrix.NewClient(key, 30*time.Second, "nearfac/0.1")
	if err := client.CheckAPI(ctx); err != nil {
		return fmt.Errorf("API check failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ API credential accepted\n")

	return nil
}
