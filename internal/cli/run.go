package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nearfac/internal/distmatrix"
	"nearfac/internal/model"
	"nearfac/internal/pipeline"
)

var (
	inputFile      string
	facilitiesFile string
	outputFile     string
	batchSize      int
	concurrency    int
	rateLimit      float64
	burst          int
	timeout        time.Duration
	runTimeout     time.Duration
	maxRetries     int
	noCache        bool
	skipPreflight  bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Match employees to their three nearest facilities",
	Long: `Run loads the employee and facility rosters, resolves road-network
distances for every origin/destination pair through the Distance
Matrix API, ranks the three closest facilities per employee, and
writes an .xlsx report.

The API key is read from NEARFAC_API_KEY, GOOGLE_MAPS_API_KEY, or
the api_key entry of the config file, never from a flag.

Example:
  nearfac run --input input.csv --facilities facilities.csv --output output.xlsx
  nearfac run --concurrency 8 --rate 25 --batch-size 25
  nearfac run --skip-preflight --timeout 1m`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Input/output flags
	runCmd.Flags().StringVar(&inputFile, "input", "input.csv", "employee roster CSV (columns: Name, Employee Zip)")
	runCmd.Flags().StringVar(&facilitiesFile, "facilities", "facilities.csv", "facility roster CSV (columns: Facility Zip, Airport Code)")
	runCmd.Flags().StringVar(&outputFile, "output", "output.xlsx", "output workbook path")

	// Resolver flags
	runCmd.Flags().IntVar(&batchSize, "batch-size", 25, "destinations per distance query (service ceiling 25)")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 4, "concurrent distance queries")
	runCmd.Flags().Float64Var(&rateLimit, "rate", 10, "queries per second (0 = unlimited)")
	runCmd.Flags().IntVar(&burst, "burst", 5, "rate limiter burst size")
	runCmd.Flags().IntVar(&maxRetries, "retries", 3, "attempts per batch before marking it unavailable")
	runCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "timeout for an individual distance query")
	runCmd.Flags().DurationVar(&runTimeout, "run-timeout", 15*time.Minute, "total timeout for the whole run")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the in-run query memo")
	runCmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "skip network and API pre-flight checks")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if !skipPreflight {
		if err := preflight(ctx, cfg); err != nil {
			return err
		}
	}

	p := pipeline.NewPipeline(cfg)

	if verbose {
		fmt.Fprintf(os.Stderr, "Input:      %s\n", inputFile)
		fmt.Fprintf(os.Stderr, "Facilities: %s\n", facilitiesFile)
		fmt.Fprintf(os.Stderr, "Output:     %s\n", outputFile)
		fmt.Fprintf(os.Stderr, "Workers:    %d, batch size %d\n", cfg.Resolver.Workers, cfg.Resolver.BatchSize)
		fmt.Fprintln(os.Stderr)
	}

	summary, err := p.Run(ctx, inputFile, facilitiesFile, outputFile)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ %d employees, %d facilities\n", summary.Employees, summary.Facilities)
	fmt.Fprintf(os.Stderr, "✓ %d matched, %d without a resolvable distance\n", summary.Matched, summary.Unmatched)
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outputFile)

	return nil
}

// buildConfig merges defaults, config file values and flags
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	cfg.APIKey = apiKey()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key: set NEARFAC_API_KEY or GOOGLE_MAPS_API_KEY")
	}

	cfg.HTTP.Timeout = timeout
	cfg.Resolver.BatchSize = batchSize
	cfg.Resolver.Workers = concurrency
	cfg.Resolver.MaxRetries = maxRetries
	cfg.RateLimit.RequestsPerSecond = rateLimit
	cfg.RateLimit.Burst = burst
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose

	return cfg, nil
}

// apiKey resolves the credential: environment first, then the
// api_key entry of the config file viper loaded
func apiKey() string {
	if key := os.Getenv("NEARFAC_API_KEY"); key != "" {
		return key
	}
	if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("api_key")
}

// preflight runs the advisory connectivity checks before the batch
func preflight(ctx context.Context, cfg *model.Config) error {
	if verbose {
		fmt.Fprintf(os.Stderr, "Testing network connectivity...\n")
	}
	if err := distmatrix.CheckNetwork(ctx, distmatrix.DefaultProbeURL, 10*time.Second); err != nil {
		return fmt.Errorf("network check failed (use --skip-preflight to bypass): %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Testing API connection...\n")
	}
	client := distmatrix.NewClient(cfg.APIKey, cfg.HTTP.Timeout, cfg.HTTP.UserAgent)
	if err := client.CheckAPI(ctx); err != nil {
		return fmt.Errorf("API check failed (use --skip-preflight to bypass): %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Pre-flight checks passed\n\n")
	}
	return nil
}
