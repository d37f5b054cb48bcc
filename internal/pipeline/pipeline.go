package pipeline

import (
	"context"
	"fmt"
	"os"

	"nearfac/internal/distmatrix"
	"nearfac/internal/model"
	"nearfac/internal/report"
	"nearfac/internal/resolver"
	"nearfac/internal/roster"
	"nearfac/internal/selector"
	"nearfac/internal/worker"
)

// Pipeline orchestrates the complete matching run: load rosters,
// resolve the distance matrix, rank, write the report.
type Pipeline struct {
	resolver *resolver.Resolver
	config   *model.Config
}

// NewPipeline creates a pipeline with the given configuration, backed
// by the live Distance Matrix API.
func NewPipeline(cfg *model.Config) *Pipeline {
	client := distmatrix.NewClient(cfg.APIKey, cfg.HTTP.Timeout, cfg.HTTP.UserAgent)

	var querier distmatrix.Querier = client
	if cfg.Cache.Enabled {
		querier = distmatrix.NewCachedQuerier(client, cfg.Cache.TTL)
	}

	return newPipeline(cfg, querier)
}

func newPipeline(cfg *model.Config, querier distmatrix.Querier) *Pipeline {
	limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	return &Pipeline{
		resolver: resolver.New(querier, cfg.Resolver, limiter),
		config:   cfg,
	}
}

// Summary reports what a run produced
type Summary struct {
	Employees  int
	Facilities int
	Matched    int // employees with at least one ranked match
	Unmatched  int // employees whose origin resolved no distance
}

// Run executes the full pipeline and writes the report to outputPath
func (p *Pipeline) Run(ctx context.Context, inputPath, facilitiesPath, outputPath string) (*Summary, error) {
	employees, err := roster.LoadEmployees(inputPath)
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}

	facilities, err := roster.LoadFacilities(facilitiesPath)
	if err != nil {
		return nil, fmt.Errorf("load facilities: %w", err)
	}

	origins := roster.UniqueOrigins(employees)

	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Resolving %d origins against %d facilities...\n", len(origins), facilities.Len())
	}

	dm, err := p.resolver.Resolve(ctx, origins, facilities.Zips())
	if err != nil {
		return nil, fmt.Errorf("resolve distances: %w", err)
	}

	rows, err := selector.SelectAll(employees, dm, facilities.Index(), selector.DefaultK)
	if err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	if err := report.Write(outputPath, rows, p.config.Output.Sheet, selector.DefaultK); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	summary := &Summary{
		Employees:  len(employees),
		Facilities: facilities.Len(),
	}
	for _, row := range rows {
		if len(row.Matches) > 0 {
			summary.Matched++
		} else {
			summary.Unmatched++
		}
	}

	return summary, nil
}
