// Command nwm-retrieve pulls a multi-decade daily streamflow series for a
// set of river sites out of the NWM retrospective archive and writes it as a
// single long-form CSV table.
//
// Usage:
//
//	nwm-retrieve \
//	  -sites sites.csv \
//	  -out flows.csv \
//	  -start 1979-02-01 -end 2020-01-31 \
//	  -stats-out summary.csv \
//	  -observed-dir observed/
//
// Service settings (archive URL, worker count, timeouts) come from the
// environment; see internal/config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/bamaecohydro/NWM-Sipsey/internal/adapter/archive"
	httpadapter "github.com/bamaecohydro/NWM-Sipsey/internal/adapter/http"
	"github.com/bamaecohydro/NWM-Sipsey/internal/adapter/netcdf"
	"github.com/bamaecohydro/NWM-Sipsey/internal/adapter/nldi"
	"github.com/bamaecohydro/NWM-Sipsey/internal/adapter/sitefile"
	"github.com/bamaecohydro/NWM-Sipsey/internal/adapter/tableout"
	"github.com/bamaecohydro/NWM-Sipsey/internal/adapter/usgs"
	"github.com/bamaecohydro/NWM-Sipsey/internal/config"
	"github.com/bamaecohydro/NWM-Sipsey/internal/domain"
	"github.com/bamaecohydro/NWM-Sipsey/internal/observability"
	"github.com/bamaecohydro/NWM-Sipsey/internal/pipeline"
)

const dateLayout = "2006-01-02"

func main() {
	if err := run(); err != nil {
		slog.Error("retrieval failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	sitesPath := flag.String("sites", "", "path to the site catalog CSV (required)")
	outPath := flag.String("out", "flows.csv", "output path for the long-form flow table")
	startStr := flag.String("start", "1979-02-01", "first day of the study period (YYYY-MM-DD)")
	endStr := flag.String("end", "2020-01-31", "last day of the study period (YYYY-MM-DD)")
	statsPath := flag.String("stats-out", "", "optional output path for per-site summary statistics")
	observedDir := flag.String("observed-dir", "", "optional directory for observed USGS daily series, one CSV per gaged site")
	flag.Parse()

	if *sitesPath == "" {
		flag.Usage()
		return errors.New("missing required flag: -sites")
	}

	// Local overrides for development; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	period, err := parsePeriod(*startStr, *endStr)
	if err != nil {
		return err
	}

	sites, err := sitefile.Load(*sitesPath)
	if err != nil {
		return fmt.Errorf("loading site catalog: %w", err)
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	logger.Info("starting retrieval",
		"sites", len(sites),
		"start", period.Start.Format(dateLayout),
		"end", period.End.Format(dateLayout),
		"days", period.Days(),
		"workers", cfg.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Resolve coordinates to reach identifiers up front, on the main
	// goroutine. Failed sites keep the sentinel identifier and still appear
	// in the output.
	var resolver domain.FlowlineResolver = nldi.NewClient(cfg.NLDIBaseURL, cfg.NLDITimeout, metrics, logger)
	resolver = nldi.NewCachedResolver(resolver, cfg.ResolverCacheSize, metrics)
	sites = domain.ResolveSites(ctx, sites, resolver, logger)
	targets := domain.TargetSet(sites)

	factory := func() *pipeline.Task {
		fetcher := archive.NewFetcher(cfg.NWMBaseURL, cfg.ProductSuffix, cfg.ScratchDir, runID, cfg.FetchTimeout, metrics, logger)
		extractor := netcdf.NewExtractor(metrics, logger)
		return pipeline.NewTask(fetcher, extractor, logger, metrics)
	}
	orch := pipeline.NewOrchestrator(factory, cfg.Workers, cfg.TaskTimeout, logger, metrics)

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, orch, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	results := orch.Run(ctx, period, targets)
	table := domain.Assemble(runID, results, sites)

	if err := tableout.WriteTable(*outPath, table); err != nil {
		return fmt.Errorf("writing flow table: %w", err)
	}
	logger.Info("wrote flow table", "path", *outPath, "rows", len(table.Rows))

	if *statsPath != "" {
		if err := tableout.WriteSummaries(*statsPath, domain.Summarize(table)); err != nil {
			return fmt.Errorf("writing summaries: %w", err)
		}
		logger.Info("wrote summary statistics", "path", *statsPath)
	}

	if *observedDir != "" {
		writeObserved(ctx, cfg, sites, period, *observedDir, logger)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	logger.Info("retrieval complete")
	return nil
}

// writeObserved exports observed USGS daily series for every cataloged site
// that carries a gage identifier. Failures here never fail the run; the
// simulated table is already on disk.
func writeObserved(ctx context.Context, cfg *config.Config, sites []domain.Site, period domain.StudyPeriod, dir string, logger *slog.Logger) {
	var observed domain.ObservationService = usgs.NewClient(cfg.NWISBaseURL, cfg.NWISTimeout, logger)

	for _, s := range sites {
		if s.USGSID == "" {
			continue
		}
		values, err := observed.DailyValues(ctx, s.USGSID, period)
		if err != nil {
			logger.Warn("skipping observed series", "site", s.Name, "usgs_id", s.USGSID, "error", err)
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("observed-%s.csv", s.USGSID))
		if err := tableout.WriteObserved(path, s.Name, s.USGSID, values); err != nil {
			logger.Warn("writing observed series", "site", s.Name, "path", path, "error", err)
			continue
		}
		logger.Info("wrote observed series", "site", s.Name, "path", path, "values", len(values))
	}
}

func parsePeriod(start, end string) (domain.StudyPeriod, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return domain.StudyPeriod{}, fmt.Errorf("parsing -start: %w", err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return domain.StudyPeriod{}, fmt.Errorf("parsing -end: %w", err)
	}
	return domain.NewStudyPeriod(s, e)
}
