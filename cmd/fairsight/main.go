// Command fairsight is the terminal consumer of the analysis backend:
// it fetches dashboard data, submits datasets for bias detection and
// explanation, and downloads compliance reports.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/fairsight-ai/fairsight/internal/api"
	"github.com/fairsight-ai/fairsight/internal/config"
	"github.com/fairsight-ai/fairsight/internal/domain"
	"github.com/fairsight-ai/fairsight/internal/history"
	"github.com/fairsight-ai/fairsight/internal/telemetry"
)

const usage = `Usage: fairsight <command> [flags]

Commands:
  summary     Fetch the dashboard summary
  risk        Fetch the per-model risk breakdown
  trend       Fetch the compliance trend
  dashboard   Fetch summary and risk breakdown concurrently
  bias        Submit a dataset for bias detection
  explain     Request a per-instance explanation
  report      Generate and download a compliance report
  history     Show recent calls
`

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	shutdown, err := telemetry.InitTracer("fairsight", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	client := api.New(cfg.API.URL,
		api.WithLogger(logger),
		api.WithTimeouts(cfg.API.Timeout.Request, cfg.API.Timeout.Upload),
	)

	app := &cli{client: client, logger: logger}
	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			// History is a convenience; a broken store must not block calls.
			logger.Warn("call history disabled", slog.String("error", err.Error()))
		} else {
			app.store = store
			defer store.Close()
		}
	}

	if err := app.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) {
			// Callers render Message; the rest is diagnostics.
			fmt.Fprintln(os.Stderr, apiErr.Message)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type cli struct {
	client *api.Client
	logger *slog.Logger
	store  *history.Store
}

func (a *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "summary":
		return a.record(ctx, command, func() (any, error) {
			return a.client.GetSummary(ctx)
		})
	case "risk":
		return a.record(ctx, command, func() (any, error) {
			return a.client.GetModelRisk(ctx)
		})
	case "trend":
		return a.record(ctx, command, func() (any, error) {
			return a.client.GetComplianceTrend(ctx)
		})
	case "dashboard":
		return a.record(ctx, command, func() (any, error) {
			return a.client.FetchDashboard(ctx)
		})
	case "bias":
		return a.runBias(ctx, args)
	case "explain":
		return a.runExplain(ctx, args)
	case "report":
		return a.runReport(ctx, args)
	case "history":
		return a.runHistory(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}

// record runs one backend operation, appends it to the call history,
// and prints the payload as indented JSON.
func (a *cli) record(ctx context.Context, operation string, fn func() (any, error)) error {
	start := time.Now()
	payload, err := fn()
	a.appendHistory(ctx, operation, time.Since(start), err)
	if err != nil {
		return err
	}
	return printJSON(payload)
}

func (a *cli) appendHistory(ctx context.Context, operation string, duration time.Duration, err error) {
	if a.store == nil {
		return
	}
	rec := &history.Record{Operation: operation, Duration: duration}
	if err != nil {
		rec.ErrMessage = err.Error()
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) {
			rec.Status = apiErr.Status
		}
	} else {
		rec.Status = 200
	}
	if err := a.store.Append(ctx, rec); err != nil {
		a.logger.Warn("failed to append call history", slog.String("error", err.Error()))
	}
}

type uploadFlags struct {
	file               string
	modelName          string
	modelVersion       string
	targetVariable     string
	sensitiveAttribute string
}

func registerUploadFlags(fs *flag.FlagSet, f *uploadFlags) {
	fs.StringVar(&f.file, "file", "", "CSV dataset to upload (required)")
	fs.StringVar(&f.modelName, "model", "", "model name (required)")
	fs.StringVar(&f.modelVersion, "version", "1.0", "model version")
	fs.StringVar(&f.targetVariable, "target", "", "target variable column (required)")
	fs.StringVar(&f.sensitiveAttribute, "sensitive", "", "sensitive attribute column (required)")
}

func (f *uploadFlags) open() (api.Upload, func(), error) {
	if f.file == "" || f.modelName == "" || f.targetVariable == "" || f.sensitiveAttribute == "" {
		return api.Upload{}, nil, fmt.Errorf("-file, -model, -target and -sensitive are required")
	}
	fh, err := os.Open(f.file)
	if err != nil {
		return api.Upload{}, nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	return api.Upload{Filename: fh.Name(), Reader: fh}, func() { fh.Close() }, nil
}

func (a *cli) runBias(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bias", flag.ExitOnError)
	var common uploadFlags
	registerUploadFlags(fs, &common)
	privileged := fs.String("privileged", "", "privileged group value (required)")
	unprivileged := fs.String("unprivileged", "", "unprivileged group value (required)")
	fs.Parse(args)

	upload, done, err := common.open()
	if err != nil {
		return err
	}
	defer done()
	if *privileged == "" || *unprivileged == "" {
		return fmt.Errorf("-privileged and -unprivileged are required")
	}

	return a.record(ctx, "bias", func() (any, error) {
		return a.client.DetectBias(ctx, &api.BiasDetectionRequest{
			File:               upload,
			ModelName:          common.modelName,
			ModelVersion:       common.modelVersion,
			TargetVariable:     common.targetVariable,
			SensitiveAttribute: common.sensitiveAttribute,
			PrivilegedGroup:    *privileged,
			UnprivilegedGroup:  *unprivileged,
		})
	})
}

func (a *cli) runExplain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	var common uploadFlags
	registerUploadFlags(fs, &common)
	index := fs.Int("index", 0, "row index of the instance to explain")
	role := fs.String("role", "analyst", "audience role for the narrative")
	fs.Parse(args)

	upload, done, err := common.open()
	if err != nil {
		return err
	}
	defer done()

	return a.record(ctx, "explain", func() (any, error) {
		return a.client.Explain(ctx, &api.ExplainRequest{
			File:               upload,
			ModelName:          common.modelName,
			ModelVersion:       common.modelVersion,
			TargetVariable:     common.targetVariable,
			SensitiveAttribute: common.sensitiveAttribute,
			InstanceIndex:      *index,
			Role:               *role,
		})
	})
}

func (a *cli) runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	var common uploadFlags
	registerUploadFlags(fs, &common)
	privileged := fs.String("privileged", "", "privileged group value (required)")
	unprivileged := fs.String("unprivileged", "", "unprivileged group value (required)")
	role := fs.String("role", "", "report audience (defaults to executive)")
	out := fs.String("out", "compliance-report.pdf", "output path for the report")
	fs.Parse(args)

	upload, done, err := common.open()
	if err != nil {
		return err
	}
	defer done()
	if *privileged == "" || *unprivileged == "" {
		return fmt.Errorf("-privileged and -unprivileged are required")
	}

	start := time.Now()
	document, err := a.client.GenerateComplianceReport(ctx, &api.ComplianceReportRequest{
		File:               upload,
		ModelName:          common.modelName,
		ModelVersion:       common.modelVersion,
		TargetVariable:     common.targetVariable,
		SensitiveAttribute: common.sensitiveAttribute,
		PrivilegedGroup:    *privileged,
		UnprivilegedGroup:  *unprivileged,
		Role:               *role,
	})
	a.appendHistory(ctx, "report", time.Since(start), err)
	if err != nil {
		return err
	}

	if err := os.WriteFile(*out, document, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Printf("wrote %d bytes to %s\n", len(document), *out)
	return nil
}

func (a *cli) runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "number of records to show")
	fs.Parse(args)

	if a.store == nil {
		return fmt.Errorf("call history is disabled")
	}
	records, err := a.store.Recent(ctx, *limit)
	if err != nil {
		return err
	}
	for _, rec := range records {
		status := fmt.Sprintf("%d", rec.Status)
		if rec.ErrMessage != "" {
			status = fmt.Sprintf("%d (%s)", rec.Status, rec.ErrMessage)
		}
		fmt.Printf("%s  %-10s %-30s %s\n",
			rec.CreatedAt.Format(time.RFC3339), rec.Operation, status, rec.Duration.Round(time.Millisecond))
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
