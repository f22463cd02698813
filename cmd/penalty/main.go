package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/penalty"
	"github.com/fwojciec/penalty/excelize"
	penaltyfs "github.com/fwojciec/penalty/fs"
	"github.com/fwojciec/penalty/gemini"
	"github.com/fwojciec/penalty/goquery"
	penaltyhttp "github.com/fwojciec/penalty/http"
	"github.com/fwojciec/penalty/pdftotext"
	"github.com/fwojciec/penalty/reconcile"
	"github.com/fwojciec/penalty/rod"
	penaltyslog "github.com/fwojciec/penalty/slog"
	"github.com/fwojciec/penalty/sqlite"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Configuration file path. Set before calling Run().
	ConfigPath string

	// Database path. Overrides the configured path when set.
	DBPath string

	// Now returns the current time.
	Now func() time.Time

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPath: defaultConfigPath(),
		Now:        time.Now,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Now:    m.Now,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("penalty"),
		kong.Description("Track OFAC civil penalties and enforcement actions."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'penalty --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := LoadConfig(m.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set PENALTY_CONFIG to use a different config file\n")
		return err
	}
	if m.DBPath != "" {
		cfg.DBPath = m.DBPath
	}
	deps.Config = cfg

	level, _ := parseLogLevel(cfg.LogLevel)
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	m.DB = sqlite.NewDB(cfg.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PENALTY_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", cfg.DBPath, err)
	}
	defer m.Close()

	deps.DB = m.DB
	deps.Records = sqlite.NewRecordService(m.DB)
	deps.Documents = sqlite.NewDocumentService(m.DB)
	deps.Search = sqlite.NewSearchService(m.DB)
	deps.Maintenance = sqlite.NewMaintenanceService(m.DB)
	deps.Freshness = penaltyfs.NewFreshnessStore(cfg.StateFile())

	// Wire command-specific dependencies based on command
	switch strings.Fields(kongCtx.Command())[0] {
	case "sync":
		pages, err := newPageFetcher(cfg, logger)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed when site.browser is enabled")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer pages.Close()

		deps.Reconciler = newReconciler(cfg, logger, pages, deps.Records, deps.Documents)
	case "excerpts":
		deps.Extractor = newExtractor(cfg, logger)
	case "export":
		deps.Exporter = excelize.NewExporter()
	case "ask":
		if cfg.Gemini.APIKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		asker := gemini.NewAsker(client, deps.Search)
		asker.Model = cfg.Gemini.Model
		if tokens, err := gemini.NewTokenCounter(cfg.Gemini.Model); err != nil {
			logger.Warn("prompt budget disabled", "model", cfg.Gemini.Model, "err", err)
		} else {
			asker.Tokens = tokens
		}
		deps.Asker = asker
	}

	return kongCtx.Run(deps)
}

// newPageFetcher returns the fetcher used for the year pages.
func newPageFetcher(cfg *Config, logger *slog.Logger) (penalty.Fetcher, error) {
	if cfg.Site.Browser {
		opts := []rod.Option{rod.WithFetchTimeout(cfg.Timeout())}
		if cfg.Site.UserAgent != "" {
			opts = append(opts, rod.WithUserAgent(cfg.Site.UserAgent))
		}
		fetcher, err := rod.NewFetcher(opts...)
		if err != nil {
			return nil, err
		}
		return penaltyslog.NewLoggingFetcher(fetcher, logger), nil
	}
	return penaltyslog.NewLoggingFetcher(newHTTPFetcher(cfg), logger), nil
}

func newHTTPFetcher(cfg *Config) *penaltyhttp.Fetcher {
	var opts []penaltyhttp.Option
	if d := cfg.Timeout(); d > 0 {
		opts = append(opts, penaltyhttp.WithTimeout(d))
	}
	if cfg.Site.UserAgent != "" {
		opts = append(opts, penaltyhttp.WithUserAgent(cfg.Site.UserAgent))
	}
	return penaltyhttp.NewFetcher(opts...)
}

func newExtractor(cfg *Config, logger *slog.Logger) penalty.TextExtractor {
	return penaltyslog.NewLoggingTextExtractor(pdftotext.NewExtractor(cfg.PDFToText.Path, nil), logger)
}

// newReconciler wires the sync pipeline: year pages through pages, documents
// downloaded over plain HTTP at the configured rate.
func newReconciler(cfg *Config, logger *slog.Logger, pages penalty.Fetcher, records penalty.RecordService, documents penalty.DocumentService) *reconcile.Reconciler {
	rows := goquery.NewRowSource(pages, cfg.Site.PageURL)

	return &reconcile.Reconciler{
		Rows:    penaltyslog.NewLoggingRowSource(rows, logger),
		Records: records,
		Ingester: &reconcile.Ingester{
			Records:    records,
			Documents:  documents,
			Downloader: penaltyslog.NewLoggingDownloader(newHTTPFetcher(cfg), logger),
			Extractor:  newExtractor(cfg, logger),
			Limiter:    reconcile.NewDomainLimiter(cfg.Site.DownloadRPS),
			BaseURL:    cfg.Site.BaseURL,
			IDScheme:   cfg.Scheme(),
			Logger:     logger,
		},
		Logger: logger,
	}
}
