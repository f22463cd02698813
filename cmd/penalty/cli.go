package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/penalty"
	"github.com/fwojciec/penalty/reconcile"
	"github.com/fwojciec/penalty/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	DB          *sqlite.DB
	Records     penalty.RecordService
	Documents   penalty.DocumentService
	Search      penalty.SearchService
	Maintenance penalty.MaintenanceService
	Freshness   penalty.FreshnessStore
	Reconciler  *reconcile.Reconciler
	Extractor   penalty.TextExtractor
	Exporter    penalty.Exporter
	Asker       penalty.Asker
	Config      *Config
	Logger      *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d *Dependencies) config() *Config {
	if d.Config == nil {
		return DefaultConfig()
	}
	return d.Config
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log debug output to stderr"`

	Sync     SyncCmd     `cmd:"" help:"Synchronize stored actions with the published year pages"`
	Search   SearchCmd   `cmd:"" help:"Search actions by name and document text"`
	Excerpts ExcerptsCmd `cmd:"" help:"Show matching excerpts of one document"`
	Status   StatusCmd   `cmd:"" help:"Show what is stored and when it was last synchronized"`
	Repair   RepairCmd   `cmd:"" help:"Make positional identifiers carry the year of their action"`
	Erase    EraseCmd    `cmd:"" help:"Delete every stored action and document"`
	Export   ExportCmd   `cmd:"" help:"Export search results to an Excel workbook"`
	Import   ImportCmd   `cmd:"" help:"Import actions from a legacy database"`
	Ask      AskCmd      `cmd:"" help:"Ask a question about the documents of matching actions"`
}

// QueryFlags select records the way the search command does.
type QueryFlags struct {
	Mode string `short:"m" default:"exact" help:"Match mode: exact, all or any"`
	From string `help:"Earliest action date (YYYY-MM-DD)"`
	To   string `help:"Latest action date (YYYY-MM-DD)"`
}

// SyncCmd is the "sync" subcommand.
type SyncCmd struct {
	From   int           `help:"First year to synchronize (default: current year)"`
	To     int           `help:"Last year to synchronize (default: current year)"`
	All    bool          `help:"Synchronize every year since the first published one"`
	MaxAge time.Duration `name:"max-age" help:"Skip when the last sync is newer than this (default from config)"`
	Force  bool          `short:"f" help:"Synchronize even when the last sync is recent"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query    string `arg:"" optional:"" help:"Text to look for (empty lists everything)"`
	Page     int    `short:"p" default:"1" help:"Result page to show"`
	PerPage  int    `name:"per-page" default:"20" help:"Results per page"`
	Excerpts int    `default:"10" help:"Excerpts shown per document (0 hides them)"`

	QueryFlags `embed:""`
}

// ExcerptsCmd is the "excerpts" subcommand.
type ExcerptsCmd struct {
	Query  string `arg:"" help:"Text to look for"`
	URL    string `help:"URL of a stored document"`
	File   string `type:"existingfile" help:"PDF or text file to search instead of a stored document"`
	Mode   string `short:"m" default:"exact" help:"Match mode: exact, all or any"`
	Offset int    `help:"Excerpts to skip"`
	Limit  int    `short:"n" default:"10" help:"Excerpts to show (0 shows all)"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct{}

// RepairCmd is the "repair" subcommand.
type RepairCmd struct {
	DryRun bool `name:"dry-run" help:"Show the renames without applying them"`
}

// EraseCmd is the "erase" subcommand.
type EraseCmd struct {
	Force bool `help:"Confirm deletion"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Output  string `arg:"" type:"path" help:"Workbook to write (.xlsx)"`
	Query   string `short:"q" help:"Text to look for (empty exports everything)"`
	TextDir string `name:"text-dir" type:"path" help:"Also write the text of every exported document below this directory"`

	QueryFlags `embed:""`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	Path string `arg:"" type:"existingfile" help:"Legacy database file"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask about the enforcement documents"`
	Query    string `short:"q" help:"Restrict sources to actions matching this text"`

	QueryFlags `embed:""`
}

// query builds the search query for text from the flags.
func (f *QueryFlags) query(text string) (penalty.SearchQuery, error) {
	mode, err := penalty.ParseMatchMode(f.Mode)
	if err != nil {
		return penalty.SearchQuery{}, err
	}
	from, err := parseDateFlag("from", f.From)
	if err != nil {
		return penalty.SearchQuery{}, err
	}
	to, err := parseDateFlag("to", f.To)
	if err != nil {
		return penalty.SearchQuery{}, err
	}
	q := penalty.SearchQuery{Text: strings.TrimSpace(text), Mode: mode, From: from, To: to}
	if err := q.Validate(); err != nil {
		return penalty.SearchQuery{}, err
	}
	return q, nil
}

// parseDateFlag parses a YYYY-MM-DD flag value. An empty value is zero.
func parseDateFlag(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, penalty.Errorf(penalty.EINVALID, "invalid --%s date %q (want YYYY-MM-DD)", name, s)
	}
	return t, nil
}
