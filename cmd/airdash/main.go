package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/lox/airdash/internal/api"
	"github.com/lox/airdash/internal/dataset"
	"github.com/lox/airdash/internal/ingest"
	"github.com/lox/airdash/internal/report"
	"github.com/lox/airdash/internal/store"
)

// stdout receives command output.
var stdout io.Writer = os.Stdout

type CLI struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file'"`

	DataDir string `name:"data-dir" default:"data" env:"AIRDASH_DATA_DIR" help:"Directory holding the station CSV files"`

	Serve    ServeCmd    `cmd:"" default:"withargs" help:"Serve the dashboard"`
	Stations StationsCmd `cmd:"" help:"List stations in registry order"`
	Describe DescribeCmd `cmd:"" help:"Print descriptive statistics for a station"`
	Mirror   MirrorCmd   `cmd:"" help:"Download station CSV files from an FTP server"`
}

type ServeCmd struct {
	DB        string `name:"db" default:"data/airdash.db" env:"AIRDASH_DB" help:"Path to SQLite audit database"`
	Port      string `default:"8080" env:"AIRDASH_PORT" help:"HTTP server port"`
	ReportURL string `name:"report-url" env:"AIRDASH_REPORT_URL" help:"Summary report URL template, {station} is replaced"`
	NoAudit   bool   `name:"no-audit" env:"AIRDASH_NO_AUDIT" help:"Do not record loads and report fetches"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	var st *store.Store
	if !c.NoAudit {
		s, err := store.Open(c.DB)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()
		if err := s.Migrate(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Println("database migrated")
		st = s
	}

	cat, err := ingest.LoadCatalog(st, cli.DataDir)
	if err != nil {
		return fmt.Errorf("load datasets: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := api.NewServer(cat, st, report.NewClient(c.ReportURL), c.Port)
	return server.Run(ctx)
}

type StationsCmd struct{}

func (c *StationsCmd) Run(cli *CLI) error {
	cat, err := dataset.Open(cli.DataDir)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tSTATION\tROWS\tFILE")
	for _, name := range cat.Stations() {
		tbl, _ := cat.Resolve(name)
		pos, _ := cat.Index().Lookup(name)
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", pos, name, tbl.Len(), tbl.File())
	}
	return w.Flush()
}

type DescribeCmd struct {
	Station string   `arg:"" help:"Station name"`
	Columns []string `help:"Columns to summarise (default: all numerical columns)"`
}

func (c *DescribeCmd) Run(cli *CLI) error {
	cat, err := dataset.Open(cli.DataDir)
	if err != nil {
		return err
	}
	tbl, err := cat.Resolve(c.Station)
	if err != nil {
		return err
	}
	stats, err := dataset.Describe(tbl, c.Columns)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax\t")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n", s.Column, s.Count,
			num(s.Mean), num(s.Std), num(s.Min), num(s.P25), num(s.P50), num(s.P75), num(s.Max))
	}
	return w.Flush()
}

func num(f *float64) string {
	if f == nil {
		return "NaN"
	}
	return strconv.FormatFloat(*f, 'f', 4, 64)
}

type MirrorCmd struct {
	Addr      string        `required:"" env:"AIRDASH_FTP_ADDR" help:"FTP server host:port"`
	RemoteDir string        `name:"remote-dir" default:"/" env:"AIRDASH_FTP_DIR" help:"Remote directory holding the CSV files"`
	User      string        `env:"AIRDASH_FTP_USER" help:"FTP user (anonymous when empty)"`
	Password  string        `env:"AIRDASH_FTP_PASSWORD" help:"FTP password"`
	Timeout   time.Duration `default:"30s" env:"AIRDASH_FTP_TIMEOUT" help:"Connection timeout"`
	MaxRetry  time.Duration `name:"max-retry" default:"5m" env:"AIRDASH_FTP_MAX_RETRY" help:"Give up retrying after this long"`
	Force     bool          `help:"Download files even when a local copy of equal size exists"`
}

func (c *MirrorCmd) Run(cli *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := ingest.NewMirror(ingest.MirrorConfig{
		Addr:       c.Addr,
		RemoteDir:  c.RemoteDir,
		User:       c.User,
		Password:   c.Password,
		Timeout:    c.Timeout,
		MaxElapsed: c.MaxRetry,
		Force:      c.Force,
	})
	res, err := m.Sync(ctx, cli.DataDir)
	if err != nil {
		return fmt.Errorf("mirror: %w", err)
	}
	log.Printf("mirror: %d downloaded, %d up to date", len(res.Downloaded), len(res.Skipped))
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("airdash"),
		kong.Description("Air quality dashboard for the Beijing multi-site dataset."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli); err != nil {
		log.Fatalf("%s: %v", ctx.Command(), err)
	}
}
