package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	search "github.com/swdunlop/search-go"
	"github.com/swdunlop/search-go/configuration"
	"github.com/swdunlop/search-go/internal/slog"
	"github.com/swdunlop/search-go/nats/worker"
	"github.com/swdunlop/search-go/session"
	"github.com/swdunlop/zugzug-go"
	"github.com/swdunlop/zugzug-go/zug/parser"
)

var tasks = zugzug.Tasks{
	{Name: "run", Use: "steps a search to the end, printing every step", Fn: runSearch, Parse: searchFlags},
	{Name: "repl", Use: "steps a search interactively", Fn: runRepl, Parse: searchFlags},
	{Name: "worker", Use: "runs a NATS worker that holds search sessions", Fn: runWorker, Parse: workerFlags},
	{Name: "client", Use: "steps a search held by a NATS worker interactively", Fn: runClient, Parse: searchFlags},
}

var searchFlags = parser.New(
	parser.String(&flags.Algorithm, "algorithm", "a", "search algorithm, one of kmp, boyer-moore or bm"),
	parser.String(&flags.Text, "text", "t", "text to search"),
	parser.String(&flags.Pattern, "pattern", "p", "pattern to search for"),
	parser.String(&flags.Limit, "limit", "n", "maximum number of steps, zero for no limit"),
	parser.String(&flags.Format, "format", "f", "output format: text, yaml or json"),
	parser.String(&flags.Color, "color", "", "colour output: auto, on or off"),
	parser.String(&flags.Config, "config", "c", "YAML configuration file"),
	parser.Bool(&flags.Quiet, "quiet", "q", false, "only print the outcome of the search"),
)

var workerFlags = parser.New(
	parser.String(&flags.Config, "config", "c", "YAML configuration file"),
)

var flags struct {
	Algorithm, Text, Pattern, Limit, Format, Color, Config string
	Quiet                                                  bool
}

func main() {
	zugzug.Main(tasks)
}

// options are the configuration items used by the terminal driver; the NATS packages read their own.
type options struct {
	Algorithm string `cfg:"algorithm"`
	Text      string `cfg:"text"`
	Pattern   string `cfg:"pattern"`
	Limit     int    `cfg:"limit"`
	Format    string `cfg:"format"`
	Color     string `cfg:"color"`
	LogLevel  string `cfg:"log_level"`
}

// configure layers flags over the STEPSEARCH_ environment, the configuration file and the defaults, then sets up
// logging and colour.
func configure() (configuration.Interface, *options, error) {
	cf := configuration.Overlay{flagConfiguration(), configuration.Environment(`STEPSEARCH_`)}
	path := `stepsearch.yaml`
	err := configuration.Get(&path, cf, `config`)
	if err != nil {
		return nil, nil, err
	}
	file, err := configuration.File(path, len(cf.GetConfiguration(`config`)) == 0)
	if err != nil {
		return nil, nil, err
	}
	cf = append(cf, file, defaults)

	opts := new(options)
	err = configuration.Unmarshal(opts, cf)
	if err != nil {
		return nil, nil, err
	}
	err = slog.Init(os.Stderr, opts.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	err = setColor(opts.Color)
	if err != nil {
		return nil, nil, err
	}
	return cf, opts, nil
}

func flagConfiguration() configuration.Map {
	cf := configuration.Map{}
	for name, value := range map[string]string{
		`algorithm`: flags.Algorithm,
		`text`:      flags.Text,
		`pattern`:   flags.Pattern,
		`limit`:     flags.Limit,
		`format`:    flags.Format,
		`color`:     flags.Color,
		`config`:    flags.Config,
	} {
		if value != `` {
			cf[name] = []string{value}
		}
	}
	return cf
}

var defaults = configuration.Map{
	`algorithm`: {`kmp`},
	`format`:    {`text`},
	`color`:     {`auto`},
	`log_level`: {`warn`},
}

func runSearch(ctx context.Context) error {
	_, opts, err := configure()
	if err != nil {
		return err
	}
	s, err := session.New(opts.Algorithm)
	if err != nil {
		return algorithmError(err)
	}
	s.Load(opts.Text, opts.Pattern)

	if opts.Format != `text` {
		events, err := s.Run(ctx, opts.Limit)
		if err != nil {
			return err
		}
		return writeTrace(os.Stdout, opts.Format, trace{Snapshot: s.Snapshot(), Events: events})
	}

	if !flags.Quiet {
		if err := render(os.Stdout, s.Snapshot()); err != nil {
			return err
		}
	}
	for s.Engine().Ready() {
		if opts.Limit > 0 && s.Steps() >= opts.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step()
		if flags.Quiet {
			continue
		}
		if err := render(os.Stdout, s.Snapshot()); err != nil {
			return err
		}
	}
	return renderSummary(os.Stdout, s.Snapshot())
}

// algorithmError lists the registered algorithms after the registry error, which already names the request.
func algorithmError(err error) error {
	return fmt.Errorf(`%w, expected one of %s`, err, strings.Join(search.Algorithms(), `, `))
}

func runWorker(ctx context.Context) error {
	cf, _, err := configure()
	if err != nil {
		return err
	}
	return worker.Run(ctx, cf)
}

func runRepl(ctx context.Context) error {
	_, opts, err := configure()
	if err != nil {
		return err
	}
	return repl(ctx, opts, openLocal)
}
