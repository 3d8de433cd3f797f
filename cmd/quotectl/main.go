// quotectl inspects and exports the seminar price table and prices a
// selection from the command line.
//
// Usage:
//
//	quotectl prices show [--flat]
//	quotectl prices refresh
//	quotectl prices export --out preise.xlsx
//	quotectl quote --file selection.json
//	quotectl token issue --user ops-1 --role OPERATOR
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nurpe/seminar-quote/internal/auth"
	"github.com/nurpe/seminar-quote/internal/config"
	"github.com/nurpe/seminar-quote/internal/db"
	"github.com/nurpe/seminar-quote/internal/excel"
	"github.com/nurpe/seminar-quote/internal/logger"
	"github.com/nurpe/seminar-quote/internal/model"
	"github.com/nurpe/seminar-quote/internal/money"
	"github.com/nurpe/seminar-quote/internal/pricing"
	"github.com/nurpe/seminar-quote/internal/quote"
	"github.com/nurpe/seminar-quote/internal/repository"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "quotectl",
		Usage:   "Seminar price table and quote tool",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "source-url",
				Usage:   "Published price sheet URL",
				EnvVars: []string{"PRICES_SOURCE_URL"},
			},
			&cli.StringFlag{
				Name:    "fallback",
				Usage:   "Local fallback price file or URL",
				EnvVars: []string{"PRICES_FALLBACK_PATH"},
			},
			&cli.StringFlag{
				Name:    "db-dsn",
				Usage:   "Postgres DSN for the shared price cache",
				EnvVars: []string{"DB_DSN"},
			},
		},
		Commands: []*cli.Command{
			pricesCommand(),
			quoteCommand(),
			tokenCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func pricesCommand() *cli.Command {
	return &cli.Command{
		Name:  "prices",
		Usage: "Inspect the resolved price table",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the current price table",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "flat", Usage: "Print dotted paths instead of the nested table"},
					&cli.BoolFlag{Name: "json", Usage: "Print JSON"},
				},
				Action: func(c *cli.Context) error {
					resolver, err := newResolver(c)
					if err != nil {
						return err
					}
					return printResolution(c, resolver.Resolve(c.Context))
				},
			},
			{
				Name:  "refresh",
				Usage: "Drop the cache and resolve again",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "flat", Usage: "Print dotted paths instead of the nested table"},
					&cli.BoolFlag{Name: "json", Usage: "Print JSON"},
				},
				Action: func(c *cli.Context) error {
					resolver, err := newResolver(c)
					if err != nil {
						return err
					}
					return printResolution(c, resolver.Refresh(c.Context))
				},
			},
			{
				Name:  "export",
				Usage: "Write the price table as a workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "preise.xlsx", Usage: "Output file"},
				},
				Action: func(c *cli.Context) error {
					resolver, err := newResolver(c)
					if err != nil {
						return err
					}
					res := resolver.Resolve(c.Context)
					content, err := excel.NewGenerator().PriceTableWorkbook(res.Table, string(res.Origin), res.ResolvedAt)
					if err != nil {
						return fmt.Errorf("failed to build workbook: %w", err)
					}
					if err := os.WriteFile(c.String("out"), content, 0o644); err != nil {
						return fmt.Errorf("failed to write %s: %w", c.String("out"), err)
					}
					fmt.Fprintf(os.Stderr, "wrote %d prices from %s to %s\n", len(res.Table.Entries()), res.Origin, c.String("out"))
					return nil
				},
			},
		},
	}
}

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Price a selection snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Selection JSON file", Required: true},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON"},
		},
		Action: func(c *cli.Context) error {
			data, err := os.ReadFile(c.String("file"))
			if err != nil {
				return fmt.Errorf("failed to read selection: %w", err)
			}
			var sel model.Selection
			if err := json.Unmarshal(data, &sel); err != nil {
				return fmt.Errorf("failed to parse selection: %w", err)
			}
			kind, ok := model.ParseSeminarKind(string(sel.Kind))
			if !ok {
				return fmt.Errorf("unknown seminar kind %q", sel.Kind)
			}
			sel.Kind = kind

			resolver, err := newResolver(c)
			if err != nil {
				return err
			}
			res := resolver.Resolve(c.Context)
			q := quote.Round(quote.Compute(sel, res.Table))

			if c.Bool("json") {
				return writeJSON(q)
			}
			printQuote(q, res)
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Operator access tokens",
		Subcommands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Sign an access token with JWT_ACCESS_SECRET",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Required: true, Usage: "Subject of the token"},
					&cli.StringFlag{Name: "email", Usage: "Email claim"},
					&cli.StringFlag{Name: "role", Value: string(model.UserRoleOperator), Usage: "ADMIN or OPERATOR"},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "Token lifetime"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return fmt.Errorf("failed to load config: %w", err)
					}
					token, err := auth.NewParser(cfg.Auth.AccessSecret).Issue(model.Principal{
						UserID: c.String("user"),
						Email:  c.String("email"),
						Role:   model.UserRole(c.String("role")),
					}, c.Duration("ttl"))
					if err != nil {
						return err
					}
					fmt.Println(token)
					return nil
				},
			},
		},
	}
}

func newResolver(c *cli.Context) (*pricing.Resolver, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if v := c.String("source-url"); v != "" {
		cfg.Prices.SourceURL = v
	}
	if v := c.String("fallback"); v != "" {
		cfg.Prices.FallbackPath = v
	}
	if v := c.String("db-dsn"); v != "" {
		cfg.DB.DSN = v
	}

	log := logger.New(cfg.Environment, c.String("log-level"))
	var store pricing.Store = pricing.NewMemoryStore()
	if cfg.DB.DSN != "" {
		database, err := db.New(cfg, log)
		if err != nil {
			return nil, err
		}
		store = repository.NewCacheRepository(database)
	}
	return pricing.NewResolverFromConfig(cfg.Prices, store, nil, log), nil
}

func printResolution(c *cli.Context, res pricing.Resolution) error {
	if c.Bool("json") {
		var prices interface{} = res.Table
		if c.Bool("flat") {
			prices = res.Table.Flat()
		}
		return writeJSON(map[string]interface{}{
			"prices":      prices,
			"origin":      res.Origin,
			"resolved_at": res.ResolvedAt,
			"defaults":    res.IsDefault(),
		})
	}

	fmt.Fprintf(os.Stderr, "origin: %s, resolved at %s\n", res.Origin, res.ResolvedAt.Format(time.RFC3339))
	if res.IsDefault() {
		fmt.Fprintln(os.Stderr, "warning: no price source reachable, showing built-in defaults")
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, entry := range res.Table.Entries() {
		fmt.Fprintf(w, "%s\t%s\n", entry.Path, money.Format(entry.Price))
	}
	return w.Flush()
}

func printQuote(q model.Quote, res pricing.Resolution) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s, %d Personen, %d Tage, %d Nächte\t\n", q.Kind.Label(), q.Headcount, q.Days, q.Nights)
	rows := []struct {
		label  string
		amount float64
	}{
		{"Seminarpauschale", q.Breakdown.Package},
		{"Übernachtung", q.Breakdown.Lodging},
		{"Verpflegung", q.Breakdown.Catering},
		{"Technik und Räume", q.Breakdown.Equipment},
		{"Rahmenprogramm", q.Breakdown.Activities},
		{"Nächtigungsabgabe", q.Breakdown.Statutory},
		{"Netto", q.Net},
		{"USt 10%", q.VATReduced},
		{"USt 20%", q.VATStandard},
		{"Brutto", q.Gross},
		{"pro Person", q.PerPerson},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t\n", row.label, money.FormatEUR(row.amount))
	}
	if q.RoomSuggestion != "" {
		fmt.Fprintf(w, "Raum: %s\t\n", q.RoomSuggestion)
	}
	_ = w.Flush()
	if res.IsDefault() {
		fmt.Fprintln(os.Stderr, "warning: priced with built-in defaults")
	}
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
