package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"weatherdash/internal/config"
	"weatherdash/internal/db"
	"weatherdash/internal/migrate"
	"weatherdash/internal/modules/weather"
	"weatherdash/internal/modules/weather/dataset"
	"weatherdash/internal/modules/weather/repository"
	"weatherdash/internal/modules/weather/types"
	"weatherdash/internal/observability"
)

const usage = `usage: %s <command>
  migrate               apply pending schema migrations
  import <csv>          replace the stored dataset with a CSV file
  summary [from to]     print per-column statistics for months from..to
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	conn, err := db.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	if err := run(os.Stdout, conn, cfg, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(out io.Writer, conn *sql.DB, cfg config.Config, args []string) error {
	switch args[0] {
	case "migrate":
		if err := migrate.Run(conn); err != nil {
			return err
		}
		fmt.Fprintln(out, "migrations applied")
		return nil

	case "import":
		if len(args) != 2 {
			return errors.New("expected exactly one CSV path")
		}
		if err := migrate.Run(conn); err != nil {
			return err
		}
		info, err := weather.NewService(conn, observability.NewUnregistered(), cfg).Import(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "imported %d rows from %s (%s to %s)\n",
			info.Rows, info.Source, info.First.Format("2006-01-02"), info.Last.Format("2006-01-02"))
		return nil

	case "summary":
		rng, err := parseRange(args[1:])
		if err != nil {
			return err
		}
		if err := migrate.Run(conn); err != nil {
			return err
		}
		svc := weather.NewService(conn, observability.NewUnregistered(), cfg)
		if _, err := svc.Info(); err != nil {
			// Nothing survives between runs in memory, so load the configured file.
			if !errors.Is(err, repository.ErrNotLoaded) || !cfg.IsMemoryDB() {
				return err
			}
			if _, err := svc.Import(cfg.DataPath); err != nil {
				return err
			}
		}
		summary, err := svc.Summary(rng)
		if err != nil {
			return err
		}
		writeSummary(out, rng, summary)
		return nil

	default:
		return errors.New("unknown command (see usage)")
	}
}

func parseRange(args []string) (types.MonthRange, error) {
	switch len(args) {
	case 0:
		return types.FullYear, nil
	case 2:
		from, err := strconv.Atoi(args[0])
		if err != nil {
			return types.MonthRange{}, fmt.Errorf("invalid from month %q", args[0])
		}
		to, err := strconv.Atoi(args[1])
		if err != nil {
			return types.MonthRange{}, fmt.Errorf("invalid to month %q", args[1])
		}
		rng := types.MonthRange{From: from, To: to}
		return rng, rng.Validate()
	}
	return types.MonthRange{}, errors.New("expected no arguments or <from> <to>")
}

// writeSummary prints an aligned table. Headers carry unit symbols such as
// "°", so widths are measured in display cells.
func writeSummary(out io.Writer, rng types.MonthRange, summary []dataset.ColumnSummary) {
	rows := [][]string{{"variable", "count", "min", "max", "mean"}}
	for _, s := range summary {
		rows = append(rows, []string{
			s.Column.Header(),
			strconv.Itoa(s.Count),
			formatStat(s.Min),
			formatStat(s.Max),
			formatStat(s.Mean),
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	fmt.Fprintf(out, "months %d-%d\n", rng.From, rng.To)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i == 0 {
				cells[i] = runewidth.FillRight(cell, widths[i])
			} else {
				cells[i] = runewidth.FillLeft(cell, widths[i])
			}
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
