package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/godilite/feedback-server/internal/app"
	"github.com/godilite/feedback-server/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type ExportFlags struct {
	From      string
	To        string
	CenterID  string
	Timezone  string
	MinRating float64
	Query     string
	Output    string
}

func (f *ExportFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.From, "from", "", "first day (YYYY-MM-DD or RFC3339)")
	fs.StringVar(&f.To, "to", "", "last day, inclusive (YYYY-MM-DD or RFC3339)")
	fs.StringVar(&f.CenterID, "center", "", "only this service center")
	fs.StringVar(&f.Timezone, "tz", "", "IANA timezone for dates and CSV timestamps (defaults to REPORT_TIMEZONE)")
	fs.Float64Var(&f.MinRating, "min-rating", 0, "minimum composite rating")
	fs.StringVar(&f.Query, "query", "", "case-insensitive comment substring")
	fs.StringVarP(&f.Output, "output", "o", "", "output file, \"-\" for stdout (defaults to feedback-list-<date>.csv)")
}

func (f *ExportFlags) query(defaultTZ string) (service.ListQuery, error) {
	tz := f.Timezone
	if tz == "" {
		tz = defaultTZ
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return service.ListQuery{}, fmt.Errorf("%w: unknown timezone %q", service.ErrInvalidInput, tz)
	}
	from, err := service.ParseBound(f.From, loc, false)
	if err != nil {
		return service.ListQuery{}, err
	}
	to, err := service.ParseBound(f.To, loc, true)
	if err != nil {
		return service.ListQuery{}, err
	}
	return service.ListQuery{
		CenterID:  f.CenterID,
		From:      from,
		To:        to,
		MinRating: f.MinRating,
		Query:     f.Query,
		Timezone:  tz,
	}, nil
}

func newExportCmd(c *cli) *cobra.Command {
	f := &ExportFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write matching feedback as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := f.query(c.cfg.ReportTimezone)
			if err != nil {
				return err
			}
			a, err := app.NewApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			path := f.Output
			if path == "" {
				path = a.Feedback.ExportFilename()
			}

			// buffered so that a failed export never leaves a partial file
			var buf bytes.Buffer
			rows, err := a.Feedback.Export(cmd.Context(), &buf, q)
			if err != nil {
				return err
			}
			if err := writeOutput(path, cmd.OutOrStdout(), buf.Bytes()); err != nil {
				return err
			}
			c.logger.Info("export written", zap.String("output", path), zap.Int("rows", rows))
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}

// writeOutput writes data to stdout when path is "-", otherwise to path. A
// file that could not be written completely is removed.
func writeOutput(path string, stdout io.Writer, data []byte) (err error) {
	if path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	if _, err = file.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
