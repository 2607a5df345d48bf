// Package report renders computed scenarios as seller-indexed tables or JSON.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	service "github.com/okian/bertrand/internal/app"
	"github.com/okian/bertrand/internal/domain/model"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned for a format other than text or json.
var ErrUnknownFormat = errors.New("unknown report format")

// Write renders reports to w in the given format.
func Write(w io.Writer, reports []service.Report, format string) error {
	switch format {
	case FormatText, "":
		return writeText(w, reports)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeText(w io.Writer, reports []service.Report) error {
	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "Scenario %s: %s\n", r.Scenario, r.Description); err != nil {
			return err
		}
		if err := writeTable(w, "Prices", &r.Prices); err != nil {
			return err
		}
		if err := writeTable(w, "Profits", &r.Profits); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, "Stability"); err != nil {
			return err
		}
		for _, v := range r.Verdicts {
			if _, err := fmt.Fprintf(w, "  %-7s %s\n", v.Partition, v.Reason); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeTable(w io.Writer, title string, t *model.Table) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "partition\t")
	for _, s := range model.AllSellers {
		fmt.Fprintf(tw, "%s\t", s)
	}
	fmt.Fprintln(tw)
	for _, p := range model.AllPartitions {
		fmt.Fprintf(tw, "%s\t", p)
		for _, s := range model.AllSellers {
			fmt.Fprintf(tw, "%.4f\t", t.At(p, s))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
