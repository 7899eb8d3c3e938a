// Package report renders rankings and classifications as JSON documents, console tables and
// spreadsheets.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/Ftopsis/internal/ftopsis"
	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat is case-insensitive; "excel" is accepted for xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Options controls display rounding.
type Options struct {
	RankingDecimals        int
	ClassificationDecimals int
}

// DefaultOptions matches the historic output of the command-line drivers.
func DefaultOptions() Options {
	return Options{RankingDecimals: 2, ClassificationDecimals: 5}
}

// Result holds whichever evaluations were run. At least one field is set.
type Result struct {
	Ranking        *ftopsis.Ranking
	Classification *ftopsis.Classification
}

type Renderer struct {
	opts Options
}

func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Round rounds half to even at the given number of decimal places. See fuzzy.Round.
func Round(x float64, places int) float64 {
	return fuzzy.Round(x, places)
}

func fixed(x float64, places int) string {
	return decimal.NewFromFloat(fuzzy.Round(x, places)).StringFixed(int32(places))
}

// Document returns the JSON-ready form of res. A result with both parts yields an object
// holding both documents side by side.
func (r *Renderer) Document(res Result) any {
	switch {
	case res.Ranking != nil && res.Classification != nil:
		return struct {
			RankingDocument
			ClassificationDocument
		}{r.RankingDocument(res.Ranking), r.ClassificationDocument(res.Classification)}
	case res.Ranking != nil:
		return r.RankingDocument(res.Ranking)
	default:
		return r.ClassificationDocument(res.Classification)
	}
}

// Write encodes res in format f.
func (r *Renderer) Write(w io.Writer, f Format, res Result) error {
	if res.Ranking == nil && res.Classification == nil {
		return fmt.Errorf("nothing to render")
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.Document(res))
	case FormatXLSX:
		return r.WriteWorkbook(w, res)
	case FormatTable:
		if res.Ranking != nil {
			if err := r.RankingTable(w, res.Ranking); err != nil {
				return err
			}
		}
		if res.Classification != nil {
			if res.Ranking != nil {
				fmt.Fprintln(w)
			}
			return r.ClassificationTable(w, res.Classification)
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", f)
}
