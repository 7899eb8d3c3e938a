package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/Ftopsis/internal/ftopsis"
)

const (
	rankingSheet        = "Ranking"
	classificationSheet = "Classification"
)

// WriteWorkbook writes an xlsx workbook with one sheet per result part. Numeric cells are
// rounded to the configured decimals.
func (r *Renderer) WriteWorkbook(w io.Writer, res Result) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	first := true
	sheet := func(name string) error {
		if first {
			first = false
			return f.SetSheetName("Sheet1", name)
		}
		_, err := f.NewSheet(name)
		return err
	}

	if res.Ranking != nil {
		if err := sheet(rankingSheet); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		if err := r.fillRanking(f, headerStyle, res.Ranking); err != nil {
			return err
		}
	}
	if res.Classification != nil {
		if err := sheet(classificationSheet); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		if err := r.fillClassification(f, headerStyle, res.Classification); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", last, 15)
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) fillRanking(f *excelize.File, style int, rk *ftopsis.Ranking) error {
	if err := writeHeader(f, rankingSheet, style, []string{"Rank", "Alternative", "Proximity", "D+", "D-"}); err != nil {
		return fmt.Errorf("ranking header: %w", err)
	}
	p := r.opts.RankingDecimals
	for i, s := range rk.Scores {
		if err := setRow(f, rankingSheet, i+2, s.Rank, s.Element,
			Round(s.Closeness, p), Round(s.IdealDistance, p), Round(s.NegativeIdealDistance, p)); err != nil {
			return fmt.Errorf("ranking row %s: %w", s.Element, err)
		}
	}
	return nil
}

func (r *Renderer) fillClassification(f *excelize.File, style int, c *ftopsis.Classification) error {
	headers := append([]string{"Element"}, c.Profiles...)
	headers = append(headers, "Profile", "Coefficient")
	if err := writeHeader(f, classificationSheet, style, headers); err != nil {
		return fmt.Errorf("classification header: %w", err)
	}
	p := r.opts.ClassificationDecimals
	for i, e := range c.Elements {
		values := make([]any, 0, len(headers))
		values = append(values, e.Element)
		for _, cc := range e.Closeness {
			values = append(values, Round(cc, p))
		}
		values = append(values, e.Profile, Round(e.Coefficient, p))
		if err := setRow(f, classificationSheet, i+2, values...); err != nil {
			return fmt.Errorf("classification row %s: %w", e.Element, err)
		}
	}
	return nil
}
