package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/MikeSquared-Agency/Ftopsis/internal/ftopsis"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// RankingTable prints rank, alternative, closeness and both distances, best first.
func (r *Renderer) RankingTable(w io.Writer, rk *ftopsis.Ranking) error {
	p := r.opts.RankingDecimals
	tw := newTable(w)
	fmt.Fprintln(tw, "RANK\tALTERNATIVE\tPROXIMITY\tD+\tD-")
	for _, s := range rk.Scores {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.Rank, s.Element,
			fixed(s.Closeness, p), fixed(s.IdealDistance, p), fixed(s.NegativeIdealDistance, p))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nBest alternative: %s\n", rk.Best())
	return err
}

// ClassificationTable prints one closeness column per profile and the assigned class as
// "label (cc)".
func (r *Renderer) ClassificationTable(w io.Writer, c *ftopsis.Classification) error {
	p := r.opts.ClassificationDecimals
	tw := newTable(w)
	header := append([]string{"ELEMENT"}, c.Profiles...)
	header = append(header, "CLASSIFICATION")
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, e := range c.Elements {
		cols := make([]string, 0, len(c.Profiles)+2)
		cols = append(cols, e.Element)
		for _, cc := range e.Closeness {
			cols = append(cols, fixed(cc, p))
		}
		cols = append(cols, fmt.Sprintf("%s (%s)", e.Profile, fixed(e.Coefficient, p)))
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	return tw.Flush()
}
