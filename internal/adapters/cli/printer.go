package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/stoik/phishguard/internal/domain"
)

// Printer renders analysis reports for a terminal
type Printer struct {
	w io.Writer

	header  *color.Color
	danger  *color.Color
	warning *color.Color
	ok      *color.Color
	muted   *color.Color
}

// NewPrinter creates a printer writing to w. With noColor set, output is plain text.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:       w,
		header:  color.New(color.FgCyan, color.Bold),
		danger:  color.New(color.FgRed, color.Bold),
		warning: color.New(color.FgYellow),
		ok:      color.New(color.FgGreen),
		muted:   color.New(color.FgHiBlack),
	}
	if noColor {
		for _, c := range []*color.Color{p.header, p.danger, p.warning, p.ok, p.muted} {
			c.DisableColor()
		}
	}
	return p
}

// PrintReport writes the full human-readable report
func (p *Printer) PrintReport(report *domain.AnalysisReport) error {
	p.header.Fprintf(p.w, "Target: %s\n", report.TargetURL)
	p.muted.Fprintf(p.w, "Report: %s  (%s)\n", report.ID, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))

	if report.Status == domain.StatusTargetUnreachable {
		p.danger.Fprintln(p.w, "Target could not be fetched, no analysis was performed")
		p.printDiagnostics(report.Diagnostics)
		return nil
	}

	p.printVerdict(report)

	if len(report.TypoFindings) > 0 {
		p.header.Fprintf(p.w, "\nTyposquatted link domains (%d)\n", len(report.TypoFindings))
		tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  OBSERVED\tLOOKS LIKE\tEDITS")
		for _, f := range report.TypoFindings {
			fmt.Fprintf(tw, "  %s\t%s\t%d\n", f.ObservedDomainBase, f.MatchedDomainBase, f.EditDistance)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(report.ContentFindings) > 0 {
		p.header.Fprintf(p.w, "\nContent resembling legitimate pages (%d)\n", len(report.ContentFindings))
		for _, f := range report.ContentFindings {
			p.danger.Fprintf(p.w, "  %s", f.LegitimateURL)
			fmt.Fprintf(p.w, "  fuzzy %d/100, token overlap %.1f%%\n", f.FuzzyScore, f.OverlapPercent)
		}
	}

	p.printDiagnostics(report.Diagnostics)
	return nil
}

func (p *Printer) printVerdict(report *domain.AnalysisReport) {
	verdict := report.Verdict()
	switch {
	case len(report.TypoFindings) > 0 && len(report.ContentFindings) > 0:
		p.danger.Fprintf(p.w, "Verdict: %s\n", verdict)
	case report.HasIndicators():
		p.warning.Fprintf(p.w, "Verdict: %s\n", verdict)
	default:
		p.ok.Fprintf(p.w, "Verdict: %s\n", verdict)
	}
}

func (p *Printer) printDiagnostics(diagnostics []domain.Diagnostic) {
	if len(diagnostics) == 0 {
		return
	}
	p.muted.Fprintf(p.w, "\nSkipped (%d)\n", len(diagnostics))
	for _, d := range diagnostics {
		p.muted.Fprintf(p.w, "  [%s] %s: %s\n", d.Kind, d.Subject, d.Message)
	}
}

// PrintSummaries writes one line per report, for listings
func (p *Printer) PrintSummaries(reports []domain.AnalysisReport) error {
	if len(reports) == 0 {
		p.muted.Fprintln(p.w, "No reports stored")
		return nil
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FINISHED\tID\tTARGET\tVERDICT\tTYPO\tCONTENT")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
			r.FinishedAt.Format("2006-01-02 15:04:05"), r.ID, r.TargetURL, r.Verdict(),
			len(r.TypoFindings), len(r.ContentFindings))
	}
	return tw.Flush()
}

// WriteJSON writes report as indented JSON
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
