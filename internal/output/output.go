// Package output renders Cerberus's CLI-facing status lines and the
// reviewer-verdict summary table.
//
// Grounded in the teacher's internal/output/output.go: the UI struct, the
// colored-prefix Info/Success/Warning/Error idiom, and the
// tablewriter-wrapping Table helper are kept, retargeted from project/issue
// listings to a per-reviewer verdict table.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/misty-step/cerberus/internal/models"
)

// UI provides colored output and respects verbose mode.
type UI struct {
	Verbose bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New(verbose bool) *UI {
	return &UI{Verbose: verbose, Out: os.Stdout, ErrOut: os.Stderr}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
	cyan          = color.New(color.FgHiCyan).SprintFunc()
)

// VerdictColor returns s colored by verdict, mirroring the teacher's
// StatusColor/HealthColor helpers.
func VerdictColor(v models.Verdict) func(a ...any) string {
	switch v {
	case models.VerdictPass:
		return green
	case models.VerdictWarn:
		return yellow
	case models.VerdictFail:
		return red
	default:
		return cyan
	}
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// VerdictTable renders a one-row-per-reviewer summary, followed by the
// overall verdict line.
func (u *UI) VerdictTable(cv models.CerberusVerdict) {
	table := u.Table([]string{"Reviewer", "Perspective", "Verdict", "Confidence", "Critical", "Major", "Minor"})
	for _, rv := range cv.Reviewers {
		color := VerdictColor(rv.Verdict)
		table.Append([]string{
			rv.Reviewer,
			rv.Perspective,
			color(string(rv.Verdict)),
			fmt.Sprintf("%.2f", rv.Confidence),
			fmt.Sprintf("%d", rv.Stats.Critical),
			fmt.Sprintf("%d", rv.Stats.Major),
			fmt.Sprintf("%d", rv.Stats.Minor),
		})
	}
	table.Render()

	overall := VerdictColor(cv.Verdict)
	fmt.Fprintf(u.Out, "\nOverall: %s %s\n", overall(string(cv.Verdict)), cv.Summary)
}
