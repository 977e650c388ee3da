package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/artie-owlet/chifir/internal/script"
)

// Semantic colors for the report.
var (
	colorPass  = lipgloss.Color("#8BC34A") // Lime Green
	colorFail  = lipgloss.Color("#e53935") // Red
	colorError = lipgloss.Color("#FFC107") // Yellow
	colorMuted = lipgloss.Color("#6b7785")
)

type styles struct {
	pass   lipgloss.Style
	fail   lipgloss.Style
	err    lipgloss.Style
	muted  lipgloss.Style
	header lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{pass: plain, fail: plain, err: plain, muted: plain, header: plain}
	}
	return styles{
		pass:   lipgloss.NewStyle().Foreground(colorPass).Bold(true),
		fail:   lipgloss.NewStyle().Foreground(colorFail).Bold(true),
		err:    lipgloss.NewStyle().Foreground(colorError).Bold(true),
		muted:  lipgloss.NewStyle().Foreground(colorMuted),
		header: lipgloss.NewStyle().Underline(true),
	}
}

func (s styles) errorf(format string, args ...any) string {
	return s.err.Render(fmt.Sprintf(format, args...))
}

func printReports(out io.Writer, runID string, reports []*script.Report, st styles) {
	passed, failed := 0, 0
	for _, rep := range reports {
		fmt.Fprintln(out, st.header.Render(rep.Script))
		for _, res := range rep.Results {
			printResult(out, res, st)
		}
		passed += rep.Passed
		failed += rep.Failed
	}

	summary := fmt.Sprintf("%d passed, %d failed", passed, failed)
	if failed > 0 {
		summary = st.fail.Render(summary)
	} else {
		summary = st.pass.Render(summary)
	}
	fmt.Fprintf(out, "%s %s\n", summary, st.muted.Render("(run "+runID+")"))
}

func printResult(out io.Writer, res script.Result, st styles) {
	timing := st.muted.Render(fmt.Sprintf("(%dms)", res.DurationMs))
	switch {
	case res.Success:
		fmt.Fprintf(out, "  %s %s %s\n", st.pass.Render("PASS"), res.CaseID, timing)
	case res.Error != "":
		fmt.Fprintf(out, "  %s %s: %s %s\n", st.err.Render("ERROR"), res.CaseID, res.Error, timing)
	default:
		fmt.Fprintf(out, "  %s %s: %s [%s] %s\n", st.fail.Render("FAIL"), res.CaseID, res.Message, res.Step, timing)
		fmt.Fprintf(out, "       actual: %s\n", res.Actual)
		if res.Details != "" {
			for _, line := range strings.Split(strings.TrimRight(res.Details, "\n"), "\n") {
				fmt.Fprintf(out, "       %s\n", st.muted.Render(line))
			}
		}
	}
}
