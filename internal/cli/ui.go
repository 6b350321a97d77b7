package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/weldbuild/weld/pkg/build"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleBuilt     = lipgloss.NewStyle().Foreground(colorGreen)
	styleSatisfied = lipgloss.NewStyle().Foreground(colorGray)
	styleFailed    = lipgloss.NewStyle().Foreground(colorRed)
	styleAborted   = lipgloss.NewStyle().Foreground(colorYellow)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Build Report Output
// =============================================================================

// outcomeStyle returns the render style for a walk outcome.
func outcomeStyle(o build.Outcome) lipgloss.Style {
	switch o {
	case build.OutcomeBuilt:
		return styleBuilt
	case build.OutcomeSatisfied:
		return styleSatisfied
	case build.OutcomeFailed:
		return styleFailed
	case build.OutcomeAborted:
		return styleAborted
	}
	return StyleDim
}

// printReport prints one line per walked label followed by a summary.
// Satisfied labels are only listed in verbose mode since they represent
// work already done.
func printReport(rep *build.Report, verbose bool) {
	built, satisfied, failed, aborted := 0, 0, 0, 0
	for _, r := range rep.Results {
		switch r.Outcome {
		case build.OutcomeBuilt:
			built++
		case build.OutcomeSatisfied:
			satisfied++
		case build.OutcomeFailed:
			failed++
		case build.OutcomeAborted:
			aborted++
		}
		if r.Outcome == build.OutcomeSatisfied && !verbose {
			continue
		}
		line := "  " + outcomeStyle(r.Outcome).Render(r.Outcome.String())
		line += " " + StyleValue.Render(r.Label.String())
		if r.Err != nil {
			line += " " + StyleDim.Render(r.Err.Error())
		}
		fmt.Println(line)
	}
	summary := fmt.Sprintf("%d built, %d satisfied", built, satisfied)
	if failed > 0 || aborted > 0 {
		summary += fmt.Sprintf(", %d failed, %d aborted", failed, aborted)
		printError("%s (%s)", summary, rep.Duration.Round(time.Millisecond))
		return
	}
	printSuccess("%s (%s)", summary, rep.Duration.Round(time.Millisecond))
}
