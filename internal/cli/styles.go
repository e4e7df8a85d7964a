package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	PrimaryColor = lipgloss.Color("#0969DA")
	IncomeColor  = lipgloss.Color("#2E9E5B")
	ExpenseColor = lipgloss.Color("#D94A4A")
	WarningColor = lipgloss.Color("#FFE66D")
	SubtleColor  = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SubtleColor)

	IncomeStyle  = lipgloss.NewStyle().Foreground(IncomeColor)
	ExpenseStyle = lipgloss.NewStyle().Foreground(ExpenseColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 2)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)
)

const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "!"
)

func FormatSuccess(message string) string {
	return IncomeStyle.Render(SuccessIcon + " " + message)
}

func FormatError(message string) string {
	return ExpenseStyle.Render(ErrorIcon + " " + message)
}

func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// RenderBox draws content in a rounded box under a bold title.
func RenderBox(title, content string) string {
	return BoxStyle.Render(BoldStyle.Render(title) + "\n\n" + content)
}
