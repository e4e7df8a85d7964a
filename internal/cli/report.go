package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// RenderReport formats an owner's summary for the terminal: totals, then
// expenses per category, then the month series.
func RenderReport(username string, sum report.Summary) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Ledger of " + username))
	b.WriteString("\n")

	if sum.Count == 0 {
		b.WriteString(SubtleStyle.Render("No transactions recorded."))
		b.WriteString("\n")
		return b.String()
	}

	balance := IncomeStyle
	if sum.Overview.Balance.Cents < 0 {
		balance = ExpenseStyle
	}
	totals := fmt.Sprintf("Income   %s\nExpense  %s\nBalance  %s",
		IncomeStyle.Render(sum.Overview.Income.String()),
		ExpenseStyle.Render(sum.Overview.Expense.String()),
		balance.Render(sum.Overview.Balance.String()))
	b.WriteString(RenderBox(fmt.Sprintf("Totals (%d transactions)", sum.Count), totals))
	b.WriteString("\n\n")

	b.WriteString(SubtitleStyle.Render("Expenses by category"))
	b.WriteString("\n")
	if len(sum.Categories) == 0 {
		b.WriteString(SubtleStyle.Render("No expenses recorded."))
		b.WriteString("\n")
	} else {
		rows := make([][]string, 0, len(sum.Categories))
		for _, c := range sum.Categories {
			rows = append(rows, []string{c.Category, c.Total.String()})
		}
		b.WriteString(renderTable([]string{"Category", "Total"}, rows))
	}
	b.WriteString("\n")

	b.WriteString(SubtitleStyle.Render("Monthly"))
	b.WriteString("\n")
	header := []string{"Month"}
	if sum.Monthly.HasIncome {
		header = append(header, "Income")
	}
	if sum.Monthly.HasExpense {
		header = append(header, "Expense")
	}
	rows := make([][]string, 0, len(sum.Monthly.Months))
	for _, m := range sum.Monthly.Months {
		row := []string{m.Month}
		if sum.Monthly.HasIncome {
			row = append(row, m.Income.String())
		}
		if sum.Monthly.HasExpense {
			row = append(row, m.Expense.String())
		}
		rows = append(rows, row)
	}
	b.WriteString(renderTable(header, rows))
	return b.String()
}

// renderTable left-aligns the first column and right-aligns the amounts.
func renderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			align := lipgloss.Right
			if i == 0 {
				align = lipgloss.Left
			}
			parts[i] = TableCellStyle.Width(widths[i] + 2).Align(align).Render(c)
		}
		return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}

	var b strings.Builder
	b.WriteString(line(header, TableHeaderStyle))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(line(row, lipgloss.NewStyle()))
		b.WriteString("\n")
	}
	return b.String()
}

// SkippedSummary lists at most limit rejected import rows.
func SkippedSummary(errs []error, limit int) string {
	var b strings.Builder
	for i, err := range errs {
		if i == limit {
			fmt.Fprintf(&b, "%s\n", SubtleStyle.Render(fmt.Sprintf("... and %d more", len(errs)-limit)))
			break
		}
		fmt.Fprintf(&b, "%s\n", FormatWarning(err.Error()))
	}
	return b.String()
}

// FormatMoney renders an amount with the kind's color.
func FormatMoney(m core.Money, k core.Kind) string {
	if k == core.Income {
		return IncomeStyle.Render(m.String())
	}
	return ExpenseStyle.Render(m.String())
}
