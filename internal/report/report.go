// Package report derives balance, per-category spending and month-by-month
// income/expense series from one owner's transaction log.
//
// Every function validates its whole input before aggregating and returns a
// *core.DataError for the first malformed record, or for the record whose
// amount pushes a total past the int64 range, so a caller never sees a
// partial result. An empty input is not an error. The functions keep no
// state and are safe for concurrent use.
package report

import (
	"sort"

	"fintrack/internal/core"
)

// Overview is the owner's overall position.
type Overview struct {
	Income  core.Money
	Expense core.Money
	Balance core.Money
}

// CategoryTotal is the summed expense amount of one category.
type CategoryTotal struct {
	Category string
	Total    core.Money
}

// MonthTotal holds the income and expense sums of one calendar month.
type MonthTotal struct {
	Month   string // YYYY-MM
	Income  core.Money
	Expense core.Money
}

// Monthly is the chronological month series. HasIncome and HasExpense report
// whether any record of that kind exists, so a chart can omit a series that
// is entirely absent rather than drawing it as zeros.
type Monthly struct {
	Months     []MonthTotal
	HasIncome  bool
	HasExpense bool
}

// Empty reports whether there is nothing to chart.
func (m Monthly) Empty() bool {
	return len(m.Months) == 0
}

// Summary bundles all three reports over the same input.
type Summary struct {
	Overview   Overview
	Categories []CategoryTotal
	Monthly    Monthly
	Count      int
}

// Totals sums income and expense and derives the balance.
func Totals(records []core.Transaction) (Overview, error) {
	if err := validate(records); err != nil {
		return Overview{}, err
	}
	return totals(records), nil
}

// CategoryBreakdown groups expense records by their exact category string and
// ranks the groups by total, largest first. Categories with equal totals keep
// the order in which they first appear in records. Income is ignored; a log
// without expenses yields an empty, non-nil slice.
func CategoryBreakdown(records []core.Transaction) ([]CategoryTotal, error) {
	if err := validate(records); err != nil {
		return nil, err
	}
	return categories(records), nil
}

// MonthlySeries buckets records by YYYY-MM and returns the months in
// ascending order. A month with only one kind reports zero for the other.
func MonthlySeries(records []core.Transaction) (Monthly, error) {
	if err := validate(records); err != nil {
		return Monthly{}, err
	}
	return monthly(records), nil
}

// Summarize computes the overview, the category breakdown and the monthly
// series after a single validation pass.
func Summarize(records []core.Transaction) (Summary, error) {
	if err := validate(records); err != nil {
		return Summary{}, err
	}
	return Summary{
		Overview:   totals(records),
		Categories: categories(records),
		Monthly:    monthly(records),
		Count:      len(records),
	}, nil
}

// validate checks every record and that the income and expense totals fit.
// Category and month sums are bounded by those totals.
func validate(records []core.Transaction) error {
	var income, expense core.Money
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
		ok := true
		if r.Kind == core.Income {
			income, ok = income.CheckedAdd(r.Amount)
		} else {
			expense, ok = expense.CheckedAdd(r.Amount)
		}
		if !ok {
			return &core.DataError{Field: core.FieldAmount, ID: r.ID, Value: r.Amount.String(), Err: core.ErrTotalOverflow}
		}
	}
	return nil
}

func totals(records []core.Transaction) Overview {
	var o Overview
	for _, r := range records {
		switch r.Kind {
		case core.Income:
			o.Income = o.Income.Add(r.Amount)
		case core.Expense:
			o.Expense = o.Expense.Add(r.Amount)
		}
	}
	o.Balance = o.Income.Sub(o.Expense)
	return o
}

func categories(records []core.Transaction) []CategoryTotal {
	out := []CategoryTotal{}
	index := make(map[string]int)
	for _, r := range records {
		if r.Kind != core.Expense {
			continue
		}
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, CategoryTotal{Category: r.Category})
		}
		out[i].Total = out[i].Total.Add(r.Amount)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Cents > out[j].Total.Cents
	})
	return out
}

func monthly(records []core.Transaction) Monthly {
	var m Monthly
	buckets := make(map[string]*MonthTotal)
	for _, r := range records {
		key := r.Date.MonthKey()
		b, ok := buckets[key]
		if !ok {
			b = &MonthTotal{Month: key}
			buckets[key] = b
		}
		switch r.Kind {
		case core.Income:
			b.Income = b.Income.Add(r.Amount)
			m.HasIncome = true
		case core.Expense:
			b.Expense = b.Expense.Add(r.Amount)
			m.HasExpense = true
		}
	}
	m.Months = make([]MonthTotal, 0, len(buckets))
	for _, b := range buckets {
		m.Months = append(m.Months, *b)
	}
	// YYYY-MM keys sort lexically in chronological order.
	sort.Slice(m.Months, func(i, j int) bool {
		return m.Months[i].Month < m.Months[j].Month
	})
	return m
}
