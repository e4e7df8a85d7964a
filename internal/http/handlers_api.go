package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

type apiOverview struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

type apiCategory struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

type apiMonth struct {
	Month   string `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

type apiSummary struct {
	Count      int           `json:"count"`
	Overview   apiOverview   `json:"overview"`
	Categories []apiCategory `json:"categories"`
	Months     []apiMonth    `json:"months"`
	HasIncome  bool          `json:"has_income"`
	HasExpense bool          `json:"has_expense"`
}

type apiTransaction struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Kind     string `json:"kind"`
}

// Amounts are decimal strings so clients never round through floats.
func toAPISummary(sum report.Summary) apiSummary {
	out := apiSummary{
		Count: sum.Count,
		Overview: apiOverview{
			Income:  sum.Overview.Income.String(),
			Expense: sum.Overview.Expense.String(),
			Balance: sum.Overview.Balance.String(),
		},
		Categories: make([]apiCategory, 0, len(sum.Categories)),
		Months:     make([]apiMonth, 0, len(sum.Monthly.Months)),
		HasIncome:  sum.Monthly.HasIncome,
		HasExpense: sum.Monthly.HasExpense,
	}
	for _, c := range sum.Categories {
		out.Categories = append(out.Categories, apiCategory{Category: c.Category, Total: c.Total.String()})
	}
	for _, m := range sum.Monthly.Months {
		out.Months = append(out.Months, apiMonth{Month: m.Month, Income: m.Income.String(), Expense: m.Expense.String()})
	}
	return out
}

func toAPITransaction(t core.Transaction) apiTransaction {
	return apiTransaction{
		ID:       t.ID,
		Date:     t.Date.String(),
		Category: t.Category,
		Amount:   t.Amount.String(),
		Kind:     t.Kind.String(),
	}
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	sum, err := s.tx.Summary(r.Context(), sess.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewResponse().JSON(toAPISummary(sum)).Write(w)
}

func (s *Server) handleAPITransactions(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	records, err := s.tx.List(r.Context(), sess.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]apiTransaction, 0, len(records))
	for _, t := range records {
		out = append(out, toAPITransaction(t))
	}
	NewResponse().JSON(map[string]any{"transactions": out}).Write(w)
}
