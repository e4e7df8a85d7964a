package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type chartKind int

const (
	chartCategories chartKind = iota
	chartMonthly
)

// addForm carries the add page's choices and the last submitted values.
type addForm struct {
	Categories []string
	Date       string
	Category   string
	Amount     string
	Kind       string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	sum, err := s.tx.Summary(r.Context(), sess.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index.html", view{Title: "Overview", Data: sum})
}

func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "add.html", view{
		Title: "Add transaction",
		Data: addForm{
			Categories: core.PresetCategories,
			Date:       time.Now().Format(core.DateLayout),
			Kind:       core.Expense.String(),
		},
	})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Malformed form submission.").Write(w)
		return
	}
	form := addForm{
		Categories: core.PresetCategories,
		Date:       p.Get("date"),
		Category:   p.Get("category"),
		Amount:     p.Get("amount"),
		Kind:       p.Get("kind"),
	}
	if form.Kind == "" {
		form.Kind = p.Get("type")
	}

	nt, err := p.Transaction()
	if err == nil {
		_, err = s.tx.Record(r.Context(), sess.UserID, nt)
	}
	var de *core.DataError
	if errors.As(err, &de) {
		log.FromContext(r.Context()).InfoContext(r.Context(), "Rejected transaction input",
			log.FieldOperation, log.OpCreate, "field", de.Field, log.FieldError, de.Err)
		s.render(w, r, http.StatusUnprocessableEntity, "add.html",
			view{Title: "Add transaction", Error: inputMessage(de), Data: form})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.recorded.Add(1)
	s.setFlash(w, "success", "Transaction saved.")
	http.Redirect(w, r, "/index", http.StatusSeeOther)
}

// inputMessage explains a rejected form field to the user.
func inputMessage(de *core.DataError) string {
	switch de.Field {
	case core.FieldDate:
		return "Enter the date as YYYY-MM-DD."
	case core.FieldCategory:
		if errors.Is(de.Err, core.ErrCategoryTooLong) {
			return fmt.Sprintf("Category must be at most %d characters.", core.MaxCategoryLength)
		}
		return "Choose or enter a category."
	case core.FieldAmount:
		if errors.Is(de.Err, core.ErrNegativeAmount) {
			return "Amount must not be negative."
		}
		return "Enter the amount as a number, e.g. 12.50."
	case core.FieldKind:
		return "Choose income or expense."
	default:
		return "Invalid transaction."
	}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	sum, err := s.tx.Summary(r.Context(), sess.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "categories.html", view{Title: "Expenses by category", Data: sum})
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	sum, err := s.tx.Summary(r.Context(), sess.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "monthly.html", view{Title: "Monthly overview", Data: sum})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	n, err := s.tx.Clear(r.Context(), sess.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setFlash(w, "info", fmt.Sprintf("Deleted %d transactions.", n))
	http.Redirect(w, r, "/index", http.StatusSeeOther)
}

// handleChart serves a chart as PNG, or 204 when there is nothing to draw.
func (s *Server) handleChart(kind chartKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sessionFrom(r.Context())
		var (
			img []byte
			err error
		)
		switch kind {
		case chartCategories:
			img, err = s.tx.CategoryChart(r.Context(), sess.UserID)
		default:
			img, err = s.tx.MonthlyChart(r.Context(), sess.UserID)
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if img == nil {
			NewResponse().Status(http.StatusNoContent).Write(w)
			return
		}
		NewResponse().Header("Content-Type", "image/png").Body(img).Write(w)
	}
}
