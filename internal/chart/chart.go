// Package chart rasterizes labeled bar charts to PNG.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"fintrack/internal/report"
)

var ErrNoData = errors.New("no data to chart")

var (
	IncomeColor  = color.RGBA{R: 0x2e, G: 0x9e, B: 0x5b, A: 0xff}
	ExpenseColor = color.RGBA{R: 0xd9, G: 0x4a, B: 0x4a, A: 0xff}
)

// Series is one named row of values, aligned with BarChart.Labels.
type Series struct {
	Name   string
	Values []float64
	Color  color.Color
}

type BarChart struct {
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Series []Series
}

// Renderer draws charts at a fixed size.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

func NewRenderer() *Renderer {
	return &Renderer{Width: 8 * vg.Inch, Height: 4.5 * vg.Inch}
}

// Bar renders c as grouped vertical bars, one group per label.
func (r *Renderer) Bar(c BarChart) ([]byte, error) {
	if len(c.Labels) == 0 || len(c.Series) == 0 {
		return nil, ErrNoData
	}
	for _, s := range c.Series {
		if len(s.Values) != len(c.Labels) {
			return nil, fmt.Errorf("series %q has %d values for %d labels", s.Name, len(s.Values), len(c.Labels))
		}
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Y.Min = 0
	p.Legend.Top = true
	if len(c.Labels) > 6 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}

	groupWidth := vg.Points(40)
	barWidth := groupWidth / vg.Length(len(c.Series))
	for i, s := range c.Series {
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), barWidth)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Name, err)
		}
		bars.LineStyle.Width = 0
		if s.Color != nil {
			bars.Color = s.Color
		}
		bars.Offset = barWidth*vg.Length(i) - groupWidth/2 + barWidth/2
		p.Add(bars)
		if len(c.Series) > 1 {
			p.Legend.Add(s.Name, bars)
		}
	}
	p.NominalX(c.Labels...)

	w, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("create png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// CategoryChart charts expense totals per category in ranked order.
func CategoryChart(categories []report.CategoryTotal) BarChart {
	c := BarChart{Title: "Expenses by category", YLabel: "Amount"}
	if len(categories) == 0 {
		return c
	}
	values := make([]float64, len(categories))
	for i, ct := range categories {
		c.Labels = append(c.Labels, ct.Category)
		values[i] = ct.Total.Float()
	}
	c.Series = []Series{{Name: "Expense", Values: values, Color: ExpenseColor}}
	return c
}

// MonthlyChart charts income and expense per month. A kind with no records
// at all gets no series.
func MonthlyChart(m report.Monthly) BarChart {
	c := BarChart{Title: "Monthly income and expenses", XLabel: "Month", YLabel: "Amount"}
	if m.Empty() {
		return c
	}
	income := make([]float64, len(m.Months))
	expense := make([]float64, len(m.Months))
	for i, mt := range m.Months {
		c.Labels = append(c.Labels, mt.Month)
		income[i] = mt.Income.Float()
		expense[i] = mt.Expense.Float()
	}
	if m.HasIncome {
		c.Series = append(c.Series, Series{Name: "Income", Values: income, Color: IncomeColor})
	}
	if m.HasExpense {
		c.Series = append(c.Series, Series{Name: "Expense", Values: expense, Color: ExpenseColor})
	}
	return c
}
