package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the only accepted date format for transaction dates.
const DateLayout = "2006-01-02"

// MonthLayout formats the month bucket key of a date.
const MonthLayout = "2006-01"

// MaxCategoryLength bounds the free-text category.
const MaxCategoryLength = 64

// Kind distinguishes money flowing in from money flowing out.
// The zero value is not a valid kind.
type Kind uint8

const (
	Income Kind = iota + 1
	Expense
)

// PresetCategories are offered by the add form. Any other non-empty
// category is accepted and aggregated the same way.
var PresetCategories = []string{"Food", "Transport", "Housing", "Entertainment", "Education", "Other"}

type (
	Date struct {
		time.Time
	}

	// Transaction is one dated, categorized amount owned by a single user.
	Transaction struct {
		ID       int64
		Owner    int64
		Date     Date
		Category string
		Amount   Money
		Kind     Kind
	}

	// NewTransaction carries the fields a caller supplies when recording a
	// transaction. The store assigns ID and Owner.
	NewTransaction struct {
		Date     Date
		Category string
		Amount   Money
		Kind     Kind
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrInvalidKind     = errors.New("invalid kind")
	ErrEmptyCategory   = errors.New("empty category")
	ErrCategoryTooLong = errors.New("category too long")
	ErrTotalOverflow   = errors.New("total exceeds the representable range")
)

// ParseKind accepts "income" or "expense", case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	default:
		return 0, &DataError{Field: FieldKind, Value: s, Err: ErrInvalidKind}
	}
}

func (k Kind) String() string {
	switch k {
	case Income:
		return "income"
	case Expense:
		return "expense"
	default:
		return "unknown"
	}
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &DataError{Field: FieldDate, Value: s, Err: ErrInvalidDate}
	}
	return Date{Time: t}, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// MonthKey returns the YYYY-MM bucket the date falls in.
func (d Date) MonthKey() string {
	return d.Format(MonthLayout)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// ParseTransaction turns raw form or file fields into a NewTransaction.
// The first malformed field is reported as a *DataError.
func ParseTransaction(date, category, amount, kind string) (NewTransaction, error) {
	d, err := ParseDate(date)
	if err != nil {
		return NewTransaction{}, err
	}
	cat, err := ParseCategory(category)
	if err != nil {
		return NewTransaction{}, err
	}
	m, err := ParseAmount(amount)
	if err != nil {
		return NewTransaction{}, err
	}
	k, err := ParseKind(kind)
	if err != nil {
		return NewTransaction{}, err
	}
	return NewTransaction{Date: d, Category: cat, Amount: m, Kind: k}, nil
}

// ParseCategory trims the category and enforces the length bounds.
func ParseCategory(s string) (string, error) {
	cat := strings.TrimSpace(s)
	if cat == "" {
		return "", &DataError{Field: FieldCategory, Value: s, Err: ErrEmptyCategory}
	}
	if len(cat) > MaxCategoryLength {
		return "", &DataError{Field: FieldCategory, Value: s, Err: ErrCategoryTooLong}
	}
	return cat, nil
}

func (t NewTransaction) Validate() error {
	if t.Date.IsZero() {
		return &DataError{Field: FieldDate, Err: ErrInvalidDate}
	}
	if _, err := ParseCategory(t.Category); err != nil {
		return err
	}
	if t.Amount.Cents < 0 {
		return &DataError{Field: FieldAmount, Value: t.Amount.String(), Err: ErrNegativeAmount}
	}
	if !t.Kind.Valid() {
		return &DataError{Field: FieldKind, Value: t.Kind.String(), Err: ErrInvalidKind}
	}
	return nil
}

// Validate checks the fields aggregation depends on. Category is free text
// and is grouped verbatim, so it is not checked here.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return &DataError{Field: FieldDate, ID: t.ID, Err: ErrInvalidDate}
	}
	if t.Amount.Cents < 0 {
		return &DataError{Field: FieldAmount, ID: t.ID, Value: t.Amount.String(), Err: ErrNegativeAmount}
	}
	if !t.Kind.Valid() {
		return &DataError{Field: FieldKind, ID: t.ID, Value: t.Kind.String(), Err: ErrInvalidKind}
	}
	return nil
}
