// Package importer reads transactions from bank statement files.
//
// CSV files need a header naming the date, category, amount and kind
// columns in any order. OFX and QFX statements carry signed amounts: debits
// become expenses and credits become income. Rows that do not parse are
// collected as RowErrors and skipped; the rest are returned.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

var ErrUnknownFormat = errors.New("unknown file format (want .csv, .ofx or .qfx)")

// RowError reports one skipped input row. Row is 1-based and counts the
// CSV header; for OFX it is the position within the statement.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Result holds the parsed transactions in file order.
type Result struct {
	Transactions []core.NewTransaction
	Skipped      []RowError
}

// Recorder stores one transaction for an owner.
type Recorder interface {
	Record(ctx context.Context, owner int64, nt core.NewTransaction) (core.Transaction, error)
}

type Parser struct {
	logger *log.Logger
}

func NewParser(logger *log.Logger) *Parser {
	return &Parser{logger: logger.WithComponent(log.ComponentImport)}
}

// Parse picks the format from the file extension.
func (p *Parser) Parse(ctx context.Context, name string, r io.Reader) (Result, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return p.ParseCSV(ctx, r)
	case ".ofx", ".qfx":
		return p.ParseOFX(ctx, r)
	default:
		return Result{}, fmt.Errorf("%s: %w", name, ErrUnknownFormat)
	}
}

// Import records txs in order and calls progress after each one. It stops at
// the first store error and returns how many were saved before it.
func Import(ctx context.Context, rec Recorder, owner int64, txs []core.NewTransaction, progress func()) (int, error) {
	for i, nt := range txs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := rec.Record(ctx, owner, nt); err != nil {
			return i, fmt.Errorf("record transaction %d: %w", i+1, err)
		}
		if progress != nil {
			progress()
		}
	}
	return len(txs), nil
}
