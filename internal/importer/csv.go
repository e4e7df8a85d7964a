package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

var csvColumns = []string{core.FieldDate, core.FieldCategory, core.FieldAmount, core.FieldKind}

// ParseCSV reads a date,category,amount,kind file. A header row is
// required; "type" is accepted for the kind column. A missing column or an
// unreadable file fails the whole import.
func (p *Parser) ParseCSV(ctx context.Context, r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("read csv header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Skipped = append(res.Skipped, RowError{Row: perr.Line, Err: perr.Err})
				continue
			}
			return res, fmt.Errorf("read csv: %w", err)
		}
		if isBlank(record) {
			continue
		}
		row, _ := reader.FieldPos(0)

		field := func(name string) string {
			if i := index[name]; i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}
		nt, err := core.ParseTransaction(field(core.FieldDate), field(core.FieldCategory), field(core.FieldAmount), field(core.FieldKind))
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{Row: row, Err: err})
			continue
		}
		res.Transactions = append(res.Transactions, nt)
	}

	p.logger.InfoContext(ctx, "Parsed CSV file",
		log.FieldOperation, log.OpImport,
		log.FieldCount, len(res.Transactions),
		"skipped", len(res.Skipped))
	return res, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(csvColumns))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if name == "type" {
			name = core.FieldKind
		}
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	var missing []string
	for _, c := range csvColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv header is missing column(s): %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
