package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// DefaultOFXCategory is used for statement lines whose type has no
// category of its own.
const DefaultOFXCategory = "Other"

var (
	severityFix = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFix      = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

var errMissingDate = errors.New("missing posted date")

// ParseOFX reads the bank and credit card statements of an OFX or QFX file.
func (p *Parser) ParseOFX(ctx context.Context, r io.Reader) (Result, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read ofx: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return Result{}, fmt.Errorf("parse ofx: %w", err)
	}

	var (
		res        Result
		statements int
		row        int
	)
	collect := func(list *ofxgo.TransactionList) {
		statements++
		if list == nil {
			return
		}
		for _, tx := range list.Transactions {
			row++
			nt, err := convertOFX(tx)
			if err != nil {
				res.Skipped = append(res.Skipped, RowError{Row: row, Err: fmt.Errorf("%s: %w", tx.FiTID, err)})
				continue
			}
			res.Transactions = append(res.Transactions, nt)
		}
	}
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			collect(stmt.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			collect(stmt.BankTranList)
		}
	}

	p.logger.InfoContext(ctx, "Parsed OFX file",
		log.FieldOperation, log.OpImport,
		log.FieldCount, len(res.Transactions),
		"skipped", len(res.Skipped),
		"statements", statements)
	return res, nil
}

// preprocessOFX repairs common bank export quirks that ofxgo rejects.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityFix.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFix.ReplaceAllString(content, "$1>")
}

func convertOFX(tx ofxgo.Transaction) (core.NewTransaction, error) {
	if tx.DtPosted.IsZero() {
		return core.NewTransaction{}, errMissingDate
	}
	y, m, d := tx.DtPosted.Date()

	kind := core.Income
	if tx.TrnAmt.Sign() < 0 {
		kind = core.Expense
	}
	amount, err := core.ParseAmount(strings.TrimPrefix(tx.TrnAmt.FloatString(2), "-"))
	if err != nil {
		return core.NewTransaction{}, err
	}

	return core.NewTransaction{
		Date:     core.NewDate(y, int(m), d),
		Category: ofxCategory(tx),
		Amount:   amount,
		Kind:     kind,
	}, nil
}

func ofxCategory(tx ofxgo.Transaction) string {
	switch tx.TrnType {
	case ofxgo.TrnTypeInt, ofxgo.TrnTypeDiv:
		return "Interest"
	case ofxgo.TrnTypeFee, ofxgo.TrnTypeSrvChg:
		return "Bank fees"
	case ofxgo.TrnTypeATM, ofxgo.TrnTypeCash:
		return "Cash"
	case ofxgo.TrnTypeDirectDep:
		return "Salary"
	default:
		return DefaultOFXCategory
	}
}
