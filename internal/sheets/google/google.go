package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/log"
	ports "fintrack/internal/sheets"
)

const DefaultSheetName = "Ledger"

type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger
}

// Ensure interface conformance
var _ ports.LedgerExporter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg, logger), nil
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(svc *gsheet.Service, cfg Config, logger *log.Logger) *Client {
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = DefaultSheetName
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheet:         sheet,
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

// credentials prefers inline JSON over a file path.
func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func (c *Client) rng(cols string) string {
	return fmt.Sprintf("%s!%s", c.sheet, cols)
}

func (c *Client) readAll(ctx context.Context) ([][]any, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A:F")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.rng("A:F"), err)
	}
	return resp.Values, nil
}

// AppendTransaction adds a row for t unless its id is already exported.
// The header row is written when the sheet is empty.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	existing, err := c.readAll(ctx)
	if err != nil {
		return err
	}
	id := strconv.FormatInt(t.ID, 10)
	for _, row := range existing {
		if cell(row, 0) == id {
			c.logger.DebugContext(ctx, "Transaction already exported", log.FieldTransactionID, t.ID)
			return nil
		}
	}

	var values [][]any
	if len(existing) == 0 {
		header := make([]any, len(ports.Header))
		for i, h := range ports.Header {
			header[i] = h
		}
		values = append(values, header)
	}
	values = append(values, ports.Row(t))

	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.rng("A:F"), &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", c.sheet, err)
	}

	c.logger.InfoContext(ctx, "Exported transaction", log.NewFields().
		WithOperation(log.OpExport).
		WithOwner(t.Owner).
		WithTransaction(t.ID, t.Category, t.Kind.String(), t.Amount.Cents).
		ToSlice()...)
	return nil
}

// RemoveOwner rewrites the sheet without the owner's rows.
func (c *Client) RemoveOwner(ctx context.Context, owner int64) (int, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}

	existing, err := c.readAll(ctx)
	if err != nil {
		return 0, err
	}
	ownerCell := strconv.FormatInt(owner, 10)
	kept := make([][]any, 0, len(existing))
	for _, row := range existing {
		if cell(row, 1) == ownerCell {
			continue
		}
		kept = append(kept, row)
	}
	removed := len(existing) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, c.rng("A:F"), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("clear %s: %w", c.sheet, err)
	}
	if len(kept) > 0 {
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rng("A1"), &gsheet.ValueRange{Values: kept}).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return 0, fmt.Errorf("rewrite %s: %w", c.sheet, err)
		}
	}

	c.logger.InfoContext(ctx, "Removed owner rows",
		log.FieldOperation, log.OpClear, log.FieldOwner, owner, log.FieldCount, removed)
	return removed, nil
}

// cell returns the trimmed text of row[i], or "" when the row is short.
func cell(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	s := strings.TrimSpace(fmt.Sprint(row[i]))
	// numbers may come back as floats from the JSON decoder
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) && strings.ContainsAny(s, ".e") {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}
