package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"fintrack/internal/amqp"
	"fintrack/internal/chart"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/storage"
)

// Publisher announces ledger changes to other processes.
type Publisher interface {
	Publish(ctx context.Context, event amqp.LedgerEvent) error
}

// BarRenderer turns chart input into image bytes.
type BarRenderer interface {
	Bar(c chart.BarChart) ([]byte, error)
}

// Charts holds the rendered PNGs of one owner. A nil image means there was
// nothing to draw.
type Charts struct {
	Categories []byte
	Monthly    []byte
}

// loadTimeout bounds a shared summary load, which outlives the request that
// started it.
const loadTimeout = 30 * time.Second

// TransactionService orchestrates ledger writes and reports across the
// store and the event publisher.
type TransactionService struct {
	store     storage.TransactionStore
	publisher Publisher
	renderer  BarRenderer
	loads     singleflight.Group
	logger    *log.Logger

	mu sync.Mutex
	// generations counts writes per owner. A load only serves callers that
	// arrived before the next write.
	generations map[int64]uint64
}

// NewTransactionService wires the service. publisher may be nil, in which
// case no events are sent.
func NewTransactionService(store storage.TransactionStore, renderer BarRenderer, publisher Publisher, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:       store,
		publisher:   publisher,
		renderer:    renderer,
		logger:      logger.WithComponent(log.ComponentLedger),
		generations: make(map[int64]uint64),
	}
}

// Record saves a new transaction locally and then announces it.
func (s *TransactionService) Record(ctx context.Context, owner int64, nt core.NewTransaction) (core.Transaction, error) {
	if err := nt.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t, err := s.store.Append(ctx, owner, nt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.bump(owner)

	s.logger.InfoContext(ctx, "Transaction recorded", log.NewFields().
		WithOperation(log.OpCreate).
		WithOwner(owner).
		WithTransaction(t.ID, t.Category, t.Kind.String(), t.Amount.Cents).
		ToSlice()...)

	// the record is saved; a publish failure only delays the export
	s.publish(ctx, amqp.NewTransactionCreated(owner, t.ID))
	return t, nil
}

// Clear removes every record of the owner.
func (s *TransactionService) Clear(ctx context.Context, owner int64) (int64, error) {
	n, err := s.store.ClearAll(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("clear transactions: %w", err)
	}
	s.bump(owner)

	s.logger.InfoContext(ctx, "Transactions cleared",
		log.FieldOperation, log.OpClear, log.FieldOwner, owner, log.FieldCount, n)

	s.publish(ctx, amqp.NewTransactionsCleared(owner, n))
	return n, nil
}

// List returns the owner's records ordered by date, then id.
func (s *TransactionService) List(ctx context.Context, owner int64) ([]core.Transaction, error) {
	records, err := s.store.FetchAll(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	return records, nil
}

// Summary reads the owner's records and aggregates them. Concurrent calls
// for one owner with no write in between share a single load; a caller that
// gives up does not cancel the load for the others.
func (s *TransactionService) Summary(ctx context.Context, owner int64) (report.Summary, error) {
	ch := s.loads.DoChan(s.loadKey(owner), func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		records, err := s.List(lctx, owner)
		if err != nil {
			return nil, err
		}
		return report.Summarize(records)
	})

	select {
	case <-ctx.Done():
		return report.Summary{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var de *core.DataError
			if errors.As(res.Err, &de) {
				s.logger.ErrorContext(ctx, "Corrupt transaction in ledger",
					log.FieldOwner, owner, log.FieldError, res.Err)
			}
			return report.Summary{}, res.Err
		}
		return res.Val.(report.Summary), nil
	}
}

// Charts renders the category and monthly charts of the owner in parallel.
func (s *TransactionService) Charts(ctx context.Context, owner int64) (Charts, error) {
	sum, err := s.Summary(ctx, owner)
	if err != nil {
		return Charts{}, err
	}

	var out Charts
	var g errgroup.Group
	g.Go(func() error {
		img, err := s.render(chart.CategoryChart(sum.Categories))
		out.Categories = img
		return err
	})
	g.Go(func() error {
		img, err := s.render(chart.MonthlyChart(sum.Monthly))
		out.Monthly = img
		return err
	})
	if err := g.Wait(); err != nil {
		return Charts{}, fmt.Errorf("render charts: %w", err)
	}
	return out, nil
}

// CategoryChart renders the expense-by-category chart, nil when there are
// no expenses.
func (s *TransactionService) CategoryChart(ctx context.Context, owner int64) ([]byte, error) {
	sum, err := s.Summary(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.render(chart.CategoryChart(sum.Categories))
}

// MonthlyChart renders the income and expense per month chart, nil when the
// ledger is empty.
func (s *TransactionService) MonthlyChart(ctx context.Context, owner int64) ([]byte, error) {
	sum, err := s.Summary(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.render(chart.MonthlyChart(sum.Monthly))
}

func (s *TransactionService) render(c chart.BarChart) ([]byte, error) {
	img, err := s.renderer.Bar(c)
	if errors.Is(err, chart.ErrNoData) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Chart rendering failed", log.FieldOperation, log.OpRender, "title", c.Title, log.FieldError, err)
		return nil, err
	}
	return img, nil
}

func (s *TransactionService) bump(owner int64) {
	s.mu.Lock()
	s.generations[owner]++
	s.mu.Unlock()
}

func (s *TransactionService) loadKey(owner int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("summary:%d:%d", owner, s.generations[owner])
}

func (s *TransactionService) publish(ctx context.Context, event amqp.LedgerEvent) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No publisher configured, skipping ledger event", log.FieldEvent, event.Type)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEvent, event.Type, log.FieldOwner, event.Owner, log.FieldError, err)
	}
}
