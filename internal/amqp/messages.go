package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	TransactionCreated  EventType = "transaction.created"
	TransactionsCleared EventType = "transactions.cleared"
)

// LedgerEvent announces a change to one owner's ledger. It carries ids
// only; consumers load the record from the store.
type LedgerEvent struct {
	Type          EventType `json:"type"`
	Owner         int64     `json:"owner"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	Count         int64     `json:"count,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionCreated(owner, id int64) LedgerEvent {
	return LedgerEvent{Type: TransactionCreated, Owner: owner, TransactionID: id, Timestamp: time.Now().UTC()}
}

func NewTransactionsCleared(owner, count int64) LedgerEvent {
	return LedgerEvent{Type: TransactionsCleared, Owner: owner, Count: count, Timestamp: time.Now().UTC()}
}

func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and sanity-checks an event body.
func LedgerEventFromJSON(data []byte) (LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return LedgerEvent{}, err
	}
	switch e.Type {
	case TransactionCreated:
		if e.TransactionID <= 0 {
			return LedgerEvent{}, fmt.Errorf("%s event without transaction id", e.Type)
		}
	case TransactionsCleared:
	default:
		return LedgerEvent{}, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.Owner <= 0 {
		return LedgerEvent{}, fmt.Errorf("%s event without owner", e.Type)
	}
	return e, nil
}
