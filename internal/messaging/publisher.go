package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StateChanged is published after a logical ledger change has been committed
type StateChanged struct {
	ContractID            uint64          `json:"contract_id"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	ActiveSpecificationID *uint64         `json:"active_specification_id,omitempty"`
	Version               int64           `json:"version"`
	CorrelationID         uuid.UUID       `json:"correlation_id"`
	EventIDs              []uint64        `json:"event_ids"`
	CalculatedAt          time.Time       `json:"calculated_at"`
}

// Publisher defines the interface for publishing ledger notifications.
// Delivery is best effort: a failed publish never undoes a committed change.
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishStateChanged publishes the new state of a contract
	PublishStateChanged(ctx context.Context, event *StateChanged) error
	// Close closes the connection
	Close()
}
