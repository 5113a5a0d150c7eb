package lotteryengine

import (
	"context"

	"github.com/rondomundi/backend/internal/entity"
)

// Store is the persistence boundary of the engine. Every method that writes
// must be atomic: either the whole set of records is durable or none of it
// is. The engine applies its in-memory change only after the corresponding
// store call succeeds, so a failing store never leaves callers observing a
// half-applied operation.
//
// Implementations must not retain or mutate the records after returning.
type Store interface {
	// CreateLottery persists a new lottery together with its created audit
	// event.
	CreateLottery(ctx context.Context, lottery *entity.Lottery, ev *entity.LotteryAuditEvent) error

	// AppendTickets persists a batch of issued tickets, their audit events
	// and the updated lottery record (prize pool).
	AppendTickets(ctx context.Context, lottery *entity.Lottery, tickets []*entity.LotteryTicket, evs []*entity.LotteryAuditEvent) error

	// SaveLottery persists a phase transition (close or draw) with its audit
	// event.
	SaveLottery(ctx context.Context, lottery *entity.Lottery, ev *entity.LotteryAuditEvent) error

	// ListLotteries returns every persisted lottery, used to rehydrate the
	// registry at startup.
	ListLotteries(ctx context.Context) ([]entity.Lottery, error)

	// ListTickets returns the tickets of one lottery ordered by sequence
	// number.
	ListTickets(ctx context.Context, lotteryID string) ([]entity.LotteryTicket, error)

	// ListAuditEvents returns the audit events of one lottery with sequence
	// number greater than sinceSeq, ordered by sequence number.
	ListAuditEvents(ctx context.Context, lotteryID string, sinceSeq int64) ([]entity.LotteryAuditEvent, error)
}
