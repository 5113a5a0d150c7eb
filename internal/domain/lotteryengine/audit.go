package lotteryengine

import (
	"time"

	"github.com/google/uuid"
	"github.com/rondomundi/backend/internal/entity"
)

// Audit payload shapes, one per event kind. Times are recorded as
// RFC3339Nano strings so the payload looks the same whether it was just
// emitted or read back from a JSON column.

type CreatedPayload struct {
	AdminWallet string `mapstructure:"admin_wallet"`
	TicketPrice uint64 `mapstructure:"ticket_price"`
	OpenTime    string `mapstructure:"open_time"`
	CloseTime   string `mapstructure:"close_time"`
	Capacity    int    `mapstructure:"capacity"`
}

type TicketIssuedPayload struct {
	Seq      int    `mapstructure:"seq"`
	Wallet   string `mapstructure:"wallet"`
	IssuedAt string `mapstructure:"issued_at"`
}

type ClosedPayload struct {
	TicketCount  int    `mapstructure:"ticket_count"`
	PrizePool    uint64 `mapstructure:"prize_pool"`
	LedgerDigest string `mapstructure:"ledger_digest"`
	Early        bool   `mapstructure:"early"`
}

type DrawnPayload struct {
	WinningTicketSeq int    `mapstructure:"winning_ticket_seq"`
	WinnerWallet     string `mapstructure:"winner_wallet"`
	Seed             string `mapstructure:"seed"`
	TicketCount      int    `mapstructure:"ticket_count"`
	DrawnAt          string `mapstructure:"drawn_at"`
}

func newAuditEvent(lotteryID string, seq int64, kind entity.AuditEventKind, payload entity.Map) *entity.LotteryAuditEvent {
	return &entity.LotteryAuditEvent{
		Base:      entity.Base{ID: uuid.NewString()},
		LotteryID: lotteryID,
		Seq:       seq,
		Kind:      kind,
		Payload:   payload,
	}
}

func createdEvent(lottery *entity.Lottery, seq int64) *entity.LotteryAuditEvent {
	return newAuditEvent(lottery.ID, seq, entity.AuditCreated, entity.Map{
		"admin_wallet": lottery.AdminWallet,
		"ticket_price": lottery.TicketPrice,
		"open_time":    lottery.OpenTime.Format(time.RFC3339Nano),
		"close_time":   lottery.CloseTime.Format(time.RFC3339Nano),
		"capacity":     lottery.Capacity,
	})
}

func ticketIssuedEvent(lotteryID string, seq int64, ticket *entity.LotteryTicket) *entity.LotteryAuditEvent {
	return newAuditEvent(lotteryID, seq, entity.AuditTicketIssued, entity.Map{
		"seq":       ticket.Seq,
		"wallet":    ticket.Wallet,
		"issued_at": ticket.IssuedAt.Format(time.RFC3339Nano),
	})
}

func closedEvent(lotteryID string, seq int64, payload ClosedPayload) *entity.LotteryAuditEvent {
	return newAuditEvent(lotteryID, seq, entity.AuditClosed, entity.Map{
		"ticket_count":  payload.TicketCount,
		"prize_pool":    payload.PrizePool,
		"ledger_digest": payload.LedgerDigest,
		"early":         payload.Early,
	})
}

func drawnEvent(lotteryID string, seq int64, payload DrawnPayload) *entity.LotteryAuditEvent {
	return newAuditEvent(lotteryID, seq, entity.AuditDrawn, entity.Map{
		"winning_ticket_seq": payload.WinningTicketSeq,
		"winner_wallet":      payload.WinnerWallet,
		"seed":               payload.Seed,
		"ticket_count":       payload.TicketCount,
		"drawn_at":           payload.DrawnAt,
	})
}
