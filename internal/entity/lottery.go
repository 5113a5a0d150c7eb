package entity

import (
	"time"

	"github.com/rondomundi/backend/pkg/enum"
)

type LotteryPhase string

var (
	PhaseOpen   = enum.New(LotteryPhase("open"))
	PhaseClosed = enum.New(LotteryPhase("closed"))
	PhaseDrawn  = enum.New(LotteryPhase("drawn"))
)

type AuditEventKind string

var (
	AuditCreated      = enum.New(AuditEventKind("created"))
	AuditTicketIssued = enum.New(AuditEventKind("ticket-issued"))
	AuditClosed       = enum.New(AuditEventKind("closed"))
	AuditDrawn        = enum.New(AuditEventKind("drawn"))
)

type Lottery struct {
	Base

	AdminWallet string
	TicketPrice uint64
	OpenTime    time.Time
	CloseTime   time.Time

	// Capacity of zero means unbounded.
	Capacity int

	Phase     LotteryPhase
	PrizePool uint64

	// Draw outcome, set exactly once when the phase reaches drawn.
	WinningTicketSeq int
	DrawSeed         string
	DrawnAt          *time.Time
}

type LotteryTicket struct {
	Base

	LotteryID string `gorm:"uniqueIndex:idx_lottery_ticket_seq"`
	Seq       int    `gorm:"uniqueIndex:idx_lottery_ticket_seq"`
	Wallet    string
	IssuedAt  time.Time
}

type LotteryAuditEvent struct {
	Base

	LotteryID string         `gorm:"uniqueIndex:idx_lottery_audit_seq"`
	Seq       int64          `gorm:"uniqueIndex:idx_lottery_audit_seq"`
	Kind      AuditEventKind `gorm:"type:varchar(32)"`
	Payload   Map
}
