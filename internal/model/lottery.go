package model

import "time"

type Lottery struct {
	ID          string    `json:"id"`
	AdminWallet string    `json:"admin_wallet"`
	TicketPrice uint64    `json:"ticket_price"`
	OpenTime    time.Time `json:"open_time"`
	CloseTime   time.Time `json:"close_time"`
	Capacity    int       `json:"capacity,omitempty"`
	Phase       string    `json:"phase"`
	PrizePool   uint64    `json:"prize_pool"`
	TicketCount int       `json:"ticket_count"`
	CreatedAt   time.Time `json:"created_at"`

	Winner *DrawResult `json:"winner,omitempty"`
}

type Ticket struct {
	Seq      int       `json:"seq"`
	Wallet   string    `json:"wallet"`
	IssuedAt time.Time `json:"issued_at"`
}

type DrawResult struct {
	LotteryID        string    `json:"lottery_id"`
	WinningTicketSeq int       `json:"winning_ticket_seq"`
	WinnerWallet     string    `json:"winner_wallet"`
	Seed             string    `json:"seed"`
	DrawnAt          time.Time `json:"drawn_at"`
}

type AuditEvent struct {
	Seq       int64          `json:"seq"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

type CreateLotteryRequest struct {
	AdminWallet string    `json:"admin_wallet"`
	TicketPrice uint64    `json:"ticket_price"`
	OpenTime    time.Time `json:"open_time"`
	CloseTime   time.Time `json:"close_time"`
	Capacity    *int      `json:"capacity,omitempty"`
}

type CreateLotteryResponse struct {
	Lottery Lottery `json:"lottery"`
}

type GetLotteryRequest struct {
	LotteryID string `json:"lottery_id"`
}

type GetLotteryResponse struct {
	Lottery Lottery `json:"lottery"`
}

type ListLotteriesRequest struct{}

type ListLotteriesResponse struct {
	Lotteries []Lottery `json:"lotteries"`
}

type BuyTicketsRequest struct {
	LotteryID     string `json:"lottery_id"`
	Wallet        string `json:"wallet"`
	NumberTickets int    `json:"number_tickets"`
}

type BuyTicketsResponse struct {
	Tickets []Ticket `json:"tickets"`
	Lottery Lottery  `json:"lottery"`
}

type CloseLotteryRequest struct {
	LotteryID string `json:"lottery_id"`
	Wallet    string `json:"wallet"`
	Force     bool   `json:"force,omitempty"`
}

type CloseLotteryResponse struct {
	Lottery Lottery `json:"lottery"`
}

type DrawWinnerRequest struct {
	LotteryID string `json:"lottery_id"`
	Wallet    string `json:"wallet"`
}

type DrawWinnerResponse struct {
	Result  DrawResult `json:"result"`
	Lottery Lottery    `json:"lottery"`
}

type ListAuditEventsRequest struct {
	LotteryID string `json:"lottery_id"`
	SinceSeq  int64  `json:"since_seq"`
}

type ListAuditEventsResponse struct {
	Events []AuditEvent `json:"events"`
}
