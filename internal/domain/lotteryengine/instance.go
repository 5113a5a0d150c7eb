package lotteryengine

import (
	"context"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rondomundi/backend/internal/entity"
	"github.com/rondomundi/backend/pkg/clock"
	"github.com/rondomundi/backend/pkg/crypto"
	"github.com/rondomundi/backend/pkg/errorx"
	"github.com/rondomundi/backend/pkg/xcontext"
)

// DrawResult is the outcome of a draw. It is computed exactly once per
// lottery and every caller of Draw observes the same value afterwards.
type DrawResult struct {
	LotteryID        string
	WinningTicketSeq int
	WinnerWallet     string
	Seed             []byte
	DrawnAt          time.Time
}

// Instance is the state machine of a single lottery. All state-changing
// operations are serialized on the instance's own lock, so two instances
// never block each other. The in-memory state is authoritative; the store
// is written first and the memory mutation happens only on success, which
// makes every operation all-or-nothing.
type Instance struct {
	mu sync.Mutex

	store  Store
	clk    clock.Clock
	seeder crypto.SeedSource
	opts   Options

	lottery  entity.Lottery
	ledger   ticketLedger
	auditSeq int64

	// ready flips to 1 once the created event is durable. The registry only
	// hands out published instances, so a half-created lottery is never
	// observable.
	ready uint32

	// failed marks an instance whose creation could not be persisted. Set
	// under mu before the registry entry is removed.
	failed bool
}

func (ins *Instance) publish() {
	atomic.StoreUint32(&ins.ready, 1)
}

func (ins *Instance) published() bool {
	return atomic.LoadUint32(&ins.ready) == 1
}

// Purchase issues n tickets to wallet. The batch is atomic: either every
// ticket is recorded with a dense run of sequence numbers or none is.
func (ins *Instance) Purchase(ctx context.Context, wallet string, n int) ([]entity.LotteryTicket, error) {
	if wallet == "" {
		return nil, errorx.New(errorx.BadRequest, "Wallet identifier is required")
	}

	if n < 1 {
		return nil, errorx.New(errorx.BadRequest, "Must buy at least 1 ticket")
	}

	if n > ins.opts.MaxTicketsPerPurchase {
		return nil, errorx.New(errorx.BadRequest,
			"Cannot buy more than %d tickets at once", ins.opts.MaxTicketsPerPurchase)
	}

	now := ins.clk.Now()

	ins.mu.Lock()
	defer ins.mu.Unlock()

	if ins.failed {
		return nil, errorx.New(errorx.LotteryNotFound, "Lottery not found")
	}

	if now.Before(ins.lottery.OpenTime) {
		return nil, errorx.New(errorx.LotteryNotOpen, "Lottery is not open yet")
	}

	if !now.Before(ins.lottery.CloseTime) {
		return nil, errorx.New(errorx.LotteryExpired, "Lottery sale window has ended")
	}

	if ins.lottery.Phase != entity.PhaseOpen {
		return nil, errorx.New(errorx.LotteryNotOpen, "Lottery is no longer open")
	}

	if capacity := ins.lottery.Capacity; capacity > 0 && ins.ledger.count()+n > capacity {
		return nil, errorx.New(errorx.CapacityExhausted,
			"Only %d of %d tickets left", capacity-ins.ledger.count(), capacity)
	}

	tickets := make([]*entity.LotteryTicket, 0, n)
	events := make([]*entity.LotteryAuditEvent, 0, n)
	for i := 0; i < n; i++ {
		ticket := &entity.LotteryTicket{
			Base:      entity.Base{ID: uuid.NewString()},
			LotteryID: ins.lottery.ID,
			Seq:       ins.ledger.nextSeq() + i,
			Wallet:    wallet,
			IssuedAt:  now,
		}
		tickets = append(tickets, ticket)
		events = append(events, ticketIssuedEvent(ins.lottery.ID, ins.auditSeq+int64(i)+1, ticket))
	}

	updated := ins.lottery
	updated.PrizePool += updated.TicketPrice * uint64(n)

	if err := ins.store.AppendTickets(ctx, &updated, tickets, events); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot persist purchase: %v", err)
		return nil, errorx.New(errorx.DependencyFailure, "Cannot record the purchase")
	}

	issued := make([]entity.LotteryTicket, 0, n)
	for _, ticket := range tickets {
		issued = append(issued, *ticket)
	}

	ins.ledger.append(issued...)
	ins.auditSeq += int64(n)
	ins.lottery = updated

	return issued, nil
}

// Close transitions the lottery from open to closed. Before the close time
// it only succeeds when force is set and the engine allows early close.
// Closing an already closed or drawn lottery fails.
func (ins *Instance) Close(ctx context.Context, force bool) error {
	now := ins.clk.Now()

	ins.mu.Lock()
	defer ins.mu.Unlock()

	if ins.failed {
		return errorx.New(errorx.LotteryNotFound, "Lottery not found")
	}

	if ins.lottery.Phase != entity.PhaseOpen {
		return errorx.New(errorx.InvalidTransition, "Lottery is already %s", ins.lottery.Phase)
	}

	early := now.Before(ins.lottery.CloseTime)
	if early {
		if !force {
			return errorx.New(errorx.InvalidTransition, "Lottery close time has not been reached")
		}

		if !ins.opts.AllowEarlyClose {
			return errorx.New(errorx.InvalidTransition, "Early close is not allowed")
		}
	}

	updated := ins.lottery
	updated.Phase = entity.PhaseClosed

	ev := closedEvent(ins.lottery.ID, ins.auditSeq+1, ClosedPayload{
		TicketCount:  ins.ledger.count(),
		PrizePool:    ins.lottery.PrizePool,
		LedgerDigest: ins.ledger.digest(),
		Early:        early,
	})

	if err := ins.store.SaveLottery(ctx, &updated, ev); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot persist close: %v", err)
		return errorx.New(errorx.DependencyFailure, "Cannot record the close")
	}

	ins.lottery = updated
	ins.auditSeq++

	return nil
}

// Draw selects the winning ticket of a closed lottery. The selection is
// at-most-once: the first caller computes and stores the result, every
// later caller gets the stored result back.
func (ins *Instance) Draw(ctx context.Context) (*DrawResult, error) {
	ins.mu.Lock()
	defer ins.mu.Unlock()

	if ins.failed {
		return nil, errorx.New(errorx.LotteryNotFound, "Lottery not found")
	}

	if ins.lottery.Phase == entity.PhaseDrawn {
		return ins.drawResult(), nil
	}

	if ins.lottery.Phase != entity.PhaseClosed {
		return nil, errorx.New(errorx.InvalidTransition, "Lottery must be closed before drawing")
	}

	if ins.ledger.count() == 0 {
		return nil, errorx.New(errorx.NoTickets, "No tickets were sold")
	}

	seed, err := ins.seeder.NextSeed()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot read random seed: %v", err)
		return nil, errorx.New(errorx.DependencyFailure, "Cannot draw a random seed")
	}

	index, err := crypto.WinnerIndex(seed, ins.ledger.count())
	if err != nil {
		return nil, errorx.New(errorx.DependencyFailure, "Cannot select a winner")
	}

	winner := ins.ledger.tickets[index]
	drawnAt := ins.clk.Now()

	updated := ins.lottery
	updated.Phase = entity.PhaseDrawn
	updated.WinningTicketSeq = winner.Seq
	updated.DrawSeed = hex.EncodeToString(seed)
	updated.DrawnAt = &drawnAt

	ev := drawnEvent(ins.lottery.ID, ins.auditSeq+1, DrawnPayload{
		WinningTicketSeq: winner.Seq,
		WinnerWallet:     winner.Wallet,
		Seed:             updated.DrawSeed,
		TicketCount:      ins.ledger.count(),
		DrawnAt:          drawnAt.Format(time.RFC3339Nano),
	})

	if err := ins.store.SaveLottery(ctx, &updated, ev); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot persist draw: %v", err)
		return nil, errorx.New(errorx.DependencyFailure, "Cannot record the draw")
	}

	ins.lottery = updated
	ins.auditSeq++

	return ins.drawResult(), nil
}

// drawResult builds the result from the stored lottery state. Callers must
// hold the lock and the phase must be drawn.
func (ins *Instance) drawResult() *DrawResult {
	seed, _ := hex.DecodeString(ins.lottery.DrawSeed)
	return &DrawResult{
		LotteryID:        ins.lottery.ID,
		WinningTicketSeq: ins.lottery.WinningTicketSeq,
		WinnerWallet:     ins.ledger.tickets[ins.lottery.WinningTicketSeq-1].Wallet,
		Seed:             seed,
		DrawnAt:          *ins.lottery.DrawnAt,
	}
}

// Result returns the stored draw outcome, or false while the lottery has
// not been drawn.
func (ins *Instance) Result() (*DrawResult, bool) {
	ins.mu.Lock()
	defer ins.mu.Unlock()

	if ins.lottery.Phase != entity.PhaseDrawn {
		return nil, false
	}

	return ins.drawResult(), true
}

// Status returns a consistent copy of the lottery record and its ticket
// count.
func (ins *Instance) Status() (entity.Lottery, int) {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	return ins.lottery, ins.ledger.count()
}

// Tickets returns a point-in-time copy of the ledger in issuance order.
func (ins *Instance) Tickets() []entity.LotteryTicket {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	return ins.ledger.snapshot()
}
