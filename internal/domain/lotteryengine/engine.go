// Package lotteryengine implements the lifecycle of decentralized
// lotteries: a registry of per-lottery state machines, an append-only
// ticket ledger per lottery, unbiased winner selection from secure
// randomness and an audit trail that makes every draw reproducible.
//
// The engine is transport-agnostic. It consumes a Store for persistence, a
// Clock for open/close decisions and a SeedSource for draw randomness; all
// three are injected so tests run on a fixed timeline with fixed seeds.
package lotteryengine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/rondomundi/backend/internal/entity"
	"github.com/rondomundi/backend/pkg/clock"
	"github.com/rondomundi/backend/pkg/crypto"
	"github.com/rondomundi/backend/pkg/enum"
	"github.com/rondomundi/backend/pkg/errorx"
	"github.com/rondomundi/backend/pkg/xcontext"
)

// Options are engine-wide policies.
type Options struct {
	// AllowEarlyClose lets an instance be closed by force before its close
	// time.
	AllowEarlyClose bool

	// MaxTicketsPerPurchase bounds a single purchase batch.
	MaxTicketsPerPurchase int
}

const defaultMaxTicketsPerPurchase = 10000

// Config describes a lottery to create.
type Config struct {
	ID          string
	AdminWallet string
	TicketPrice uint64
	OpenTime    time.Time
	CloseTime   time.Time

	// Capacity of zero means unbounded.
	Capacity int
}

// Engine owns every live lottery instance. Creation and lookup are safe
// under concurrent access and independent of any single instance's lock.
type Engine struct {
	store  Store
	clk    clock.Clock
	seeder crypto.SeedSource
	opts   Options

	instances *xsync.MapOf[string, *Instance]
}

func New(store Store, clk clock.Clock, seeder crypto.SeedSource, opts Options) *Engine {
	if opts.MaxTicketsPerPurchase <= 0 {
		opts.MaxTicketsPerPurchase = defaultMaxTicketsPerPurchase
	}

	return &Engine{
		store:     store,
		clk:       clk,
		seeder:    seeder,
		opts:      opts,
		instances: xsync.NewMapOf[*Instance](),
	}
}

// Rehydrate loads every persisted lottery and its tickets into the
// registry. It must run before the engine serves requests.
func (e *Engine) Rehydrate(ctx context.Context) error {
	lotteries, err := e.store.ListLotteries(ctx)
	if err != nil {
		return err
	}

	for i := range lotteries {
		if _, err := enum.ToEnum[entity.LotteryPhase](string(lotteries[i].Phase)); err != nil {
			return fmt.Errorf("lottery %s has an invalid phase: %w", lotteries[i].ID, err)
		}

		tickets, err := e.store.ListTickets(ctx, lotteries[i].ID)
		if err != nil {
			return err
		}

		events, err := e.store.ListAuditEvents(ctx, lotteries[i].ID, 0)
		if err != nil {
			return err
		}

		var auditSeq int64
		if len(events) > 0 {
			auditSeq = events[len(events)-1].Seq
		}

		ins := &Instance{
			store:    e.store,
			clk:      e.clk,
			seeder:   e.seeder,
			opts:     e.opts,
			lottery:  lotteries[i],
			ledger:   ticketLedger{tickets: tickets},
			auditSeq: auditSeq,
			ready:    1,
		}
		e.instances.Store(lotteries[i].ID, ins)
	}

	return nil
}

// CreateLottery validates the config, persists the lottery and publishes a
// fully constructed instance. Concurrent callers racing on the same id get
// exactly one instance; the losers see DuplicateLottery.
func (e *Engine) CreateLottery(ctx context.Context, cfg Config) (*Instance, error) {
	if cfg.TicketPrice == 0 {
		return nil, errorx.New(errorx.InvalidConfiguration, "Ticket price must be positive")
	}

	if !cfg.CloseTime.After(cfg.OpenTime) {
		return nil, errorx.New(errorx.InvalidConfiguration, "Close time must be after open time")
	}

	if cfg.Capacity < 0 {
		return nil, errorx.New(errorx.InvalidConfiguration, "Capacity must be at least 1 if set")
	}

	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}

	lottery := entity.Lottery{
		Base:        entity.Base{ID: id},
		AdminWallet: cfg.AdminWallet,
		TicketPrice: cfg.TicketPrice,
		OpenTime:    cfg.OpenTime,
		CloseTime:   cfg.CloseTime,
		Capacity:    cfg.Capacity,
		Phase:       entity.PhaseOpen,
	}

	ins := &Instance{
		store:   e.store,
		clk:     e.clk,
		seeder:  e.seeder,
		opts:    e.opts,
		lottery: lottery,
	}

	// Reserve the id first so duplicate creators lose immediately, but the
	// instance stays unpublished until its created event is durable: Get and
	// List never return it before then, and a failed write marks it so the
	// reserved entry can never issue tickets.
	ins.mu.Lock()
	defer ins.mu.Unlock()

	if _, loaded := e.instances.LoadOrStore(id, ins); loaded {
		return nil, errorx.New(errorx.DuplicateLottery, "Lottery %s already exists", id)
	}

	if err := e.store.CreateLottery(ctx, &lottery, createdEvent(&lottery, 1)); err != nil {
		ins.failed = true
		e.instances.Delete(id)
		xcontext.Logger(ctx).Errorf("Cannot persist lottery: %v", err)
		return nil, errorx.New(errorx.DependencyFailure, "Cannot record the new lottery")
	}

	ins.auditSeq = 1
	ins.publish()
	return ins, nil
}

// Get returns the instance for id. An instance whose creation is still in
// flight is not found.
func (e *Engine) Get(id string) (*Instance, error) {
	ins, ok := e.instances.Load(id)
	if !ok || !ins.published() {
		return nil, errorx.New(errorx.LotteryNotFound, "Lottery not found")
	}

	return ins, nil
}

// List returns every published instance in no particular order.
func (e *Engine) List() []*Instance {
	var all []*Instance
	e.instances.Range(func(_ string, ins *Instance) bool {
		if ins.published() {
			all = append(all, ins)
		}
		return true
	})

	return all
}

// AuditEvents returns the persisted audit trail of one lottery starting
// after sinceSeq.
func (e *Engine) AuditEvents(ctx context.Context, id string, sinceSeq int64) ([]entity.LotteryAuditEvent, error) {
	if _, err := e.Get(id); err != nil {
		return nil, err
	}

	events, err := e.store.ListAuditEvents(ctx, id, sinceSeq)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load audit events: %v", err)
		return nil, errorx.New(errorx.DependencyFailure, "Cannot load audit events")
	}

	return events, nil
}
