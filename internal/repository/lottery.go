package repository

import (
	"context"

	"github.com/rondomundi/backend/internal/domain/lotteryengine"
	"github.com/rondomundi/backend/internal/entity"
	"gorm.io/gorm"
)

// LotteryRepository persists lotteries, tickets and audit events. It is the
// storage side of lotteryengine.Store: every write method runs in a single
// database transaction so the engine's all-or-nothing contract holds.
type LotteryRepository interface {
	lotteryengine.Store

	GetByID(ctx context.Context, id string) (*entity.Lottery, error)
}

type lotteryRepository struct {
	db *gorm.DB
}

func NewLotteryRepository(db *gorm.DB) *lotteryRepository {
	return &lotteryRepository{db: db}
}

func (r *lotteryRepository) CreateLottery(
	ctx context.Context, lottery *entity.Lottery, ev *entity.LotteryAuditEvent,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lottery).Error; err != nil {
			return err
		}

		return tx.Create(ev).Error
	})
}

func (r *lotteryRepository) AppendTickets(
	ctx context.Context,
	lottery *entity.Lottery,
	tickets []*entity.LotteryTicket,
	evs []*entity.LotteryAuditEvent,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ticket := range tickets {
			if err := tx.Create(ticket).Error; err != nil {
				return err
			}
		}

		for _, ev := range evs {
			if err := tx.Create(ev).Error; err != nil {
				return err
			}
		}

		return tx.Model(&entity.Lottery{}).Where("id=?", lottery.ID).
			Update("prize_pool", lottery.PrizePool).Error
	})
}

func (r *lotteryRepository) SaveLottery(
	ctx context.Context, lottery *entity.Lottery, ev *entity.LotteryAuditEvent,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"phase":              lottery.Phase,
			"prize_pool":         lottery.PrizePool,
			"winning_ticket_seq": lottery.WinningTicketSeq,
			"draw_seed":          lottery.DrawSeed,
			"drawn_at":           lottery.DrawnAt,
		}
		if err := tx.Model(&entity.Lottery{}).Where("id=?", lottery.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		return tx.Create(ev).Error
	})
}

func (r *lotteryRepository) GetByID(ctx context.Context, id string) (*entity.Lottery, error) {
	var result entity.Lottery
	if err := r.db.WithContext(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) ListLotteries(ctx context.Context) ([]entity.Lottery, error) {
	var result []entity.Lottery
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *lotteryRepository) ListTickets(ctx context.Context, lotteryID string) ([]entity.LotteryTicket, error) {
	var result []entity.LotteryTicket
	err := r.db.WithContext(ctx).Where("lottery_id=?", lotteryID).
		Order("seq ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *lotteryRepository) ListAuditEvents(
	ctx context.Context, lotteryID string, sinceSeq int64,
) ([]entity.LotteryAuditEvent, error) {
	var result []entity.LotteryAuditEvent
	err := r.db.WithContext(ctx).Where("lottery_id=? AND seq > ?", lotteryID, sinceSeq).
		Order("seq ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
