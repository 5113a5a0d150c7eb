package domain

import (
	"encoding/hex"

	"github.com/rondomundi/backend/internal/domain/lotteryengine"
	"github.com/rondomundi/backend/internal/entity"
	"github.com/rondomundi/backend/internal/model"
)

func convertLottery(ins *lotteryengine.Instance) model.Lottery {
	lottery, count := ins.Status()

	out := model.Lottery{
		ID:          lottery.ID,
		AdminWallet: lottery.AdminWallet,
		TicketPrice: lottery.TicketPrice,
		OpenTime:    lottery.OpenTime,
		CloseTime:   lottery.CloseTime,
		Capacity:    lottery.Capacity,
		Phase:       string(lottery.Phase),
		PrizePool:   lottery.PrizePool,
		TicketCount: count,
		CreatedAt:   lottery.CreatedAt,
	}

	if result, ok := ins.Result(); ok {
		winner := convertDrawResult(result)
		out.Winner = &winner
	}

	return out
}

func convertTickets(tickets []entity.LotteryTicket) []model.Ticket {
	out := make([]model.Ticket, 0, len(tickets))
	for i := range tickets {
		out = append(out, model.Ticket{
			Seq:      tickets[i].Seq,
			Wallet:   tickets[i].Wallet,
			IssuedAt: tickets[i].IssuedAt,
		})
	}

	return out
}

func convertDrawResult(result *lotteryengine.DrawResult) model.DrawResult {
	return model.DrawResult{
		LotteryID:        result.LotteryID,
		WinningTicketSeq: result.WinningTicketSeq,
		WinnerWallet:     result.WinnerWallet,
		Seed:             hex.EncodeToString(result.Seed),
		DrawnAt:          result.DrawnAt,
	}
}

func convertAuditEvents(events []entity.LotteryAuditEvent) []model.AuditEvent {
	out := make([]model.AuditEvent, 0, len(events))
	for i := range events {
		out = append(out, model.AuditEvent{
			Seq:       events[i].Seq,
			Kind:      string(events[i].Kind),
			Payload:   map[string]any(events[i].Payload),
			CreatedAt: events[i].CreatedAt,
		})
	}

	return out
}
