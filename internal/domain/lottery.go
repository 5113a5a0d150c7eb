package domain

import (
	"context"

	"github.com/rondomundi/backend/internal/domain/lotteryengine"
	"github.com/rondomundi/backend/internal/model"
	"github.com/rondomundi/backend/pkg/errorx"
)

type LotteryDomain interface {
	CreateLottery(context.Context, *model.CreateLotteryRequest) (*model.CreateLotteryResponse, error)
	GetLottery(context.Context, *model.GetLotteryRequest) (*model.GetLotteryResponse, error)
	ListLotteries(context.Context, *model.ListLotteriesRequest) (*model.ListLotteriesResponse, error)
	BuyTickets(context.Context, *model.BuyTicketsRequest) (*model.BuyTicketsResponse, error)
	CloseLottery(context.Context, *model.CloseLotteryRequest) (*model.CloseLotteryResponse, error)
	DrawWinner(context.Context, *model.DrawWinnerRequest) (*model.DrawWinnerResponse, error)
	ListAuditEvents(context.Context, *model.ListAuditEventsRequest) (*model.ListAuditEventsResponse, error)
}

type lotteryDomain struct {
	engine *lotteryengine.Engine
}

func NewLotteryDomain(engine *lotteryengine.Engine) *lotteryDomain {
	return &lotteryDomain{engine: engine}
}

func (d *lotteryDomain) CreateLottery(
	ctx context.Context, req *model.CreateLotteryRequest,
) (*model.CreateLotteryResponse, error) {
	if req.AdminWallet == "" {
		return nil, errorx.New(errorx.BadRequest, "Admin wallet is required")
	}

	capacity := 0
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return nil, errorx.New(errorx.InvalidConfiguration, "Capacity must be at least 1 if set")
		}

		capacity = *req.Capacity
	}

	ins, err := d.engine.CreateLottery(ctx, lotteryengine.Config{
		AdminWallet: req.AdminWallet,
		TicketPrice: req.TicketPrice,
		OpenTime:    req.OpenTime,
		CloseTime:   req.CloseTime,
		Capacity:    capacity,
	})
	if err != nil {
		return nil, err
	}

	return &model.CreateLotteryResponse{Lottery: convertLottery(ins)}, nil
}

func (d *lotteryDomain) GetLottery(
	ctx context.Context, req *model.GetLotteryRequest,
) (*model.GetLotteryResponse, error) {
	ins, err := d.engine.Get(req.LotteryID)
	if err != nil {
		return nil, err
	}

	return &model.GetLotteryResponse{Lottery: convertLottery(ins)}, nil
}

func (d *lotteryDomain) ListLotteries(
	ctx context.Context, req *model.ListLotteriesRequest,
) (*model.ListLotteriesResponse, error) {
	lotteries := []model.Lottery{}
	for _, ins := range d.engine.List() {
		lotteries = append(lotteries, convertLottery(ins))
	}

	return &model.ListLotteriesResponse{Lotteries: lotteries}, nil
}

func (d *lotteryDomain) BuyTickets(
	ctx context.Context, req *model.BuyTicketsRequest,
) (*model.BuyTicketsResponse, error) {
	ins, err := d.engine.Get(req.LotteryID)
	if err != nil {
		return nil, err
	}

	tickets, err := ins.Purchase(ctx, req.Wallet, req.NumberTickets)
	if err != nil {
		return nil, err
	}

	return &model.BuyTicketsResponse{
		Tickets: convertTickets(tickets),
		Lottery: convertLottery(ins),
	}, nil
}

func (d *lotteryDomain) CloseLottery(
	ctx context.Context, req *model.CloseLotteryRequest,
) (*model.CloseLotteryResponse, error) {
	ins, err := d.engine.Get(req.LotteryID)
	if err != nil {
		return nil, err
	}

	if err := d.verifyAdmin(ins, req.Wallet); err != nil {
		return nil, err
	}

	if err := ins.Close(ctx, req.Force); err != nil {
		return nil, err
	}

	return &model.CloseLotteryResponse{Lottery: convertLottery(ins)}, nil
}

func (d *lotteryDomain) DrawWinner(
	ctx context.Context, req *model.DrawWinnerRequest,
) (*model.DrawWinnerResponse, error) {
	ins, err := d.engine.Get(req.LotteryID)
	if err != nil {
		return nil, err
	}

	if err := d.verifyAdmin(ins, req.Wallet); err != nil {
		return nil, err
	}

	result, err := ins.Draw(ctx)
	if err != nil {
		return nil, err
	}

	return &model.DrawWinnerResponse{
		Result:  convertDrawResult(result),
		Lottery: convertLottery(ins),
	}, nil
}

func (d *lotteryDomain) ListAuditEvents(
	ctx context.Context, req *model.ListAuditEventsRequest,
) (*model.ListAuditEventsResponse, error) {
	events, err := d.engine.AuditEvents(ctx, req.LotteryID, req.SinceSeq)
	if err != nil {
		return nil, err
	}

	return &model.ListAuditEventsResponse{Events: convertAuditEvents(events)}, nil
}

// verifyAdmin gates close and draw to the wallet that created the lottery.
// This is an identity comparison only, the engine never verifies wallet
// ownership.
func (d *lotteryDomain) verifyAdmin(ins *lotteryengine.Instance, wallet string) error {
	lottery, _ := ins.Status()
	if lottery.AdminWallet != wallet {
		return errorx.New(errorx.PermissionDenied, "Only the lottery admin can do this")
	}

	return nil
}
