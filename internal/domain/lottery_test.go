package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rondomundi/backend/internal/domain/lotteryengine"
	"github.com/rondomundi/backend/internal/model"
	"github.com/rondomundi/backend/internal/repository"
	"github.com/rondomundi/backend/pkg/clock"
	"github.com/rondomundi/backend/pkg/crypto"
	"github.com/rondomundi/backend/pkg/errorx"
	"github.com/rondomundi/backend/pkg/testutil"
)

func newTestDomain(t *testing.T) (*lotteryDomain, *clock.Mock) {
	t.Helper()

	repo := repository.NewLotteryRepository(testutil.CreateFixtureDb())
	clk := clock.NewMock(testutil.T0)
	engine := lotteryengine.New(repo, clk, crypto.NewSeedSource(), lotteryengine.Options{})

	return NewLotteryDomain(engine), clk
}

func createTestLottery(t *testing.T, d *lotteryDomain, capacity *int) string {
	t.Helper()

	resp, err := d.CreateLottery(context.Background(), &model.CreateLotteryRequest{
		AdminWallet: "0xadmin",
		TicketPrice: 10,
		OpenTime:    testutil.T0,
		CloseTime:   testutil.T0.Add(time.Hour),
		Capacity:    capacity,
	})
	require.NoError(t, err)

	return resp.Lottery.ID
}

func intPtr(n int) *int {
	return &n
}

func Test_lotteryDomain_CreateLottery(t *testing.T) {
	tests := []struct {
		name    string
		req     *model.CreateLotteryRequest
		wantErr error
	}{
		{
			name: "happy case",
			req: &model.CreateLotteryRequest{
				AdminWallet: "0xadmin",
				TicketPrice: 10,
				OpenTime:    testutil.T0,
				CloseTime:   testutil.T0.Add(time.Hour),
			},
		},
		{
			name: "happy case with capacity",
			req: &model.CreateLotteryRequest{
				AdminWallet: "0xadmin",
				TicketPrice: 10,
				OpenTime:    testutil.T0,
				CloseTime:   testutil.T0.Add(time.Hour),
				Capacity:    intPtr(100),
			},
		},
		{
			name: "missing admin wallet",
			req: &model.CreateLotteryRequest{
				TicketPrice: 10,
				OpenTime:    testutil.T0,
				CloseTime:   testutil.T0.Add(time.Hour),
			},
			wantErr: errorx.New(errorx.BadRequest, "Admin wallet is required"),
		},
		{
			name: "zero ticket price",
			req: &model.CreateLotteryRequest{
				AdminWallet: "0xadmin",
				OpenTime:    testutil.T0,
				CloseTime:   testutil.T0.Add(time.Hour),
			},
			wantErr: errorx.New(errorx.InvalidConfiguration, "Ticket price must be positive"),
		},
		{
			name: "close before open",
			req: &model.CreateLotteryRequest{
				AdminWallet: "0xadmin",
				TicketPrice: 10,
				OpenTime:    testutil.T0.Add(time.Hour),
				CloseTime:   testutil.T0,
			},
			wantErr: errorx.New(errorx.InvalidConfiguration, "Close time must be after open time"),
		},
		{
			name: "zero capacity",
			req: &model.CreateLotteryRequest{
				AdminWallet: "0xadmin",
				TicketPrice: 10,
				OpenTime:    testutil.T0,
				CloseTime:   testutil.T0.Add(time.Hour),
				Capacity:    intPtr(0),
			},
			wantErr: errorx.New(errorx.InvalidConfiguration, "Capacity must be at least 1 if set"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDomain(t)
			got, err := d.CreateLottery(context.Background(), tt.req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				require.NotEmpty(t, got.Lottery.ID)
				require.Equal(t, "open", got.Lottery.Phase)
			} else {
				require.Error(t, err)
				require.Equal(t, tt.wantErr.Error(), err.Error())
			}
		})
	}
}

func Test_lotteryDomain_BuyTickets(t *testing.T) {
	tests := []struct {
		name        string
		req         *model.BuyTicketsRequest
		wantTickets int
		wantErr     error
	}{
		{
			name:        "happy case",
			req:         &model.BuyTicketsRequest{Wallet: "0xalice", NumberTickets: 3},
			wantTickets: 3,
		},
		{
			name:    "unknown lottery",
			req:     &model.BuyTicketsRequest{LotteryID: "missing", Wallet: "0xalice", NumberTickets: 1},
			wantErr: errorx.New(errorx.LotteryNotFound, "Lottery not found"),
		},
		{
			name:    "missing wallet",
			req:     &model.BuyTicketsRequest{NumberTickets: 1},
			wantErr: errorx.New(errorx.BadRequest, "Wallet identifier is required"),
		},
		{
			name:    "non positive count",
			req:     &model.BuyTicketsRequest{Wallet: "0xalice"},
			wantErr: errorx.New(errorx.BadRequest, "Must buy at least 1 ticket"),
		},
		{
			name:    "over capacity",
			req:     &model.BuyTicketsRequest{Wallet: "0xalice", NumberTickets: 6},
			wantErr: errorx.New(errorx.CapacityExhausted, "Only 5 of 5 tickets left"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDomain(t)
			id := createTestLottery(t, d, intPtr(5))
			if tt.req.LotteryID == "" {
				tt.req.LotteryID = id
			}

			got, err := d.BuyTickets(context.Background(), tt.req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				require.Len(t, got.Tickets, tt.wantTickets)
				require.Equal(t, tt.wantTickets, got.Lottery.TicketCount)
				require.Equal(t, uint64(tt.wantTickets)*10, got.Lottery.PrizePool)
			} else {
				require.Error(t, err)
				require.Equal(t, tt.wantErr.Error(), err.Error())
			}
		})
	}
}

func Test_lotteryDomain_CloseLottery(t *testing.T) {
	tests := []struct {
		name    string
		req     *model.CloseLotteryRequest
		wantErr error
	}{
		{
			name: "happy case",
			req:  &model.CloseLotteryRequest{Wallet: "0xadmin"},
		},
		{
			name:    "not the admin wallet",
			req:     &model.CloseLotteryRequest{Wallet: "0xalice"},
			wantErr: errorx.New(errorx.PermissionDenied, "Only the lottery admin can do this"),
		},
		{
			name:    "unknown lottery",
			req:     &model.CloseLotteryRequest{LotteryID: "missing", Wallet: "0xadmin"},
			wantErr: errorx.New(errorx.LotteryNotFound, "Lottery not found"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, clk := newTestDomain(t)
			id := createTestLottery(t, d, nil)
			if tt.req.LotteryID == "" {
				tt.req.LotteryID = id
			}

			clk.Set(testutil.T0.Add(time.Hour))
			got, err := d.CloseLottery(context.Background(), tt.req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				require.Equal(t, "closed", got.Lottery.Phase)
			} else {
				require.Error(t, err)
				require.Equal(t, tt.wantErr.Error(), err.Error())
			}
		})
	}
}

func Test_lotteryDomain_DrawWinner(t *testing.T) {
	ctx := context.Background()

	t.Run("happy case", func(t *testing.T) {
		d, clk := newTestDomain(t)
		id := createTestLottery(t, d, nil)

		_, err := d.BuyTickets(ctx, &model.BuyTicketsRequest{
			LotteryID: id, Wallet: "0xalice", NumberTickets: 4,
		})
		require.NoError(t, err)

		clk.Set(testutil.T0.Add(time.Hour))
		_, err = d.CloseLottery(ctx, &model.CloseLotteryRequest{LotteryID: id, Wallet: "0xadmin"})
		require.NoError(t, err)

		got, err := d.DrawWinner(ctx, &model.DrawWinnerRequest{LotteryID: id, Wallet: "0xadmin"})
		require.NoError(t, err)
		require.Equal(t, "0xalice", got.Result.WinnerWallet)
		require.GreaterOrEqual(t, got.Result.WinningTicketSeq, 1)
		require.LessOrEqual(t, got.Result.WinningTicketSeq, 4)
		require.NotEmpty(t, got.Result.Seed)
		require.Equal(t, "drawn", got.Lottery.Phase)
		require.NotNil(t, got.Lottery.Winner)

		// Drawing again returns the same outcome.
		again, err := d.DrawWinner(ctx, &model.DrawWinnerRequest{LotteryID: id, Wallet: "0xadmin"})
		require.NoError(t, err)
		require.Equal(t, got.Result, again.Result)
	})

	t.Run("not the admin wallet", func(t *testing.T) {
		d, clk := newTestDomain(t)
		id := createTestLottery(t, d, nil)

		clk.Set(testutil.T0.Add(time.Hour))
		_, err := d.CloseLottery(ctx, &model.CloseLotteryRequest{LotteryID: id, Wallet: "0xadmin"})
		require.NoError(t, err)

		_, err = d.DrawWinner(ctx, &model.DrawWinnerRequest{LotteryID: id, Wallet: "0xalice"})
		require.Error(t, err)
		require.Equal(t,
			errorx.New(errorx.PermissionDenied, "Only the lottery admin can do this").Error(),
			err.Error())
	})

	t.Run("still open", func(t *testing.T) {
		d, _ := newTestDomain(t)
		id := createTestLottery(t, d, nil)

		_, err := d.DrawWinner(ctx, &model.DrawWinnerRequest{LotteryID: id, Wallet: "0xadmin"})
		require.Error(t, err)
		require.Equal(t,
			errorx.New(errorx.InvalidTransition, "Lottery must be closed before drawing").Error(),
			err.Error())
	})
}

func Test_lotteryDomain_ListLotteries(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDomain(t)

	got, err := d.ListLotteries(ctx, &model.ListLotteriesRequest{})
	require.NoError(t, err)
	require.Empty(t, got.Lotteries)

	createTestLottery(t, d, nil)
	createTestLottery(t, d, nil)

	got, err = d.ListLotteries(ctx, &model.ListLotteriesRequest{})
	require.NoError(t, err)
	require.Len(t, got.Lotteries, 2)
}

func Test_lotteryDomain_ListAuditEvents(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDomain(t)
	id := createTestLottery(t, d, nil)

	_, err := d.BuyTickets(ctx, &model.BuyTicketsRequest{
		LotteryID: id, Wallet: "0xalice", NumberTickets: 2,
	})
	require.NoError(t, err)

	got, err := d.ListAuditEvents(ctx, &model.ListAuditEventsRequest{LotteryID: id})
	require.NoError(t, err)
	require.Len(t, got.Events, 3)
	require.Equal(t, "created", got.Events[0].Kind)
	require.Equal(t, "ticket-issued", got.Events[1].Kind)

	tail, err := d.ListAuditEvents(ctx, &model.ListAuditEventsRequest{LotteryID: id, SinceSeq: 2})
	require.NoError(t, err)
	require.Len(t, tail.Events, 1)
	require.Equal(t, int64(3), tail.Events[0].Seq)
}
