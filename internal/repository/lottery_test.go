package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/rondomundi/backend/internal/entity"
	"github.com/rondomundi/backend/pkg/testutil"
)

type LotteryRepositoryTestSuite struct {
	suite.Suite

	db   *gorm.DB
	repo *lotteryRepository
}

func TestLotteryRepositorySuite(t *testing.T) {
	suite.Run(t, new(LotteryRepositoryTestSuite))
}

func (s *LotteryRepositoryTestSuite) SetupTest() {
	s.db = testutil.CreateFixtureDb()
	s.repo = NewLotteryRepository(s.db)
}

func (s *LotteryRepositoryTestSuite) lottery(id string) *entity.Lottery {
	return &entity.Lottery{
		Base:        entity.Base{ID: id},
		AdminWallet: "0xadmin",
		TicketPrice: 10,
		OpenTime:    testutil.T0,
		CloseTime:   testutil.T0.Add(time.Hour),
		Phase:       entity.PhaseOpen,
	}
}

func (s *LotteryRepositoryTestSuite) event(lotteryID string, seq int64, kind entity.AuditEventKind) *entity.LotteryAuditEvent {
	return &entity.LotteryAuditEvent{
		Base:      entity.Base{ID: testutil.RandomWallet()},
		LotteryID: lotteryID,
		Seq:       seq,
		Kind:      kind,
		Payload:   entity.Map{"seq": seq},
	}
}

func (s *LotteryRepositoryTestSuite) TestReadWriteLottery() {
	t := s.T()
	ctx := context.Background()

	err := s.repo.CreateLottery(ctx, s.lottery("l1"), s.event("l1", 1, entity.AuditCreated))
	require.NoError(t, err)

	lottery, err := s.repo.GetByID(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, "0xadmin", lottery.AdminWallet)
	require.Equal(t, entity.PhaseOpen, lottery.Phase)

	_, err = s.repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	lotteries, err := s.repo.ListLotteries(ctx)
	require.NoError(t, err)
	require.Len(t, lotteries, 1)
}

func (s *LotteryRepositoryTestSuite) TestAppendTicketsIsTransactional() {
	t := s.T()
	ctx := context.Background()

	lottery := s.lottery("l1")
	require.NoError(t, s.repo.CreateLottery(ctx, lottery, s.event("l1", 1, entity.AuditCreated)))

	// Occupy seq 2 so the next batch collides on the unique index.
	taken := &entity.LotteryTicket{
		Base:      entity.Base{ID: "taken"},
		LotteryID: "l1",
		Seq:       2,
		Wallet:    "0xbob",
		IssuedAt:  testutil.T0,
	}
	require.NoError(t, s.db.Create(taken).Error)

	batch := []*entity.LotteryTicket{
		{Base: entity.Base{ID: "t1"}, LotteryID: "l1", Seq: 1, Wallet: "0xalice", IssuedAt: testutil.T0},
		{Base: entity.Base{ID: "t2"}, LotteryID: "l1", Seq: 2, Wallet: "0xalice", IssuedAt: testutil.T0},
	}
	events := []*entity.LotteryAuditEvent{
		s.event("l1", 2, entity.AuditTicketIssued),
		s.event("l1", 3, entity.AuditTicketIssued),
	}

	lottery.PrizePool = 20
	err := s.repo.AppendTickets(ctx, lottery, batch, events)
	require.Error(t, err)

	// The whole batch rolled back: no ticket seq 1, no events, old pool.
	tickets, err := s.repo.ListTickets(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.Equal(t, "taken", tickets[0].ID)

	evs, err := s.repo.ListAuditEvents(ctx, "l1", 1)
	require.NoError(t, err)
	require.Empty(t, evs)

	stored, err := s.repo.GetByID(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, uint64(0), stored.PrizePool)
}

func (s *LotteryRepositoryTestSuite) TestAppendTicketsOrdering() {
	t := s.T()
	ctx := context.Background()

	lottery := s.lottery("l1")
	require.NoError(t, s.repo.CreateLottery(ctx, lottery, s.event("l1", 1, entity.AuditCreated)))

	batch := []*entity.LotteryTicket{
		{Base: entity.Base{ID: "t1"}, LotteryID: "l1", Seq: 1, Wallet: "0xalice", IssuedAt: testutil.T0},
		{Base: entity.Base{ID: "t2"}, LotteryID: "l1", Seq: 2, Wallet: "0xbob", IssuedAt: testutil.T0},
		{Base: entity.Base{ID: "t3"}, LotteryID: "l1", Seq: 3, Wallet: "0xalice", IssuedAt: testutil.T0},
	}
	events := []*entity.LotteryAuditEvent{
		s.event("l1", 2, entity.AuditTicketIssued),
		s.event("l1", 3, entity.AuditTicketIssued),
		s.event("l1", 4, entity.AuditTicketIssued),
	}

	lottery.PrizePool = 30
	require.NoError(t, s.repo.AppendTickets(ctx, lottery, batch, events))

	tickets, err := s.repo.ListTickets(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	for i, ticket := range tickets {
		require.Equal(t, i+1, ticket.Seq)
	}

	stored, err := s.repo.GetByID(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, uint64(30), stored.PrizePool)
}

func (s *LotteryRepositoryTestSuite) TestSaveLottery() {
	t := s.T()
	ctx := context.Background()

	lottery := s.lottery("l1")
	require.NoError(t, s.repo.CreateLottery(ctx, lottery, s.event("l1", 1, entity.AuditCreated)))

	drawnAt := testutil.T0.Add(2 * time.Hour)
	lottery.Phase = entity.PhaseDrawn
	lottery.WinningTicketSeq = 7
	lottery.DrawSeed = "deadbeef"
	lottery.DrawnAt = &drawnAt
	require.NoError(t, s.repo.SaveLottery(ctx, lottery, s.event("l1", 2, entity.AuditDrawn)))

	stored, err := s.repo.GetByID(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, entity.PhaseDrawn, stored.Phase)
	require.Equal(t, 7, stored.WinningTicketSeq)
	require.Equal(t, "deadbeef", stored.DrawSeed)
	require.NotNil(t, stored.DrawnAt)
}

func (s *LotteryRepositoryTestSuite) TestListAuditEventsSinceSeq() {
	t := s.T()
	ctx := context.Background()

	require.NoError(t, s.repo.CreateLottery(ctx, s.lottery("l1"), s.event("l1", 1, entity.AuditCreated)))
	require.NoError(t, s.repo.SaveLottery(ctx, s.lottery("l1"), s.event("l1", 2, entity.AuditClosed)))
	require.NoError(t, s.repo.SaveLottery(ctx, s.lottery("l1"), s.event("l1", 3, entity.AuditDrawn)))

	all, err := s.repo.ListAuditEvents(ctx, "l1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	tail, err := s.repo.ListAuditEvents(ctx, "l1", 2)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	require.Equal(t, int64(3), tail[0].Seq)
	require.Equal(t, entity.AuditDrawn, tail[0].Kind)

	// The payload survives the JSON column round trip.
	require.EqualValues(t, 3, tail[0].Payload["seq"])
}
