package main

import (
	"context"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/rondomundi/backend/internal/middleware"
	"github.com/rondomundi/backend/internal/model"
	"github.com/rondomundi/backend/pkg/router"
)

func (s *srv) startApi(ct *cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.loadRepos()
	s.loadEngine(ct)
	s.loadDomains()
	s.loadRouter()

	s.server = &http.Server{
		Addr:    s.configs.ApiServer.Address(),
		Handler: s.router.Handler(),
	}

	s.logger.Infof("Starting server on %s", s.configs.ApiServer.Address())
	if err := s.server.ListenAndServe(); err != nil {
		return err
	}

	return nil
}

func (s *srv) migrate(ct *cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.logger.Infof("Migration finished")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.logger)
	s.router.Before(middleware.AllowCors)
	s.router.After(middleware.Logger())

	router.GET(s.router, "/", healthCheck)
	router.GET(s.router, "/health", healthCheck)

	router.POST(s.router, "/createLottery", s.lotteryDomain.CreateLottery)
	router.GET(s.router, "/getLottery", s.lotteryDomain.GetLottery)
	router.GET(s.router, "/getLotteries", s.lotteryDomain.ListLotteries)
	router.POST(s.router, "/buyTickets", s.lotteryDomain.BuyTickets)
	router.POST(s.router, "/closeLottery", s.lotteryDomain.CloseLottery)
	router.POST(s.router, "/drawWinner", s.lotteryDomain.DrawWinner)
	router.GET(s.router, "/getAuditEvents", s.lotteryDomain.ListAuditEvents)
}

func healthCheck(ctx context.Context, req *model.HealthCheckRequest) (*model.HealthCheckResponse, error) {
	return &model.HealthCheckResponse{Status: "Rondo Mundi backend is running"}, nil
}
