package main

import (
	"net/http"

	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rondomundi/backend/config"
	"github.com/rondomundi/backend/internal/domain"
	"github.com/rondomundi/backend/internal/domain/lotteryengine"
	"github.com/rondomundi/backend/internal/entity"
	"github.com/rondomundi/backend/internal/repository"
	"github.com/rondomundi/backend/pkg/clock"
	"github.com/rondomundi/backend/pkg/crypto"
	"github.com/rondomundi/backend/pkg/logger"
	"github.com/rondomundi/backend/pkg/router"
)

type srv struct {
	app *cli.App

	configs *config.Configs
	logger  logger.Logger
	db      *gorm.DB

	lotteryRepo repository.LotteryRepository

	engine        *lotteryengine.Engine
	lotteryDomain domain.LotteryDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig() {
	cfg := config.Load()
	s.configs = &cfg
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger(logger.ParseLevel(s.configs.LogLevel))
}

func (s *srv) loadDatabase() {
	var dialector gorm.Dialector
	switch s.configs.Database.Driver {
	case "mysql":
		dialector = mysql.Open(s.configs.Database.ConnectionString())
	default:
		dialector = sqlite.Open(s.configs.Database.SQLitePath)
	}

	var err error
	s.db, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		panic(err)
	}

	if err := entity.MigrateTable(s.db); err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.lotteryRepo = repository.NewLotteryRepository(s.db)
}

func (s *srv) loadEngine(ctx *cli.Context) {
	s.engine = lotteryengine.New(
		s.lotteryRepo,
		clock.New(),
		crypto.NewSeedSource(),
		lotteryengine.Options{
			AllowEarlyClose:       s.configs.Lottery.AllowEarlyClose,
			MaxTicketsPerPurchase: s.configs.Lottery.MaxTicketsPerPurchase,
		},
	)

	if err := s.engine.Rehydrate(ctx.Context); err != nil {
		panic(err)
	}
}

func (s *srv) loadDomains() {
	s.lotteryDomain = domain.NewLotteryDomain(s.engine)
}
