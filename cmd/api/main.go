package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"agrolend-backend/internal/adapter/docvalidator"
	httpadp "agrolend-backend/internal/adapter/http"
	ledgeradp "agrolend-backend/internal/adapter/ledger"
	appmw "agrolend-backend/internal/adapter/middleware"
	"agrolend-backend/internal/adapter/repository/mysql"
	"agrolend-backend/internal/config"
	loanDomain "agrolend-backend/internal/domain/loan"
	repayDomain "agrolend-backend/internal/domain/repayment"
	riskDomain "agrolend-backend/internal/domain/risk"
	userDomain "agrolend-backend/internal/domain/user"
	"agrolend-backend/internal/infrastructure/cache"
	"agrolend-backend/internal/infrastructure/db"
	"agrolend-backend/internal/logger"
	"agrolend-backend/internal/notify"
	"agrolend-backend/internal/usecase/dashboard"
	"agrolend-backend/internal/usecase/directory"
	"agrolend-backend/internal/usecase/marketplace"
	"agrolend-backend/internal/usecase/reconcile"
	repayuc "agrolend-backend/internal/usecase/repayment"
	riskuc "agrolend-backend/internal/usecase/risk"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid config", "err", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalw("opening mysql failed", "err", err)
	}
	if err := gdb.AutoMigrate(
		&userDomain.User{},
		&loanDomain.LoanRequest{},
		&loanDomain.Contribution{},
		&repayDomain.Schedule{},
		&repayDomain.Installment{},
		&repayDomain.Transaction{},
		&riskDomain.Alert{},
	); err != nil {
		log.Fatalw("migration failed", "err", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalw("opening redis failed", "err", err)
	}

	loans := mysql.NewLoanRepository(gdb)
	repayments := mysql.NewRepaymentRepository(gdb)
	alerts := mysql.NewRiskRepository(gdb)
	users := mysql.NewUserRepository(gdb)
	uow := mysql.NewGormUoW(gdb)

	ledgerClient := ledgeradp.NewClient(cfg.LedgerBaseURL)
	docClient := docvalidator.NewClient(cfg.DocValidatorBaseURL)

	dir := directory.NewUsecase(users, cfg.JWTSecret)

	var notifier riskuc.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Warnw("telegram notifier disabled", "err", err)
		} else {
			notifier = tg
		}
	}

	market := marketplace.NewUsecase(loans, uow, dir, ledgerClient)
	scheduler := repayuc.NewScheduler(repayments)
	riskEngine := riskuc.NewEngine(loans, alerts, notifier)
	dash := dashboard.NewUsecase(loans, repayments)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := reconcile.NewWorker(loans, uow, dir, ledgerClient,
		time.Duration(cfg.ReconcileInterval)*time.Second)
	go worker.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger(), echomw.Recover())
	e.Validator = httpadp.NewValidator()

	httpadp.RegisterRoutes(e, httpadp.Handlers{
		Base:        httpadp.NewHandler(),
		Auth:        httpadp.NewAuthHandler(dir),
		Marketplace: httpadp.NewMarketplaceHandler(market),
		Repayment:   httpadp.NewRepaymentHandler(scheduler),
		Risk:        httpadp.NewRiskHandler(riskEngine),
		Dashboard:   httpadp.NewDashboardHandler(dash),
		Collateral:  httpadp.NewCollateralHandler(docClient),
	},
		appmw.Auth(dir),
		appmw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	addr := ":" + cfg.AppPort
	log.Infow("listening", "addr", addr)
	if err := e.Start(addr); err != nil {
		log.Infow("server stopped", "reason", err)
	}
}
