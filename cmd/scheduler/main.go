package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/saccotech/sacco-engine/internal/config"
	"github.com/saccotech/sacco-engine/internal/gateway"
	"github.com/saccotech/sacco-engine/internal/repository"
	"github.com/saccotech/sacco-engine/internal/repository/memory"
	"github.com/saccotech/sacco-engine/internal/service"
)

// The scheduler owns the time-driven jobs the request path deliberately
// avoids: daily interest accrual, arrears flagging, and the M-Pesa
// reconciliation sweep.
func main() {
	log.Println("Starting sacco scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	stores := memory.NewStores()
	if cfg.Store.Driver == config.StoreDriverPostgres {
		db, err := sqlx.Connect("postgres", cfg.Store.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		stores = &repository.Stores{
			Members:       repository.NewMemberRepository(db),
			Loans:         repository.NewLoanRepository(db),
			Repayments:    repository.NewRepaymentRepository(db),
			Contributions: repository.NewContributionRepository(db),
			Journal:       repository.NewJournalRepository(db),
			Transactions:  repository.NewTransactionRepository(db),
			Pools:         repository.NewPoolRepository(db),
		}
	}

	ledgerService := service.NewLedgerService(stores.Journal)
	rules := service.NewBusinessRules(cfg)
	contributionService := service.NewContributionService(stores, ledgerService, rules)
	accrualService := service.NewAccrualService(stores.Loans, rules)
	paymentService := service.NewPaymentService(stores, contributionService, gateway.New(cfg))

	c := cron.New(cron.WithSeconds())
	setupCronJobs(c, cfg, accrualService, paymentService)

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, accrual *service.AccrualService, payments *service.PaymentService) {
	_, err := c.AddFunc(cfg.Scheduler.AccrualSpec, func() {
		log.Println("Running daily interest accrual job...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		n, err := accrual.AccrueDaily(ctx, time.Now())
		if err != nil {
			log.Printf("Interest accrual job failed: %v", err)
			return
		}
		log.Printf("Interest accrued on %d loans", n)
	})
	if err != nil {
		log.Printf("Error scheduling interest accrual job: %v", err)
	}

	_, err = c.AddFunc(cfg.Scheduler.ArrearsSpec, func() {
		log.Println("Running arrears flagging job...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		n, err := accrual.MarkArrears(ctx, time.Now())
		if err != nil {
			log.Printf("Arrears flagging job failed: %v", err)
			return
		}
		log.Printf("Flagged %d loans as in arrears", n)
	})
	if err != nil {
		log.Printf("Error scheduling arrears flagging job: %v", err)
	}

	_, err = c.AddFunc(cfg.Scheduler.ReconcileSpec, func() {
		log.Println("Running payment reconciliation job...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		result, err := payments.Reconcile(ctx)
		if err != nil {
			log.Printf("Reconciliation job failed: %v", err)
			return
		}
		log.Printf("Reconciliation checked %d pending transactions, matched %d", result.Checked, result.Matched)
	})
	if err != nil {
		log.Printf("Error scheduling reconciliation job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}
