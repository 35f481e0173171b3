package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/saccotech/sacco-engine/internal/config"
	"github.com/saccotech/sacco-engine/internal/gateway"
	"github.com/saccotech/sacco-engine/internal/handler"
	"github.com/saccotech/sacco-engine/internal/repository"
	"github.com/saccotech/sacco-engine/internal/repository/memory"
	"github.com/saccotech/sacco-engine/internal/service"
	"github.com/saccotech/sacco-engine/pkg/response"
)

func main() {
	// Load .env if present before viper reads the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var db *sqlx.DB
	stores := memory.NewStores()
	if cfg.Store.Driver == config.StoreDriverPostgres {
		db, err = initDB(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		stores = postgresStores(db)
	}

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Services
	ledgerService := service.NewLedgerService(stores.Journal)
	rules := service.NewBusinessRules(cfg)
	loanService := service.NewLoanService(stores, ledgerService, rules, redisClient, cfg)
	memberService := service.NewMemberService(stores.Members)
	contributionService := service.NewContributionService(stores, ledgerService, rules)
	poolService := service.NewPoolService(stores, rules)

	gw := gateway.New(cfg)
	paymentService := service.NewPaymentService(stores, contributionService, gw)
	if cfg.Mpesa.ConsumerKey != "" && cfg.Mpesa.CallbackURL != "" {
		registerCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := gw.RegisterWebhook(registerCtx, cfg.Mpesa.CallbackURL); err != nil {
			log.Printf("Webhook registration failed, callbacks may not arrive: %v", err)
		}
		cancel()
	}

	// Handlers
	loanHandler := handler.NewLoanHandler(loanService)
	memberHandler := handler.NewMemberHandler(memberService, contributionService)
	contributionHandler := handler.NewContributionHandler(contributionService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	poolHandler := handler.NewPoolHandler(poolService)
	reportHandler := handler.NewReportHandler(ledgerService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(loanHandler, memberHandler, contributionHandler, paymentHandler, poolHandler, reportHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on %s (store driver: %s)", server.Addr, cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Store.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Store.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Store.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func postgresStores(db *sqlx.DB) *repository.Stores {
	return &repository.Stores{
		Members:       repository.NewMemberRepository(db),
		Loans:         repository.NewLoanRepository(db),
		Repayments:    repository.NewRepaymentRepository(db),
		Contributions: repository.NewContributionRepository(db),
		Journal:       repository.NewJournalRepository(db),
		Transactions:  repository.NewTransactionRepository(db),
		Pools:         repository.NewPoolRepository(db),
	}
}

func setupRoutes(
	loans *handler.LoanHandler,
	members *handler.MemberHandler,
	contributions *handler.ContributionHandler,
	payments *handler.PaymentHandler,
	pools *handler.PoolHandler,
	reports *handler.ReportHandler,
	health *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.JSONMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", health.Health).Methods("GET")
	router.HandleFunc("/health/ready", health.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/members", members.Create).Methods("POST")
	api.HandleFunc("/members", members.List).Methods("GET")
	api.HandleFunc("/members/{id}", members.Get).Methods("GET")
	api.HandleFunc("/members/{id}", members.Update).Methods("PUT")
	api.HandleFunc("/members/{id}/contributions", members.Contributions).Methods("GET")
	api.HandleFunc("/members/{id}/risk", loans.MemberRisk).Methods("GET")

	api.HandleFunc("/contributions", contributions.Create).Methods("POST")

	api.HandleFunc("/loans", loans.Apply).Methods("POST")
	api.HandleFunc("/loans", loans.List).Methods("GET")
	api.HandleFunc("/loans/{id}", loans.Get).Methods("GET")
	api.HandleFunc("/loans/{id}/approve", loans.Approve).Methods("POST")
	api.HandleFunc("/loans/{id}/disburse", loans.Disburse).Methods("POST")
	api.HandleFunc("/loans/{id}/repay", loans.Repay).Methods("POST")
	api.HandleFunc("/loans/{id}/schedule", loans.Schedule).Methods("GET")
	api.HandleFunc("/loans/{id}/repayments", loans.Repayments).Methods("GET")

	api.HandleFunc("/payments/mpesa/stk", payments.InitiateSTKPush).Methods("POST")
	api.HandleFunc("/payments/mpesa/webhook", payments.Webhook).Methods("POST")
	api.HandleFunc("/collections/reconcile", payments.Reconcile).Methods("POST")

	api.HandleFunc("/pools", pools.Create).Methods("POST")
	api.HandleFunc("/pools", pools.List).Methods("GET")
	api.HandleFunc("/pools/{id}", pools.Get).Methods("GET")
	api.HandleFunc("/pools/{id}/contribute", pools.Contribute).Methods("POST")

	api.HandleFunc("/reports/trial-balance", reports.TrialBalance).Methods("GET")
	api.HandleFunc("/reports/balance-sheet", reports.BalanceSheet).Methods("GET")
	api.HandleFunc("/reports/profit-loss", reports.ProfitAndLoss).Methods("GET")

	return router
}
