package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/jcastell/obratrack/internal/alert"
	alertStore "github.com/jcastell/obratrack/internal/alert/store"
	"github.com/jcastell/obratrack/internal/budget"
	budgetStore "github.com/jcastell/obratrack/internal/budget/store"
	"github.com/jcastell/obratrack/internal/config"
	"github.com/jcastell/obratrack/internal/database"
	obraHttp "github.com/jcastell/obratrack/internal/http"
	alertHandler "github.com/jcastell/obratrack/internal/http/alert"
	budgetHandler "github.com/jcastell/obratrack/internal/http/budget"
	projectHandler "github.com/jcastell/obratrack/internal/http/project"
	"github.com/jcastell/obratrack/internal/notify"
	"github.com/jcastell/obratrack/internal/permission"
	"github.com/jcastell/obratrack/internal/project"
	projectStore "github.com/jcastell/obratrack/internal/project/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.Notifier.URL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notifier.URL, cfg.Notifier.Token, cfg.Notifier.Timeout)
	}

	dispatcher := notify.NewDispatcher(notifier, cfg.Notifier.Timeout)
	defer dispatcher.Wait()

	var (
		budgets     = budgetStore.New(db)
		alertEngine = alert.NewEngine(alertStore.New(db), budgets)

		projectService = project.NewService(projectStore.New(db), dispatcher)
		budgetService  = budget.NewService(budgets, alertEngine)
	)

	var (
		projectH = projectHandler.NewHandler(projectService)
		budgetH  = budgetHandler.NewHandler(budgetService)
		alertH   = alertHandler.NewHandler(alertEngine)
	)

	router := obraHttp.New(projectH, budgetH, alertH, []byte(cfg.Session.Secret), permission.Default())

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "addr", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
