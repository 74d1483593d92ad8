package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jcastell/obratrack/internal/actor"
	alertHandler "github.com/jcastell/obratrack/internal/http/alert"
	budgetHandler "github.com/jcastell/obratrack/internal/http/budget"
	projectHandler "github.com/jcastell/obratrack/internal/http/project"
	"github.com/jcastell/obratrack/internal/permission"
)

func New(
	projectsV1 *projectHandler.Handler,
	budgetsV1 *budgetHandler.Handler,
	alertsV1 *alertHandler.Handler,
	sessionSecret []byte,
	matrix permission.Matrix,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(actor.Middleware(sessionSecret))

		r.Route("/projects", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Use(RequireFolder(matrix, permission.FolderProjects))
			projectsV1.Routes(r)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Use(RequireFolder(matrix, permission.FolderBudgets))
			budgetsV1.BudgetRoutes(r)
		})

		r.Route("/lines", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Use(RequireFolder(matrix, permission.FolderExpenses))
			budgetsV1.LineRoutes(r)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Use(RequireFolder(matrix, permission.FolderExpenses))
			budgetsV1.ExpenseRoutes(r)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Use(RequireFolder(matrix, permission.FolderAlerts))
			alertsV1.Routes(r)
		})
	})

	return router
}
