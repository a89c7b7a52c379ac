package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sellerhub/backoffice/catalog-service/internal/adapters/productapi"
	"github.com/sellerhub/backoffice/catalog-service/internal/api/handlers"
	"github.com/sellerhub/backoffice/catalog-service/internal/api/middleware"
	"github.com/sellerhub/backoffice/catalog-service/internal/domain/catalog"
	"github.com/sellerhub/backoffice/catalog-service/internal/export"
	"github.com/sellerhub/backoffice/catalog-service/internal/security"
	"github.com/sellerhub/backoffice/catalog-service/pkg/interfaces"
)

// RouterDeps — зависимости маршрутизатора
type RouterDeps struct {
	Sessions     *catalog.Sessions
	Serializer   *export.Serializer
	Client       *productapi.Client
	Store        interfaces.StorePort
	Messaging    interfaces.MessagingPort
	Inspector    *security.TokenInspector
	Logger       interfaces.LoggerPort
	ActionsTopic string
	PresetTTL    time.Duration
	CORSOrigins  []string
	RateLimitRPM int // запросов в минуту с одного IP, 0 отключает лимит
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(deps.CORSOrigins))
	if deps.RateLimitRPM > 0 {
		r.Use(httprate.LimitByRealIP(deps.RateLimitRPM, time.Minute))
	}

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	catalogHandler := handlers.NewCatalogHandler(deps.Sessions, deps.Serializer, deps.Client, deps.Logger)
	sessionHandler := handlers.NewSessionHandler(deps.Store, deps.Messaging, deps.ActionsTopic, deps.PresetTTL, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Inspector, deps.Logger))

		r.Route("/catalog", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(chimiddleware.Timeout(30 * time.Second))

				r.Get("/", catalogHandler.GetCatalog)
				r.Delete("/", catalogHandler.DeleteAll)
				r.Post("/reload", catalogHandler.Reload)
				r.Put("/filter", catalogHandler.SetFilter)
				r.Put("/sort", catalogHandler.SetSort)
				r.Put("/page/{n}", catalogHandler.SetPage)
				r.Get("/stats", catalogHandler.GetStats)

				r.Route("/selection", func(r chi.Router) {
					r.Post("/", catalogHandler.SelectAll)
					r.Delete("/", catalogHandler.ClearSelection)
					r.Post("/{id}", catalogHandler.ToggleSelect)
				})

				r.Post("/bulk-delete", catalogHandler.BulkDelete)
			})

			// Выгрузка и загрузка долгие (PDF печатается в headless-браузере),
			// поэтому таймаут здесь свой
			r.Group(func(r chi.Router) {
				r.Use(chimiddleware.Timeout(2 * time.Minute))

				r.Post("/export", catalogHandler.Export)
				r.Post("/upload", catalogHandler.Upload)
			})
		})

		r.Route("/session", func(r chi.Router) {
			r.Use(chimiddleware.Timeout(30 * time.Second))

			r.Route("/actions", func(r chi.Router) {
				r.Post("/", sessionHandler.AddAction)
				r.Get("/", sessionHandler.ListActions)
				r.Post("/drain", sessionHandler.DrainActions)
			})

			r.Route("/preferences/{key}", func(r chi.Router) {
				r.Put("/", sessionHandler.SetPreference)
				r.Get("/", sessionHandler.GetPreference)
			})
		})
	})

	return r
}
