package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}
	if !cfg.SwaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerReminderRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/subscriptions", handler.Subscribe)
	mux.HandleFunc("GET /v1/subscriptions", handler.ListSubscriptions)
	mux.HandleFunc("GET /v1/matches/today", handler.TodayMatches)
	mux.HandleFunc("GET /v1/reminder", handler.Reminder)
}
