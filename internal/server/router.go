package server

import (
	"context"
	"net/http"

	"chef/internal/handlers"
	applog "chef/internal/log"
	"chef/internal/metrics"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	public := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, metrics.Middleware(pattern, h))
		applog.Debug(context.Background(), "route registered", "pattern", pattern)
	}
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, metrics.Middleware(pattern, handlers.RequireAuthentication(h)))
		applog.Debug(context.Background(), "route registered", "pattern", pattern, "protected", true)
	}

	public("GET /healthz", handlers.Health)
	mux.Handle("GET /metrics", metrics.Handler())
	applog.Debug(context.Background(), "route registered", "pattern", "GET /metrics")

	public("POST /api/login", handlers.Login)
	public("POST /api/logout", handlers.Logout)

	public("GET /api/{resource}", handlers.ListResource)
	public("GET /api/{resource}/{id}", handlers.GetResource)
	protected("POST /api/{resource}", handlers.CreateResource)
	protected("PUT /api/{resource}", handlers.UpsertResource)
	protected("PUT /api/{resource}/{id}", handlers.UpdateResource)
	protected("DELETE /api/{resource}/{id}", handlers.DeleteResource)
	protected("POST /api/recipes/import", handlers.ImportRecipe)

	public("GET /recipes/{id}", handlers.RecipePage)
	return mux
}
