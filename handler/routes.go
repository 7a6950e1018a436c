package handler

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(h.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(h.methodNotAllowed)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", h.healthcheckHandler)

	router.HandlerFunc(http.MethodGet, "/v1/books", h.listBooksHandler)
	router.HandlerFunc(http.MethodPost, "/v1/books", h.createBookHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/books/:bookId/status", h.toggleBookStatusHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/books/:bookId", h.deleteBookHandler)

	router.HandlerFunc(http.MethodGet, "/v1/catalog", h.showCatalogHandler)
	router.HandlerFunc(http.MethodPut, "/v1/catalog/search", h.searchCatalogHandler)
	router.HandlerFunc(http.MethodPut, "/v1/catalog/draft", h.updateDraftHandler)
	router.HandlerFunc(http.MethodPost, "/v1/catalog/form", h.openCreateFormHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/catalog/form", h.closeCreateFormHandler)
	router.HandlerFunc(http.MethodPost, "/v1/catalog/refresh", h.refreshCatalogHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/catalog/alert", h.dismissAlertHandler)

	if h.config.Metrics.Enabled {
		router.HandlerFunc(http.MethodGet, "/debug/vars", h.basicAuth(expvar.Handler().ServeHTTP))
	}

	// Swagger routes
	router.HandlerFunc(http.MethodGet, "/spec", h.handleSwaggerFile())
	router.HandlerFunc(http.MethodGet, "/docs/*any", httpSwagger.Handler(httpSwagger.URL("/spec")))

	return h.recoverPanic(h.enableCORS(h.rateLimit(h.metrics(router))))
}
