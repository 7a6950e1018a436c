package handler

import (
	"net/http"

	_ "github.com/emzola/prolibrary/docs"
	"github.com/swaggo/swag"
)

// handleSwaggerFile serves the registered OpenAPI document.
func (h *Handler) handleSwaggerFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			h.serverErrorResponse(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}
}
