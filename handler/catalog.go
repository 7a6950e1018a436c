package handler

import (
	"net/http"

	"github.com/emzola/prolibrary/data/dto"
)

func (h *Handler) writeCatalog(w http.ResponseWriter, r *http.Request) {
	err := h.encodeJSON(w, http.StatusOK, envelope{"catalog": h.service.Snapshot()}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) showCatalogHandler(w http.ResponseWriter, r *http.Request) {
	h.writeCatalog(w, r)
}

func (h *Handler) searchCatalogHandler(w http.ResponseWriter, r *http.Request) {
	var input dto.SearchRequestBody
	err := h.decodeJSON(w, r, &input)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	h.service.SetSearchTerm(input.Term)
	h.writeCatalog(w, r)
}

func (h *Handler) updateDraftHandler(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateBookRequestBody
	err := h.decodeJSON(w, r, &input)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	h.service.SetDraft(mergeDraft(h.service.Draft(), input))
	h.writeCatalog(w, r)
}

func (h *Handler) openCreateFormHandler(w http.ResponseWriter, r *http.Request) {
	h.service.OpenCreateForm()
	h.writeCatalog(w, r)
}

func (h *Handler) closeCreateFormHandler(w http.ResponseWriter, r *http.Request) {
	h.service.CloseCreateForm()
	h.writeCatalog(w, r)
}

func (h *Handler) refreshCatalogHandler(w http.ResponseWriter, r *http.Request) {
	err := h.service.Refresh(r.Context())
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	h.writeCatalog(w, r)
}

func (h *Handler) dismissAlertHandler(w http.ResponseWriter, r *http.Request) {
	h.service.DismissAlert()
	h.writeCatalog(w, r)
}
