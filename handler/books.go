package handler

import (
	"context"
	"net/http"

	"github.com/emzola/prolibrary/data"
	"github.com/emzola/prolibrary/data/dto"
	"github.com/emzola/prolibrary/service"
)

func (h *Handler) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	books := h.service.FilteredView()
	err := h.encodeJSON(w, http.StatusOK, envelope{"books": books, "loading": h.service.Loading()}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// createBookHandler creates a book from the request body. An empty body
// submits the stored draft; fields present in the body override it.
func (h *Handler) createBookHandler(w http.ResponseWriter, r *http.Request) {
	draft := h.service.Draft()
	if r.ContentLength != 0 {
		var input dto.CreateBookRequestBody
		err := h.decodeJSON(w, r, &input)
		if err != nil {
			h.badRequestResponse(w, r, err)
			return
		}
		draft = mergeDraft(draft, input)
		h.service.SetDraft(draft)
	}
	err := h.service.Create(r.Context(), draft)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	headers := make(http.Header)
	headers.Set("Location", "/v1/books")
	err = h.encodeJSON(w, http.StatusCreated, envelope{"catalog": h.service.Snapshot()}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) toggleBookStatusHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var input dto.ToggleStatusRequestBody
	err = h.decodeJSON(w, r, &input)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	err = h.service.ToggleStatus(r.Context(), bookID, input.Status)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"catalog": h.service.Snapshot()}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler deletes a book only when the client confirms with
// ?confirm=true. Without it the deletion is declined and nothing is sent.
func (h *Handler) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	confirmed := r.URL.Query().Get("confirm") == "true"
	deleted, err := h.service.Remove(r.Context(), bookID, service.ConfirmFunc(func(context.Context, string) bool {
		return confirmed
	}))
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	env := envelope{"deleted": deleted}
	if !deleted {
		env["message"] = "deletion not confirmed, pass confirm=true to delete the book"
	}
	err = h.encodeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func mergeDraft(draft data.Draft, input dto.CreateBookRequestBody) data.Draft {
	if input.Title != nil {
		draft.Title = *input.Title
	}
	if input.Author != nil {
		draft.Author = *input.Author
	}
	if input.Isbn != nil {
		draft.Isbn = *input.Isbn
	}
	return draft
}
