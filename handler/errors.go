package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/emzola/prolibrary/service"
)

func (h *Handler) logError(r *http.Request, err error) {
	h.logger.PrintError(err, map[string]string{
		"request_method": r.Method,
		"request_url":    r.URL.String(),
	})
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := envelope{"error": message}
	err := h.encodeJSON(w, status, env, nil)
	if err != nil {
		h.logError(r, err)
		w.WriteHeader(500)
	}
}

func (h *Handler) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	h.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (h *Handler) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	h.errorResponse(w, r, http.StatusNotFound, message)
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	h.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (h *Handler) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (h *Handler) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
}

// badGatewayResponse reports a failure of the remote table service. The
// remote message is passed through since it is what the user needs to see.
func (h *Handler) badGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusBadGateway, err.Error())
}

func (h *Handler) serviceUnavailableResponse(w http.ResponseWriter, r *http.Request) {
	message := "the catalog is shutting down"
	h.errorResponse(w, r, http.StatusServiceUnavailable, message)
}

func (h *Handler) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	message := "rate limit exceeded"
	h.errorResponse(w, r, http.StatusTooManyRequests, message)
}

func (h *Handler) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	message := "invalid authentication credentials"
	h.errorResponse(w, r, http.StatusUnauthorized, message)
}

// serviceErrorResponse maps an error returned by the catalog to a response.
func (h *Handler) serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrFailedValidation):
		h.failedValidationResponse(w, r, err)
	case errors.Is(err, service.ErrRecordNotFound):
		h.notFoundResponse(w, r)
	case errors.Is(err, service.ErrRemote):
		h.badGatewayResponse(w, r, err)
	case errors.Is(err, service.ErrClosed):
		h.serviceUnavailableResponse(w, r)
	default:
		h.serverErrorResponse(w, r, err)
	}
}
