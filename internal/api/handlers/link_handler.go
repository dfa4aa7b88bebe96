package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	apiContext "linkr/internal/api/context"
	"linkr/internal/engine/links"
	"linkr/internal/engine/redirect"
	apperrors "linkr/internal/pkg/errors"
)

type LinkHandler struct {
	service     *links.Service
	dispatcher  *redirect.Dispatcher
	shortDomain string
}

func NewLinkHandler(service *links.Service, dispatcher *redirect.Dispatcher, shortDomain string) *LinkHandler {
	return &LinkHandler{
		service:     service,
		dispatcher:  dispatcher,
		shortDomain: shortDomain,
	}
}

type createLinkRequest struct {
	Destination string  `json:"destination"`
	Alias       *string `json:"alias,omitempty"`
	ExpiresAt   *int64  `json:"expires_at,omitempty"`
}

type linkResponse struct {
	Code        string  `json:"code"`
	Alias       *string `json:"alias,omitempty"`
	Destination string  `json:"destination"`
	ShortURL    string  `json:"short_url,omitempty"`
	ExpiresAt   *int64  `json:"expires_at,omitempty"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
}

func (h *LinkHandler) toResponse(link *links.Link) linkResponse {
	resp := linkResponse{
		Code:        link.Code,
		Alias:       link.Alias,
		Destination: link.Destination,
		ExpiresAt:   link.ExpiresAt,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	}
	if h.shortDomain != "" {
		resp.ShortURL = "https://" + h.shortDomain + "/" + link.Code
	}
	return resp
}

func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	link, err := h.service.CreateLink(r.Context(), req.Destination, req.Alias, req.ExpiresAt)
	if err != nil {
		apperrors.WriteFromError(w, err)
		return
	}

	if h.dispatcher != nil {
		h.dispatcher.Prime(link)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(h.toResponse(link))
}

func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	identifier := params.ByName("code")

	link, err := h.service.GetLink(r.Context(), identifier)
	if err != nil {
		apperrors.WriteFromError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.toResponse(link))
}

func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	list, err := h.service.ListLinks(r.Context(), limit, offset)
	if err != nil {
		apperrors.WriteFromError(w, err)
		return
	}

	resp := make([]linkResponse, 0, len(list))
	for _, link := range list {
		resp = append(resp, h.toResponse(link))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type updateLinkRequest struct {
	Destination string `json:"destination"`
}

func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	identifier := params.ByName("code")

	var req updateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	link, err := h.service.UpdateDestination(r.Context(), identifier, req.Destination)
	if err != nil {
		apperrors.WriteFromError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.toResponse(link))
}
