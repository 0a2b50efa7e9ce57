package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/pawmatch/internal/domain"
	authsvc "github.com/ivankudzin/pawmatch/internal/services/auth"
	swipesvc "github.com/ivankudzin/pawmatch/internal/services/swipes"
	"github.com/ivankudzin/pawmatch/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/pawmatch/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *swipesvc.Service
	log     *zap.Logger
}

func NewMatchesHandler(service *swipesvc.Service, log *zap.Logger) *MatchesHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MatchesHandler{service: service, log: log}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	matches, err := h.service.ListMatches(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid participant")
		case errors.Is(err, domain.ErrStorageUnavailable):
			writeUnavailable(w, "STORAGE_UNAVAILABLE", "storage is temporarily unavailable, retry later")
		default:
			h.log.Error("list matches failed", zap.Error(err))
			writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		}
		return
	}

	resp := dto.MatchesResponse{Items: make([]dto.MatchItemResponse, 0, len(matches))}
	for _, m := range matches {
		resp.Items = append(resp.Items, dto.NewMatchItem(m, identity.UserID))
	}
	httperrors.Write(w, http.StatusOK, resp)
}

// Get returns the caller's match with the counterpart named in the path.
func (h *MatchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	counterpart, err := uuid.Parse(chi.URLParam(r, "counterpartID"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "counterpart id must be a uuid")
		return
	}

	match, err := h.service.GetMatch(r.Context(), identity.UserID, counterpart)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid match pair")
		case errors.Is(err, domain.ErrNotFound):
			writeNotFound(w, "MATCH_NOT_FOUND", "no match with this counterpart")
		case errors.Is(err, domain.ErrStorageUnavailable):
			writeUnavailable(w, "STORAGE_UNAVAILABLE", "storage is temporarily unavailable, retry later")
		default:
			h.log.Error("get match failed", zap.Error(err))
			writeInternal(w, "INTERNAL_ERROR", "failed to load match")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewMatchItem(match, identity.UserID))
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
