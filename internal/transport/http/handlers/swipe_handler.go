package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/pawmatch/internal/domain"
	authsvc "github.com/ivankudzin/pawmatch/internal/services/auth"
	swipesvc "github.com/ivankudzin/pawmatch/internal/services/swipes"
	"github.com/ivankudzin/pawmatch/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/pawmatch/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
	log     *zap.Logger
}

func NewSwipeHandler(service *swipesvc.Service, log *zap.Logger) *SwipeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SwipeHandler{service: service, log: log}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := dto.Validate(req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}
	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "subject_id must be a uuid")
		return
	}

	result, err := h.service.RecordSwipe(r.Context(), identity.UserID, subjectID, req.Decision)
	if err != nil {
		h.writeSwipeError(w, r, err)
		return
	}

	resp := dto.NewSwipeResponse(result, identity.UserID)
	httperrors.Write(w, http.StatusOK, resp)
}

// Throttle reports the caller's swipe rate limit status without spending a swipe.
func (h *SwipeHandler) Throttle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	state, err := h.service.Throttle(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid actor")
		case errors.Is(err, context.Canceled):
		default:
			h.log.Error("read swipe throttle failed", zap.Error(err))
			writeInternal(w, "INTERNAL_ERROR", "failed to read swipe throttle")
		}
		return
	}

	if state.Limited {
		w.Header().Set("Retry-After", itoa(state.RetryAfterSec))
	}
	httperrors.Write(w, http.StatusOK, dto.ThrottleResponse{
		Limited:       state.Limited,
		RetryAfterSec: state.RetryAfterSec,
	})
}

func (h *SwipeHandler) writeSwipeError(w http.ResponseWriter, r *http.Request, err error) {
	if tf, ok := swipesvc.IsTooFast(err); ok {
		w.Header().Set("Retry-After", itoa(tf.RetryAfter()))
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
			Code:          "TOO_FAST",
			Message:       "too many swipes, slow down",
			RetryAfterSec: tf.RetryAfter(),
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
	case errors.Is(err, domain.ErrStorageUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		h.log.Warn("swipe storage unavailable", zap.Error(err))
		writeUnavailable(w, "STORAGE_UNAVAILABLE", "storage is temporarily unavailable, retry later")
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// client went away; nothing useful to write
	default:
		h.log.Error("record swipe failed", zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
	}
}
