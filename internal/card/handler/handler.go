package handler

//go:generate mockgen -source=handler.go -destination=mocks/card-mocks.go -package=mocks Service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campuscard/internal/card/bridge"
	"campuscard/internal/card/models"
	"campuscard/internal/card/tracer"
	dErrors "campuscard/pkg/domain-errors"
	"campuscard/pkg/platform/httputil"
	request "campuscard/pkg/platform/middleware/request"
)

// Service is the card service as used by the HTTP bridge.
type Service interface {
	bridge.Controller
	Session() models.Session
}

type Handler struct {
	logger     *slog.Logger
	card       Service
	dispatcher *bridge.Dispatcher
}

func New(card Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:     logger,
		card:       card,
		dispatcher: bridge.NewDispatcher(card, logger),
	}
}

// Register mounts the card routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/card/activate", h.handleActivate)
	r.Post("/card/deactivate", h.handleDeactivate)
	r.Get("/card/profiles/{token}", h.handleGetProfile)
	r.Get("/card/hardware", h.handleHardware)
	r.Get("/card/session", h.handleSession)
	r.Post("/card/call", h.handleCall)
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ActivateRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	result, err := h.card.Activate(ctx, req.Token, req.ProfileInput())
	if err != nil {
		if result != nil && dErrors.HasCode(err, dErrors.CodeNotCached) {
			h.logger.WarnContext(ctx, "card activated without offline cache",
				"request_id", requestID,
				"token_hash", tracer.HashToken(req.Token),
				"error", err,
			)
			resp := toActivateResponse(bridge.MessageActivated, result)
			resp.Warning = &httputil.ErrorResponse{
				Error:            httputil.DomainCodeToHTTPCode(dErrors.CodeNotCached),
				ErrorDescription: messageOf(err),
			}
			httputil.WriteJSON(w, http.StatusAccepted, resp)
			return
		}
		h.logFailure(ctx, "activate", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toActivateResponse(bridge.MessageActivated, result))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.card.Deactivate(ctx); err != nil {
		h.logFailure(ctx, "deactivate", request.GetRequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: bridge.MessageDeactivated})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := h.card.CachedProfile(ctx, chi.URLParam(r, "token"))
	if err != nil {
		h.logFailure(ctx, "get profile", request.GetRequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) handleHardware(w http.ResponseWriter, r *http.Request) {
	status := h.card.HardwareStatus(r.Context())
	httputil.WriteJSON(w, http.StatusOK, HardwareResponse{Status: int(status), Label: status.String()})
}

func (h *Handler) handleSession(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(h.card.Session()))
}

// handleCall answers a method-channel style call with a bridge.Response. The
// HTTP status is 200 whenever the call was understood; failures travel in the
// response's error field.
func (h *Handler) handleCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CallRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	call, err := req.ToBridge()
	if err != nil {
		h.logger.WarnContext(ctx, "rejected bridge call", "request_id", requestID, "method", req.Method, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.dispatcher.Dispatch(ctx, call))
}

func (h *Handler) logFailure(ctx context.Context, op, requestID string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeStoreUnavailable, dErrors.CodeUnknown:
		h.logger.ErrorContext(ctx, op+" failed", "request_id", requestID, "error", err)
	default:
		h.logger.InfoContext(ctx, op+" rejected", "request_id", requestID, "code", string(dErrors.CodeOf(err)))
	}
}

func messageOf(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
