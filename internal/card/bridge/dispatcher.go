package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"campuscard/internal/card/emulation"
	"campuscard/internal/card/models"
	"campuscard/internal/card/service"
	dErrors "campuscard/pkg/domain-errors"
)

// Controller is the card service as seen by the bridge.
type Controller interface {
	Activate(ctx context.Context, token string, in models.ProfileInput) (*models.ActivationResult, error)
	Deactivate(ctx context.Context) error
	CachedProfile(ctx context.Context, token string) (*models.Profile, error)
	HardwareStatus(ctx context.Context) models.HardwareStatus
}

type Dispatcher struct {
	ctrl   Controller
	logger *slog.Logger
}

func NewDispatcher(ctrl Controller, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{ctrl: ctrl, logger: logger}
}

// Dispatch runs req against the controller.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	switch r := req.(type) {
	case ActivateRequest:
		return d.activate(ctx, r)
	case DeactivateRequest:
		return d.deactivate(ctx)
	case GetCachedUserRequest:
		return d.getCachedUser(ctx, r)
	case CheckHardwareStatusRequest:
		return statusResponse(d.ctrl.HardwareStatus(ctx))
	default:
		return Response{Err: &Failure{
			Kind:   KindNotImplemented,
			Reason: fmt.Sprintf("unsupported request %T", req),
		}}
	}
}

func (d *Dispatcher) activate(ctx context.Context, r ActivateRequest) Response {
	if strings.TrimSpace(r.Token) == "" {
		return Response{Err: &Failure{Kind: KindInvalidToken, Reason: "token is required"}}
	}
	result, err := d.ctrl.Activate(ctx, r.Token, r.ProfileInput())
	if err == nil {
		return Response{Message: MessageActivated}
	}
	failure := FailureFromError(err)
	if result != nil && result.Outcome == models.OutcomeActivatedNotCached {
		// the card is armed; tell the shell so and flag the cache miss
		return Response{Message: MessageActivated, Err: failure}
	}
	return Response{Err: failure}
}

func (d *Dispatcher) deactivate(ctx context.Context) Response {
	if err := d.ctrl.Deactivate(ctx); err != nil {
		d.logger.ErrorContext(ctx, "deactivate failed", "error", err)
		return Response{Err: FailureFromError(err)}
	}
	return Response{Message: MessageDeactivated}
}

func (d *Dispatcher) getCachedUser(ctx context.Context, r GetCachedUserRequest) Response {
	if strings.TrimSpace(r.Token) == "" {
		return Response{Err: &Failure{Kind: KindInvalidToken, Reason: "token is required"}}
	}
	profile, err := d.ctrl.CachedProfile(ctx, r.Token)
	if err != nil {
		return Response{Err: FailureFromError(err)}
	}
	return Response{Profile: ProfileMap(profile)}
}

// FailureFromError maps a service error onto the bridge failure kinds.
func FailureFromError(err error) *Failure {
	if err == nil {
		return nil
	}
	reason := err.Error()
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInvalidInput, dErrors.CodeValidation, dErrors.CodeBadRequest:
		return &Failure{Kind: KindInvalidInput, Reason: reason}
	case dErrors.CodeSecurityRejected:
		f := &Failure{Kind: KindSecurityRejected, Reason: reason}
		if verdict, ok := service.RejectionVerdict(err); ok {
			f.Verdict = verdict
		}
		return f
	case dErrors.CodeNotFound:
		return &Failure{Kind: KindNotFound, Reason: reason}
	case dErrors.CodeStoreUnavailable:
		return &Failure{Kind: KindStoreUnavailable, Reason: reason}
	case dErrors.CodeNotCached:
		return &Failure{Kind: KindActivatedNotCached, Reason: reason}
	case dErrors.CodeNotImplemented:
		return &Failure{Kind: KindNotImplemented, Reason: reason}
	default:
		code, ok := service.EmulationCode(err)
		if !ok {
			code = emulation.CodeUnknownFailure
		}
		return &Failure{Kind: KindUnknownActivationError, Reason: reason, Code: code}
	}
}
