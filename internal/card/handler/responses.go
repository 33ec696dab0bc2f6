package handler

import (
	"time"

	"campuscard/internal/card/models"
	"campuscard/pkg/platform/httputil"
)

type ActivateResponse struct {
	Message     string                  `json:"message"`
	Outcome     string                  `json:"outcome"`
	SessionID   string                  `json:"session_id"`
	ActivatedAt string                  `json:"activated_at"`
	Warning     *httputil.ErrorResponse `json:"warning,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProfileResponse struct {
	Token      string  `json:"token"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	Balance    float64 `json:"balance"`
	ValidUntil string  `json:"validUntil,omitempty"`
	IsActive   bool    `json:"isActive"`
	UpdatedAt  string  `json:"updatedAt,omitempty"`
}

type HardwareResponse struct {
	Status int    `json:"status"`
	Label  string `json:"label"`
}

type SessionResponse struct {
	State       string `json:"state"`
	SessionID   string `json:"session_id,omitempty"`
	Token       string `json:"token,omitempty"`
	ActivatedAt string `json:"activated_at,omitempty"`
}

func toActivateResponse(message string, result *models.ActivationResult) ActivateResponse {
	return ActivateResponse{
		Message:     message,
		Outcome:     string(result.Outcome),
		SessionID:   result.Session.ID.String(),
		ActivatedAt: formatTime(result.Session.ActivatedAt),
	}
}

func toProfileResponse(p *models.Profile) ProfileResponse {
	return ProfileResponse{
		Token:      p.Token.String(),
		Name:       p.Name,
		Email:      p.Email,
		Role:       p.Role,
		Balance:    p.Balance,
		ValidUntil: p.ValidUntil,
		IsActive:   p.IsActive,
		UpdatedAt:  formatTime(p.UpdatedAt),
	}
}

func toSessionResponse(s models.Session) SessionResponse {
	if !s.IsActive() {
		return SessionResponse{State: s.State.String()}
	}
	return SessionResponse{
		State:       s.State.String(),
		SessionID:   s.ID.String(),
		Token:       s.Token.String(),
		ActivatedAt: formatTime(s.ActivatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
