// Package attestation decides whether the running device and application are
// trustworthy enough to hold a card credential.
//
// Two independent inspections are performed against a read-only Inspector:
//   - root detection: superuser binaries, root-management packages, test-keys
//     builds, insecure system properties
//   - package integrity: signing certificate fingerprint and installer source
//
// A failed inspection is a verdict, not an error. Inspector errors fail closed.
package attestation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"campuscard/internal/card/models"
)

// Precedence selects which verdict wins when both checks fail.
type Precedence string

const (
	PrecedenceRootFirst   Precedence = "root_first"
	PrecedenceTamperFirst Precedence = "tamper_first"
)

// ParsePrecedence maps a config value to a Precedence. Empty means root first.
func ParsePrecedence(s string) (Precedence, error) {
	switch Precedence(strings.ToLower(strings.TrimSpace(s))) {
	case "", PrecedenceRootFirst:
		return PrecedenceRootFirst, nil
	case PrecedenceTamperFirst:
		return PrecedenceTamperFirst, nil
	default:
		return "", fmt.Errorf("unknown attestation precedence %q", s)
	}
}

// Config holds the known-good values the integrity check compares against.
type Config struct {
	// ExpectedCertFingerprints are SHA-256 fingerprints of release signing
	// certificates, hex encoded with or without colons.
	ExpectedCertFingerprints []string
	// AllowedInstallers restricts the installing package when non-empty.
	AllowedInstallers []string
	Precedence        Precedence
}

// Report is the result of one attestation run.
type Report struct {
	Verdict  models.Verdict
	Findings []string
}

// Attestor runs root and integrity checks. It holds no mutable state and is
// safe for concurrent use.
type Attestor struct {
	fingerprints [][]byte
	installers   map[string]struct{}
	precedence   Precedence
	logger       *slog.Logger
}

type Option func(*Attestor)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Attestor) {
		a.logger = logger
	}
}

// New builds an Attestor. At least one expected fingerprint is required so the
// integrity check can never pass vacuously.
func New(cfg Config, opts ...Option) (*Attestor, error) {
	if len(cfg.ExpectedCertFingerprints) == 0 {
		return nil, fmt.Errorf("at least one expected signing certificate fingerprint is required")
	}
	a := &Attestor{
		installers: make(map[string]struct{}, len(cfg.AllowedInstallers)),
		precedence: cfg.Precedence,
	}
	for _, fp := range cfg.ExpectedCertFingerprints {
		decoded, err := DecodeFingerprint(fp)
		if err != nil {
			return nil, err
		}
		a.fingerprints = append(a.fingerprints, decoded)
	}
	for _, inst := range cfg.AllowedInstallers {
		if inst = strings.TrimSpace(inst); inst != "" {
			a.installers[inst] = struct{}{}
		}
	}
	if a.precedence == "" {
		a.precedence = PrecedenceRootFirst
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a, nil
}

// Attest inspects device and returns the verdict. Both inspections run in
// parallel; the verdict is derived from their results afterwards so it does not
// depend on scheduling.
func (a *Attestor) Attest(ctx context.Context, device Inspector) Report {
	var root, integrity checkResult
	var g errgroup.Group
	g.Go(func() error {
		root = checkRoot(ctx, device)
		return nil
	})
	g.Go(func() error {
		integrity = a.checkIntegrity(ctx, device)
		return nil
	})
	_ = g.Wait()

	report := Report{Verdict: a.decide(root.failed, integrity.failed)}
	report.Findings = append(report.Findings, root.findings...)
	report.Findings = append(report.Findings, integrity.findings...)

	if !report.Verdict.IsTrusted() {
		a.logger.WarnContext(ctx, "attestation failed",
			"verdict", report.Verdict.String(),
			"findings", report.Findings,
		)
	}
	return report
}

func (a *Attestor) decide(rooted, tampered bool) models.Verdict {
	switch {
	case rooted && tampered:
		if a.precedence == PrecedenceTamperFirst {
			return models.VerdictAppTampered
		}
		return models.VerdictDeviceRooted
	case rooted:
		return models.VerdictDeviceRooted
	case tampered:
		return models.VerdictAppTampered
	default:
		return models.VerdictTrusted
	}
}
