package status

import (
	"context"
	"log/slog"

	"campuscard/internal/card/emulation"
	"campuscard/internal/card/models"
)

// Reporter answers whether the device can emulate a card right now. It only
// reads from the probe and never touches session or store state.
type Reporter struct {
	probe  emulation.HardwareProbe
	logger *slog.Logger
}

func New(probe emulation.HardwareProbe, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{probe: probe, logger: logger}
}

// Status never reports Ready when a probe query fails.
func (r *Reporter) Status(ctx context.Context) models.HardwareStatus {
	supported, err := r.probe.Supported(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "hardware presence query failed", "error", err)
		return models.HardwareNotSupported
	}
	if !supported {
		return models.HardwareNotSupported
	}

	enabled, err := r.probe.Enabled(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "radio enablement query failed", "error", err)
		return models.HardwareDisabled
	}
	if !enabled {
		return models.HardwareDisabled
	}
	return models.HardwareReady
}
