package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"campuscard/internal/app"
	"campuscard/internal/card/bridge"
	"campuscard/internal/card/models"
	"campuscard/internal/platform/config"
	"campuscard/internal/platform/logger"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "cardctl",
		Usage: "Operate the offline student card cache and emulation core",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "store", Usage: "profile store: sqlite, postgres or memory (overrides CARD_STORE)"},
			&cli.StringFlag{Name: "database-url", Usage: "SQLite path or PostgreSQL URL (overrides CARD_DATABASE_URL)"},
			&cli.StringFlag{Name: "device-profile", Usage: "JSON device description for attestation (overrides CARD_DEVICE_PROFILE)"},
			&cli.StringSliceFlag{Name: "cert-fingerprint", Usage: "expected SHA-256 signing certificate fingerprint (overrides CARD_CERT_FINGERPRINTS)"},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "log level written to stderr"},
		},
		Commands: []*cli.Command{
			activateCommand(),
			deactivateCommand(),
			profileCommand(),
			cacheCommand(),
			hardwareCommand(),
			callCommand(),
		},
	}
}

func activateCommand() *cli.Command {
	return &cli.Command{
		Name:  "activate",
		Usage: "Attest the device, arm the card and cache its profile",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "token", Required: true, Usage: "credential token"},
			&cli.StringFlag{Name: "name", Usage: "card holder name"},
			&cli.StringFlag{Name: "email", Usage: "card holder email"},
			&cli.StringFlag{Name: "role", Usage: "card holder role"},
			&cli.FloatFlag{Name: "balance", Usage: "stored balance (default 0)"},
			&cli.StringFlag{Name: "valid-until", Usage: "expiry date (YYYY-MM-DD or RFC 3339)"},
			&cli.BoolFlag{Name: "inactive", Usage: "cache the card as inactive"},
		},
		Action: runActivate,
	}
}

func runActivate(ctx context.Context, cmd *cli.Command) error {
	in := models.ProfileInput{
		Name:  cmd.String("name"),
		Email: cmd.String("email"),
		Role:  cmd.String("role"),
	}
	if cmd.IsSet("balance") {
		balance := cmd.Float("balance")
		in.Balance = &balance
	}
	if cmd.IsSet("valid-until") {
		until := cmd.String("valid-until")
		in.ValidUntil = &until
	}
	if cmd.IsSet("inactive") {
		active := !cmd.Bool("inactive")
		in.IsActive = &active
	}
	return withCard(ctx, cmd, func(card *app.App) error {
		result, err := card.Service.Activate(ctx, cmd.String("token"), in)
		if err != nil && result == nil {
			return err
		}
		out := map[string]any{
			"message":    bridge.MessageActivated,
			"outcome":    result.Outcome,
			"session_id": result.Session.ID.String(),
		}
		if err != nil {
			out["warning"] = bridge.FailureFromError(err)
		}
		return printJSON(cmd, out)
	})
}

func deactivateCommand() *cli.Command {
	return &cli.Command{
		Name:  "deactivate",
		Usage: "Disarm card emulation",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withCard(ctx, cmd, func(card *app.App) error {
				if err := card.Service.Deactivate(ctx); err != nil {
					return err
				}
				return printJSON(cmd, map[string]string{"message": bridge.MessageDeactivated})
			})
		},
	}
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Inspect cached card profiles",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Print the cached profile for a token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Required: true, Usage: "credential token"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withCard(ctx, cmd, func(card *app.App) error {
						profile, err := card.Service.CachedProfile(ctx, cmd.String("token"))
						if err != nil {
							return err
						}
						return printJSON(cmd, bridge.ProfileMap(profile))
					})
				},
			},
		},
	}
}

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Administer the offline profile cache",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached profiles",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withCard(ctx, cmd, func(card *app.App) error {
						profiles, err := card.Service.CachedProfiles(ctx)
						if err != nil {
							return err
						}
						out := make([]map[string]any, 0, len(profiles))
						for _, p := range profiles {
							out = append(out, bridge.ProfileMap(p))
						}
						return printJSON(cmd, out)
					})
				},
			},
			{
				Name:  "evict",
				Usage: "Remove a cached profile",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Required: true, Usage: "credential token"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withCard(ctx, cmd, func(card *app.App) error {
						if err := card.Service.EvictProfile(ctx, cmd.String("token")); err != nil {
							return err
						}
						return printJSON(cmd, map[string]string{"evicted": cmd.String("token")})
					})
				},
			},
		},
	}
}

func hardwareCommand() *cli.Command {
	return &cli.Command{
		Name:  "hardware",
		Usage: "Report contactless hardware status (0 not supported, 1 disabled, 2 ready)",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withCard(ctx, cmd, func(card *app.App) error {
				status := card.Service.HardwareStatus(ctx)
				return printJSON(cmd, map[string]any{"status": int(status), "label": status.String()})
			})
		},
	}
}

func callCommand() *cli.Command {
	return &cli.Command{
		Name:      "call",
		Usage:     "Send one bridge call, e.g. call getCachedUser '{\"token\":\"abc123\"}'",
		ArgsUsage: "<method> [json-args]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return fmt.Errorf("method is required")
			}
			var args map[string]any
			if raw := cmd.Args().Get(1); raw != "" {
				if err := json.Unmarshal([]byte(raw), &args); err != nil {
					return fmt.Errorf("parse call arguments: %w", err)
				}
			}
			req, err := bridge.ParseMethod(cmd.Args().First(), args)
			if err != nil {
				return err
			}
			return withCard(ctx, cmd, func(card *app.App) error {
				resp := bridge.NewDispatcher(card.Service, slog.Default()).Dispatch(ctx, req)
				return printJSON(cmd, resp)
			})
		},
	}
}

// loadConfig reads CARD_* variables and applies global flag overrides.
func loadConfig(cmd *cli.Command) (config.Server, error) {
	cfg, err := config.FromEnv()
	if err != nil && cfg.Store == "" {
		return config.Server{}, err
	}
	if cmd.IsSet("store") {
		cfg.Store = cmd.String("store")
	}
	if cmd.IsSet("database-url") {
		cfg.DatabaseURL = cmd.String("database-url")
	}
	if cmd.IsSet("device-profile") {
		cfg.Attestation.DeviceProfile = cmd.String("device-profile")
	}
	if fps := cmd.StringSlice("cert-fingerprint"); len(fps) > 0 {
		cfg.Attestation.CertFingerprints = fps
	}
	return cfg, cfg.Validate()
}

func withCard(ctx context.Context, cmd *cli.Command, fn func(*app.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(errWriter(cmd), cmd.String("log-level"))
	card, err := app.Build(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer card.Close()
	return fn(card)
}

func printJSON(cmd *cli.Command, v any) error {
	enc := json.NewEncoder(outWriter(cmd))
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
