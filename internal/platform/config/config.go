package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Server captures daemon level configuration.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string
	HTTPTimeout time.Duration

	Store       string
	DatabaseURL string
	// StoreMirror keeps an in-memory mirror of the durable store that answers
	// reads while the store's circuit breaker is open.
	StoreMirror bool

	Attestation Attestation
	Radio       Radio

	RollbackOnCacheFailure bool
	// RejectExpired refuses activation when the profile's validity date has
	// already passed.
	RejectExpired bool
}

// Attestation configures the device integrity checks.
type Attestation struct {
	CertFingerprints  []string
	AllowedInstallers []string
	Precedence        string
	// DeviceProfile is a JSON device description used instead of inspecting
	// the host. Empty means inspect the host.
	DeviceProfile string
	// AppCertFile and Installer describe this installation when the host is
	// inspected.
	AppCertFile string
	Installer   string
}

// Radio configures the simulated contactless radio.
type Radio struct {
	Supported bool
	Enabled   bool
}

// FromEnv builds a Server config from CARD_* environment variables.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:        getEnv("CARD_ADDR", "127.0.0.1:8080"),
		Environment: getEnv("CARD_ENV", "development"),
		LogLevel:    getEnv("CARD_LOG_LEVEL", "info"),
		HTTPTimeout: 10 * time.Second,
		Store:       strings.ToLower(getEnv("CARD_STORE", StoreSQLite)),
		DatabaseURL: getEnv("CARD_DATABASE_URL", "campuscard.db"),
		Attestation: Attestation{
			CertFingerprints:  splitList(os.Getenv("CARD_CERT_FINGERPRINTS")),
			AllowedInstallers: splitList(os.Getenv("CARD_ALLOWED_INSTALLERS")),
			Precedence:        getEnv("CARD_ATTESTATION_PRECEDENCE", "root_first"),
			DeviceProfile:     os.Getenv("CARD_DEVICE_PROFILE"),
			AppCertFile:       os.Getenv("CARD_APP_CERT_FILE"),
			Installer:         os.Getenv("CARD_INSTALLER"),
		},
		Radio: Radio{Supported: true, Enabled: true},
	}

	var err error
	if v := os.Getenv("CARD_HTTP_TIMEOUT"); v != "" {
		if cfg.HTTPTimeout, err = time.ParseDuration(v); err != nil {
			return Server{}, fmt.Errorf("CARD_HTTP_TIMEOUT: %w", err)
		}
	}
	if cfg.RollbackOnCacheFailure, err = getBool("CARD_ROLLBACK_ON_CACHE_FAILURE", false); err != nil {
		return Server{}, err
	}
	if cfg.StoreMirror, err = getBool("CARD_STORE_MIRROR", false); err != nil {
		return Server{}, err
	}
	if cfg.RejectExpired, err = getBool("CARD_REJECT_EXPIRED", false); err != nil {
		return Server{}, err
	}
	if cfg.Radio.Supported, err = getBool("CARD_RADIO_SUPPORTED", true); err != nil {
		return Server{}, err
	}
	if cfg.Radio.Enabled, err = getBool("CARD_RADIO_ENABLED", true); err != nil {
		return Server{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks combinations that cannot be caught per variable.
func (s Server) Validate() error {
	switch s.Store {
	case StoreSQLite, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("CARD_STORE: unsupported store %q", s.Store)
	}
	if s.Store != StoreMemory && s.DatabaseURL == "" {
		return fmt.Errorf("CARD_DATABASE_URL is required for the %s store", s.Store)
	}
	if len(s.Attestation.CertFingerprints) == 0 {
		return fmt.Errorf("CARD_CERT_FINGERPRINTS is required")
	}
	if s.HTTPTimeout <= 0 {
		return fmt.Errorf("CARD_HTTP_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
