package attestation

import (
	"bufio"
	"context"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Inspector exposes the read-only device and package facts attestation needs.
// Implementations must not mutate device state or touch the network.
type Inspector interface {
	PathExists(ctx context.Context, path string) (bool, error)
	BuildTags(ctx context.Context) (string, error)
	SystemProperty(ctx context.Context, key string) (string, error)
	InstalledPackages(ctx context.Context) ([]string, error)
	// SigningCertificates returns the DER encoded certificates that signed the app.
	SigningCertificates(ctx context.Context) ([][]byte, error)
	InstallerPackage(ctx context.Context) (string, error)
}

// StaticDevice is a fixed snapshot of device facts, used for simulated devices
// and tests. It can be loaded from a JSON device profile.
type StaticDevice struct {
	Tags       string            `json:"build_tags"`
	Files      []string          `json:"files"`
	Packages   []string          `json:"packages"`
	Properties map[string]string `json:"properties"`
	Certs      [][]byte          `json:"signing_certs"`
	Installer  string            `json:"installer"`
}

// LoadStaticDevice reads a JSON device profile.
func LoadStaticDevice(path string) (*StaticDevice, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read device profile: %w", err)
	}
	var d StaticDevice
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse device profile: %w", err)
	}
	return &d, nil
}

func (d *StaticDevice) PathExists(_ context.Context, path string) (bool, error) {
	for _, f := range d.Files {
		if f == path {
			return true, nil
		}
	}
	return false, nil
}

func (d *StaticDevice) BuildTags(context.Context) (string, error) { return d.Tags, nil }

func (d *StaticDevice) SystemProperty(_ context.Context, key string) (string, error) {
	return d.Properties[key], nil
}

func (d *StaticDevice) InstalledPackages(context.Context) ([]string, error) {
	return append([]string(nil), d.Packages...), nil
}

func (d *StaticDevice) SigningCertificates(context.Context) ([][]byte, error) {
	return d.Certs, nil
}

func (d *StaticDevice) InstallerPackage(context.Context) (string, error) { return d.Installer, nil }

// HostInspector reads facts from the local filesystem. Root prefixes every
// probed path so a mounted device image can be inspected.
type HostInspector struct {
	Root         string
	BuildProp    string // path of build.prop, relative to Root
	PackagesList string // optional packages.list, relative to Root
	CertFile     string // PEM or DER signing certificate, absolute
	Installer    string
}

// NewHostInspector returns an inspector over the standard Android layout.
func NewHostInspector(certFile, installer string) *HostInspector {
	return &HostInspector{
		Root:         "/",
		BuildProp:    "/system/build.prop",
		PackagesList: "/data/system/packages.list",
		CertFile:     certFile,
		Installer:    installer,
	}
}

func (h *HostInspector) resolve(path string) string {
	root := h.Root
	if root == "" {
		root = "/"
	}
	return filepath.Join(root, path)
}

// PathExists treats permission errors as absent: an unprivileged process on a
// stock device cannot see into protected directories.
func (h *HostInspector) PathExists(_ context.Context, path string) (bool, error) {
	_, err := os.Lstat(h.resolve(path))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return false, nil
	default:
		return false, err
	}
}

func (h *HostInspector) BuildTags(ctx context.Context) (string, error) {
	return h.SystemProperty(ctx, "ro.build.tags")
}

func (h *HostInspector) SystemProperty(_ context.Context, key string) (string, error) {
	props, err := h.readProps()
	if err != nil {
		return "", err
	}
	return props[key], nil
}

func (h *HostInspector) readProps() (map[string]string, error) {
	f, err := os.Open(h.resolve(h.BuildProp))
	if err != nil {
		return nil, fmt.Errorf("open build.prop: %w", err)
	}
	defer f.Close()

	props := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		props[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan build.prop: %w", err)
	}
	return props, nil
}

func (h *HostInspector) InstalledPackages(context.Context) ([]string, error) {
	if h.PackagesList == "" {
		return nil, nil
	}
	f, err := os.Open(h.resolve(h.PackagesList))
	if err != nil {
		return nil, fmt.Errorf("open packages list: %w", err)
	}
	defer f.Close()

	var pkgs []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) > 0 {
			pkgs = append(pkgs, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan packages list: %w", err)
	}
	return pkgs, nil
}

func (h *HostInspector) SigningCertificates(context.Context) ([][]byte, error) {
	raw, err := os.ReadFile(h.CertFile)
	if err != nil {
		return nil, fmt.Errorf("read signing certificate: %w", err)
	}
	var certs [][]byte
	rest := raw
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			certs = append(certs, block.Bytes)
		}
	}
	if len(certs) == 0 {
		// not PEM; treat the file as a single DER certificate
		certs = append(certs, raw)
	}
	return certs, nil
}

func (h *HostInspector) InstallerPackage(context.Context) (string, error) {
	return h.Installer, nil
}

var (
	_ Inspector = (*StaticDevice)(nil)
	_ Inspector = (*HostInspector)(nil)
)
