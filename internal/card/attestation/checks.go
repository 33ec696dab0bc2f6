package attestation

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// Known superuser binary locations on rooted Android builds.
var suPaths = []string{
	"/system/app/Superuser.apk",
	"/sbin/su",
	"/system/bin/su",
	"/system/xbin/su",
	"/system/su",
	"/system/bin/.ext/.su",
	"/system/usr/we-need-root/su-backup",
	"/system/xbin/mu",
	"/data/local/su",
	"/data/local/bin/su",
	"/data/local/xbin/su",
	"/su/bin/su",
	"/cache/su",
	"/dev/su",
}

// Root-management and superuser apps.
var rootPackages = []string{
	"com.topjohnwu.magisk",
	"eu.chainfire.supersu",
	"com.noshufou.android.su",
	"com.noshufou.android.su.elite",
	"com.koushikdutta.superuser",
	"com.thirdparty.superuser",
	"com.yellowes.su",
	"com.kingroot.kinguser",
	"com.kingo.root",
	"com.smedialink.oneclickroot",
	"com.zhiqupk.root.global",
	"com.alephzain.framaroot",
}

// System properties whose value marks an insecure build.
var dangerousProps = []struct{ key, value string }{
	{key: "ro.debuggable", value: "1"},
	{key: "ro.secure", value: "0"},
}

type checkResult struct {
	failed   bool
	findings []string
}

func (r *checkResult) fail(format string, args ...any) {
	r.failed = true
	r.findings = append(r.findings, fmt.Sprintf(format, args...))
}

func checkRoot(ctx context.Context, device Inspector) checkResult {
	var res checkResult

	tags, err := device.BuildTags(ctx)
	if err != nil {
		res.fail("build tags unreadable: %v", err)
	} else if strings.Contains(tags, "test-keys") {
		res.fail("build signed with test-keys")
	}

	for _, path := range suPaths {
		exists, err := device.PathExists(ctx, path)
		if err != nil {
			res.fail("cannot inspect %s: %v", path, err)
			continue
		}
		if exists {
			res.fail("superuser binary present at %s", path)
		}
	}

	installed, err := device.InstalledPackages(ctx)
	if err != nil {
		res.fail("package list unreadable: %v", err)
	} else {
		known := make(map[string]struct{}, len(installed))
		for _, pkg := range installed {
			known[pkg] = struct{}{}
		}
		for _, pkg := range rootPackages {
			if _, ok := known[pkg]; ok {
				res.fail("root management package installed: %s", pkg)
			}
		}
	}

	for _, prop := range dangerousProps {
		val, err := device.SystemProperty(ctx, prop.key)
		if err != nil {
			res.fail("system property %s unreadable: %v", prop.key, err)
			continue
		}
		if strings.TrimSpace(val) == prop.value {
			res.fail("insecure system property %s=%s", prop.key, prop.value)
		}
	}

	return res
}

func (a *Attestor) checkIntegrity(ctx context.Context, device Inspector) checkResult {
	var res checkResult

	certs, err := device.SigningCertificates(ctx)
	switch {
	case err != nil:
		res.fail("signing certificates unreadable: %v", err)
	case len(certs) == 0:
		res.fail("application is unsigned")
	default:
		// every signer must be known; a resigned package adds or swaps a signer
		for _, der := range certs {
			if !a.knownCertificate(der) {
				res.fail("unexpected signing certificate %s", Fingerprint(der))
			}
		}
	}

	if len(a.installers) > 0 {
		installer, err := device.InstallerPackage(ctx)
		if err != nil {
			res.fail("installer unreadable: %v", err)
		} else if _, ok := a.installers[installer]; !ok {
			res.fail("installed from unofficial source %q", installer)
		}
	}

	return res
}

func (a *Attestor) knownCertificate(der []byte) bool {
	sum := sha256.Sum256(der)
	matched := 0
	for _, want := range a.fingerprints {
		matched |= subtle.ConstantTimeCompare(sum[:], want)
	}
	return matched == 1
}

// Fingerprint returns the lowercase hex SHA-256 of a DER certificate.
func Fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:])
}

// DecodeFingerprint accepts "AB:CD:..." or "abcd..." SHA-256 fingerprints.
func DecodeFingerprint(fp string) ([]byte, error) {
	clean := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(fp), ":", ""))
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("decode certificate fingerprint %q: %w", fp, err)
	}
	if len(b) != sha256.Size {
		return nil, fmt.Errorf("certificate fingerprint %q is not a SHA-256 digest", fp)
	}
	return b, nil
}
