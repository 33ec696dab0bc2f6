package models

// Verdict is the outcome of one device integrity check.
type Verdict string

const (
	VerdictTrusted      Verdict = "trusted"
	VerdictDeviceRooted Verdict = "device_rooted"
	VerdictAppTampered  Verdict = "app_tampered"
)

func (v Verdict) IsValid() bool {
	return v == VerdictTrusted || v == VerdictDeviceRooted || v == VerdictAppTampered
}

func (v Verdict) IsTrusted() bool {
	return v == VerdictTrusted
}

func (v Verdict) String() string {
	return string(v)
}

// Reason is the user-facing explanation for a verdict. Rejections name the
// check that failed so the shell can show the matching remediation.
func (v Verdict) Reason() string {
	switch v {
	case VerdictTrusted:
		return "device and application integrity verified"
	case VerdictDeviceRooted:
		return "device is rooted or jailbroken; card emulation is not allowed on modified devices"
	case VerdictAppTampered:
		return "application package failed integrity verification; reinstall from the official store"
	default:
		return "device integrity could not be verified"
	}
}

// HardwareStatus reports contactless emulation capability. The numeric values
// are part of the bridge contract.
type HardwareStatus int

const (
	HardwareNotSupported HardwareStatus = 0
	HardwareDisabled     HardwareStatus = 1
	HardwareReady        HardwareStatus = 2
)

func (h HardwareStatus) String() string {
	switch h {
	case HardwareNotSupported:
		return "not_supported"
	case HardwareDisabled:
		return "disabled"
	case HardwareReady:
		return "ready"
	default:
		return "unknown"
	}
}

// SessionState is the emulation session lifecycle state.
type SessionState string

const (
	SessionInactive SessionState = "inactive"
	SessionActive   SessionState = "active"
)

func (s SessionState) String() string {
	return string(s)
}

// ActivationOutcome distinguishes a full activation from one where emulation
// is on but the profile could not be cached.
type ActivationOutcome string

const (
	OutcomeActivated          ActivationOutcome = "activated"
	OutcomeActivatedNotCached ActivationOutcome = "activated_not_cached"
)

// Default profile field values applied when the caller omits them.
const (
	DefaultBalance  = 0.0
	DefaultIsActive = true
)
