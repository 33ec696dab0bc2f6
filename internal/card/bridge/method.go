package bridge

import (
	"encoding/json"
	"fmt"

	dErrors "campuscard/pkg/domain-errors"
)

// Method names used by the first release of the shell.
const (
	LegacyCheckNfcStatus = "checkNfcStatus"
	LegacyStartCardMode  = "startCardMode"
	LegacyStopCardMode   = "stopCardMode"
)

// ParseMethod builds a typed request from a method-channel style call. Both the
// current and the legacy method names are accepted.
func ParseMethod(name string, args map[string]any) (Request, error) {
	switch name {
	case MethodActivate, LegacyStartCardMode:
		return parseActivate(args)
	case MethodDeactivate, LegacyStopCardMode:
		return DeactivateRequest{}, nil
	case MethodGetCachedUser:
		token, err := stringArg(args, "token")
		if err != nil {
			return nil, err
		}
		return GetCachedUserRequest{Token: token}, nil
	case MethodCheckHardwareStatus, LegacyCheckNfcStatus:
		return CheckHardwareStatusRequest{}, nil
	default:
		return nil, dErrors.New(dErrors.CodeNotImplemented, fmt.Sprintf("method %q is not implemented", name))
	}
}

func parseActivate(args map[string]any) (Request, error) {
	var (
		req ActivateRequest
		err error
	)
	if req.Token, err = stringArg(args, "token"); err != nil {
		return nil, err
	}
	if req.Name, err = stringArg(args, "name"); err != nil {
		return nil, err
	}
	if req.Email, err = stringArg(args, "email"); err != nil {
		return nil, err
	}
	if req.Role, err = stringArg(args, "role"); err != nil {
		return nil, err
	}
	if req.Balance, err = floatArg(args, "balance"); err != nil {
		return nil, err
	}
	if v, ok := args["validUntil"]; ok && v != nil {
		s, isString := v.(string)
		if !isString {
			return nil, badArg("validUntil", v)
		}
		req.ValidUntil = &s
	}
	if v, ok := args["isActive"]; ok && v != nil {
		b, isBool := v.(bool)
		if !isBool {
			return nil, badArg("isActive", v)
		}
		req.IsActive = &b
	}
	return req, nil
}

// stringArg returns "" for a missing or null argument.
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, isString := v.(string)
	if !isString {
		return "", badArg(key, v)
	}
	return s, nil
}

func floatArg(args map[string]any, key string) (*float64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil, badArg(key, v)
		}
		f = parsed
	default:
		return nil, badArg(key, v)
	}
	return &f, nil
}

func badArg(key string, v any) error {
	return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("argument %s has unexpected type %T", key, v))
}
