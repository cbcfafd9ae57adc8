package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
)

func queryValue(r *http.Request, key string) (string, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	return raw, raw != ""
}

func queryError(key, raw, message string, extra map[string]any) *pkgerrors.Error {
	details := map[string]any{"field": key, "value": raw}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
}

// ParseQueryInt returns defaultVal when key is absent and rejects values outside [min, max].
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw, ok := queryValue(r, key)
	if !ok {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError(key, raw, key+" must be an integer", nil)
	}
	if value < min || value > max {
		return 0, queryError(key, raw, key+" out of range", map[string]any{"min": min, "max": max})
	}
	return value, nil
}

// ParseQueryBool reads an optional flag; absent means false.
func ParseQueryBool(r *http.Request, key string) (bool, error) {
	raw, ok := queryValue(r, key)
	if !ok {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, queryError(key, raw, key+" must be true or false", nil)
	}
	return value, nil
}
