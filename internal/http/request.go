package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"caixa/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads the request body into v, rejecting unknown fields
// and oversized payloads.
func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseMoney accepts either a decimal string ("1800.50") or a JSON
// number and converts it to cents.
func parseMoney(raw json.Number) (core.Money, error) {
	s := strings.TrimSpace(raw.String())
	if s == "" {
		return core.Money{}, errors.New("missing amount")
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// parseBudget is parseMoney for category ceilings, where zero is a
// valid value meaning the category has no ceiling.
func parseBudget(raw json.Number) (core.Money, error) {
	if f, err := raw.Float64(); err == nil && f == 0 {
		return core.Money{}, nil
	}
	return parseMoney(raw)
}

// parseDate parses an RFC3339 timestamp or a bare YYYY-MM-DD date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// parseDatePtr is parseDate for optional fields.
func parseDatePtr(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
