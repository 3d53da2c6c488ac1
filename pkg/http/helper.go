package http

import (
	"agendo/pkg/config"
	apperrors "agendo/pkg/errors"
	"net/http"
	"strconv"
	"time"
)

func ExtractLimitOffset(r *http.Request, cfg *config.Config) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return cfg.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

// ParseOptionalTime parses an RFC3339 query parameter. Missing parameters yield nil.
func ParseOptionalTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + name + " format, must be RFC3339")
	}
	parsed = parsed.UTC()
	return &parsed, nil
}
