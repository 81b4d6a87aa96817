package http

import (
	"net/http"
	"strconv"

	"proconnect/pkg/config"
	apperrors "proconnect/pkg/errors"
)

// UserIDHeader carries the authenticated requester identity. Session and
// token handling live at the gateway; this service only needs the resolved id.
const UserIDHeader = "X-User-ID"

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
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
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// RequesterID extracts the acting user from the request headers.
func RequesterID(r *http.Request) (string, error) {
	id := r.Header.Get(UserIDHeader)
	if id == "" {
		return "", apperrors.Unauthorized("missing " + UserIDHeader + " header")
	}
	return id, nil
}
