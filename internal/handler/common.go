package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-booking/internal/service"
)

// getAccountID extracts the authenticated account id from echo.Context
// and converts it to uint64.  JWT claims decode numbers as float64, so
// several representations are accepted.
func getAccountID(c echo.Context) (uint64, error) {
	v := c.Get("account_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid account_id in context")
}

// accountType returns the typ claim stored by the auth middleware.
func accountType(c echo.Context) string {
	t, _ := c.Get("account_type").(string)
	return t
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// queryID parses an optional numeric query parameter; absent or
// malformed values yield zero, which filters treat as "any".
func queryID(c echo.Context, name string) uint64 {
	n, _ := strconv.ParseUint(c.QueryParam(name), 10, 64)
	return n
}

// parseRFC3339 parses a required RFC 3339 timestamp field.
func parseRFC3339(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, raw)
}

func nowUTC() time.Time { return time.Now().UTC() }

// engineError translates a booking-engine error into its HTTP
// response.  The message returned to the caller is the full wrapped
// error text, which is also what the audit trail records.
func engineError(c echo.Context, err error) error {
	return c.JSON(service.HTTPStatus(err), echo.Map{"error": err.Error()})
}

// badRequest is the shared shape for malformed input discovered at the
// handler layer, before the engine is involved.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
