package handler // handler defines http handlers

import (
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
)

// getActor extracts the audit actor label from echo.Context.  The JWT
// middleware stores the token subject under "actor"; when no
// authenticated identity is present the planner's "browser" fallback
// applies, so an empty string is fine here.
func getActor(c echo.Context) string {
    if v := c.Get("actor"); v != nil {
        if s, ok := v.(string); ok {
            return s
        }
    }
    return ""
}

// pathID parses the named path parameter as a positive integer id.
func pathID(c echo.Context, name string) (uint64, bool) {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || n == 0 {
        return 0, false
    }
    return n, true
}

// parseWindow parses the optional from/to query parameters (RFC3339).
// Both must be present for a window filter; otherwise nil, nil is
// returned.  The second return value is false on a malformed value.
func parseWindow(c echo.Context) (*time.Time, *time.Time, bool) {
    fromStr := c.QueryParam("from")
    toStr := c.QueryParam("to")
    if fromStr == "" && toStr == "" {
        return nil, nil, true
    }
    from, err := time.Parse(time.RFC3339, fromStr)
    if err != nil {
        return nil, nil, false
    }
    to, err := time.Parse(time.RFC3339, toStr)
    if err != nil {
        return nil, nil, false
    }
    return &from, &to, true
}
