package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func runActorIdentity(t *testing.T, secret, authHeader string) string {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    if authHeader != "" {
        req.Header.Set("Authorization", authHeader)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    var got string
    h := ActorIdentity(secret)(func(c echo.Context) error {
        got = actorLabel(c)
        return c.NoContent(http.StatusOK)
    })
    require.NoError(t, h(c))
    return got
}

func signToken(t *testing.T, secret, sub string) string {
    t.Helper()
    tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "sub": sub,
        "exp": time.Now().Add(time.Hour).Unix(),
    })
    s, err := tok.SignedString([]byte(secret))
    require.NoError(t, err)
    return s
}

func TestActorIdentityValidToken(t *testing.T) {
    token := signToken(t, "s3cret", "planner1")
    assert.Equal(t, "planner1", runActorIdentity(t, "s3cret", "Bearer "+token))
}

func TestActorIdentityNoToken(t *testing.T) {
    assert.Equal(t, "browser", runActorIdentity(t, "s3cret", ""))
}

func TestActorIdentityBadSignatureFallsBack(t *testing.T) {
    token := signToken(t, "wrong-secret", "planner1")
    assert.Equal(t, "browser", runActorIdentity(t, "s3cret", "Bearer "+token))
}

func TestActorIdentityDisabledWithoutSecret(t *testing.T) {
    token := signToken(t, "s3cret", "planner1")
    assert.Equal(t, "browser", runActorIdentity(t, "", "Bearer "+token))
}
