package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/recipe-hub/backend/internal/identity/identitytest"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenVerifierMock struct {
	VerifyTokenFunc func(ctx context.Context, token string) (string, error)
}

func (m *tokenVerifierMock) VerifyToken(ctx context.Context, token string) (string, error) {
	return m.VerifyTokenFunc(ctx, token)
}

type idTokenVerifierMock struct {
	VerifyIDTokenFunc func(ctx context.Context, idToken string) (*auth.Token, error)
}

func (m *idTokenVerifierMock) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	return m.VerifyIDTokenFunc(ctx, idToken)
}

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	return c, err
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	t.Parallel()

	verifier := &tokenVerifierMock{VerifyTokenFunc: func(context.Context, string) (string, error) {
		t.Fatal("verifier must not be called")
		return "", nil
	}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := runMiddleware(t, Authenticate(verifier), req)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	t.Parallel()

	verifier := &tokenVerifierMock{VerifyTokenFunc: func(context.Context, string) (string, error) { return "u1", nil }}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token abc")

	_, err := runMiddleware(t, Authenticate(verifier), req)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	t.Parallel()

	verifier := &tokenVerifierMock{VerifyTokenFunc: func(context.Context, string) (string, error) {
		return "", errors.New("expired")
	}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")

	_, err := runMiddleware(t, Authenticate(verifier), req)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

func TestAuthenticate_SetsUserID(t *testing.T) {
	t.Parallel()

	var gotToken string
	verifier := &tokenVerifierMock{VerifyTokenFunc: func(_ context.Context, token string) (string, error) {
		gotToken = token
		return "user-1", nil
	}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "bearer abc.def")

	c, err := runMiddleware(t, Authenticate(verifier), req)
	require.NoError(t, err)
	assert.Equal(t, "abc.def", gotToken)
	assert.Equal(t, "user-1", UserID(c))
}

func TestFirebaseVerifier(t *testing.T) {
	t.Parallel()

	v := NewFirebaseVerifier(&idTokenVerifierMock{VerifyIDTokenFunc: func(_ context.Context, idToken string) (*auth.Token, error) {
		if idToken != "good" {
			return nil, errors.New("bad token")
		}
		return &auth.Token{UID: "fb-uid"}, nil
	}})

	uid, err := v.VerifyToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "fb-uid", uid)

	_, err = v.VerifyToken(context.Background(), "bad")
	assert.Error(t, err)
}

func TestJWTVerifier_RoundTrip(t *testing.T) {
	t.Parallel()

	v := NewJWTVerifier("secret", "recipe-hub", time.Hour)
	token, expiresAt, err := v.Issue("user-42", "u42@example.com")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	uid, err := v.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", uid)
}

func TestJWTVerifier_RejectsForeignSecretAndIssuer(t *testing.T) {
	t.Parallel()

	token, _, err := NewJWTVerifier("other", "recipe-hub", time.Hour).Issue("user-42", "")
	require.NoError(t, err)
	_, err = NewJWTVerifier("secret", "recipe-hub", time.Hour).VerifyToken(context.Background(), token)
	assert.Error(t, err)

	token, _, err = NewJWTVerifier("secret", "someone-else", time.Hour).Issue("user-42", "")
	require.NoError(t, err)
	_, err = NewJWTVerifier("secret", "recipe-hub", time.Hour).VerifyToken(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTVerifier_Expired(t *testing.T) {
	t.Parallel()

	v := NewJWTVerifier("secret", "recipe-hub", time.Minute)
	v.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := v.Issue("user-42", "")
	require.NoError(t, err)

	_, err = NewJWTVerifier("secret", "recipe-hub", time.Minute).VerifyToken(context.Background(), token)
	assert.Error(t, err)
}

func runAdmin(t *testing.T, p *identitytest.Provider, caller, pathUser string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if caller != "" {
		c.Set(UserIDKey, caller)
	}
	if pathUser != "" {
		c.SetParamNames("userId")
		c.SetParamValues(pathUser)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := RequireAdmin(p, log)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	return c, err
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	p := identitytest.New().
		AddMember("org-1", "admin-1", "admin").
		AddMember("org-1", "member-1", "member").
		AddMember("org-2", "admin-2", "org:admin")

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := runAdmin(t, p, "", "")
		assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
	})

	t.Run("path user mismatch", func(t *testing.T) {
		_, err := runAdmin(t, p, "admin-1", "admin-2")
		assert.Equal(t, http.StatusForbidden, httpStatus(t, err))
	})

	t.Run("member is forbidden", func(t *testing.T) {
		_, err := runAdmin(t, p, "member-1", "member-1")
		assert.Equal(t, http.StatusForbidden, httpStatus(t, err))
	})

	t.Run("no organization is forbidden", func(t *testing.T) {
		_, err := runAdmin(t, p, "stranger", "stranger")
		assert.Equal(t, http.StatusForbidden, httpStatus(t, err))
	})

	t.Run("admin passes", func(t *testing.T) {
		c, err := runAdmin(t, p, "admin-1", "admin-1")
		require.NoError(t, err)
		assert.Equal(t, "org-1", c.Get(OrganizationIDKey))
	})

	t.Run("prefixed admin role passes", func(t *testing.T) {
		_, err := runAdmin(t, p, "admin-2", "")
		require.NoError(t, err)
	})
}
