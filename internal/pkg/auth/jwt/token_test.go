package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParse(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "u42", Role: "USER"}, testSecret, time.Minute)
	require.NoError(t, err)

	payload, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u42", payload.ID)
	assert.Equal(t, "USER", payload.Role)
	assert.Equal(t, TokenIssuer, payload.Issuer)
	assert.Equal(t, "u42", payload.Subject)
}

func TestParse_Rejects(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "u42"}, testSecret, time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)

	expired, err := GenerateToken(&Payload{ID: "u42"}, testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, testSecret)
	assert.Error(t, err)

	_, err = GenerateToken(&Payload{}, testSecret, time.Minute)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

// signRaw signs claims as-is, bypassing the checks GenerateToken applies.
func signRaw(t *testing.T, claims *Payload) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestParse_RejectsForeignClaims(t *testing.T) {
	exp := time.Now().Add(time.Minute).Unix()

	foreign := signRaw(t, &Payload{
		ID:             "u42",
		StandardClaims: jwt.StandardClaims{Subject: "u42", Issuer: "HZChat-Server", ExpiresAt: exp},
	})
	_, err := ParseToken(foreign, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	swapped := signRaw(t, &Payload{
		ID:             "admin-0",
		StandardClaims: jwt.StandardClaims{Subject: "u42", Issuer: TokenIssuer, ExpiresAt: exp},
	})
	_, err = ParseToken(swapped, testSecret)
	assert.ErrorIs(t, err, ErrTokenSubject)

	noID := signRaw(t, &Payload{
		StandardClaims: jwt.StandardClaims{Issuer: TokenIssuer, ExpiresAt: exp},
	})
	_, err = ParseToken(noID, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIdentityExtractorMiddleware(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "u7"}, testSecret, time.Minute)
	require.NoError(t, err)

	var got *Payload
	h := IdentityExtractorMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetPayloadFromContext(r)
	}))

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		h.ServeHTTP(httptest.NewRecorder(), r)

		require.NotNil(t, got)
		assert.Equal(t, "u7", got.ID)
	})

	t.Run("query parameter", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
		h.ServeHTTP(httptest.NewRecorder(), r)

		require.NotNil(t, got)
		assert.Equal(t, "u7", got.ID)
	})

	t.Run("garbage stays anonymous", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		r.Header.Set("Authorization", "Bearer nope")
		h.ServeHTTP(httptest.NewRecorder(), r)

		assert.Nil(t, got)
	})
}
