package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/quiztutor/internal/store"
)

func init() {
	BcryptCost = bcrypt.MinCost
}

func TestTokenRoundTrip(t *testing.T) {
	s := NewTokenService("secret", time.Hour)

	tok, err := s.Issue(42, "alice", store.RoleTeacher)
	require.NoError(t, err)

	c, err := s.Parse(tok)
	require.NoError(t, err)
	id, err := c.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "alice", c.Username)
	assert.Equal(t, store.RoleTeacher, c.Role)
}

func TestTokenRejected(t *testing.T) {
	s := NewTokenService("secret", time.Hour)
	tok, err := s.Issue(1, "a", store.RoleStudent)
	require.NoError(t, err)

	_, err = NewTokenService("other", time.Hour).Parse(tok)
	assert.Error(t, err, "wrong secret")

	expired := NewTokenService("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: store.RoleTeacher})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Parse(unsigned)
	assert.Error(t, err, "alg none")
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}

func openAccounts(t *testing.T) (*Accounts, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), store.DriverSQLite,
		fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewAccounts(st.Users(), st.Scores(), NewTokenService("secret", time.Hour)), st
}

func TestRegisterLogin(t *testing.T) {
	a, st := openAccounts(t)
	ctx := context.Background()

	id, err := a.Register(ctx, " bob ", "pw")
	require.NoError(t, err)

	_, err = a.Register(ctx, "bob", "other")
	assert.ErrorIs(t, err, store.ErrUserExists)

	_, err = a.Register(ctx, "", "pw")
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, st.Scores().SetScore(ctx, id, "Loops", 700))

	sess, err := a.Login(ctx, "bob", "pw")
	require.NoError(t, err)
	assert.Equal(t, id, sess.UserID)
	assert.Equal(t, 700, sess.Score)
	assert.Equal(t, store.RoleStudent, sess.Role)
	assert.NotEmpty(t, sess.AccessToken)

	_, err = a.Login(ctx, "bob", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login(ctx, "nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMiddleware(t *testing.T) {
	s := NewTokenService("secret", time.Hour)
	deny := func(code int) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(code) }
	}
	h := Middleware(s, deny(http.StatusUnauthorized))(
		RequireRole(store.RoleTeacher, deny(http.StatusForbidden))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "tina", ClaimsFrom(r.Context()).Username)
				w.WriteHeader(http.StatusOK)
			}),
		),
	)

	teacher, err := s.Issue(1, "tina", store.RoleTeacher)
	require.NoError(t, err)
	student, err := s.Issue(2, "sam", store.RoleStudent)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"student", "Bearer " + student, http.StatusForbidden},
		{"teacher", "Bearer " + teacher, http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, tt.name)
	}
}
