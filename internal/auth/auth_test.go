package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"schooladmin/internal/docstore"
)

func testSigner() *Signer {
	return NewSigner("school-test", "secret", 15*time.Minute, time.Hour, 30*24*time.Hour)
}

func TestIssueAndParse(t *testing.T) {
	s := testSigner()
	pair, err := s.Issue("admin@school.test", false)
	require.NoError(t, err)

	claims, err := s.Parse(pair.AccessToken, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "admin@school.test", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = s.Parse(pair.RefreshToken, KindAccess)
	assert.ErrorIs(t, err, ErrWrongKind)

	_, err = NewSigner("other", "secret", time.Minute, time.Hour, 0).Parse(pair.AccessToken, KindAccess)
	assert.Error(t, err)
}

func TestRememberExtendsRefresh(t *testing.T) {
	s := testSigner()
	short, err := s.Issue("a@b.c", false)
	require.NoError(t, err)
	long, err := s.Issue("a@b.c", true)
	require.NoError(t, err)

	assert.WithinDuration(t, short.AccessExp, long.AccessExp, time.Second)
	assert.True(t, long.RefreshExp.Sub(short.RefreshExp) > 24*time.Hour)

	renewed, err := s.Refresh(long.RefreshToken)
	require.NoError(t, err)
	claims, err := s.Parse(renewed.RefreshToken, KindRefresh)
	require.NoError(t, err)
	assert.True(t, claims.Remember)

	_, err = s.Refresh(long.AccessToken)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestExpiredToken(t *testing.T) {
	s := testSigner()
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := s.Issue("a@b.c", false)
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Parse(pair.AccessToken, KindAccess)
	assert.Error(t, err)
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	a := NewAccounts(docstore.NewMemory(), bcrypt.MinCost)

	created, err := a.EnsureAdmin(ctx, "Admin@School.test", "secret1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = a.EnsureAdmin(ctx, "admin@school.test", "ignored")
	require.NoError(t, err)
	assert.False(t, created)

	email, err := a.SignIn(ctx, " ADMIN@school.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "admin@school.test", email)

	_, err = a.SignIn(ctx, "admin@school.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.SignIn(ctx, "nobody@school.test", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.ErrorIs(t, a.ChangePassword(ctx, email, "secret1", "abc"), ErrWeakPassword)
	assert.ErrorIs(t, a.ChangePassword(ctx, email, "wrong", "longenough"), ErrInvalidCredentials)
	require.NoError(t, a.ChangePassword(ctx, email, "secret1", "longenough"))

	_, err = a.SignIn(ctx, email, "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.SignIn(ctx, email, "longenough")
	assert.NoError(t, err)
}

func TestAdminAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := testSigner()
	pair, err := s.Issue("admin@school.test", false)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/who", AdminAuth(s), func(c *gin.Context) {
		c.String(http.StatusOK, Subject(c))
	})

	cases := []struct {
		name   string
		url    string
		header string
		code   int
	}{
		{"missing", "/who", "", http.StatusUnauthorized},
		{"header", "/who", "Bearer " + pair.AccessToken, http.StatusOK},
		{"lowercase scheme", "/who", "bearer " + pair.AccessToken, http.StatusOK},
		{"query", "/who?access_token=" + pair.AccessToken, "", http.StatusOK},
		{"refresh rejected", "/who", "Bearer " + pair.RefreshToken, http.StatusUnauthorized},
		{"garbage", "/who", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.code, rec.Code)
			if tc.code == http.StatusOK {
				assert.Equal(t, "admin@school.test", rec.Body.String())
			}
		})
	}
}
