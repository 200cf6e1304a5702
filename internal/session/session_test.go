package session

import (
	"context"
	"testing"
	"time"

	"clubhouse/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-characters!!"

func newManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewManager(testSecret, 7*24*time.Hour, rdb), mr
}

func TestIssueAndParse(t *testing.T) {
	m, _ := newManager(t)
	user := &models.User{ID: 12, Username: "alice"}

	token, claims, err := m.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := m.Parse(context.Background(), token)
	require.NoError(t, err)
	id, err := parsed.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)
	assert.Equal(t, "alice", parsed.Username)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), parsed.ExpiresAt.Time, time.Minute)
}

func TestParseRejectsTamperedAndForeignTokens(t *testing.T) {
	m, _ := newManager(t)
	token, _, err := m.Issue(&models.User{ID: 1, Username: "a"})
	require.NoError(t, err)

	_, err = m.Parse(context.Background(), token+"x")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	other := NewManager("another-secret-that-is-long-enough!!", time.Hour, nil)
	_, err = other.Parse(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// A token for a different audience is refused.
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{"someone-else"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		ID:        "x",
	})
	signed, err := foreign.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = m.Parse(context.Background(), signed)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestParseRejectsExpired(t *testing.T) {
	m, _ := newManager(t)
	m.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	token, _, err := m.Issue(&models.User{ID: 1, Username: "a"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestRevoke(t *testing.T) {
	m, mr := newManager(t)
	ctx := context.Background()

	token, claims, err := m.Issue(&models.User{ID: 3, Username: "bob"})
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, claims))
	assert.True(t, mr.Exists(revokedKeyPrefix+claims.ID))
	assert.True(t, mr.TTL(revokedKeyPrefix+claims.ID) > 6*24*time.Hour)

	_, err = m.Parse(ctx, token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// A fresh session for the same user is unaffected.
	fresh, _, err := m.Issue(&models.User{ID: 3, Username: "bob"})
	require.NoError(t, err)
	_, err = m.Parse(ctx, fresh)
	assert.NoError(t, err)
}

func TestRedisOutageDoesNotInvalidateSessions(t *testing.T) {
	m, mr := newManager(t)
	token, _, err := m.Issue(&models.User{ID: 3, Username: "bob"})
	require.NoError(t, err)

	mr.Close()
	_, err = m.Parse(context.Background(), token)
	assert.NoError(t, err)
}
