package jwtservice

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/habitrack/internal/error_values"
	"github.com/limbo/habitrack/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	s := New("secret", time.Hour)
	user := &entity.User{ID: uuid.New(), Email: "test@example.com"}
	token, err := s.GenerateToken(user)
	require.NoError(t, err)

	claims, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
}

func TestParseTokenRejects(t *testing.T) {
	issued := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	s := New("secret", time.Hour)
	s.now = func() time.Time { return issued }
	user := &entity.User{ID: uuid.New()}
	token, err := s.GenerateToken(user)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		late := New("secret", time.Hour)
		late.now = func() time.Time { return issued.Add(2 * time.Hour) }
		_, err := late.ParseToken(token)
		assert.ErrorIs(t, err, errorvalues.ErrInvalidToken)
	})
	t.Run("other secret", func(t *testing.T) {
		other := New("other", time.Hour)
		other.now = s.now
		_, err := other.ParseToken(token)
		assert.ErrorIs(t, err, errorvalues.ErrInvalidToken)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := s.ParseToken("not.a.token")
		assert.ErrorIs(t, err, errorvalues.ErrInvalidToken)
	})
	t.Run("unsigned", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": user.ID.String(), "iss": "habitrack"})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.ParseToken(raw)
		assert.ErrorIs(t, err, errorvalues.ErrInvalidToken)
	})
}
