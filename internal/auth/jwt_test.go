package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetapi/internal/config"
)

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 1})

	t.Run("issue and verify roundtrip", func(t *testing.T) {
		token, err := issuer.Issue("user-1", "ada@example.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		userID, err := issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := issuer.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := NewTokenIssuer(config.AuthConfig{JWTSecret: "other-secret", TokenTTLHours: 1})
		token, err := other.Issue("user-1", "ada@example.com")
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenIssuer(config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: -1})
		token, err := expired.Issue("user-1", "ada@example.com")
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty secret panics at startup", func(t *testing.T) {
		assert.Panics(t, func() {
			NewTokenIssuer(config.AuthConfig{})
		})
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)
	require.NotEqual(t, "Sup3rSecret", hash)

	assert.True(t, VerifyPassword(hash, "Sup3rSecret"))
	assert.False(t, VerifyPassword(hash, "sup3rsecret"))
	assert.False(t, VerifyPassword("not-a-hash", "Sup3rSecret"))
}

func TestValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"meets policy", "Sup3rSecret", true},
		{"too short", "Ab1xyz", false},
		{"no upper case", "sup3rsecret", false},
		{"no lower case", "SUP3RSECRET", false},
		{"no digit", "SuperSecret", false},
		{"long enough with symbols still needs a digit", "Super!Secret?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPassword(tt.password))
		})
	}
}
