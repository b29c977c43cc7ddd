package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyToken(t *testing.T) {
	key := []byte("secret")
	usr := User{ID: "u1", Name: "T", Email: "t@test.cd", Role: RoleAdmin}

	validToken, err := SignToken(NewClaims(usr, "Masomo", time.Hour), key)
	require.NoError(t, err)

	// generate an expired token
	nowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := SignToken(NewClaims(usr, "Masomo", time.Hour), key)
	nowFunc = time.Now // reset
	require.NoError(t, err)

	otherKeyToken, err := SignToken(NewClaims(usr, "Masomo", time.Hour), []byte("other"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "no token", wantErr: ErrInvalidToken},
		{name: "garbage", token: "lmaooolol", wantErr: ErrInvalidToken},
		{name: "wrong key", token: otherKeyToken, wantErr: ErrInvalidToken},
		{name: "expired token", token: expiredToken, wantErr: ErrTokenExpired},
		{name: "valid token", token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := VerifyToken(tt.token, key)
			assert.Equal(t, tt.wantErr, err)
			if tt.wantErr == nil {
				assert.Equal(t, "u1", claims.Subject)
				assert.Equal(t, "t@test.cd", claims.Email)
				assert.True(t, claims.IsAdmin())
			}
		})
	}
}

func TestParseClaims(t *testing.T) {
	usr := User{ID: "u2", Email: "munir@gmail.com", Role: RoleUser}
	token, err := SignToken(NewClaims(usr, "Masomo", time.Hour), []byte("whatever"))
	require.NoError(t, err)

	claims, err := ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, claims.Role)
	assert.False(t, claims.IsAdmin())
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(time.Now().Add(2*time.Hour)))

	_, err = ParseClaims("nope")
	assert.Equal(t, ErrInvalidToken, err)
}
