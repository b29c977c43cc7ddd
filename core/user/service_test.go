package user_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/user"
	emailsvc "github.com/trezcool/masomo/services/email"
	inmemdb "github.com/trezcool/masomo/storage/inmem"
	"github.com/trezcool/masomo/tests"
)

func newService(t *testing.T) *user.Service {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return user.NewService(inmemdb.NewUserRepository(db), emailsvc.NewConsoleServiceMock("Masomo", testutil.NopLogger{}), "Masomo")
}

func TestService(t *testing.T) {
	svc := newService(t)
	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)
	emailsvc.SentMessages = nil // reset

	nu := user.NewUser{Name: "Jane", Email: " Jane@Test.cd ", Password: "Secret123"}
	require.NoError(t, nu.Validate(validate, svc))
	usr, err := svc.Create(nu, user.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "jane@test.cd", usr.Email)
	assert.False(t, usr.IsAdmin())
	require.Len(t, emailsvc.SentMessages, 1)
	assert.Equal(t, "jane@test.cd", emailsvc.SentMessages[0].To[0].Address)

	t.Run("email taken", func(t *testing.T) {
		dup := user.NewUser{Name: "Jane", Email: "jane@test.cd", Password: "Secret123"}
		var vErr *core.ValidationError
		assert.True(t, errors.As(dup.Validate(validate, svc), &vErr))
	})

	t.Run("authenticate", func(t *testing.T) {
		tests := []struct {
			name    string
			creds   user.Credentials
			wantErr error
		}{
			{name: "success", creds: user.Credentials{Email: "JANE@test.cd", Password: "Secret123"}},
			{name: "wrong password", creds: user.Credentials{Email: "jane@test.cd", Password: "lol"}, wantErr: user.ErrAuthenticationFailed},
			{name: "unknown email", creds: user.Credentials{Email: "lol@test.cd", Password: "Secret123"}, wantErr: user.ErrAuthenticationFailed},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := svc.Authenticate(tt.creds)
				if tt.wantErr != nil {
					assert.Equal(t, tt.wantErr, err)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, usr.ID, got.ID)
			})
		}
	})

	t.Run("set role and delete", func(t *testing.T) {
		got, err := svc.SetRole(usr.ID, user.UpdateRole{Role: user.RoleAdmin})
		require.NoError(t, err)
		assert.True(t, got.IsAdmin())

		require.NoError(t, svc.Delete(usr.ID))
		_, err = svc.GetByID(usr.ID)
		assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	})
}
