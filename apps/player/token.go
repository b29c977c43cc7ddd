package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core/user"
	"github.com/trezcool/masomo/services/lmsapi"
)

var (
	nowFunc = time.Now // mockable

	errNotLoggedIn    = errors.New("not logged in: run `masomo login -email EMAIL`")
	errSessionExpired = errors.New("session expired: run `masomo login -email EMAIL`")
)

// tokenFile keeps the access token between runs.
type tokenFile struct {
	path string
}

var _ lmsapi.TokenSource = (*tokenFile)(nil)

// Token returns the stored token, or "" when logged out.
func (tf *tokenFile) Token() (string, error) {
	b, err := os.ReadFile(tf.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(err, "reading token file")
	}
	return strings.TrimSpace(string(b)), nil
}

// Claims returns the claims of the stored token.
func (tf *tokenFile) Claims() (*user.Claims, error) {
	token, err := tf.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errNotLoggedIn
	}
	claims, err := user.ParseClaims(token)
	if err != nil {
		return nil, errors.Wrap(err, "parsing stored token")
	}
	if claims.Expired(nowFunc()) {
		return nil, errSessionExpired
	}
	return claims, nil
}

func (tf *tokenFile) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(tf.path), 0o700); err != nil {
		return errors.Wrap(err, "creating token dir")
	}
	return errors.Wrap(os.WriteFile(tf.path, []byte(token), 0o600), "writing token file")
}

func (tf *tokenFile) Clear() error {
	if err := os.Remove(tf.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing token file")
	}
	return nil
}
