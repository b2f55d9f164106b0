package credstore

import (
	"errors"
	"hrtools/lib/scrapers/horsereality/core"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func testStore(t *testing.T, store Store) {
	cred := core.RememberCredential{Name: "remember_web_59ba36", Value: "abc"}

	_, err := store.Get(DefaultProfile)
	require.ErrorIs(t, err, ErrNoCredential)

	require.Error(t, store.Set(DefaultProfile, core.RememberCredential{Name: "x"}))
	require.NoError(t, store.Set(DefaultProfile, cred))

	got, err := store.Get(DefaultProfile)
	require.NoError(t, err)
	require.Equal(t, cred, got)

	_, err = store.Get("other")
	require.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, store.Delete(DefaultProfile))
	require.ErrorIs(t, store.Delete(DefaultProfile), ErrNoCredential)
	_, err = store.Get(DefaultProfile)
	require.ErrorIs(t, err, ErrNoCredential)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	testStore(t, NewKeyringStore())
}

func TestKeyringStoreErrors(t *testing.T) {
	origGet := keyringGet
	defer func() { keyringGet = origGet }()

	keyringGet = func(service, user string) (string, error) {
		return "{not json", nil
	}
	_, err := NewKeyringStore().Get(DefaultProfile)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoCredential)

	backendErr := errors.New("dbus unavailable")
	keyringGet = func(service, user string) (string, error) {
		return "", backendErr
	}
	_, err = NewKeyringStore().Get(DefaultProfile)
	require.ErrorIs(t, err, backendErr)
}
