package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("export-1", "roster/cs101.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	id, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "export-1", id)
	require.Equal(t, "roster/cs101.csv", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	signer.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	token, _, err := signer.Generate("export-1", "activity.csv")
	require.NoError(t, err)
	signer.now = time.Now

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	id, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "export-1", id)
	require.Equal(t, "activity.csv", path)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("export-1", "activity.csv")
	require.NoError(t, err)

	other := NewSignedURLSigner("other", time.Hour)
	_, _, _, err = other.Parse(token, false)
	require.Error(t, err)

	_, _, _, err = signer.Parse("a.b.c", false)
	require.Error(t, err)
}

func TestLocalStorageRoundTripAndEscape(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("roster/cs101.csv", []byte("student_id\n"))
	require.NoError(t, err)
	f, err := store.Open(rel)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = store.Save("../outside.csv", []byte("x"))
	require.ErrorIs(t, err, ErrOutsideBase)
	_, err = store.Open(filepath.Join(string(os.PathSeparator), "etc", "passwd"))
	require.ErrorIs(t, err, ErrOutsideBase)

	require.NoError(t, store.Delete(rel))
	require.NoError(t, store.Delete(rel))
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)
	_, err = store.Save("old.csv", []byte("old"))
	require.NoError(t, err)
	_, err = store.Save("new.csv", []byte("new"))
	require.NoError(t, err)
	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), past, past))

	deleted, err := store.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"old.csv"}, deleted)
}
