package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, claims, err := signer.Generate("export-1", "exports/inventario.xlsx")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "export-1", claims.JobID)
	require.False(t, claims.ExpiresAt.IsZero())

	parsed, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "export-1", parsed.JobID)
	require.Equal(t, "exports/inventario.xlsx", parsed.Path)
	require.WithinDuration(t, claims.ExpiresAt, parsed.ExpiresAt, time.Second)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("export-1", "exports/inventario.csv")
	require.NoError(t, err)

	_, err = signer.Parse(token+"x", false)
	require.Error(t, err)

	other := NewSignedURLSigner("another-secret", time.Hour)
	_, err = other.Parse(token, false)
	require.Error(t, err)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("export-1", "exports/inventario.pdf")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, err = signer.Parse(token, false)
	require.Error(t, err)

	claims, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "export-1", claims.JobID)
	require.Equal(t, "exports/inventario.pdf", claims.Path)
}
