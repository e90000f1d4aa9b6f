package config

import (
	"crypto/x509"
	"encoding/pem"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	if err := Initialize(tempDir, log.New(io.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(tempDir)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("OpenAuditLog", func(t *testing.T) {
		fd, err := cfg.OpenAuditLog()
		assert.Nil(t, err)
		fd.Close()

		rd, err := cfg.ReadAuditLog()
		assert.Nil(t, err)
		rd.Close()
	})

	t.Run("PrivateKeyPem", func(t *testing.T) {
		keyPem, err := cfg.PrivateKeyPem()
		assert.Nil(t, err)
		require.NotNil(t, keyPem)

		block, _ := pem.Decode(keyPem)
		require.NotNil(t, block, "host key is PEM encoded")
		assert.Equal(t, "RSA PRIVATE KEY", block.Type)

		_, err = x509.ParsePKCS1PrivateKey(block.Bytes)
		assert.Nil(t, err)
	})

	t.Run("Idempotent", func(t *testing.T) {
		before, err := cfg.PrivateKeyPem()
		require.NoError(t, err)

		require.NoError(t, Initialize(tempDir, log.New(io.Discard, "", 0)))

		after, err := cfg.PrivateKeyPem()
		require.NoError(t, err)
		assert.Equal(t, before, after, "a second init keeps the host key")
	})
}
