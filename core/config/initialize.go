package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize writes a fresh deployment into dir: the default
// config.yaml and a newly generated SSH host key. Existing files are
// kept, so re-running is safe.
func Initialize(dir string, logger *log.Logger) error {
	return InitializeFs(afero.NewOsFs(), dir, logger)
}

// InitializeFs is Initialize against an arbitrary filesystem.
func InitializeFs(fs afero.Fs, dir string, logger *log.Logger) error {
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return err
	}

	writeOnce := func(name string, mode os.FileMode, data func() ([]byte, error)) error {
		path := filepath.Join(dir, name)
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return err
		}
		if exists {
			logger.Printf("keeping existing %s", name)
			return nil
		}

		contents, err := data()
		if err != nil {
			return err
		}
		if err := afero.WriteFile(fs, path, contents, mode); err != nil {
			return err
		}
		logger.Printf("wrote %s", path)
		return nil
	}

	if err := writeOnce(ConfigurationName, 0600, func() ([]byte, error) {
		return defaultConfigData, nil
	}); err != nil {
		return err
	}

	return writeOnce(PrivateKeyName, 0600, generateHostKey)
}

// generateHostKey creates an RSA host key in PKCS#1 PEM form, the
// format sshd and the x/crypto parsers both accept.
func generateHostKey() ([]byte, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}
	return pem.EncodeToMemory(block), nil
}
