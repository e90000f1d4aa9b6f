// Package config holds the server-side configuration of the
// Mini-Shell: the SSH front end, its users and the audit log. The
// configuration lives in a directory next to the artifacts it names so
// the whole deployment can be moved as one unit.
package config

import (
	_ "embed"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	PrivateKeyName    = "private_key"
	AuditLogName      = "audit.log"
)

type Config struct {
	configFs afero.Fs

	// Prompt is the PS1 served sessions start with.
	Prompt string `json:"prompt"`

	// Motd is printed once at the start of each served session.
	Motd string `json:"motd"`

	// Hostname is what served sessions see in $HOSTNAME.
	Hostname string `json:"hostname" validate:"required,hostname_rfc1123"`

	// DefaultPath is the PATH served sessions start with.
	DefaultPath string `json:"default_path" validate:"required"`

	// GlobalPasswords are accepted for every user.
	GlobalPasswords []string `json:"global_passwords"`

	SSH SSH `json:"ssh"`

	Users []User `json:"users" validate:"unique=Username,dive"`
}

type SSH struct {
	Port   int    `json:"port" validate:"gte=0,lte=65535"`
	Banner string `json:"banner"`

	// MaxSessionsPerMinute throttles new connections. Zero means no
	// limit.
	MaxSessionsPerMinute int `json:"max_sessions_per_minute" validate:"gte=0"`
}

type User struct {
	Username  string   `json:"username" validate:"required"`
	Home      string   `json:"home" validate:"required"`
	Passwords []string `json:"passwords" validate:"unique"`
}

// Validate the configuration for basic semantic errors.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Config) fs() afero.Fs {
	return c.configFs
}

// PrivateKeyPem returns the bytes of the server's host key.
func (c *Config) PrivateKeyPem() ([]byte, error) {
	return afero.ReadFile(c.fs(), PrivateKeyName)
}

// OpenAuditLog opens the audit log in an append only state.
func (c *Config) OpenAuditLog() (afero.File, error) {
	return c.fs().OpenFile(AuditLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadAuditLog opens the audit log for reading.
func (c *Config) ReadAuditLog() (afero.File, error) {
	return c.fs().OpenFile(AuditLogName, os.O_RDONLY, 0600)
}

// LookupUser returns the configured user with the given name.
func (c *Config) LookupUser(username string) (User, bool) {
	for _, u := range c.Users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

// GetPasswords returns allowable passwords for the given username.
func (c *Config) GetPasswords(username string) []string {
	var out []string
	for _, u := range c.Users {
		if u.Username == username {
			out = append(out, u.Passwords...)
		}
	}

	out = append(out, c.GlobalPasswords...)
	return out
}

// Default returns the embedded default configuration, detached from any
// deployment directory: the file helpers don't work on it, but the
// prompt, path and hostname defaults do. The interactive shell falls
// back to it when no config exists.
func Default() *Config {
	var out Config
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
