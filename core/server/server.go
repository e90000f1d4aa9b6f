// Package server exposes the Mini-Shell over SSH. Every accepted
// session gets its own environment and working directory; only the
// host filesystem and the audit log are shared.
package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/juju/ratelimit"
	"github.com/spf13/afero"
	gossh "golang.org/x/crypto/ssh"

	"github.com/andreeapeiu/Mini-Shell/core/config"
	"github.com/andreeapeiu/Mini-Shell/core/env"
	"github.com/andreeapeiu/Mini-Shell/core/interp"
	"github.com/andreeapeiu/Mini-Shell/core/logger"
	"github.com/andreeapeiu/Mini-Shell/core/shell"
)

type sshContextKey struct {
	name string
}

// ContextAuthPassword holds the password the client authenticated
// with, so the session handler can audit it.
var ContextAuthPassword = sshContextKey{"auth-password"}

// Server accepts SSH connections and hands each one a shell.
type Server struct {
	cfg       *config.Config
	audit     *logger.Logger
	sshServer *ssh.Server

	// hostKeyFingerprint identifies the host key so operators can hand
	// it to clients for pinning.
	hostKeyFingerprint string

	// sessions throttles new sessions. nil means unlimited.
	sessions *ratelimit.Bucket
}

// New builds a Server from its configuration. The audit logger
// receives one event per login attempt, command and session end.
func New(cfg *config.Config, audit *logger.Logger) (*Server, error) {
	srv := &Server{
		cfg:   cfg,
		audit: audit,
	}

	if max := cfg.SSH.MaxSessionsPerMinute; max > 0 {
		srv.sessions = ratelimit.NewBucket(time.Minute/time.Duration(max), int64(max))
	}

	srv.sshServer = &ssh.Server{
		Addr:    fmt.Sprintf(":%d", cfg.SSH.Port),
		Version: cfg.SSH.Banner,
		Handler: srv.handleSession,
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			ctx.SetValue(ContextAuthPassword, password)

			ok := srv.checkPassword(ctx.User(), password)
			if !ok {
				srv.audit.Sessionless().Record(&logger.LoginAttempt{
					Result:     logger.ResultFailure,
					Username:   ctx.User(),
					Password:   password,
					RemoteAddr: addrString(ctx.RemoteAddr()),
				})
			}
			return ok
		},
	}

	hostKey, err := cfg.PrivateKeyPem()
	if err != nil {
		return nil, fmt.Errorf("reading host key: %w", err)
	}
	signer, err := gossh.ParsePrivateKey(hostKey)
	if err != nil {
		return nil, fmt.Errorf("parsing host key: %w", err)
	}
	srv.hostKeyFingerprint = gossh.FingerprintSHA256(signer.PublicKey())

	if err := srv.sshServer.SetOption(ssh.HostKeyPEM(hostKey)); err != nil {
		return nil, err
	}

	return srv, nil
}

// HostKeyFingerprint returns the SHA256 fingerprint of the host key.
func (s *Server) HostKeyFingerprint() string {
	return s.hostKeyFingerprint
}

// checkPassword compares the password against every candidate for the
// user. All candidates are checked so timing reveals nothing about
// which one matched.
func (s *Server) checkPassword(username, password string) bool {
	ok := false
	for _, candidate := range s.cfg.GetPasswords(username) {
		if subtle.ConstantTimeCompare([]byte(password), []byte(candidate)) == 1 {
			ok = true
		}
	}
	return ok
}

// takeSession reports whether a new session fits the rate limit.
func (s *Server) takeSession() bool {
	return s.sessions == nil || s.sessions.TakeAvailable(1) > 0
}

// newRunner builds the evaluator for one session: a fresh environment
// seeded from the client's, the user's home directory and the
// session's streams. Server-controlled variables are set last so a
// client cannot override them.
func (s *Server) newRunner(username string, clientEnv []string, stdin io.Reader, stdout, stderr io.Writer) *interp.Runner {
	fs := afero.NewOsFs()

	e := env.NewMapEnv()
	for _, kv := range clientEnv {
		if name, value, ok := strings.Cut(kv, "="); ok {
			e.Setenv(name, value)
		}
	}

	home := "/"
	if user, ok := s.cfg.LookupUser(username); ok && user.Home != "" {
		if isDir, err := afero.DirExists(fs, user.Home); err == nil && isDir {
			home = user.Home
		}
	}

	path := s.cfg.DefaultPath
	if path == "" {
		path = shell.DefaultPath
	}

	e.Setenv(shell.EnvUser, username)
	e.Setenv(shell.EnvHome, home)
	e.Setenv(shell.EnvHostname, s.cfg.Hostname)
	e.Setenv(shell.EnvPath, path)
	if s.cfg.Prompt != "" {
		e.Setenv(shell.EnvPrompt, s.cfg.Prompt)
	}

	return &interp.Runner{
		Env:    e,
		Dir:    home,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		FS:     fs,
	}
}

func (s *Server) handleSession(sess ssh.Session) {
	if !s.takeSession() {
		fmt.Fprintln(sess.Stderr(), "too many connections, try again later")
		sess.Exit(1)
		return
	}

	start := time.Now()
	sessionLog := s.audit.NewSession()
	sessionLog.Record(&logger.LoginAttempt{
		Result:               logger.ResultSuccess,
		Username:             sess.User(),
		Password:             fmt.Sprintf("%v", sess.Context().Value(ContextAuthPassword)),
		RemoteAddr:           addrString(sess.RemoteAddr()),
		EnvironmentVariables: sess.Environ(),
		RawCommand:           sess.RawCommand(),
	})

	finish := func(status int) {
		if status < 0 {
			status = 1
		}
		sessionLog.Record(&logger.SessionEnd{
			DurationMicros: time.Since(start).Microseconds(),
			ExitStatus:     status,
		})
		sess.Exit(status)
	}

	runner := s.newRunner(sess.User(), sess.Environ(), sess, sess, sess.Stderr())

	// A command carried in the exec request runs without a prompt,
	// like sh -c.
	if raw := sess.RawCommand(); raw != "" {
		sh := &shell.Shell{Runner: runner, Audit: sessionLog}
		status := sh.Eval(sess.Context(), raw)
		if runner.Exiting() {
			status = runner.ExitCode()
		}
		finish(status)
		return
	}

	ptyInfo, winch, isPty := sess.Pty()
	var width atomic.Int32
	width.Store(int32(ptyInfo.Window.Width))
	go func() {
		for window := range winch {
			width.Store(int32(window.Width))
		}
	}()

	if s.cfg.Motd != "" {
		fmt.Fprint(sess, s.cfg.Motd)
	}

	sh, err := shell.New(runner, &shell.Options{
		WindowWidth: func() int {
			if w := int(width.Load()); w > 0 {
				return w
			}
			return 80
		},
		IsTerminal: func() bool { return isPty },
		Audit:      sessionLog,
	})
	if err != nil {
		fmt.Fprintf(sess.Stderr(), "minish: %v\n", err)
		finish(1)
		return
	}
	defer sh.Close()

	finish(sh.Run(sess.Context()))
}

// ListenAndServe starts the server on the configured port.
func (s *Server) ListenAndServe() error {
	log.Printf("starting SSH server on %s", s.sshServer.Addr)
	log.Printf("host key fingerprint: %s", s.hostKeyFingerprint)
	return s.sshServer.ListenAndServe()
}

// Serve accepts connections from an existing listener.
func (s *Server) Serve(l net.Listener) error {
	return s.sshServer.Serve(l)
}

// Shutdown stops the server, waiting for open sessions to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.sshServer.Shutdown(ctx)
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
