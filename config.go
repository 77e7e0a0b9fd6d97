package inkblog

import (
	"errors"
	"log/slog"
	"time"

	"github.com/eringen/inkblog/password"
)

// SiteConfig holds all configuration for a blog.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr        string // Listen address (default ":3000")
	DatabaseURL string // SQLite path or postgres:// URL (default "data/blog.db")

	SecretKey    string // Required: session signing secret
	CookieSecure bool   // Set true for HTTPS

	PasswordIterations int // PBKDF2 rounds for new hashes (default 600000)

	LoginAttempts int           // Failed logins allowed per window (default 5)
	LoginWindow   time.Duration // Login limiter window (default 1min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "data/blog.db"
	}
	if c.PasswordIterations <= 0 {
		c.PasswordIterations = password.DefaultIterations
	}
	if c.LoginAttempts <= 0 {
		c.LoginAttempts = 5
	}
	if c.LoginWindow <= 0 {
		c.LoginWindow = time.Minute
	}
}

// ErrNoSecretKey is returned by Init when SecretKey is empty.
var ErrNoSecretKey = errors.New("inkblog: SecretKey is required")

func (c SiteConfig) validate() error {
	if c.SecretKey == "" {
		return ErrNoSecretKey
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithStaticDir sets the directory uploads are written to and served from
// under /static (default "static").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the default stderr text logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithClock overrides the time source used to date new posts.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
