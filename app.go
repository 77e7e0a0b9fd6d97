// Package inkblog is a server-rendered blog built with Echo, GORM and
// templ. Visitors read posts, registered users comment, admins write
// posts and the owner account promotes users to admin.
package inkblog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkblog/password"
)

// App wires together the store, session handling, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Logger *slog.Logger

	hasher       password.Hasher
	loginLimiter *LoginLimiter
	staticDir    string
	now          func() time.Time
}

// New creates an App with the given configuration. Call Init (or Start)
// before serving requests.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "static",
		now:       time.Now,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	a.hasher = password.Hasher{Iterations: a.Config.PasswordIterations}
	return a
}

// Init validates the configuration, opens the database and registers
// middleware and routes.
func (a *App) Init() error {
	if err := a.Config.validate(); err != nil {
		return err
	}

	store, err := NewStore(a.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("inkblog: init store: %w", err)
	}
	a.Store = store

	a.loginLimiter = NewLoginLimiter(a.Config.LoginAttempts, a.Config.LoginWindow)

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

// Start initializes the app and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if a.Store == nil {
		if err := a.Init(); err != nil {
			return err
		}
	}
	a.Logger.Info("listening", "addr", a.Config.Addr, "site", a.Config.URL)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/assets/*", echo.WrapHandler(http.StripPrefix("/assets/", http.FileServer(http.FS(assetFS())))))
	e.Static("/static", a.staticDir)

	e.GET("/", withIdentity(a.handleHome))
	e.GET("/about", withIdentity(a.handleAbout))
	e.GET("/contact", withIdentity(a.handleContact))
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)

	e.GET("/register", withIdentity(a.handleRegisterForm))
	e.POST("/register", withIdentity(a.handleRegister))
	e.GET("/login", withIdentity(a.handleLoginForm))
	e.POST("/login", withIdentity(a.handleLogin))
	e.GET("/logout", handleLogout)

	e.GET("/post/:id", withIdentity(a.handlePost))
	e.POST("/post/:id", withIdentity(a.handlePost))

	adminOnly := requireIdentity(IsAdmin)
	e.GET("/new-post", withIdentity(a.handleNewPostForm), adminOnly)
	e.POST("/new-post", withIdentity(a.handleNewPost), adminOnly)
	e.GET("/edit-post/:id", withIdentity(a.handleEditPostForm), adminOnly)
	e.POST("/edit-post/:id", withIdentity(a.handleEditPost), adminOnly)
	e.GET("/delete/:id", a.handleDeletePost, adminOnly)
	e.GET("/images", withIdentity(a.handleImageList), adminOnly)
	e.POST("/images", withIdentity(a.handleImageUpload), adminOnly)
	e.POST("/images/:filename/delete", a.handleImageDelete, adminOnly)

	ownerOnly := requireIdentity(IsOwner)
	e.GET("/add-admin", withIdentity(a.handleAddAdminForm), ownerOnly)
	e.POST("/add-admin", withIdentity(a.handleAddAdmin), ownerOnly)
}

// Close stops background work and closes the database.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
