package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/inkblog"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the blog over HTTP",
		Long: `Serve the blog over HTTP until interrupted.

SECRET_KEY (or --secret-key) is required and signs session cookies.

Examples:
  SECRET_KEY=change-me inkblog serve
  inkblog serve --addr :8080 --database-url postgres://blog@localhost/blog`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v)
		},
	}

	f := cmd.Flags()
	f.String("addr", ":3000", "listen address")
	f.String("secret-key", "", "session signing secret (required)")
	f.String("site-name", "Blog", "site name")
	f.String("site-url", "http://localhost:3000", "canonical site URL")
	f.String("site-description", "", "site description for feeds and meta tags")
	f.Bool("cookie-secure", false, "mark cookies Secure (serve over HTTPS)")
	f.String("static-dir", "static", "directory for uploaded images")
	f.Int("password-iterations", 0, "PBKDF2 iterations for new password hashes (0 = default)")
	_ = v.BindPFlags(f)

	return cmd
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	logger, err := newLogger(cmd, v)
	if err != nil {
		return err
	}

	cfg := siteConfig(v)
	if cfg.SecretKey == "" {
		return errors.New("SECRET_KEY is not set")
	}

	app := inkblog.New(cfg,
		inkblog.WithLogger(logger),
		inkblog.WithStaticDir(v.GetString("static-dir")),
	)
	if err := app.Init(); err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- app.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
