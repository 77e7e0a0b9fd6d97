package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/inkblog"
)

// newRootCmd builds the command tree. Settings come from flags, then the
// environment (a .env file is loaded first if present), then an optional
// config file.
func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "inkblog",
		Short:         "A small server-rendered blog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v, cfgFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	pf.String("database-url", "data/blog.db", "SQLite path or postgres:// URL")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	_ = v.BindPFlags(pf)

	root.AddCommand(newServeCmd(v), newPromoteCmd(v), newVersionCmd())
	return root
}

func loadConfig(v *viper.Viper, cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	return v.ReadInConfig()
}

func newLogger(cmd *cobra.Command, v *viper.Viper) (*slog.Logger, error) {
	return inkblog.NewLogger(v.GetString("log-level"), v.GetString("log-format"), cmd.ErrOrStderr())
}

// siteConfig reads the serve settings out of v.
func siteConfig(v *viper.Viper) inkblog.SiteConfig {
	return inkblog.SiteConfig{
		Name:               v.GetString("site-name"),
		URL:                v.GetString("site-url"),
		Description:        v.GetString("site-description"),
		Addr:               v.GetString("addr"),
		DatabaseURL:        v.GetString("database-url"),
		SecretKey:          v.GetString("secret-key"),
		CookieSecure:       v.GetBool("cookie-secure"),
		PasswordIterations: v.GetInt("password-iterations"),
	}
}
