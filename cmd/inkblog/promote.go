package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/inkblog"
)

// newPromoteCmd grants the admin level from the command line, the same
// change the owner makes through /add-admin.
func newPromoteCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <email>",
		Short: "Give a registered user the admin level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, v)
			if err != nil {
				return err
			}
			store, err := inkblog.NewStore(v.GetString("database-url"))
			if err != nil {
				return err
			}
			defer store.Close()

			u, err := store.PromoteUser(cmd.Context(), args[0])
			if errors.Is(err, inkblog.ErrNotFound) {
				return fmt.Errorf("no user registered as %s", args[0])
			}
			if err != nil {
				return err
			}
			logger.Info("user promoted", "user_id", u.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin.\n", u.Name)
			return nil
		},
	}
}
