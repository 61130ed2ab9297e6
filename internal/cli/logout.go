package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lachlan2k/labour-console/internal/session"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), conf, logger)
			if err != nil {
				return err
			}
			// Close waits for the backend to hear about the logout
			defer a.Close()

			if err := a.sessions.Initialize(cmd.Context()); err != nil {
				logger.Warn("couldn't read stored session", zap.Error(err))
			}

			st := a.sessions.State()
			if !st.Authenticated() {
				if reason := a.sessions.ConsumeLogoutReason(); reason != session.LogoutReasonNone {
					fmt.Fprintln(cmd.OutOrStdout(), reason.Message())
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}

			a.sessions.Logout(cmd.Context(), session.LogoutReasonNone)
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out (%s)\n", st.Role)
			return nil
		},
	}
}
