package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lachlan2k/labour-console/internal/session"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), conf, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sessions.Initialize(cmd.Context()); err != nil {
				logger.Warn("couldn't read stored session", zap.Error(err))
			}

			out := cmd.OutOrStdout()
			if notice := a.sessions.ConsumeLogoutReason().Message(); notice != "" {
				fmt.Fprintln(out, notice)
			}

			st := a.sessions.State()
			fmt.Fprintf(out, "Session: %s\n", st.Auth)
			if !st.Authenticated() {
				return nil
			}

			fmt.Fprintf(out, "  Role:    %s\n", st.Role)
			if exp, err := session.ExpiresAt(st.Token); err == nil {
				fmt.Fprintf(out, "  Expires: %s (in %s)\n", exp.Format(time.RFC3339), time.Until(exp).Round(time.Second))
			}
			return nil
		},
	}
}
