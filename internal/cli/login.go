package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lachlan2k/labour-console/internal/auth"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the labour marketplace backend",
	}

	cmd.AddCommand(newAdminLoginCmd(), newContractorLoginCmd())
	return cmd
}

// loginFailure turns a login error into the message the user should see.
func loginFailure(err error) error {
	var loginErr *auth.LoginError
	if errors.As(err, &loginErr) {
		return errors.New(loginErr.Message)
	}
	return err
}

func newAdminLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Log in as an admin with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

			var err error
			if email, err = p.ask("Email", email); err != nil {
				return err
			}
			if password, err = p.ask("Password", password); err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), conf, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sessions.Initialize(cmd.Context()); err != nil {
				logger.Warn("couldn't restore previous session", zap.Error(err))
			}

			if err := a.auth.AdminLogin(cmd.Context(), email, password); err != nil {
				return loginFailure(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged in as admin")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	return cmd
}

func newContractorLoginCmd() *cobra.Command {
	var (
		phone, password, address string
		latitude, longitude      float64
		remember                 bool
	)

	cmd := &cobra.Command{
		Use:   "contractor",
		Short: "Log in as a contractor with phone number and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), conf, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if phone == "" {
				phone, _ = a.auth.RememberedPhone(cmd.Context())
			}

			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if phone, err = p.ask("Phone number", phone); err != nil {
				return err
			}
			if password, err = p.ask("Password", password); err != nil {
				return err
			}

			in := auth.ContractorLogin{
				PhoneNumber: phone,
				Password:    password,
				Address:     address,
				RememberMe:  remember,
			}
			if cmd.Flags().Changed("latitude") && cmd.Flags().Changed("longitude") {
				in.Latitude, in.Longitude = &latitude, &longitude
			}

			if err := a.sessions.Initialize(cmd.Context()); err != nil {
				logger.Warn("couldn't restore previous session", zap.Error(err))
			}

			if err := a.auth.ContractorLogin(cmd.Context(), in); err != nil {
				return loginFailure(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged in as contractor")
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "Phone number (prompted if omitted and none is remembered)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	cmd.Flags().Float64Var(&latitude, "latitude", 0, "Current latitude")
	cmd.Flags().Float64Var(&longitude, "longitude", 0, "Current longitude")
	cmd.Flags().StringVar(&address, "address", "", "Address to geocode when no coordinates are given")
	cmd.Flags().BoolVar(&remember, "remember", false, "Remember the phone number for the next login")
	return cmd
}
