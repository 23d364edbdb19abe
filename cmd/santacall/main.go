package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"santacall/internal/bootstrap"
	"santacall/internal/platform/config"
	"santacall/internal/platform/id"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "santacall",
		Short:         "SantaCall terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultDir := os.Getenv("SANTACALL_DATA_DIR")
	if defaultDir == "" {
		defaultDir = config.DefaultDataDir()
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDir, "directory holding config.yaml, .env, the session cache and the log")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newLoginCmd(&dataDir))
	root.AddCommand(newSignUpCmd(&dataDir))
	root.AddCommand(newLoginIDTokenCmd(&dataDir))
	root.AddCommand(newLogoutCmd(&dataDir))
	root.AddCommand(newStatusCmd(&dataDir))
	root.AddCommand(newNonceCmd())
	root.AddCommand(newProfileCmd(&dataDir))
	root.AddCommand(newChildrenCmd(&dataDir))
	return root
}

// withApp loads the app, restores the session and closes everything after fn.
func withApp(ctx context.Context, dataDir string, fn func(*bootstrap.App) error) error {
	app, err := loadApp(dataDir)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	if err := app.Start(ctx); err != nil {
		return err
	}
	return fn(app)
}

func loadApp(dataDir string) (*bootstrap.App, error) {
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(cmd.Context(), app)
		},
	}
}

func newLoginCmd(dataDir *string) *cobra.Command {
	var email, password string
	login := &cobra.Command{
		Use:   "login --email <email> --password <password>",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				out, err := app.AuthCLI.Login(ctx, email, password)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", out.Email, out.UserID)
				return nil
			})
		},
	}
	login.Flags().StringVar(&email, "email", "", "account email")
	login.Flags().StringVar(&password, "password", os.Getenv("SANTACALL_PASSWORD"), "account password (or SANTACALL_PASSWORD)")
	return login
}

func newSignUpCmd(dataDir *string) *cobra.Command {
	var email, password string
	signup := &cobra.Command{
		Use:   "signup --email <email> --password <password>",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				out, err := app.AuthCLI.SignUp(cmd.Context(), email, password)
				if err != nil {
					return err
				}
				if out.ConfirmationPending {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "account %s created; confirm your email before signing in\n", out.UserID)
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "account %s created and signed in\n", out.UserID)
				return nil
			})
		},
	}
	signup.Flags().StringVar(&email, "email", "", "account email")
	signup.Flags().StringVar(&password, "password", os.Getenv("SANTACALL_PASSWORD"), "account password (or SANTACALL_PASSWORD)")
	return signup
}

func newLoginIDTokenCmd(dataDir *string) *cobra.Command {
	var provider, idToken, nonce, accessToken string
	login := &cobra.Command{
		Use:   "login-idtoken --provider <apple|google> --id-token <jwt>",
		Short: "Exchange an Apple or Google identity token for a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(idToken) == "" {
				return fmt.Errorf("--id-token is required")
			}
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				out, err := app.AuthCLI.LoginWithIDToken(ctx, provider, idToken, nonce, accessToken)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", out.Email, out.UserID)
				return nil
			})
		},
	}
	login.Flags().StringVar(&provider, "provider", "apple", "identity provider: apple|google")
	login.Flags().StringVar(&idToken, "id-token", "", "identity token issued by the provider")
	login.Flags().StringVar(&nonce, "nonce", "", "raw nonce (apple)")
	login.Flags().StringVar(&accessToken, "access-token", "", "provider access token (google)")
	return login
}

func newLogoutCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				app.AuthCLI.Logout(cmd.Context())
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}
}

func newStatusCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				s := app.AuthCLI.Status()
				if !s.Authenticated {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "email: %s\nuser: %s\nexpires: %s\n", s.Email, s.UserID, s.ExpiresAt.Format(time.RFC3339))
				return nil
			})
		},
	}
}

func newNonceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nonce",
		Short: "Print a raw nonce and the SHA-256 digest to put in the Apple request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n := id.NewNonce(id.RandomHex{})
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "raw: %s\nsha256: %s\n", n.Raw, n.Hashed)
			return nil
		},
	}
}

func newProfileCmd(dataDir *string) *cobra.Command {
	profile := &cobra.Command{Use: "profile", Short: "Show or edit your profile"}

	profile.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				p, err := app.ProfileCLI.Show(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\nemail: %s\nfirst name: %s\nlast name: %s\ncomplete: %t\n", p.ID, p.Email, p.FirstName, p.LastName, p.Complete)
				return nil
			})
		},
	})

	var firstName, lastName string
	set := &cobra.Command{
		Use:   "set --first-name <name> [--last-name <name>]",
		Short: "Save your name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if firstName == "" {
				return fmt.Errorf("--first-name is required")
			}
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				p, err := app.ProfileCLI.Set(cmd.Context(), firstName, lastName)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s %s\n", p.FirstName, p.LastName)
				return nil
			})
		},
	}
	set.Flags().StringVar(&firstName, "first-name", "", "first name")
	set.Flags().StringVar(&lastName, "last-name", "", "last name")
	profile.AddCommand(set)
	return profile
}

func newChildrenCmd(dataDir *string) *cobra.Command {
	children := &cobra.Command{Use: "children", Short: "Manage your children"}

	children.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your children",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				roster, err := app.ChildrenCLI.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(roster) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no children")
					return nil
				}
				for _, c := range roster {
					age := "-"
					if c.Age != nil {
						age = strconv.Itoa(*c.Age)
					}
					mark := " "
					if c.Selected {
						mark = "*"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\t%s\n", mark, c.ID, c.FirstName, age)
				}
				return nil
			})
		},
	})

	children.AddCommand(&cobra.Command{
		Use:   "add <name> <age>",
		Short: "Add a child",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			age, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("age must be a whole number: %w", err)
			}
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				roster, err := app.ChildrenCLI.Add(cmd.Context(), args[0], age)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s; %d children\n", args[0], len(roster))
				return nil
			})
		},
	})

	children.AddCommand(&cobra.Command{
		Use:   "select <id>",
		Short: "Check that a child id resolves and greet them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				c, err := app.ChildrenCLI.Select(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Hello, %s! Ready for Christmas?\n", c.FirstName)
				return nil
			})
		},
	})
	return children
}
