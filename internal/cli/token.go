package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	authsvc "github.com/ivankudzin/pawmatch/internal/services/auth"
)

type TokenOptions struct {
	*RootOptions
	Subject string
	TTL     time.Duration
}

type tokenOutput struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		Long: `Mint an HS256 access token signed with auth.jwt_secret.

Example:
  swipectl token --subject $(uuidgen) --ttl 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Subject, "subject", "", "caller uuid (random when empty)")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", time.Hour, "token lifetime")

	return cmd
}

func runToken(cmd *cobra.Command, opts *TokenOptions) error {
	subject := uuid.New()
	if opts.Subject != "" {
		parsed, err := uuid.Parse(opts.Subject)
		if err != nil {
			return fmt.Errorf("invalid --subject: %w", err)
		}
		subject = parsed
	}

	cfg, _, err := opts.load()
	if err != nil {
		return err
	}

	token, expiresAt, err := authsvc.NewJWTManager(cfg.Auth.JWTSecret, opts.TTL).GenerateAccessToken(subject)
	if err != nil {
		return err
	}

	out := tokenOutput{Token: token, Subject: subject.String(), ExpiresAt: expiresAt}
	return writeOutput(cmd.OutOrStdout(), opts.Format, out, func(w io.Writer) error {
		fmt.Fprintln(w, token)
		return nil
	})
}
