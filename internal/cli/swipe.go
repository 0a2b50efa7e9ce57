package cli

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ivankudzin/pawmatch/internal/app/apiapp"
	"github.com/ivankudzin/pawmatch/internal/transport/http/dto"
)

type SwipeOptions struct {
	*RootOptions
	Actor    string
	Subject  string
	Decision string
}

func NewSwipeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SwipeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "swipe",
		Short: "Record a swipe directly against storage",
		Long: `Record a swipe through the same engine the API uses, bypassing HTTP
and rate limiting.

Example:
  swipectl swipe --actor <uuid> --subject <uuid> --decision like`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSwipe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Actor, "actor", "", "actor uuid")
	cmd.Flags().StringVar(&opts.Subject, "subject", "", "subject uuid")
	cmd.Flags().StringVar(&opts.Decision, "decision", "like", "like or pass")
	_ = cmd.MarkFlagRequired("actor")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func runSwipe(cmd *cobra.Command, opts *SwipeOptions) error {
	actor, err := uuid.Parse(opts.Actor)
	if err != nil {
		return fmt.Errorf("invalid --actor: %w", err)
	}
	subject, err := uuid.Parse(opts.Subject)
	if err != nil {
		return fmt.Errorf("invalid --subject: %w", err)
	}

	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	svc, closeStorage, err := apiapp.NewSwipeService(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	result, err := svc.RecordSwipe(cmd.Context(), actor, subject, opts.Decision)
	if err != nil {
		return err
	}

	resp := dto.NewSwipeResponse(result, actor)

	return writeOutput(cmd.OutOrStdout(), opts.Format, resp, func(w io.Writer) error {
		fmt.Fprintf(w, "%s -> %s: %s (%s)\n", actor, subject, result.Swipe.Decision, result.Outcome.Kind)
		return nil
	})
}
