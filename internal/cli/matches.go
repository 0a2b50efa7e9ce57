package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ivankudzin/pawmatch/internal/app/apiapp"
	"github.com/ivankudzin/pawmatch/internal/transport/http/dto"
)

type MatchesOptions struct {
	*RootOptions
	Participant string
}

func NewMatchesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "matches",
		Short: "List a participant's matches, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatches(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Participant, "participant", "", "user or animal uuid")
	_ = cmd.MarkFlagRequired("participant")

	return cmd
}

func runMatches(cmd *cobra.Command, opts *MatchesOptions) error {
	participant, err := uuid.Parse(opts.Participant)
	if err != nil {
		return fmt.Errorf("invalid --participant: %w", err)
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

	matches, err := svc.ListMatches(cmd.Context(), participant)
	if err != nil {
		return err
	}

	resp := dto.MatchesResponse{Items: make([]dto.MatchItemResponse, 0, len(matches))}
	for _, m := range matches {
		resp.Items = append(resp.Items, dto.NewMatchItem(m, participant))
	}

	return writeOutput(cmd.OutOrStdout(), opts.Format, resp, func(w io.Writer) error {
		if len(resp.Items) == 0 {
			fmt.Fprintln(w, "no matches")
			return nil
		}
		for _, item := range resp.Items {
			fmt.Fprintf(w, "%s  %s\n", item.CreatedAt.Format(time.RFC3339), item.CounterpartID)
		}
		return nil
	})
}
