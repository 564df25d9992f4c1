package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newShootCmd() *cobra.Command {
	var marked, protected bool

	cmd := &cobra.Command{
		Use:   "shoot <actor-id> <target-id>",
		Short: "Shoot a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"actor_id":         args[0],
				"target_id":        args[1],
				"target_marked":    marked,
				"target_protected": protected,
			}
			var result Outcome

			if err := client.Post(cmd.Context(), "/api/v1/combat/shoot", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&marked, "marked", false, "Target currently carries the incapacitated marker")
	cmd.Flags().BoolVar(&protected, "protected", false, "Target is protected (e.g. timed out)")

	return cmd
}

func newReviveCmd() *cobra.Command {
	var marked bool

	cmd := &cobra.Command{
		Use:   "revive <medic-id> <patient-id>",
		Short: "Revive an incapacitated player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"medic_id":       args[0],
				"patient_id":     args[1],
				"patient_marked": marked,
			}
			var result Outcome

			if err := client.Post(cmd.Context(), "/api/v1/combat/revive", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&marked, "marked", true, "Patient currently carries the incapacitated marker")

	return cmd
}

func newMarkerFailureCmd() *cobra.Command {
	var reason string
	var refund bool

	cmd := &cobra.Command{
		Use:   "marker-failure <outcome-id>",
		Short: "Report that the marker change for an outcome could not be made",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"outcome_id": args[0],
				"reason":     reason,
				"refund":     refund,
			}

			err := client.Post(cmd.Context(), "/api/v1/combat/marker-failure", req, nil)
			// The server answers every recorded report with EXTERNAL_APPLY_FAILED
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Code == "EXTERNAL_APPLY_FAILED" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), apiErr.Message)
				return nil
			}
			if err == nil {
				return errors.New("server did not record the failure")
			}
			return err
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Why the marker change failed")
	cmd.Flags().BoolVar(&refund, "refund", false, "Return the spent gun or medkit")

	return cmd
}
