package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func playerPath(id string) string {
	return "/api/v1/players/" + url.PathEscape(id)
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <player-id>",
		Short: "Register a player with the starting inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RegisterResult

			if err := client.Post(cmd.Context(), playerPath(args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newInventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory <player-id>",
		Short: "Show a player's inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player

			if err := client.Get(cmd.Context(), playerPath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGrantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant <player-id> <balance|guns|vest|medkit> <delta>",
		Short: "Add to (or with a negative delta, take from) a player's counter",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid delta %q: %w", args[2], err)
			}

			req := map[string]any{"field": args[1], "delta": delta}
			var result AdjustResult

			if err := client.Post(cmd.Context(), playerPath(args[0])+"/adjust", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newVestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vest",
		Short: "Vest commands",
	}

	cmd.AddCommand(newVestSetCmd("arm", "Arm a player's vest", true))
	cmd.AddCommand(newVestSetCmd("disarm", "Disarm a player's vest", false))

	return cmd
}

func newVestSetCmd(use, short string, armed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <player-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]bool{"armed": armed}
			var result VestResult

			if err := client.Post(cmd.Context(), playerPath(args[0])+"/vest", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
