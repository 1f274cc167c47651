package facecode

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <code>...",
		Short: "Check face codes; exits non-zero if any is invalid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, arg := range args {
				code, _, err := a.codec.DecodeString(arg)
				if err != nil {
					invalid++
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tinvalid: %v\n", arg, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tvalid\n", code)
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d face codes are invalid", invalid, len(args))
			}
			return nil
		},
	}
}
