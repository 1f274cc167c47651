package facecode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
	"github.com/spf13/cobra"
)

func (a *app) newEncodeCmd() *cobra.Command {
	var (
		sets []string
		from string
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a face code from field values",
		Long: `Build a face code. Fields start at their defaults, or at the values of
--from, and each --set field=value replaces one of them.`,
		Example: "  facecode encode --set morph_0=5 --set hair_index=12",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := a.codec.Layout().Defaults()
			if from != "" {
				_, decoded, err := a.codec.DecodeString(from)
				if err != nil {
					return err
				}
				params = decoded
			}
			if err := applySets(params, sets); err != nil {
				return err
			}
			code, err := a.codec.Encode(params)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), code)
			return err
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value to set (can be repeated)")
	cmd.Flags().StringVar(&from, "from", "", "face code to start from instead of the defaults")
	return cmd
}

func applySets(params facecode.Parameters, sets []string) error {
	for _, set := range sets {
		name, raw, ok := strings.Cut(set, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("--set %q: want field=value", set)
		}
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("--set %q: value must be an integer", set)
		}
		params[name] = value
	}
	return nil
}
