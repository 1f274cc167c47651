package facecode

import (
	"fmt"
	"os"

	"github.com/louisbranch/warband-face/internal/services/editor/profile"
	"github.com/spf13/cobra"
)

func (a *app) newExtractCmd() *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "extract <record-file>",
		Short: "Print the face code stored in a character record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			code, err := profile.Extract(record, offset)
			if err != nil {
				return err
			}
			if _, err := a.codec.Decode(code); err != nil {
				return fmt.Errorf("record holds %s: %w", code, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), code)
			return err
		},
	}
	cmd.Flags().IntVar(&offset, "offset", a.cfg.ProfileOffset, "byte offset of the face code in the record")
	return cmd
}

func (a *app) newEmbedCmd() *cobra.Command {
	var (
		offset int
		hex    string
	)
	cmd := &cobra.Command{
		Use:   "embed --code <code> <record-file>",
		Short: "Write a face code into a character record in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, _, err := a.codec.DecodeString(hex)
			if err != nil {
				return err
			}
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			record, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := profile.Embed(record, offset, code); err != nil {
				return err
			}
			if err := os.WriteFile(args[0], record, info.Mode().Perm()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s at offset %d\n", code, offset)
			return err
		},
	}
	cmd.Flags().IntVar(&offset, "offset", a.cfg.ProfileOffset, "byte offset of the face code in the record")
	cmd.Flags().StringVar(&hex, "code", "", "face code to write")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}
