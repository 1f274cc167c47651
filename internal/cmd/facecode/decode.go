package facecode

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func (a *app) newDecodeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "decode <code>",
		Short:   "Show the field values packed in a face code",
		Example: "  facecode decode 0x0000000000000fc7",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, params, err := a.codec.DecodeString(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(struct {
					FaceCode   facecode.Code       `json:"face_code"`
					Layout     string              `json:"layout"`
					Parameters facecode.Parameters `json:"parameters"`
				}{code, a.codec.Layout().Version(), params})
			}
			return renderFieldTable(cmd.OutOrStdout(), a.codec.Layout(), code, params)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func renderFieldTable(w io.Writer, layout *facecode.Layout, code facecode.Code, params facecode.Parameters) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Bits", "Value", "Range"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
	})
	for _, f := range layout.Fields() {
		table.Append([]string{
			f.Name,
			fmt.Sprintf("%d-%d", f.Offset, int(f.Offset)+int(f.Width)-1),
			strconv.Itoa(params[f.Name]),
			fmt.Sprintf("%d-%d", f.Min, f.Max),
		})
	}
	table.Render()

	printer := message.NewPrinter(language.English)
	_, err := printer.Fprintf(w, "%s (layout %s, decimal %d)\n", code.String(), layout.Version(), uint64(code))
	return err
}
