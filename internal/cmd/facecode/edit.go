package facecode

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/louisbranch/warband-face/internal/services/editor/syncengine"
	"github.com/spf13/cobra"
)

func (a *app) newEditCmd() *cobra.Command {
	var (
		hex      string
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a face with live sliders in the terminal",
		Long: `Open a slider editor over a local editing session. Slider values update
on every key press; the face code line follows once edits pause for the
debounce period.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if debounce <= 0 {
				return errors.New("--debounce must be positive")
			}
			model, err := newEditModel(a.codec, hex, syncengine.Options{Debounce: debounce})
			if err != nil {
				return err
			}
			defer model.engine.Close()

			program := tea.NewProgram(model,
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			final, err := program.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(*editModel); ok {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), m.code)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&hex, "code", "", "face code to start from")
	cmd.Flags().DurationVar(&debounce, "debounce", a.cfg.Debounce, "quiet period before the code regenerates")
	return cmd
}
