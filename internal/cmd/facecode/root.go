// Package facecode provides the offline face code command line: encode,
// decode and validate codes, move them in and out of profile records, and
// edit a face live in the terminal.
package facecode

import (
	"time"

	entrypoint "github.com/louisbranch/warband-face/internal/platform/cmd"
	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
	"github.com/spf13/cobra"
)

// Config holds defaults for the command line, read from the environment.
type Config struct {
	Debounce      time.Duration `env:"WARBAND_FACE_FACECODE_DEBOUNCE"     envDefault:"100ms"`
	ProfileOffset int           `env:"WARBAND_FACE_PROFILE_OFFSET"        envDefault:"64"`
	SessionSecret string        `env:"WARBAND_FACE_EDITOR_SESSION_SECRET"`
}

type app struct {
	cfg   Config
	codec *facecode.Codec
}

// NewRootCmd builds the facecode command tree.
func NewRootCmd() (*cobra.Command, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return nil, err
	}
	return newRootCmd(cfg), nil
}

func newRootCmd(cfg Config) *cobra.Command {
	a := &app{cfg: cfg, codec: facecode.NewCodec(facecode.V1)}
	cmd := &cobra.Command{
		Use:   entrypoint.ServiceFacecode,
		Short: "Encode, decode and edit Warband face codes",
		Long: `facecode works with the 64-bit face codes Mount & Blade: Warband stores
in character records. Codes are written as 0x followed by 16 hex digits.

Layout ` + a.codec.Layout().Version() + `: eight 3-bit morph sliders, then hair, beard, age and
skin tone indices (6 bits each) and 16 reserved bits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		a.newEncodeCmd(),
		a.newDecodeCmd(),
		a.newValidateCmd(),
		a.newExtractCmd(),
		a.newEmbedCmd(),
		a.newEditCmd(),
		a.newTokenCmd(),
	)
	return cmd
}
