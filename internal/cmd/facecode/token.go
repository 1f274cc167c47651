package facecode

import (
	"errors"
	"fmt"
	"time"

	server "github.com/louisbranch/warband-face/internal/services/editor/app"
	"github.com/spf13/cobra"
)

func (a *app) newTokenCmd() *cobra.Command {
	var (
		secret  string
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token for an editor that requires auth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				return errors.New("a session secret is required (--secret or WARBAND_FACE_EDITOR_SESSION_SECRET)")
			}
			now := time.Now()
			token, err := server.SignSessionToken([]byte(secret), subject, now, now.Add(ttl))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&secret, "secret", a.cfg.SessionSecret, "HS256 secret shared with the editor")
	cmd.Flags().StringVar(&subject, "subject", "", "token subject, usually a player name")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
