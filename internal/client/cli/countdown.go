package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/gophcourse/internal/client/models"
	"github.com/dmitrijs2005/gophcourse/internal/drip"
)

func (a *App) countdownCmd() *cobra.Command {
	var (
		offline  bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "countdown <module>",
		Short: "Count down until a module unlocks",
		Long: "Count down until a module unlocks.\n" +
			"Online the server streams the state; --offline computes it from the\n" +
			"overview cached by the last `course` run.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			moduleID := args[0]
			live := isTerminal(a.out)

			render := func(v models.DripView) {
				line := fmt.Sprintf("%s: unlocked", moduleID)
				if v.Locked {
					line = fmt.Sprintf("%s: unlocks in %s", moduleID, formatRemaining(v.Remaining()))
				}
				if live {
					fmt.Fprintf(a.out, "\r\033[K%s", line)
				} else {
					fmt.Fprintln(a.out, line)
				}
			}

			var err error
			if offline {
				err = a.offlineCountdown(cmd, moduleID, interval, render)
			} else {
				err = a.api.Countdown(cmd.Context(), moduleID, func(m models.CountdownMessage) { render(m.DripView) })
				err = explain(err)
			}
			if live {
				fmt.Fprintln(a.out)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "use the cached overview instead of the server")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "refresh interval for --offline")
	return cmd
}

func (a *App) offlineCountdown(cmd *cobra.Command, moduleID string, interval time.Duration, render func(models.DripView)) error {
	ctx := cmd.Context()
	ov, fetched, err := a.session.CachedOverview(ctx)
	if err != nil {
		return err
	}
	m, ok := ov.Module(moduleID)
	if !ok || ov.Account == nil {
		return fmt.Errorf("module %q is not in the cached overview", moduleID)
	}
	a.logger.Debug(ctx, "offline countdown", "module", moduleID, "cached_at", fetched)

	policy := m.Module.Policy()
	enrolled := ov.Account.CreatedAt
	unlockAt := policy.UnlockAt(enrolled)

	for st := range drip.Watch(ctx, enrolled, policy, interval, a.clock) {
		v := models.DripView{Locked: st.Locked, RemainingMillis: st.RemainingMillis()}
		if st.Locked {
			v.UnlockAt = &unlockAt
		}
		render(v)
	}
	return ctx.Err()
}

// formatRemaining renders d as "2d 03:04:05", dropping the day part when zero.
func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d.Round(time.Second) / time.Second)
	days, s := s/86400, s%86400
	h, s := s/3600, s%3600
	m, s := s/60, s%60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
