package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/gophcourse/internal/client/config"
)

// RootCommand builds the command tree. Dependencies are connected after flag
// parsing; the caller releases them with Close.
func (a *App) RootCommand() *cobra.Command {
	flags := &config.Flags{}

	root := &cobra.Command{
		Use:           "gophcourse",
		Short:         "Course client: credentials, progress and module countdowns",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(flags.ConfigPath, flags)
			if err != nil {
				return err
			}
			a.config = cfg
			return a.connect(cmd.Context(), a)
		},
	}
	flags.Register(root.PersistentFlags())

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.revealCmd(),
		a.pingCmd(),
		a.meCmd(),
		a.renameCmd(),
		a.courseCmd(),
		a.lessonCmd(),
		a.completeCmd(),
		a.assetCmd(),
		a.countdownCmd(),
	)
	return root
}
