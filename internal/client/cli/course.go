package cli

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/gophcourse/internal/client/client"
	"github.com/dmitrijs2005/gophcourse/internal/client/models"
	"github.com/dmitrijs2005/gophcourse/internal/filex"
	"github.com/dmitrijs2005/gophcourse/internal/netx"
)

// explain turns session and access errors into something a student can act on.
func explain(err error) error {
	var locked *client.LockedError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrNoSession), errors.Is(err, client.ErrUnauthorized):
		return errors.New("not logged in, run `gophcourse login`")
	case errors.Is(err, client.ErrForbidden):
		return errors.New("course access is not active for this account")
	case errors.As(err, &locked):
		return fmt.Errorf("module %s unlocks in %s", locked.ModuleID, formatRemaining(locked.Drip.Remaining()))
	default:
		return err
	}
}

func (a *App) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := a.api.Me(cmd.Context())
			if err != nil {
				return explain(err)
			}
			printAccount(a, acc)
			return nil
		},
	}
}

func printAccount(a *App, acc *models.Account) {
	fmt.Fprintf(a.out, "Name:     %s\n", acc.DisplayName)
	fmt.Fprintf(a.out, "Email:    %s\n", acc.Email)
	fmt.Fprintf(a.out, "Access:   %s (%s)\n", acc.AccessLevel, acc.CourseStatus)
	fmt.Fprintf(a.out, "Enrolled: %s\n", acc.CreatedAt.Local().Format("2006-01-02 15:04"))
}

func (a *App) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name...>",
		Short: "Change the display name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := a.api.UpdateDisplayName(cmd.Context(), strings.Join(args, " "))
			if errors.Is(err, client.ErrInvalidArgument) {
				return errors.New("name must be 1 to 80 characters")
			}
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(a.out, "Display name set to %q\n", acc.DisplayName)
			return nil
		},
	}
}

func (a *App) courseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "course",
		Short: "Show progress and module locks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ov, err := a.api.Overview(ctx)
			if err != nil {
				return explain(err)
			}
			if err := a.session.CacheOverview(ctx, ov); err != nil {
				a.logger.Warn(ctx, "could not cache overview", "error", err)
			}

			if ov.Account != nil {
				fmt.Fprintf(a.out, "Hi %s. Progress: %d/%d lessons (%d%%)\n\n",
					ov.Account.DisplayName, ov.Completed, ov.Total, ov.Percent)
			}
			for _, m := range ov.Modules {
				state := fmt.Sprintf("%d/%d", m.Completed, m.Total)
				if m.Drip.Locked {
					state = "locked, " + formatRemaining(m.Drip.Remaining())
				}
				fmt.Fprintf(a.out, "  %-10s %-40s %s\n", m.Module.ID, m.Module.Title, state)
			}
			return nil
		},
	}
}

func (a *App) lessonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lesson <id>",
		Short: "Show a lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lv, err := a.api.Lesson(cmd.Context(), args[0])
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("no lesson %q", args[0])
			}
			if err != nil {
				return explain(err)
			}

			done := ""
			if lv.Completed {
				done = " (completed)"
			}
			fmt.Fprintf(a.out, "%s / %s%s\n", lv.Module, lv.Lesson.Title, done)
			if lv.Lesson.Duration != "" {
				fmt.Fprintf(a.out, "Duration: %s\n", lv.Lesson.Duration)
			}
			if lv.Lesson.VideoURL != "" {
				fmt.Fprintf(a.out, "Video:    %s\n", lv.Lesson.VideoURL)
			}
			if lv.Lesson.AssetKey != "" {
				fmt.Fprintf(a.out, "Material: run `gophcourse asset %s`\n", lv.Lesson.ID)
			}
			if lv.Lesson.Description != "" {
				fmt.Fprintf(a.out, "\n%s\n", lv.Lesson.Description)
			}
			return nil
		},
	}
}

func (a *App) completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a lesson complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.Complete(cmd.Context(), args[0]); err != nil {
				return explain(err)
			}
			fmt.Fprintf(a.out, "Lesson %s completed\n", args[0])
			return nil
		},
	}
}

// download is a test seam for netx.DownloadFromPresignedURL.
var download = netx.DownloadFromPresignedURL

func (a *App) assetCmd() *cobra.Command {
	var (
		save bool
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "asset <id>",
		Short: "Print a temporary download link for the lesson material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.api.AssetURL(cmd.Context(), args[0])
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("lesson %q has no downloadable material", args[0])
			}
			if err != nil {
				return explain(err)
			}
			if !save {
				fmt.Fprintln(a.out, u)
				return nil
			}
			return a.saveAsset(cmd, u, dir)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "download the file instead of printing the link")
	cmd.Flags().StringVar(&dir, "dir", "downloads", "directory under the working directory for --save")
	return cmd
}

func (a *App) saveAsset(cmd *cobra.Command, rawURL, dirName string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("asset url: %w", err)
	}
	name := path.Base(parsed.Path)
	if name == "/" || name == "." {
		name = "material"
	}

	dir, err := filex.EnsureSubDir(dirName)
	if err != nil {
		return err
	}
	target := filepath.Join(dir, name)

	var n int64
	err = filex.WriteFileAtomic(target, func(w io.Writer) error {
		var err error
		n, err = download(cmd.Context(), rawURL, w)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", target, n)
	return nil
}
