package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hctools/hc-bulk/internal/plan"
)

// RunError signals that some planned items failed. The process exits
// non-zero after every item has been attempted.
type RunError struct {
	Errors int
}

func (e *RunError) Error() string {
	return fmt.Sprintf("Done with %d error(s).", e.Errors)
}

// updateFlags holds the requested field edits. Presence is tracked via
// pflag.Changed so an explicitly empty value (e.g. --set-tags '') still
// counts as an instruction.
type updateFlags struct {
	name         string
	desc         string
	setTags      string
	addTags      string
	removeTags   string
	timeout      int
	grace        int
	schedule     string
	tz           string
	methods      string
	channels     string
	manualResume bool
}

func (u *updateFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&u.name, "set-name", "", "new name")
	flags.StringVar(&u.desc, "set-desc", "", "new description")
	flags.StringVar(&u.setTags, "set-tags", "", "replace tags entirely with this string")
	flags.StringVar(&u.addTags, "add-tags", "", "space-separated tags to add")
	flags.StringVar(&u.removeTags, "remove-tags", "", "space-separated tags to remove")
	flags.IntVar(&u.timeout, "set-timeout", 0, "simple schedule period, seconds")
	flags.IntVar(&u.grace, "set-grace", 0, "grace time, seconds")
	flags.StringVar(&u.schedule, "set-schedule", "", "cron/OnCalendar expression")
	flags.StringVar(&u.tz, "set-tz", "", "IANA timezone for cron schedules, e.g. Europe/Paris")
	flags.StringVar(&u.methods, "set-methods", "", "allowed HTTP methods, e.g. 'POST'")
	flags.StringVar(&u.channels, "set-channels", "", "comma-separated integration IDs to notify")
	flags.BoolVar(&u.manualResume, "manual-resume", false, "require manual resume after failure (--manual-resume=false to clear)")
}

// changes converts the flags the user actually set into a sparse change
// record; untouched flags stay nil and leave the field unchanged remotely.
func (u *updateFlags) changes(flags *pflag.FlagSet) plan.FieldChanges {
	var c plan.FieldChanges
	if flags.Changed("set-name") {
		c.Name = &u.name
	}
	if flags.Changed("set-desc") {
		c.Desc = &u.desc
	}
	if flags.Changed("set-tags") {
		c.SetTags = &u.setTags
	}
	if flags.Changed("add-tags") {
		c.AddTags = &u.addTags
	}
	if flags.Changed("remove-tags") {
		c.RemoveTags = &u.removeTags
	}
	if flags.Changed("set-timeout") {
		c.Timeout = &u.timeout
	}
	if flags.Changed("set-grace") {
		c.Grace = &u.grace
	}
	if flags.Changed("set-schedule") {
		c.Schedule = &u.schedule
	}
	if flags.Changed("set-tz") {
		c.TZ = &u.tz
	}
	if flags.Changed("set-methods") {
		c.Methods = &u.methods
	}
	if flags.Changed("set-channels") {
		c.Channels = &u.channels
	}
	if flags.Changed("manual-resume") {
		c.ManualResume = &u.manualResume
	}
	return c
}

func newBulkUpdateCommand(app *App) *cobra.Command {
	sel := &selectionFlags{}
	upd := &updateFlags{}
	var (
		pause    bool
		dryRun   bool
		yes      bool
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "bulk-update",
		Short: "Bulk edit checks: select by filters, then apply updates and/or pause",
		RunE: func(cmd *cobra.Command, args []string) error {
			crit, err := sel.criteria()
			if err != nil {
				return err
			}
			cfg, err := app.setup()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			svc := app.service(cfg)
			selected, err := svc.ListMatching(cmd.Context(), sel.tagFilter(), crit)
			if err != nil {
				return err
			}
			if len(selected) == 0 {
				fmt.Fprintln(out, "No checks matched filters.")
				return nil
			}

			fmt.Fprintf(out, "%d check(s) matched. Preview:\n", len(selected))
			for _, c := range selected {
				fmt.Fprintf(out, "- %s [%s] tags='%s' uuid=%s\n",
					c.DisplayName(), c.Status, c.Tags, c.UUID)
			}

			p := svc.BuildPlan(selected, upd.changes(cmd.Flags()), pause)

			summary := fmt.Sprintf("\nPlanned: %d update(s)", p.UpdateCount())
			if pause {
				summary += fmt.Sprintf(", %d pause(s)", p.PauseCount())
			}
			if dryRun {
				summary += " (dry-run)"
			}
			fmt.Fprintln(out, summary)

			if !yes && !dryRun {
				if !confirm(cmd) {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}
			if dryRun {
				return nil
			}

			bar := progressbar.NewOptions(len(p),
				progressbar.OptionSetDescription("Applying"),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetVisibility(progress),
			)
			result := svc.Apply(cmd.Context(), p, func() { _ = bar.Add(1) })
			_ = bar.Finish()

			if n := result.Errors(); n > 0 {
				return &RunError{Errors: n}
			}
			fmt.Fprintln(out, "Done.")
			return nil
		},
	}

	sel.register(cmd)
	upd.register(cmd)
	flags := cmd.Flags()
	flags.BoolVar(&pause, "pause", false, "pause matching checks")
	flags.BoolVar(&dryRun, "dry-run", false, "show what would change, do nothing")
	flags.BoolVarP(&yes, "yes", "y", false, "do not prompt for confirmation")
	flags.BoolVar(&progress, "progress", true, "show a progress bar (--progress=false to disable)")
	return cmd
}

// confirm asks for explicit approval on the command's input stream.
// Anything but y/yes declines.
func confirm(cmd *cobra.Command) bool {
	fmt.Fprint(cmd.OutOrStdout(), "Proceed? [y/N]: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
