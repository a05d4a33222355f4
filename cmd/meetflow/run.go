package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/rpggio/meetflow/internal/domain/activity"
	"github.com/rpggio/meetflow/internal/domain/run"
	"github.com/spf13/cobra"
)

func newRunCmd(c *cli) *cobra.Command {
	var (
		req  run.StartRequest
		wait bool
	)
	cmd := &cobra.Command{
		Use:   "run <project-id>",
		Short: "Process the project's meeting into a summary and action items",
		Long: `Start a run. The processing snapshot is printed immediately; with --wait
the terminal run is printed once processing finishes. The command does not
exit before the run is persisted either way.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			h, err := a.Runs.Start(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			if !wait {
				return printJSON(cmd.OutOrStdout(), h.Run)
			}

			final, err := h.Wait(cmd.Context())
			if errors.Is(err, run.ErrDiscarded) {
				fmt.Fprintf(cmd.OutOrStdout(), "Run %s was discarded: project %s no longer exists\n", h.Run.ID, args[0])
				return nil
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), final)
		},
	}
	cmd.Flags().StringVar(&req.MeetingURL, "meeting-url", "", "replace the project's meeting link before running")
	cmd.Flags().StringVar(&req.CallName, "call-name", "", "label for this call")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "print the finished run instead of the processing snapshot")
	return cmd
}

func newHistoryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "history <project-id>",
		Short: "List a project's runs, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			runs, err := a.Projects.Runs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs yet.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tCALL\tACTION ITEMS\tERROR")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					r.ID, r.Date.Local().Format(time.DateTime), r.Status, r.CallName, len(r.ActionItems), r.Error)
			}
			return tw.Flush()
		},
	}
}

func newActivityCmd(c *cli) *cobra.Command {
	var (
		projectID string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent activity, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Activity.GetRecentActivity(cmd.Context(), activity.ListActivityOptions{
				ProjectID: projectID,
				Limit:     limit,
			})
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tTYPE\tPROJECT\tSUMMARY")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.CreatedAt.Local().Format(time.DateTime), e.ActivityType, e.ProjectID, e.Summary)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "only show activity for this project")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries")
	return cmd
}
