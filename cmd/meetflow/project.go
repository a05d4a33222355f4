package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rpggio/meetflow/internal/domain/project"
	"github.com/spf13/cobra"
)

// projectFields binds the editable project flags.
type projectFields struct {
	name, meetingURL, prompt         string
	wikiURL, wikiTableTitle          string
	slackChannel, slackMessageFormat string
}

func (f *projectFields) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "project name")
	fl.StringVar(&f.meetingURL, "meeting-url", "", "meeting link")
	fl.StringVar(&f.prompt, "prompt", "", "summarization prompt")
	fl.StringVar(&f.wikiURL, "wiki-url", "", "wiki page receiving results")
	fl.StringVar(&f.wikiTableTitle, "wiki-table", "", "wiki table title")
	fl.StringVar(&f.slackChannel, "slack-channel", "", "Slack channel to notify")
	fl.StringVar(&f.slackMessageFormat, "slack-template", "", "Slack message template ({{summary}}, {{project}}, {{date}})")
}

// edit returns an Edit holding only the flags that were set.
func (f *projectFields) edit(cmd *cobra.Command) project.Edit {
	pick := func(flag string, v *string) *string {
		if cmd.Flags().Changed(flag) {
			return v
		}
		return nil
	}
	return project.Edit{
		Name:                 pick("name", &f.name),
		MeetingURL:           pick("meeting-url", &f.meetingURL),
		Prompt:               pick("prompt", &f.prompt),
		WikiURL:              pick("wiki-url", &f.wikiURL),
		WikiTableTitle:       pick("wiki-table", &f.wikiTableTitle),
		SlackChannel:         pick("slack-channel", &f.slackChannel),
		SlackMessageTemplate: pick("slack-template", &f.slackMessageFormat),
	}
}

func newProjectCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "p"},
		Short:   "Manage meeting automation projects",
	}
	cmd.AddCommand(
		newProjectCreateCmd(c),
		newProjectListCmd(c),
		newProjectShowCmd(c),
		newProjectUpdateCmd(c),
		newProjectDeleteCmd(c),
	)
	return cmd
}

func newProjectCreateCmd(c *cli) *cobra.Command {
	var (
		f  projectFields
		id string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			proj, err := a.Projects.Create(cmd.Context(), project.CreateRequest{
				ID:                   id,
				Name:                 f.name,
				MeetingURL:           f.meetingURL,
				Prompt:               f.prompt,
				WikiURL:              f.wikiURL,
				WikiTableTitle:       f.wikiTableTitle,
				SlackChannel:         f.slackChannel,
				SlackMessageTemplate: f.slackMessageFormat,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), proj)
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&id, "id", "", "project id (generated when omitted)")
	return cmd
}

func newProjectListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects with their latest run",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			summaries, err := a.Projects.Summaries(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects yet.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tRUNS\tCOMPLETED\tLATEST")
			for _, s := range summaries {
				latest := "-"
				if s.LatestRunStatus != nil {
					latest = string(*s.LatestRunStatus)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", s.ID, s.Name, s.TotalRuns, s.CompletedRuns, latest)
			}
			return tw.Flush()
		},
	}
}

func newProjectShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project and its run history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			proj, err := a.Projects.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), proj)
		},
	}
}

func newProjectUpdateCmd(c *cli) *cobra.Command {
	var f projectFields
	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update a project; unset flags leave fields unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			proj, err := a.Projects.Update(cmd.Context(), args[0], f.edit(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), proj)
		},
	}
	f.bind(cmd)
	return cmd
}

func newProjectDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <project-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a project and its run history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Projects.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
			return nil
		},
	}
}
