package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/opengovern/campaign-bridge/services"
	"github.com/spf13/cobra"
)

func (a *app) campaignsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "campaigns",
		Aliases: []string{"campaign"},
		Short:   "Manage campaigns",
	}
	cmd.AddCommand(
		a.campaignsListCmd(),
		a.campaignsGetCmd(),
		a.campaignsScheduleCmd(),
	)
	return cmd
}

func (a *app) campaignsListCmd() *cobra.Command {
	var opts services.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			page, err := a.svc.Campaigns.List(ctx, opts)
			if err != nil {
				return err
			}
			return a.render(page, func(w io.Writer) {
				row(w, "ID", "NAME", "STATUS", "SCHEDULED", "SENT")
				for _, c := range page.Items {
					row(w, c.ID, c.Name, c.Status, formatTime(c.ScheduledAt), formatTime(c.SentAt))
				}
				fmt.Fprintf(w, "\npage %d, %d of %d campaigns\n", page.Page, len(page.Items), page.Total)
			})
		},
	}
	addListFlags(cmd, &opts, true)
	return cmd
}

func (a *app) renderCampaign(c services.Campaign) error {
	return a.render(c, func(w io.Writer) {
		row(w, "ID:", c.ID)
		row(w, "Name:", c.Name)
		row(w, "Subject:", c.Subject)
		row(w, "Template:", c.TemplateID)
		row(w, "Status:", c.Status)
		row(w, "Scheduled:", formatTime(c.ScheduledAt))
		row(w, "Sent:", formatTime(c.SentAt))
	})
}

func (a *app) campaignsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			c, err := a.svc.Campaigns.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return a.renderCampaign(c)
		},
	}
}

func (a *app) campaignsScheduleCmd() *cobra.Command {
	var (
		at string
		in time.Duration
	)
	cmd := &cobra.Command{
		Use:   "schedule <id>",
		Short: "Schedule a draft campaign for delivery",
		Long: `Schedule a draft campaign for delivery at an absolute time or after a delay.

Example:
  campaignctl campaigns schedule cp_005 --at 2030-01-02T09:00:00Z
  campaignctl campaigns schedule cp_005 --in 36h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := scheduleTime(at, in, time.Now())
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			c, err := a.svc.Campaigns.Schedule(ctx, args[0], when)
			if err != nil {
				return err
			}
			return a.renderCampaign(c)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Delivery time (RFC 3339)")
	cmd.Flags().DurationVar(&in, "in", 0, "Deliver after this delay")
	cmd.MarkFlagsMutuallyExclusive("at", "in")
	return cmd
}

func scheduleTime(at string, in time.Duration, now time.Time) (time.Time, error) {
	switch {
	case at != "":
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --at: %w", err)
		}
		return t, nil
	case in > 0:
		return now.Add(in), nil
	}
	return time.Time{}, fmt.Errorf("one of --at or --in is required")
}
