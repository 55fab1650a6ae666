package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func (a *app) statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Read delivery statistics",
	}

	overview := &cobra.Command{
		Use:   "overview",
		Short: "Account-wide totals and average rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			o, err := a.svc.Stats.Overview(ctx)
			if err != nil {
				return err
			}
			return a.render(o, func(w io.Writer) {
				row(w, "Contacts:", o.TotalContacts)
				row(w, "Subscribed:", o.SubscribedContacts)
				row(w, "Campaigns:", o.TotalCampaigns)
				row(w, "Sent:", o.SentCampaigns)
				row(w, "Avg open rate:", percent(o.AverageOpenRate))
				row(w, "Avg click rate:", percent(o.AverageClickRate))
			})
		},
	}

	campaign := &cobra.Command{
		Use:   "campaign <id>",
		Short: "Delivery stats for one campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			s, err := a.svc.Stats.Campaign(ctx, args[0])
			if err != nil {
				return err
			}
			return a.render(s, func(w io.Writer) {
				row(w, "Campaign:", s.CampaignID)
				row(w, "Sent:", s.Sent)
				row(w, "Delivered:", s.Delivered)
				row(w, "Opened:", s.Opened, percent(s.OpenRate))
				row(w, "Clicked:", s.Clicked, percent(s.ClickRate))
				row(w, "Bounced:", s.Bounced)
				row(w, "Unsubscribed:", s.Unsubscribed)
			})
		},
	}

	cmd.AddCommand(overview, campaign)
	return cmd
}
