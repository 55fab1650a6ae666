package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/opengovern/campaign-bridge/services"
	"github.com/spf13/cobra"
)

func (a *app) contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact"},
		Short:   "Manage contacts",
	}
	cmd.AddCommand(
		a.contactsListCmd(),
		a.contactsGetCmd(),
		a.contactsCreateCmd(),
		a.contactsDeleteCmd(),
	)
	return cmd
}

func addListFlags(cmd *cobra.Command, opts *services.ListOptions, withStatus bool) {
	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 20, "Items per page")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Filter by text")
	if withStatus {
		cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status")
	}
}

func (a *app) contactsListCmd() *cobra.Command {
	var opts services.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			page, err := a.svc.Contacts.List(ctx, opts)
			if err != nil {
				return err
			}
			return a.render(page, func(w io.Writer) {
				row(w, "ID", "EMAIL", "NAME", "STATUS", "TAGS")
				for _, c := range page.Items {
					row(w, c.ID, c.Email, strings.TrimSpace(c.FirstName+" "+c.LastName), c.Status, strings.Join(c.Tags, ","))
				}
				fmt.Fprintf(w, "\npage %d, %d of %d contacts\n", page.Page, len(page.Items), page.Total)
			})
		},
	}
	addListFlags(cmd, &opts, true)
	return cmd
}

func (a *app) renderContact(c services.Contact) error {
	return a.render(c, func(w io.Writer) {
		row(w, "ID:", c.ID)
		row(w, "Email:", c.Email)
		row(w, "Name:", strings.TrimSpace(c.FirstName+" "+c.LastName))
		row(w, "Status:", c.Status)
		row(w, "Tags:", strings.Join(c.Tags, ","))
		row(w, "Created:", formatTime(&c.CreatedAt))
	})
}

func (a *app) contactsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			c, err := a.svc.Contacts.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return a.renderContact(c)
		},
	}
}

func (a *app) contactsCreateCmd() *cobra.Command {
	var (
		email, firstName, lastName string
		tags                       []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			in := services.ContactInput{Email: &email, Tags: tags}
			if firstName != "" {
				in.FirstName = &firstName
			}
			if lastName != "" {
				in.LastName = &lastName
			}
			c, err := a.svc.Contacts.Create(ctx, in)
			if err != nil {
				return err
			}
			return a.renderContact(c)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to attach (repeatable)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) contactsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			if err := a.svc.Contacts.Delete(ctx, args[0]); err != nil {
				return err
			}
			return a.render(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted contact %s\n", args[0])
			})
		},
	}
}
