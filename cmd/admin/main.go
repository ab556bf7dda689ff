// Command admin manages groups and administrator rights from the shell.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/repository"
	"yatube/internal/service"

	"github.com/spf13/cobra"
)

type services struct {
	groups   *service.GroupService
	accounts *service.AccountService
}

func connect() (*services, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &services{
		groups:   service.NewGroupService(repository.NewGroupRepository(db)),
		accounts: service.NewAccountService(repository.NewUserRepository(db), 0),
	}, nil
}

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "Administer yatube groups and users",
		SilenceUsage: true,
	}
	root.AddCommand(groupCmd(), userCmd())
	return root
}

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "group", Short: "Manage groups"}

	var title, slug, description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a group",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := connect()
			if err != nil {
				return err
			}
			group, err := svc.groups.CreateGroup(cmd.Context(), service.GroupInput{Title: title, Slug: slug, Description: description})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created group %q (id %d)\n", group.Slug, group.ID)
			return nil
		},
	}
	create.Flags().StringVar(&title, "title", "", "Group title")
	create.Flags().StringVar(&slug, "slug", "", "URL slug")
	create.Flags().StringVar(&description, "description", "", "Description")
	_ = create.MarkFlagRequired("title")
	_ = create.MarkFlagRequired("slug")

	list := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := connect()
			if err != nil {
				return err
			}
			groups, err := svc.groups.ListGroups(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSLUG\tTITLE")
			for _, g := range groups {
				fmt.Fprintf(w, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
			}
			return w.Flush()
		},
	}

	var newTitle, newSlug, newDescription string
	update := &cobra.Command{
		Use:   "update <slug>",
		Short: "Replace a group's title, slug and description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := connect()
			if err != nil {
				return err
			}
			current, err := svc.groups.GetGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			in := service.GroupInput{Title: current.Title, Slug: current.Slug, Description: current.Description}
			if cmd.Flags().Changed("title") {
				in.Title = newTitle
			}
			if cmd.Flags().Changed("slug") {
				in.Slug = newSlug
			}
			if cmd.Flags().Changed("description") {
				in.Description = newDescription
			}
			group, err := svc.groups.UpdateGroup(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated group %q\n", group.Slug)
			return nil
		},
	}
	update.Flags().StringVar(&newTitle, "title", "", "New title")
	update.Flags().StringVar(&newSlug, "slug", "", "New slug")
	update.Flags().StringVar(&newDescription, "description", "", "New description")

	remove := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a group and every post in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := connect()
			if err != nil {
				return err
			}
			if err := svc.groups.DeleteGroup(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted group %q\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(create, list, update, remove)
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage administrator rights"}
	setAdmin := func(use, short string, admin bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <username>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := connect()
				if err != nil {
					return err
				}
				if err := svc.accounts.SetAdmin(cmd.Context(), args[0], admin); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: is_admin=%t\n", args[0], admin)
				return nil
			},
		}
	}
	cmd.AddCommand(
		setAdmin("promote", "Grant administrator rights", true),
		setAdmin("demote", "Revoke administrator rights", false),
	)
	return cmd
}
