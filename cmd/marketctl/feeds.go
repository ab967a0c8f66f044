package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marketplace/backend/internal/infrastructure/persistence"
	"github.com/marketplace/backend/internal/infrastructure/scheduler"
)

func newFeedsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Browse raw feeds archived in object storage",
	}

	var ownerEmail string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the archived feeds of a shop owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			archive, err := a.archive()
			if err != nil {
				return err
			}
			owner, err := a.findUser(cmd.Context(), ownerEmail)
			if err != nil {
				return err
			}
			feeds, err := archive.List(cmd.Context(), owner.ID)
			if err != nil {
				return err
			}
			if len(feeds) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no archived feeds")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tSIZE\tMODIFIED")
			for _, f := range feeds {
				fmt.Fprintf(w, "%s\t%d\t%s\n", f.Key, f.Size, f.LastModified.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&ownerEmail, "owner", "", "Email of the shop account")
	_ = list.MarkFlagRequired("owner")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "url <key>",
		Short: "Print a presigned download URL for an archived feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			archive, err := a.archive()
			if err != nil {
				return err
			}
			url, expires, err := archive.DownloadURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Re-ingest the stored feed of every open shop now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ingestor, err := a.ingestor()
			if err != nil {
				return err
			}
			shops, err := persistence.NewGormShopRepository(a.db.DB).FindRefreshable(cmd.Context())
			if err != nil {
				return err
			}
			if len(shops) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no shops with a stored feed")
				return nil
			}

			executor := scheduler.NewFeedRefreshExecutor(ingestor, a.log)
			failed := 0
			for _, shop := range shops {
				job := scheduler.NewJob(shop.ID, shop.OwnerID, shop.URL, 0)
				if err := executor.Execute(cmd.Context(), job); err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", shop.Name, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: refreshed\n", shop.Name)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d feeds failed", failed, len(shops))
			}
			return nil
		},
	})

	return cmd
}
