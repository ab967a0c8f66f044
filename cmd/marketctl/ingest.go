package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	catalogapp "github.com/marketplace/backend/internal/application/catalog"
	"github.com/spf13/cobra"
)

func newIngestCmd(opts *rootOptions) *cobra.Command {
	var email, url string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Import a shop's YAML price list on its behalf",
		Long: `Downloads the feed at --url and writes it to the catalog of the shop owned
by --email, exactly as POST /shop/update does for a logged in shop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			owner, err := a.findUser(cmd.Context(), email)
			if err != nil {
				return err
			}
			ingestor, err := a.ingestor()
			if err != nil {
				return err
			}
			summary, err := ingestor.Ingest(cmd.Context(), owner.Actor(), url)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email of the shop account")
	cmd.Flags().StringVar(&url, "url", "", "Feed URL (http or https)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func printSummary(out io.Writer, s *catalogapp.IngestSummary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "shop\t%s (id %d)\n", s.ShopName, s.ShopID)
	fmt.Fprintf(w, "shop created\t%t\n", s.ShopCreated)
	fmt.Fprintf(w, "categories\t%d\n", s.Categories)
	fmt.Fprintf(w, "products created\t%d\n", s.ProductsCreated)
	fmt.Fprintf(w, "products updated\t%d\n", s.ProductsUpdated)
	fmt.Fprintf(w, "parameters\t%d\n", s.Parameters)
	if s.ArchiveKey != "" {
		fmt.Fprintf(w, "archived as\t%s\n", s.ArchiveKey)
	}
	return w.Flush()
}
