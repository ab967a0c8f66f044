package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newOrderCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Inspect and move placed orders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Change an order's status as an operator",
		Long:  "Moves a placed order to confirmed, sent, delivered or canceled.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || orderID <= 0 {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			order, err := a.orders().ChangeStatus(cmd.Context(), operator, orderID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %d is now %s\n", order.ID, order.Status)
			return nil
		},
	})

	var shopEmail, status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the orders containing a shop's products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			owner, err := a.findUser(cmd.Context(), shopEmail)
			if err != nil {
				return err
			}
			orders, err := a.orders().ListShopOrders(cmd.Context(), owner.Actor(), status)
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no orders")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tSTATUS\tDATE\tBUYER\tLINES")
			for _, o := range orders {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", o.OrderID, o.Status, o.Date.Format("2006-01-02 15:04"), o.UserEmail, len(o.Products))
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&shopEmail, "shop", "", "Email of the shop account")
	list.Flags().StringVar(&status, "status", "", "Only orders in this status")
	_ = list.MarkFlagRequired("shop")
	cmd.AddCommand(list)

	return cmd
}
