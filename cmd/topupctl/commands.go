package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
	"github.com/imrishuroy/topup-storefront/internal/app"
	"github.com/imrishuroy/topup-storefront/internal/config"
	"github.com/imrishuroy/topup-storefront/internal/logging"
	"github.com/imrishuroy/topup-storefront/internal/orders"
	"github.com/imrishuroy/topup-storefront/internal/sales"
)

// orderStore is the part of the order repository the CLI drives.
type orderStore interface {
	Get(ctx context.Context, id string) (orders.Order, error)
	ListAll(ctx context.Context) ([]orders.Order, error)
	UpdateStatus(ctx context.Context, id string, p orders.StatusPatch) (orders.Order, error)
	DeleteAll(ctx context.Context) (int, error)
}

type cli struct {
	open func(ctx context.Context) (orderStore, func(), error)
	now  func() time.Time
}

// defaultCLI wires the repository from the same environment as the API.
func defaultCLI() *cli {
	return &cli{
		open: func(ctx context.Context) (orderStore, func(), error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, nil, err
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return nil, nil, err
			}
			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return nil, nil, err
			}
			return a.Orders, func() {
				a.Close()
				_ = logger.Sync()
			}, nil
		},
		now: time.Now,
	}
}

// withStore opens the store for a single command run.
func (c *cli) withStore(cmd *cobra.Command, fn func(ctx context.Context, s orderStore) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, closeFn, err := c.open(ctx)
	if err != nil {
		return fmt.Errorf("open order store: %w", err)
	}
	defer closeFn()
	return fn(ctx, s)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "topupctl",
		Short:        "Inspect and manage storefront orders",
		SilenceUsage: true,
	}
	root.AddCommand(newOrdersCmd(c), newSalesCmd(c))
	return root
}

func newOrdersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List, inspect and update orders",
	}

	var statusFilter string
	list := &cobra.Command{
		Use:   "list",
		Short: "List orders newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if statusFilter != "" && !orders.Status(statusFilter).Valid() {
				return apperr.Validation("status", "unknown status %q", statusFilter)
			}
			return c.withStore(cmd, func(ctx context.Context, s orderStore) error {
				list, err := s.ListAll(ctx)
				if err != nil {
					return err
				}
				orders.SortNewestFirst(list)
				return printOrders(cmd.OutOrStdout(), list, orders.Status(statusFilter))
			})
		},
	}
	list.Flags().StringVar(&statusFilter, "status", "", "only show orders with this status")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Print one order as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, s orderStore) error {
				o, err := s.Get(ctx, args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(o)
			})
		},
	}

	var note string
	setStatus := &cobra.Command{
		Use:   "set-status <id> <pending|approved|rejected>",
		Short: "Change an order's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := orders.StatusPatch{Status: orders.Status(args[1])}
			if cmd.Flags().Changed("note") {
				patch.Note = &note
			}
			return c.withStore(cmd, func(ctx context.Context, s orderStore) error {
				o, err := s.UpdateStatus(ctx, args[0], patch)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", o.ID, statusColor(o.Status))
				return nil
			})
		},
	}
	setStatus.Flags().StringVar(&note, "note", "", "operator note stored on the order")

	var yes bool
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete every order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all orders without --yes")
			}
			return c.withStore(cmd, func(ctx context.Context, s orderStore) error {
				n, err := s.DeleteAll(ctx)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "deleted %d orders before failing\n", n)
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d orders\n", n)
				return nil
			})
		},
	}
	purge.Flags().BoolVar(&yes, "yes", false, "confirm deletion")

	cmd.AddCommand(list, get, setStatus, purge)
	return cmd
}

func newSalesCmd(c *cli) *cobra.Command {
	var month, today string
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Show approved sales for a day and a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := c.now()
			curDay, curMonth := sales.Today(now)
			if today == "" {
				today = curDay
			}
			if month == "" {
				month = curMonth
			}
			if !sales.ValidDate(today) {
				return apperr.Validation("today", "expected YYYY-MM-DD, got %q", today)
			}
			if !sales.ValidMonth(month) {
				return apperr.Validation("month", "expected YYYY-MM, got %q", month)
			}
			return c.withStore(cmd, func(ctx context.Context, s orderStore) error {
				list, err := s.ListAll(ctx)
				if err != nil {
					return err
				}
				r := sales.Compute(list, today, month, now)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Daily (%s):   ₱%s\n", today, humanize.Commaf(r.DailyTotal))
				fmt.Fprintf(out, "Monthly (%s): ₱%s\n", month, humanize.Commaf(r.MonthlyTotal))
				for _, b := range r.Trend {
					fmt.Fprintf(out, "  %s  ₱%s\n", b.Date, humanize.Commaf(b.Amount))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to total (YYYY-MM), defaults to the current month")
	cmd.Flags().StringVar(&today, "today", "", "day to total (YYYY-MM-DD), defaults to today in UTC")
	return cmd
}

func printOrders(out io.Writer, list []orders.Order, only orders.Status) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTOTAL\tCUSTOMER\tITEMS\tTIMESTAMP")
	for _, o := range list {
		if only != "" && o.Status != only {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t₱%s\t%s\t%d\t%s\n",
			o.ID, statusColor(o.Status), humanize.Commaf(o.TotalAmount), o.CustomerPaymentName, len(o.Items), o.Timestamp)
	}
	return tw.Flush()
}

func statusColor(s orders.Status) string {
	switch s {
	case orders.StatusApproved:
		return color.GreenString(string(s))
	case orders.StatusRejected:
		return color.RedString(string(s))
	default:
		return color.YellowString(string(s))
	}
}
