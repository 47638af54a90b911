package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yungbote/competence-ledger/internal/app"
	"github.com/yungbote/competence-ledger/internal/ledger"
	"github.com/yungbote/competence-ledger/internal/persistence"
)

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [code]",
		Short: "List every competency, or the details of one",
		Long: `Without an argument, lists every competency in taxonomy order with its
current level. With a code (AC11.01) or SVG id (AC1101), prints that
competency and the date each level was reached.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLedger(cmd.Context(), func(stack *app.LedgerStack) error {
				svc := stack.Services.Ledger
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					t := newTable("Competencies", "Code", "Level", "Competency")
					for _, n := range svc.Nodes(cmd.Context()) {
						t.add(n.Code, levelBadge(n.Level), n.Label)
					}
					t.render(out)
					return nil
				}
				n, err := svc.Node(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, titleStyle.Render(n.Code+"  "+n.Label))
				if n.GroupLabel != "" {
					fmt.Fprintln(out, mutedStyle.Render(n.GroupLabel))
				}
				fmt.Fprintf(out, "Level: %s\n", levelBadge(n.Level))
				if len(n.History) == 0 {
					fmt.Fprintln(out, mutedStyle.Render("No level reached yet."))
					return nil
				}
				t := newTable("", "Level", "Reached")
				for _, lvl := range n.History.Levels() {
					t.add(levelBadge(lvl), n.History[lvl])
				}
				t.render(out)
				return nil
			})
		},
	}
}

// stepCmd builds increase and decrease, which differ only in the service call.
func (c *cli) stepCmd(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <code>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLedger(cmd.Context(), func(stack *app.LedgerStack) error {
				svc := stack.Services.Ledger
				step := svc.Increase
				if use == "decrease" {
					step = svc.Decrease
				}
				n, ch, err := step(cmd.Context(), args[0])
				out := cmd.OutOrStdout()
				switch {
				case err == nil:
					fmt.Fprintf(out, "%s: %s -> %s\n", n.Code, levelBadge(ch.Previous), levelBadge(ch.Level))
					return nil
				case errors.Is(err, persistence.ErrStorageWrite):
					fmt.Fprintf(out, "%s: %s -> %s\n", n.Code, levelBadge(ch.Previous), levelBadge(ch.Level))
					fmt.Fprintln(out, warnStyle.Render("warning: the change was applied but could not be saved"))
					return err
				case errors.Is(err, ledger.ErrAtMaxLevel), errors.Is(err, ledger.ErrAtMinLevel):
					fmt.Fprintf(out, "%s: already at %s\n", n.Code, levelBadge(n.Level))
					return err
				default:
					return err
				}
			})
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	var sortBy string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List every level reached, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLedger(cmd.Context(), func(stack *app.LedgerStack) error {
				mode := ledger.ParseTimelineSort(sortBy)
				events := stack.Services.Ledger.Timeline(cmd.Context(), mode)
				out := cmd.OutOrStdout()
				if len(events) == 0 {
					fmt.Fprintln(out, mutedStyle.Render("No history yet."))
					return nil
				}
				t := newTable("History (by "+string(mode)+")", "Reached", "Code", "Level", "Competency")
				for _, ev := range events {
					t.add(ev.Raw, ev.Code, levelBadge(ev.Level), ev.Label)
				}
				t.render(out)
				fmt.Fprintln(out, mutedStyle.Render(strconv.Itoa(len(events))+" entries"))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", string(ledger.SortByDate), "sort order: date or code")
	return cmd
}
