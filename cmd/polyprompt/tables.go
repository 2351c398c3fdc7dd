package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/leofalp/polyprompt/core/dispatch"
	"github.com/leofalp/polyprompt/core/overview"
)

func targetsTable(targets []dispatch.Target) string {
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("AGENT", "PROVIDER", "MODEL", "STATUS", "HTTP", "TOKENS", "COST", "TIME")
	for _, target := range targets {
		status := string(target.Status)
		if target.Error != nil {
			status += " (" + string(target.Error.Kind) + ")"
		}
		tokens := fmt.Sprintf("%d/%d", target.Usage.InputTokens, target.Usage.OutputTokens)
		if target.Usage.Estimated {
			tokens = "~" + tokens
		}
		table.AddRow(target.AgentName, target.Provider, target.Model, status,
			target.HTTPStatus, tokens, formatCost(target.Cost), target.Duration().Round(time.Millisecond))
	}
	return table.String()
}

func overviewLine(o *overview.Overview) string {
	line := fmt.Sprintf("%d/%d succeeded, %d in / %d out tokens, $%.6f in %s",
		o.Succeeded, o.Targets, o.TotalUsage.InputTokens, o.TotalUsage.OutputTokens,
		o.TotalCost, o.Duration().Round(time.Millisecond))
	if o.Unpriced > 0 {
		line += fmt.Sprintf(" (%d unpriced)", o.Unpriced)
	}
	if fastest, ok := o.Fastest(); ok {
		line += ", fastest: " + fastest.AgentName
	}
	return line
}

func formatCost(cost *float64) string {
	if cost == nil {
		return "-"
	}
	return fmt.Sprintf("$%.6f", *cost)
}

func newProvidersCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List cataloged providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				table := uitable.New()
				table.MaxColWidth = 70
				table.Wrap = true
				table.AddRow("ID", "SHAPE", "STREAM", "DEFAULT MODEL", "ENDPOINTS", "PARAMETERS")
				for _, d := range a.registry.List() {
					var endpoints []string
					for _, endpoint := range d.Endpoints {
						endpoints = append(endpoints, endpoint.Purpose)
					}
					var params []string
					for _, key := range d.SupportedKeys() {
						params = append(params, string(key))
					}
					table.AddRow(d.ID, d.Shape, d.Streaming, d.DefaultModel,
						strings.Join(endpoints, ","), strings.Join(params, ", "))
				}
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newPricingCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pricing [model]",
		Short: "Show known model prices per million tokens",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				if len(args) == 1 {
					price := a.pricing.PriceFor(args[0])
					if price == nil {
						return fmt.Errorf("no price known for %q", args[0])
					}
					fmt.Fprintf(out, "%s: %s\n", args[0], price)
					return nil
				}
				table := uitable.New()
				table.AddRow("MODEL", "INPUT $/M", "OUTPUT $/M", "SOURCE")
				for _, priced := range a.pricing.Known() {
					source := "builtin"
					if priced.Override {
						source = "config"
					}
					table.AddRow(priced.Model,
						fmt.Sprintf("%.4f", priced.Price.InputCostPerMillion),
						fmt.Sprintf("%.4f", priced.Price.OutputCostPerMillion),
						source)
				}
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}
}

func newHistoryCommand(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [dispatch-id]",
		Short: "List recorded dispatches, or the targets of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				if a.history == nil {
					return fmt.Errorf("history is disabled: set database.path in the config")
				}
				out := cmd.OutOrStdout()
				if len(args) == 1 {
					targets, err := a.history.Dispatch(ctx, args[0])
					if err != nil {
						return err
					}
					fmt.Fprintln(out, targetsTable(targets))
					return nil
				}
				summaries, err := a.history.Dispatches(ctx, limit)
				if err != nil {
					return err
				}
				table := uitable.New()
				table.AddRow("DISPATCH", "STARTED", "TARGETS", "OK", "FAILED", "COST")
				for _, s := range summaries {
					table.AddRow(s.DispatchID, s.StartedAt.Local().Format("2006-01-02 15:04:05"),
						s.Targets, s.Succeeded, s.Failed, fmt.Sprintf("$%.6f", s.Cost))
				}
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of dispatches to list")
	return cmd
}
