package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/leofalp/polyprompt/core/config"
	"github.com/leofalp/polyprompt/core/dispatch"
	"github.com/leofalp/polyprompt/core/overview"
	"github.com/leofalp/polyprompt/core/parse"
	"github.com/leofalp/polyprompt/internal/server"
	"github.com/leofalp/polyprompt/providers/ai"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "polyprompt",
		Short:         "Send one prompt to many LLM providers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (YAML)")
	root.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	root.PersistentFlags().StringVar(&flags.catalogPath, "catalog", "", "provider catalog replacing the built-in one")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format (compact, pretty, json)")

	root.AddCommand(
		newServeCommand(flags),
		newAskCommand(flags),
		newStreamCommand(flags),
		newProvidersCommand(flags),
		newPricingCommand(flags),
		newHistoryCommand(flags),
	)
	return root
}

// withApp builds the app for one command run and closes it afterwards.
func withApp(flags *globalFlags, run func(ctx context.Context, a *app) error) error {
	a, err := newApp(flags)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, a)
}

func newServeCommand(flags *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dispatch over HTTP, SSE and WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				if addr == "" {
					addr = a.file.Server.Addr
				}
				srv, err := server.New(server.Options{
					Addr:        addr,
					Coordinator: a.coordinator,
					Registry:    a.registry,
					Agents:      a.agents,
					Pricing:     a.pricing,
					History:     a.history,
					Observer:    a.observer,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "polyprompt listening on %s\n", addr)
				return srv.Run(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

// agentFlags select agents: stored ids, or one ad-hoc agent per provider.
type agentFlags struct {
	ids       []string
	providers []string
	model     string
	system    string
	params    paramFlags
}

func (f *agentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.ids, "agent", "a", nil, "configured agent ids")
	cmd.Flags().StringSliceVarP(&f.providers, "provider", "p", nil, "ad-hoc agents, one per provider id")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "model for ad-hoc agents")
	cmd.Flags().StringVarP(&f.system, "system", "s", "", "system prompt")
	f.params.register(cmd)
}

func (f *agentFlags) agents(ctx context.Context, a *app) ([]config.AgentConfig, error) {
	var agents []config.AgentConfig
	for _, id := range f.ids {
		agent, err := a.agents.AgentConfig(ctx, id)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	for _, provider := range f.providers {
		agents = append(agents, config.AgentConfig{ID: provider, Provider: provider, Model: f.model})
	}
	if len(agents) == 0 {
		agents = a.agents.Agents()
	}
	if len(agents) == 0 {
		return nil, errors.New("no agents: pass --agent or --provider, or configure agents")
	}
	return agents, nil
}

func (f *agentFlags) request(cmd *cobra.Command, args []string) (ai.Request, error) {
	prompt := strings.Join(args, " ")
	if prompt == "" || prompt == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return ai.Request{}, fmt.Errorf("reading prompt: %w", err)
		}
		prompt = strings.TrimSpace(string(raw))
	}
	if prompt == "" {
		return ai.Request{}, errors.New("empty prompt")
	}
	req := ai.NewRequest(prompt)
	req.System = f.system
	req.Params = f.params.params(cmd)
	return req, nil
}

func newAskCommand(flags *globalFlags) *cobra.Command {
	var selection agentFlags
	var output string
	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Dispatch a prompt to several agents and compare the answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				req, err := selection.request(cmd, args)
				if err != nil {
					return err
				}
				agents, err := selection.agents(ctx, a)
				if err != nil {
					return err
				}

				handle := a.coordinator.Dispatch(ctx, agents, req, nil)
				targets := handle.Wait()
				summary := overview.FromTargets(handle.ID, targets)

				out := cmd.OutOrStdout()
				switch output {
				case "json":
					encoder := json.NewEncoder(out)
					encoder.SetIndent("", "  ")
					return encoder.Encode(map[string]any{"dispatch_id": handle.ID, "targets": targets, "overview": summary})
				case "table":
					fmt.Fprintln(out, targetsTable(targets))
				default:
					writeAnswers(out, targets, req.Params.JSONMode != nil && *req.Params.JSONMode)
					fmt.Fprintln(out, targetsTable(targets))
				}
				fmt.Fprintln(cmd.ErrOrStderr(), overviewLine(summary))
				return nil
			})
		},
	}
	selection.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, table, json)")
	return cmd
}

func writeAnswers(out io.Writer, targets []dispatch.Target, jsonMode bool) {
	for _, target := range targets {
		fmt.Fprintf(out, "== %s (%s/%s) ==\n", target.AgentName, target.Provider, target.Model)
		if target.Error != nil {
			fmt.Fprintf(out, "error: %v\n\n", target.Error)
			continue
		}
		if jsonMode {
			if decoded, err := parse.ResultAs[any](target.Result); err == nil {
				pretty, _ := json.MarshalIndent(decoded, "", "  ")
				fmt.Fprintf(out, "%s\n\n", pretty)
				continue
			}
		}
		fmt.Fprintf(out, "%s\n", target.Result.Text)
		if len(target.Citations) > 0 {
			fmt.Fprintln(out, "sources:")
			for _, citation := range target.Citations {
				fmt.Fprintf(out, "  - %s\n", citation)
			}
		}
		fmt.Fprintln(out)
	}
}

func newStreamCommand(flags *globalFlags) *cobra.Command {
	var selection agentFlags
	var showReasoning bool
	cmd := &cobra.Command{
		Use:   "stream [prompt]",
		Short: "Stream one agent's answer as it is generated",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				req, err := selection.request(cmd, args)
				if err != nil {
					return err
				}
				agents, err := selection.agents(ctx, a)
				if err != nil {
					return err
				}
				if len(agents) != 1 {
					return fmt.Errorf("stream needs exactly one agent, got %d", len(agents))
				}

				out := cmd.OutOrStdout()
				dim, reset := "", ""
				if file, ok := out.(*os.File); ok && isatty.IsTerminal(file.Fd()) {
					dim, reset = "\033[2m", "\033[0m"
				}
				target := a.coordinator.StreamTarget(ctx, agents[0], req, func(delta ai.StreamDelta) {
					switch {
					case delta.Terminal:
					case delta.Reasoning:
						if showReasoning {
							fmt.Fprint(out, dim+delta.Text+reset)
						}
					default:
						fmt.Fprint(out, delta.Text)
					}
				})
				fmt.Fprintln(out)
				if target.Error != nil {
					return target.Error
				}
				fmt.Fprintln(cmd.ErrOrStderr(), targetsTable([]dispatch.Target{target}))
				return nil
			})
		},
	}
	selection.register(cmd)
	cmd.Flags().BoolVar(&showReasoning, "reasoning", false, "also print reasoning output")
	return cmd
}
