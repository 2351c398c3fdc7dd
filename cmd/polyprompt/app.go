package main

import (
	"context"
	"fmt"
	"os"

	"github.com/leofalp/polyprompt/core/config"
	"github.com/leofalp/polyprompt/core/cost"
	"github.com/leofalp/polyprompt/core/dispatch"
	"github.com/leofalp/polyprompt/core/store"
	"github.com/leofalp/polyprompt/core/tokens"
	"github.com/leofalp/polyprompt/providers/observability"
	"github.com/leofalp/polyprompt/providers/observability/slogobs"
	"github.com/leofalp/polyprompt/providers/registry"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath  string
	envFiles    []string
	catalogPath string
	logLevel    string
	logFormat   string
}

// app is the wired dispatch stack built from flags and the config file.
type app struct {
	file        *config.File
	registry    *registry.Registry
	agents      *config.MemoryStore
	resolver    *config.Resolver
	pricing     *cost.Engine
	observer    *slogobs.Observer
	history     *store.Store
	coordinator *dispatch.Coordinator
}

func newApp(flags *globalFlags) (*app, error) {
	if err := config.LoadDotEnv(flags.envFiles...); err != nil {
		return nil, err
	}
	file, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	observerOpts := []slogobs.Option{}
	if flags.logFormat != "" {
		observerOpts = append(observerOpts, slogobs.WithFormat(slogobs.ParseFormat(flags.logFormat)))
	}
	if flags.logLevel != "" {
		level, err := slogobs.ParseLevel(flags.logLevel)
		if err != nil {
			return nil, err
		}
		observerOpts = append(observerOpts, slogobs.WithLevel(level))
	}
	observer := slogobs.New(observerOpts...)

	reg := registry.Default()
	if flags.catalogPath != "" {
		catalog, err := os.Open(flags.catalogPath)
		if err != nil {
			return nil, fmt.Errorf("opening catalog: %w", err)
		}
		defer catalog.Close()
		if reg, err = registry.Load(catalog); err != nil {
			return nil, fmt.Errorf("loading catalog %s: %w", flags.catalogPath, err)
		}
	}

	overrides := make(map[string]cost.ModelCost, len(file.Pricing))
	for model, price := range file.Pricing {
		overrides[model] = cost.ModelCost{InputCostPerMillion: price.Input, OutputCostPerMillion: price.Output}
	}
	pricing := cost.NewEngine(cost.WithOverrides(overrides))

	agents := file.Store()
	resolver := config.NewResolver(reg, agents)

	opts := []dispatch.Option{
		dispatch.WithClients(dispatch.NewClientCache(file.HTTP.Timeout)),
		dispatch.WithRetryDelay(file.Dispatch.RetryDelay),
		dispatch.WithPricer(pricing),
		dispatch.WithObserver(observer),
	}
	if file.Dispatch.EstimateTokens {
		opts = append(opts, dispatch.WithEstimator(tokens.New(tokens.DefaultEncoding)))
	}

	a := &app{
		file:     file,
		registry: reg,
		agents:   agents,
		resolver: resolver,
		pricing:  pricing,
		observer: observer,
	}
	if file.Database.Path != "" {
		history, err := store.New(file.Database.Path)
		if err != nil {
			return nil, err
		}
		a.history = history
		opts = append(opts, dispatch.WithSink(history))
		observer.Debug(context.Background(), "history enabled", observability.String("path", file.Database.Path))
	}
	a.coordinator = dispatch.New(resolver, opts...)
	return a, nil
}

func (a *app) Close() error {
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}
