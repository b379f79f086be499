// Command octopus loads a pipeline configuration document, builds its graph,
// and runs the graph's scheduler until interrupted.
//
// Usage:
//
//	octopus -config pipeline.yaml
//
// Log output format and level follow OCTOPUS_LOG_FORMAT / OCTOPUS_LOG_LEVEL
// (or the generic LOG_FORMAT / LOG_LEVEL), see providers/observability/slogobs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/senoroctopus/octopus/config"
	"github.com/senoroctopus/octopus/graph"
	"github.com/senoroctopus/octopus/internal/builtin"
	"github.com/senoroctopus/octopus/internal/utils"
	"github.com/senoroctopus/octopus/plugin"
	"github.com/senoroctopus/octopus/providers/observability"
	"github.com/senoroctopus/octopus/providers/observability/slogobs"
	"github.com/senoroctopus/octopus/scheduler"
)

func main() {
	configPath := flag.String("config", "", "path to the pipeline YAML document")
	flag.Parse()

	if *configPath == "" {
		log.Fatal("octopus: -config is required")
	}

	if err := run(*configPath); err != nil {
		log.Fatalf("octopus: %v", err)
	}
}

func run(configPath string) error {
	observer := slogobs.New()

	sections, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	registry := plugin.NewRegistry()
	if err := builtin.Register(registry); err != nil {
		return fmt.Errorf("registering built-in plugins: %w", err)
	}

	dag, err := graph.Build(sections, registry)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = observability.ContextWithObserver(ctx, observer)

	sched := scheduler.New(dag, graph.NewRealClock())

	runTime := utils.NewTimer()
	observer.Info(ctx, "starting pipeline", observability.String("config", configPath))
	runErr := sched.Run(ctx)
	runTime.Stop()

	observer.Info(ctx, "pipeline stopped",
		observability.String("duration", runTime.GetDuration().String()))
	if runErr != nil {
		return fmt.Errorf("running scheduler: %w", runErr)
	}
	return nil
}
