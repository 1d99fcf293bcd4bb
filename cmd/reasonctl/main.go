// Command reasonctl demonstrates wiring the reasoning pipeline end to
// end: three backends registered, an orchestrator built around them, and
// one Reason call run against a prompt given on the command line.
//
// This is a demonstration entry point, not a production server — the
// HTTP façade and persistence layer are out of scope for this module.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nimbus-ai/reasoncore/audit"
	"github.com/nimbus-ai/reasoncore/backend"
	"github.com/nimbus-ai/reasoncore/backend/providers"
	"github.com/nimbus-ai/reasoncore/core"
	"github.com/nimbus-ai/reasoncore/memory"
	"github.com/nimbus-ai/reasoncore/orchestrator"
	"github.com/nimbus-ai/reasoncore/registry"
)

func main() {
	prompt := strings.Join(os.Args[1:], " ")
	if prompt == "" {
		prompt = "Explain how a circuit breaker protects a downstream dependency."
	}

	cfg, err := core.NewConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	logger := core.NewProductionLogger("reasonctl")

	reg := registry.New(audit.NewInMemorySink(), logger)
	for _, name := range []string{"openai", "anthropic", "grok"} {
		client := backend.New(name, &providers.Mock{Name: name}, backend.WithLogger(logger))
		reg.Register(name, client)
	}

	mem := memory.NewInMemoryStore(1000)

	orch := orchestrator.New(reg, mem, cfg, logger, core.NoOpMetrics{}, "anthropic")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := orch.Reason(ctx, "cli-user", prompt, "explanation")
	if err != nil {
		fmt.Fprintln(os.Stderr, "reason error:", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal error:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
