// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic
// and can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/imamik/azbind/internal/config"
	"github.com/imamik/azbind/internal/platform/azure"
	"github.com/imamik/azbind/internal/provisioning"
	"github.com/imamik/azbind/internal/provisioning/federation"
	"github.com/imamik/azbind/internal/provisioning/identity"
	"github.com/imamik/azbind/internal/provisioning/roles"
	"github.com/imamik/azbind/internal/provisioning/verify"
	"github.com/imamik/azbind/internal/report"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newControlPlane creates the Azure control-plane client.
	newControlPlane = func(subscriptionID string) (azure.ControlPlane, error) {
		return azure.NewRealClient(subscriptionID)
	}

	// loadConfigFile loads config from file (for testing injection).
	loadConfigFile = config.LoadFile

	// stdout is the report destination (for testing injection).
	stdout io.Writer = os.Stdout

	// githubOutput resolves the GITHUB_OUTPUT file path; empty when not
	// running inside a workflow.
	githubOutput = func() string { return os.Getenv("GITHUB_OUTPUT") }

	// openAppend opens the workflow output file for appending.
	openAppend = func(path string) (io.WriteCloser, error) {
		return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	}
)

// Setup reconciles federated access for the configured repository end to
// end: principal resolution, trust bindings, role assignments with target
// fallback, verification, report. Returns an error when the run ends
// DEGRADED so the process exits non-zero and CI surfaces it.
func Setup(ctx context.Context, configPath string) error {
	return run(ctx, configPath, []provisioning.Phase{
		identity.NewResolver(),
		federation.NewReconciler(),
		roles.NewReconciler(),
		verify.NewProbe(),
	})
}

func run(ctx context.Context, configPath string, phases []provisioning.Phase) error {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cloud, err := newControlPlane(cfg.SubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to create control-plane client: %w", err)
	}

	pctx := provisioning.NewContext(ctx, cfg, cloud)

	final, err := pctx.Run(phases)
	if err != nil {
		return err
	}

	summary := report.Build(cfg, pctx.State, pctx.Results, final)
	if err := summary.Render(stdout); err != nil {
		return err
	}
	if err := writeWorkflowOutput(summary); err != nil {
		return err
	}

	if final == provisioning.StateDegraded {
		return fmt.Errorf("run finished %s; see report above", final)
	}
	return nil
}

// writeWorkflowOutput appends the principal identifiers to GITHUB_OUTPUT
// when running inside a workflow, so downstream steps can consume them.
func writeWorkflowOutput(summary report.Summary) error {
	path := githubOutput()
	if path == "" {
		return nil
	}
	f, err := openAppend(path)
	if err != nil {
		return fmt.Errorf("failed to open workflow output file: %w", err)
	}
	defer f.Close()
	return summary.WriteGitHubOutput(f)
}
