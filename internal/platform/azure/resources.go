package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/machinelearning/armmachinelearning/v4"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
)

// ResourceGroupExists checks whether the resource group is present.
func (c *RealClient) ResourceGroupExists(ctx context.Context, name string) (bool, error) {
	resp, err := c.resourceGroups.CheckExistence(ctx, name, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check resource group %q: %w", name, err)
	}
	return resp.Success, nil
}

// EnsureResourceGroup creates the resource group if it does not exist.
func (c *RealClient) EnsureResourceGroup(ctx context.Context, name, location string, tags map[string]string) (Outcome, error) {
	exists, err := c.ResourceGroupExists(ctx, name)
	if err != nil {
		return Classify(err), err
	}
	if exists {
		return OutcomeAlreadyExists, nil
	}

	group := armresources.ResourceGroup{
		Location: to.Ptr(location),
	}
	if len(tags) > 0 {
		group.Tags = make(map[string]*string, len(tags))
		for k, v := range tags {
			group.Tags[k] = to.Ptr(v)
		}
	}

	if _, err := c.resourceGroups.CreateOrUpdate(ctx, name, group, nil); err != nil {
		return Classify(err), fmt.Errorf("failed to create resource group %q: %w", name, err)
	}
	return OutcomeCreated, nil
}

// WorkspaceExists checks whether the ML workspace is present.
func (c *RealClient) WorkspaceExists(ctx context.Context, resourceGroup, name string) (bool, error) {
	_, err := c.workspaces.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check workspace %q: %w", name, err)
	}
	return true, nil
}

// EnsureWorkspace creates the ML workspace if it does not exist. Workspace
// creation is a long-running operation; the poll is bounded by the
// ResourceCreate timeout.
func (c *RealClient) EnsureWorkspace(ctx context.Context, spec WorkspaceSpec) (Outcome, error) {
	exists, err := c.WorkspaceExists(ctx, spec.ResourceGroup, spec.Name)
	if err != nil {
		return Classify(err), err
	}
	if exists {
		return OutcomeAlreadyExists, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ResourceCreate)
	defer cancel()

	workspace := armmachinelearning.Workspace{
		Location: to.Ptr(spec.Location),
		Identity: &armmachinelearning.ManagedServiceIdentity{
			Type: to.Ptr(armmachinelearning.ManagedServiceIdentityTypeSystemAssigned),
		},
		Properties: &armmachinelearning.WorkspaceProperties{
			FriendlyName: to.Ptr(spec.FriendlyName),
		},
	}
	if spec.StorageAccountID != "" {
		workspace.Properties.StorageAccount = to.Ptr(spec.StorageAccountID)
	}
	if spec.KeyVaultID != "" {
		workspace.Properties.KeyVault = to.Ptr(spec.KeyVaultID)
	}
	if spec.ApplicationInsightsID != "" {
		workspace.Properties.ApplicationInsights = to.Ptr(spec.ApplicationInsightsID)
	}
	if len(spec.Tags) > 0 {
		workspace.Tags = make(map[string]*string, len(spec.Tags))
		for k, v := range spec.Tags {
			workspace.Tags[k] = to.Ptr(v)
		}
	}

	poller, err := c.workspaces.BeginCreateOrUpdate(ctx, spec.ResourceGroup, spec.Name, workspace, nil)
	if err != nil {
		return Classify(err), fmt.Errorf("failed to start workspace create %q: %w", spec.Name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return Classify(err), fmt.Errorf("workspace create %q did not complete: %w", spec.Name, err)
	}
	return OutcomeCreated, nil
}
