package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// managementScope is the ARM token audience used by the handshake.
const managementScope = "https://management.azure.com/.default"

// Handshake acquires a management-plane token through the configured
// credential chain. A successful exchange proves the caller can
// authenticate against the same control plane the CI pipeline will use.
func (c *RealClient) Handshake(ctx context.Context) error {
	_, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{managementScope},
	})
	if err != nil {
		return fmt.Errorf("token handshake failed: %w", err)
	}
	return nil
}

// GetWorkspace reads the target workspace and returns its provisioning
// state. Used by the verification probe as the synthetic read against the
// real target.
func (c *RealClient) GetWorkspace(ctx context.Context, resourceGroup, name string) (string, error) {
	resp, err := c.workspaces.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return "", fmt.Errorf("failed to read workspace %q: %w", name, err)
	}
	if resp.Properties == nil || resp.Properties.ProvisioningState == nil {
		return "", nil
	}
	return string(*resp.Properties.ProvisioningState), nil
}
