package azure

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/machinelearning/armmachinelearning/v4"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/msi/armmsi"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/imamik/azbind/internal/config"
)

// RealClient implements ControlPlane using the Azure SDK resource
// management clients.
type RealClient struct {
	cred           azcore.TokenCredential
	subscriptionID string
	timeouts       *config.Timeouts

	identities      *armmsi.UserAssignedIdentitiesClient
	federated       *armmsi.FederatedIdentityCredentialsClient
	roleAssignments *armauthorization.RoleAssignmentsClient
	roleDefinitions *armauthorization.RoleDefinitionsClient
	resourceGroups  *armresources.ResourceGroupsClient
	workspaces      *armmachinelearning.WorkspacesClient

	clientOptions *arm.ClientOptions
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithCredential sets the token credential. Defaults to
// DefaultAzureCredential, which picks up the environment, workload
// identity, managed identity, or developer CLI chains.
func WithCredential(cred azcore.TokenCredential) ClientOption {
	return func(c *RealClient) {
		c.cred = cred
	}
}

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithClientOptions sets ARM client options (useful for fakes and
// sovereign-cloud endpoints).
func WithClientOptions(opts *arm.ClientOptions) ClientOption {
	return func(c *RealClient) {
		c.clientOptions = opts
	}
}

// NewRealClient creates a RealClient bound to one subscription.
func NewRealClient(subscriptionID string, opts ...ClientOption) (*RealClient, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("subscription ID is required")
	}

	c := &RealClient{
		subscriptionID: subscriptionID,
		timeouts:       config.LoadTimeouts(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.cred == nil {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build credential chain: %w", err)
		}
		c.cred = cred
	}

	var err error
	if c.identities, err = armmsi.NewUserAssignedIdentitiesClient(subscriptionID, c.cred, c.clientOptions); err != nil {
		return nil, fmt.Errorf("failed to create identities client: %w", err)
	}
	if c.federated, err = armmsi.NewFederatedIdentityCredentialsClient(subscriptionID, c.cred, c.clientOptions); err != nil {
		return nil, fmt.Errorf("failed to create federated credentials client: %w", err)
	}
	if c.roleAssignments, err = armauthorization.NewRoleAssignmentsClient(subscriptionID, c.cred, c.clientOptions); err != nil {
		return nil, fmt.Errorf("failed to create role assignments client: %w", err)
	}
	if c.roleDefinitions, err = armauthorization.NewRoleDefinitionsClient(c.cred, c.clientOptions); err != nil {
		return nil, fmt.Errorf("failed to create role definitions client: %w", err)
	}
	if c.resourceGroups, err = armresources.NewResourceGroupsClient(subscriptionID, c.cred, c.clientOptions); err != nil {
		return nil, fmt.Errorf("failed to create resource groups client: %w", err)
	}
	if c.workspaces, err = armmachinelearning.NewWorkspacesClient(subscriptionID, c.cred, c.clientOptions); err != nil {
		return nil, fmt.Errorf("failed to create workspaces client: %w", err)
	}

	return c, nil
}

// SubscriptionID returns the subscription this client is bound to.
func (c *RealClient) SubscriptionID() string {
	return c.subscriptionID
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
