package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/msi/armmsi"
)

// ListTrustBindings returns the federated identity credentials configured
// on the principal. Reconcilers re-derive state from this list on every
// run instead of persisting anything.
func (c *RealClient) ListTrustBindings(ctx context.Context, principal PrincipalRef) ([]TrustBinding, error) {
	var bindings []TrustBinding

	pager := c.federated.NewListPager(principal.ResourceGroup, principal.Name, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list federated credentials for %s: %w", principal.Name, err)
		}
		for _, cred := range page.Value {
			binding := TrustBinding{Name: deref(cred.Name)}
			if props := cred.Properties; props != nil {
				binding.Issuer = deref(props.Issuer)
				binding.Subject = deref(props.Subject)
				for _, aud := range props.Audiences {
					binding.Audiences = append(binding.Audiences, deref(aud))
				}
			}
			bindings = append(bindings, binding)
		}
	}

	return bindings, nil
}

// CreateTrustBinding creates one federated identity credential. A conflict
// on the subject pattern is classified AlreadyExists, not an error worth
// aborting the batch for.
func (c *RealClient) CreateTrustBinding(ctx context.Context, principal PrincipalRef, binding TrustBinding) (Outcome, error) {
	params := armmsi.FederatedIdentityCredential{
		Properties: &armmsi.FederatedIdentityCredentialProperties{
			Issuer:    to.Ptr(binding.Issuer),
			Subject:   to.Ptr(binding.Subject),
			Audiences: to.SliceOfPtrs(binding.Audiences...),
		},
	}

	_, err := c.federated.CreateOrUpdate(ctx, principal.ResourceGroup, principal.Name, binding.Name, params, nil)
	if err != nil {
		return Classify(err), fmt.Errorf("failed to create trust binding %q: %w", binding.Name, err)
	}
	return OutcomeCreated, nil
}
