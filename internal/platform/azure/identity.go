package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/msi/armmsi"
)

// ListPrincipals returns every user-assigned managed identity in the
// subscription.
func (c *RealClient) ListPrincipals(ctx context.Context) ([]PrincipalRef, error) {
	var principals []PrincipalRef

	pager := c.identities.NewListBySubscriptionPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list identities: %w", err)
		}
		for _, identity := range page.Value {
			ref, err := principalFromIdentity(identity)
			if err != nil {
				return nil, err
			}
			principals = append(principals, ref)
		}
	}

	return principals, nil
}

// GetPrincipal fetches a single identity by its ARM resource ID.
func (c *RealClient) GetPrincipal(ctx context.Context, resourceID string) (PrincipalRef, error) {
	parsed, err := arm.ParseResourceID(resourceID)
	if err != nil {
		return PrincipalRef{}, fmt.Errorf("invalid principal resource ID %q: %w", resourceID, err)
	}

	resp, err := c.identities.Get(ctx, parsed.ResourceGroupName, parsed.Name, nil)
	if err != nil {
		return PrincipalRef{}, fmt.Errorf("failed to get identity %q: %w", resourceID, err)
	}

	return principalFromIdentity(&resp.Identity)
}

func principalFromIdentity(identity *armmsi.Identity) (PrincipalRef, error) {
	ref := PrincipalRef{
		ID:       deref(identity.ID),
		Name:     deref(identity.Name),
		Location: deref(identity.Location),
	}

	parsed, err := arm.ParseResourceID(ref.ID)
	if err != nil {
		return PrincipalRef{}, fmt.Errorf("identity %q has unparseable resource ID: %w", ref.Name, err)
	}
	ref.ResourceGroup = parsed.ResourceGroupName

	if props := identity.Properties; props != nil {
		ref.ClientID = deref(props.ClientID)
		ref.PrincipalID = deref(props.PrincipalID)
		ref.TenantID = deref(props.TenantID)
	}

	return ref, nil
}
