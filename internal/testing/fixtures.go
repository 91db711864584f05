package testing

import (
	"github.com/imamik/azbind/internal/config"
	"github.com/imamik/azbind/internal/platform/azure"
)

// TestSubscriptionID is the subscription used by fixtures.
const TestSubscriptionID = "00000000-0000-0000-0000-000000000000"

// TestPrincipal returns a resolved deployment principal fixture.
func TestPrincipal() azure.PrincipalRef {
	return azure.PrincipalRef{
		ID: "/subscriptions/" + TestSubscriptionID +
			"/resourceGroups/ml-rg/providers/Microsoft.ManagedIdentity/userAssignedIdentities/ml-deploy",
		Name:          "ml-deploy",
		ResourceGroup: "ml-rg",
		ClientID:      "11111111-1111-1111-1111-111111111111",
		PrincipalID:   "22222222-2222-2222-2222-222222222222",
		TenantID:      "33333333-3333-3333-3333-333333333333",
		Location:      "westeurope",
	}
}

// TestConfig returns a valid configuration with defaults applied.
func TestConfig() *config.Config {
	cfg, err := config.Parse([]byte(`
repository:
  owner: acme
  name: ml-health-check
principal:
  display_name: ml-deploy
subscription_id: ` + TestSubscriptionID + `
resource_group:
  name: ml-rg
  location: westeurope
workspace:
  name: ml-workspace
`))
	if err != nil {
		panic("test config must parse: " + err.Error())
	}
	return cfg
}
