package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/google/uuid"
)

// LookupRoleDefinition resolves a role display name to its role definition
// resource ID at the given scope.
func (c *RealClient) LookupRoleDefinition(ctx context.Context, scope, roleName string) (string, error) {
	filter := fmt.Sprintf("roleName eq '%s'", roleName)
	pager := c.roleDefinitions.NewListPager(scope, &armauthorization.RoleDefinitionsClientListOptions{
		Filter: &filter,
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list role definitions at %s: %w", scope, err)
		}
		for _, def := range page.Value {
			if def.ID != nil {
				return *def.ID, nil
			}
		}
	}

	return "", fmt.Errorf("role definition %q not found at scope %s", roleName, scope)
}

// ListRoleBindings returns the role assignments held by the principal at
// and below the given scope.
func (c *RealClient) ListRoleBindings(ctx context.Context, scope, principalID string) ([]RoleBinding, error) {
	filter := fmt.Sprintf("principalId eq '%s'", principalID)
	pager := c.roleAssignments.NewListForScopePager(scope, &armauthorization.RoleAssignmentsClientListForScopeOptions{
		Filter: &filter,
	})

	var bindings []RoleBinding
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list role assignments at %s: %w", scope, err)
		}
		for _, assignment := range page.Value {
			binding := RoleBinding{Name: deref(assignment.Name)}
			if props := assignment.Properties; props != nil {
				binding.RoleDefinitionID = deref(props.RoleDefinitionID)
				binding.PrincipalID = deref(props.PrincipalID)
				binding.Scope = deref(props.Scope)
			}
			bindings = append(bindings, binding)
		}
	}

	return bindings, nil
}

// CreateRoleBinding creates one role assignment. Assignment names must be
// GUIDs; a fresh one is generated when the caller leaves Name empty.
func (c *RealClient) CreateRoleBinding(ctx context.Context, binding RoleBinding) (Outcome, error) {
	name := binding.Name
	if name == "" {
		name = uuid.NewString()
	}

	params := armauthorization.RoleAssignmentCreateParameters{
		Properties: &armauthorization.RoleAssignmentProperties{
			PrincipalID:      to.Ptr(binding.PrincipalID),
			RoleDefinitionID: to.Ptr(binding.RoleDefinitionID),
			PrincipalType:    to.Ptr(armauthorization.PrincipalTypeServicePrincipal),
		},
	}

	_, err := c.roleAssignments.Create(ctx, binding.Scope, name, params, nil)
	if err != nil {
		return Classify(err), fmt.Errorf("failed to create role assignment at %s: %w", binding.Scope, err)
	}
	return OutcomeCreated, nil
}
