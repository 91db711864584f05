package testing

import (
	"context"

	"github.com/imamik/azbind/internal/platform/azure"
)

// FakeControlPlane is a func-field fake of azure.ControlPlane. Unset
// fields return benign defaults: everything exists, every create succeeds.
type FakeControlPlane struct {
	ListPrincipalsFunc       func(ctx context.Context) ([]azure.PrincipalRef, error)
	GetPrincipalFunc         func(ctx context.Context, resourceID string) (azure.PrincipalRef, error)
	ListTrustBindingsFunc    func(ctx context.Context, principal azure.PrincipalRef) ([]azure.TrustBinding, error)
	CreateTrustBindingFunc   func(ctx context.Context, principal azure.PrincipalRef, binding azure.TrustBinding) (azure.Outcome, error)
	LookupRoleDefinitionFunc func(ctx context.Context, scope, roleName string) (string, error)
	ListRoleBindingsFunc     func(ctx context.Context, scope, principalID string) ([]azure.RoleBinding, error)
	CreateRoleBindingFunc    func(ctx context.Context, binding azure.RoleBinding) (azure.Outcome, error)
	ResourceGroupExistsFunc  func(ctx context.Context, name string) (bool, error)
	EnsureResourceGroupFunc  func(ctx context.Context, name, location string, tags map[string]string) (azure.Outcome, error)
	WorkspaceExistsFunc      func(ctx context.Context, resourceGroup, name string) (bool, error)
	EnsureWorkspaceFunc      func(ctx context.Context, spec azure.WorkspaceSpec) (azure.Outcome, error)
	HandshakeFunc            func(ctx context.Context) error
	GetWorkspaceFunc         func(ctx context.Context, resourceGroup, name string) (string, error)
}

var _ azure.ControlPlane = (*FakeControlPlane)(nil)

// ListPrincipals implements azure.IdentityDirectory.
func (f *FakeControlPlane) ListPrincipals(ctx context.Context) ([]azure.PrincipalRef, error) {
	if f.ListPrincipalsFunc != nil {
		return f.ListPrincipalsFunc(ctx)
	}
	return []azure.PrincipalRef{TestPrincipal()}, nil
}

// GetPrincipal implements azure.IdentityDirectory.
func (f *FakeControlPlane) GetPrincipal(ctx context.Context, resourceID string) (azure.PrincipalRef, error) {
	if f.GetPrincipalFunc != nil {
		return f.GetPrincipalFunc(ctx, resourceID)
	}
	p := TestPrincipal()
	p.ID = resourceID
	return p, nil
}

// ListTrustBindings implements azure.FederationManager.
func (f *FakeControlPlane) ListTrustBindings(ctx context.Context, principal azure.PrincipalRef) ([]azure.TrustBinding, error) {
	if f.ListTrustBindingsFunc != nil {
		return f.ListTrustBindingsFunc(ctx, principal)
	}
	return nil, nil
}

// CreateTrustBinding implements azure.FederationManager.
func (f *FakeControlPlane) CreateTrustBinding(ctx context.Context, principal azure.PrincipalRef, binding azure.TrustBinding) (azure.Outcome, error) {
	if f.CreateTrustBindingFunc != nil {
		return f.CreateTrustBindingFunc(ctx, principal, binding)
	}
	return azure.OutcomeCreated, nil
}

// LookupRoleDefinition implements azure.RoleAssigner.
func (f *FakeControlPlane) LookupRoleDefinition(ctx context.Context, scope, roleName string) (string, error) {
	if f.LookupRoleDefinitionFunc != nil {
		return f.LookupRoleDefinitionFunc(ctx, scope, roleName)
	}
	return "/subscriptions/sub/providers/Microsoft.Authorization/roleDefinitions/" + roleName, nil
}

// ListRoleBindings implements azure.RoleAssigner.
func (f *FakeControlPlane) ListRoleBindings(ctx context.Context, scope, principalID string) ([]azure.RoleBinding, error) {
	if f.ListRoleBindingsFunc != nil {
		return f.ListRoleBindingsFunc(ctx, scope, principalID)
	}
	return nil, nil
}

// CreateRoleBinding implements azure.RoleAssigner.
func (f *FakeControlPlane) CreateRoleBinding(ctx context.Context, binding azure.RoleBinding) (azure.Outcome, error) {
	if f.CreateRoleBindingFunc != nil {
		return f.CreateRoleBindingFunc(ctx, binding)
	}
	return azure.OutcomeCreated, nil
}

// ResourceGroupExists implements azure.ResourceManager.
func (f *FakeControlPlane) ResourceGroupExists(ctx context.Context, name string) (bool, error) {
	if f.ResourceGroupExistsFunc != nil {
		return f.ResourceGroupExistsFunc(ctx, name)
	}
	return true, nil
}

// EnsureResourceGroup implements azure.ResourceManager.
func (f *FakeControlPlane) EnsureResourceGroup(ctx context.Context, name, location string, tags map[string]string) (azure.Outcome, error) {
	if f.EnsureResourceGroupFunc != nil {
		return f.EnsureResourceGroupFunc(ctx, name, location, tags)
	}
	return azure.OutcomeCreated, nil
}

// WorkspaceExists implements azure.ResourceManager.
func (f *FakeControlPlane) WorkspaceExists(ctx context.Context, resourceGroup, name string) (bool, error) {
	if f.WorkspaceExistsFunc != nil {
		return f.WorkspaceExistsFunc(ctx, resourceGroup, name)
	}
	return true, nil
}

// EnsureWorkspace implements azure.ResourceManager.
func (f *FakeControlPlane) EnsureWorkspace(ctx context.Context, spec azure.WorkspaceSpec) (azure.Outcome, error) {
	if f.EnsureWorkspaceFunc != nil {
		return f.EnsureWorkspaceFunc(ctx, spec)
	}
	return azure.OutcomeCreated, nil
}

// Handshake implements azure.ProbeTarget.
func (f *FakeControlPlane) Handshake(ctx context.Context) error {
	if f.HandshakeFunc != nil {
		return f.HandshakeFunc(ctx)
	}
	return nil
}

// GetWorkspace implements azure.ProbeTarget.
func (f *FakeControlPlane) GetWorkspace(ctx context.Context, resourceGroup, name string) (string, error) {
	if f.GetWorkspaceFunc != nil {
		return f.GetWorkspaceFunc(ctx, resourceGroup, name)
	}
	return "Succeeded", nil
}
