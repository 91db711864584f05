package roles

import "strings"

// scopeKind classifies an ARM scope path by its deepest segment the
// reconciler knows how to provision.
type scopeKind int

const (
	kindSubscription scopeKind = iota
	kindResourceGroup
	kindWorkspace
	kindExternal
)

// scopeTarget is a parsed ARM scope path.
type scopeTarget struct {
	kind          scopeKind
	resourceGroup string
	workspace     string
}

// parseScope walks the segments of an ARM scope path. Paths below a
// resource group that are not ML workspaces classify as external: they
// are valid assignment scopes but the fallback path never provisions them.
func parseScope(scope string) scopeTarget {
	segments := strings.Split(strings.Trim(scope, "/"), "/")

	target := scopeTarget{kind: kindSubscription}
	for i := 0; i+1 < len(segments); i += 2 {
		key, value := segments[i], segments[i+1]
		switch {
		case strings.EqualFold(key, "subscriptions"):
			// Subscription ID carries no target information.
		case strings.EqualFold(key, "resourceGroups"):
			target.kind = kindResourceGroup
			target.resourceGroup = value
		case strings.EqualFold(key, "providers"):
			if strings.EqualFold(value, "Microsoft.MachineLearningServices") &&
				i+3 < len(segments) && strings.EqualFold(segments[i+2], "workspaces") {
				target.kind = kindWorkspace
				target.workspace = segments[i+3]
				return target
			}
			target.kind = kindExternal
			return target
		}
	}
	return target
}
