package federation

import "fmt"

// Subject builds the OIDC subject pattern for a workflow entity. It is a
// pure function of its inputs: "repo:{owner}/{repo}:{type}:{value}", with
// the trailing segment omitted when the entity has no discriminator
// (e.g. pull_request).
func Subject(owner, repo, entityType, entityValue string) string {
	subject := fmt.Sprintf("repo:%s/%s:%s", owner, repo, entityType)
	if entityValue != "" {
		subject += ":" + entityValue
	}
	return subject
}
