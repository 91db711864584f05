package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that the configuration describes a runnable pipeline.
// It is called after defaults are applied, so zero values here are
// operator omissions, not missing defaults.
func (c *Config) Validate() error {
	var errs []error

	if c.Repository.Owner == "" {
		errs = append(errs, errors.New("repository.owner is required"))
	}
	if c.Repository.Name == "" {
		errs = append(errs, errors.New("repository.name is required"))
	}
	if strings.Contains(c.Repository.Owner, "/") || strings.Contains(c.Repository.Name, "/") {
		errs = append(errs, errors.New("repository owner and name must not contain '/'"))
	}
	if c.Principal.DisplayName == "" && c.Principal.ID == "" {
		errs = append(errs, errors.New("principal.display_name or principal.id is required"))
	}
	if c.SubscriptionID == "" {
		errs = append(errs, errors.New("subscription_id is required"))
	}
	if c.ResourceGroup.Name == "" {
		errs = append(errs, errors.New("resource_group.name is required"))
	}
	if c.ResourceGroup.Location == "" {
		errs = append(errs, errors.New("resource_group.location is required"))
	}
	if c.Workspace.Name == "" {
		errs = append(errs, errors.New("workspace.name is required"))
	}

	seen := make(map[string]string, len(c.Trust.Entities))
	for i, entity := range c.Trust.Entities {
		if entity.Type == "" {
			errs = append(errs, fmt.Errorf("trust.entities[%d]: type is required", i))
			continue
		}
		key := entity.Type + ":" + entity.Value
		if prev, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("trust.entities[%d]: duplicate subject for %s (also %s)", i, key, prev))
		}
		seen[key] = entity.Name()
	}

	for i, role := range c.Roles {
		if role.Name == "" {
			errs = append(errs, fmt.Errorf("roles[%d]: name is required", i))
		}
		if role.Scope == "" {
			errs = append(errs, fmt.Errorf("roles[%d]: scope is required", i))
		} else if _, err := c.ExpandScope(role.Scope); err != nil {
			errs = append(errs, fmt.Errorf("roles[%d]: %w", i, err))
		}
	}

	return errors.Join(errs...)
}
