// Package testing provides shared test utilities and fakes.
//
// This package centralizes common testing patterns to avoid duplication
// across test files:
//   - FakeControlPlane: func-field fake of the azure.ControlPlane interface
//   - TestConfig: a valid configuration with sensible defaults
//   - TestPrincipal: a resolved principal fixture
package testing
