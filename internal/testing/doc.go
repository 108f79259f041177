// Package testing provides test utilities, builders, and fixtures for unit and integration tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - ParamsBuilder: Fluent builder for creating test parameter sets
//   - AzureFixture: Pre-configured mock Azure client for common scenarios
//   - WriteManifests: manifest files on disk for the configure stage
//
// Usage:
//
//	params := testing.NewParamsBuilder().
//	    WithLocation("northeurope").
//	    WithDefender(true).
//	    Build()
//
//	fixture := testing.NewAzureFixture()
//	client := fixture.SuccessfulDeployment()
package testing
