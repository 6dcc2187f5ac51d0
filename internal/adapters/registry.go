// Package adapters implements the per-service check evaluations. Every check
// type resolves through a (service, type) registry to a single evaluation
// function; operational failures (missing resources, API errors) come back as
// FAIL results, never as errors. Only an unknown service or type is an error,
// converted to a generic FAIL at the engine boundary.
package adapters

import (
	"context"
	"fmt"

	"github.com/driftwatch/driftwatch/internal/gateway"
	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/models"
	"github.com/driftwatch/driftwatch/internal/types"
)

// Pagination safety caps bound the worst-case cost of count checks.
const (
	listScanCap     = 10000
	functionScanCap = 1000
)

// Request carries one check with its placeholder-resolved parameters.
type Request struct {
	Check  models.Check
	Params map[string]any
}

// Func evaluates one check type.
type Func func(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error)

// Registry maps (service, type) to an evaluation function.
type Registry struct {
	checks map[string]map[string]Func
}

// NewRegistry builds a registry with every built-in adapter installed.
func NewRegistry() *Registry {
	r := &Registry{checks: map[string]map[string]Func{}}

	r.register(types.ServiceEC2, ec2Checks())
	r.register(types.ServiceELB, elbChecks())
	r.register(types.ServiceRoute53, route53Checks())
	r.register(types.ServiceIAM, iamChecks())
	r.register(types.ServiceS3, s3Checks())
	r.register(types.ServiceRDS, rdsChecks())
	r.register(types.ServiceECS, ecsChecks())
	r.register(types.ServiceDynamoDB, dynamodbChecks())
	r.register(types.ServiceLambda, lambdaChecks())
	r.register(types.ServiceCloudFront, cloudfrontChecks())
	r.register(types.ServiceConfig, configChecks())
	r.register(types.ServiceNetwork, networkChecks())
	r.register(types.ServiceDatabase, databaseChecks())

	return r
}

func (r *Registry) register(service string, funcs map[string]Func) {
	r.checks[service] = funcs
}

// Evaluate dispatches the check to its adapter. Unknown services and types
// return an error for the engine's boundary handler.
func (r *Registry) Evaluate(ctx context.Context, check models.Check, params map[string]any, clients gateway.Clients) (invariants.CheckResult, error) {
	byType, ok := r.checks[check.Service]
	if !ok {
		return invariants.CheckResult{}, fmt.Errorf("unsupported service: %s", check.Service)
	}

	fn, ok := byType[check.Type]
	if !ok {
		return invariants.CheckResult{}, fmt.Errorf("unsupported check type %q for service %s", check.Type, check.Service)
	}

	return fn(ctx, Request{Check: check, Params: params}, clients)
}

// Supported reports whether the (service, type) pair has an adapter.
func (r *Registry) Supported(service, checkType string) bool {
	byType, ok := r.checks[service]
	if !ok {
		return false
	}

	_, ok = byType[checkType]
	return ok
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}
