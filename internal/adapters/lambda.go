package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/driftwatch/driftwatch/internal/gateway"
	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/types"
)

func lambdaChecks() map[string]Func {
	return map[string]Func{
		"function_exists":      lambdaFunctionExists,
		"vpc_attached":         lambdaVPCAttached,
		"reserved_concurrency": lambdaReservedConcurrency,
		"url_auth_type":        lambdaURLAuthType,
		"env_var":              lambdaEnvVar,
		"layer_count":          lambdaLayerCount,
		"dlq_configured":       lambdaDLQConfigured,
		"function_count":       lambdaFunctionCount,
	}
}

func functionData(fn gateway.Function) map[string]any {
	return map[string]any{
		"functionName": fn.Name,
		"runtime":      fn.Runtime,
		"state":        fn.State,
		"vpcAttached":  len(fn.VPCSubnets) > 0,
		"layerCount":   len(fn.Layers),
		"dlqTarget":    fn.DLQTarget,
	}
}

func getFunction(ctx context.Context, req Request, clients gateway.Clients, name string) (gateway.Function, gateway.FunctionService, *invariants.CheckResult) {
	functions, err := clients.Functions(req.Check.Region)
	if err != nil {
		result := apiFail(types.ServiceLambda, err)
		return gateway.Function{}, nil, &result
	}

	fn, err := functions.GetFunction(ctx, name)
	if errors.Is(err, gateway.ErrNotFound) {
		result := missing(fmt.Sprintf("function %s exists", name), "function not found", err)
		return gateway.Function{}, nil, &result
	}
	if err != nil {
		result := apiFail(types.ServiceLambda, err)
		return gateway.Function{}, nil, &result
	}

	return fn, functions, nil
}

func lambdaFunctionExists(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.FunctionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceLambda, err.Error()), nil
	}
	if p.FunctionName == "" {
		return paramFail(types.ServiceLambda, "function_name is required"), nil
	}

	fn, _, failed := getFunction(ctx, req, clients, p.FunctionName)
	if failed != nil {
		return *failed, nil
	}

	expected := fmt.Sprintf("function %s exists", p.FunctionName)
	evidence := fmt.Sprintf("function %s (%s) is %s", fn.Name, fn.Runtime, fn.State)

	return found(expected, evidence, functionData(fn)), nil
}

func lambdaVPCAttached(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.FunctionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceLambda, err.Error()), nil
	}
	if p.FunctionName == "" {
		return paramFail(types.ServiceLambda, "function_name is required"), nil
	}

	fn, _, failed := getFunction(ctx, req, clients, p.FunctionName)
	if failed != nil {
		return *failed, nil
	}

	expected := p.Expected
	if expected == nil {
		expected = true
	}

	evidence := fmt.Sprintf("function %s attached to %d subnets", fn.Name, len(fn.VPCSubnets))
	return compare(req.Check.Operator, len(fn.VPCSubnets) > 0, expected, evidence, functionData(fn)), nil
}

func lambdaReservedConcurrency(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.FunctionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceLambda, err.Error()), nil
	}
	if p.FunctionName == "" {
		return paramFail(types.ServiceLambda, "function_name is required"), nil
	}

	functions, err := clients.Functions(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceLambda, err), nil
	}

	limit, set, err := functions.ReservedConcurrency(ctx, p.FunctionName)
	if errors.Is(err, gateway.ErrNotFound) {
		return missing(fmt.Sprintf("function %s exists", p.FunctionName), "function not found", err), nil
	}
	if err != nil {
		return apiFail(types.ServiceLambda, err), nil
	}

	if !set {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expectedLabel(req.Check.Operator, p.Expected),
			Observed: fmt.Sprintf("function %s has no reserved concurrency", p.FunctionName),
			Reason:   "reserved concurrency is not configured",
			Data:     map[string]any{"reservedConcurrency": nil},
		}, nil
	}

	evidence := fmt.Sprintf("function %s reserved concurrency is %d", p.FunctionName, limit)
	data := map[string]any{"reservedConcurrency": limit}

	return compare(req.Check.Operator, limit, p.Expected, evidence, data), nil
}

func lambdaURLAuthType(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.FunctionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceLambda, err.Error()), nil
	}
	if p.FunctionName == "" {
		return paramFail(types.ServiceLambda, "function_name is required"), nil
	}

	functions, err := clients.Functions(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceLambda, err), nil
	}

	cfg, ok, err := functions.GetURLConfig(ctx, p.FunctionName)
	if errors.Is(err, gateway.ErrNotFound) {
		return missing(fmt.Sprintf("function %s exists", p.FunctionName), "function not found", err), nil
	}
	if err != nil {
		return apiFail(types.ServiceLambda, err), nil
	}

	if !ok {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expectedLabel(req.Check.Operator, p.Expected),
			Observed: fmt.Sprintf("function %s has no function URL", p.FunctionName),
			Reason:   "no function URL is configured",
		}, nil
	}

	evidence := fmt.Sprintf("function URL %s auth type %s", cfg.URL, cfg.AuthType)
	data := map[string]any{
		"url":      cfg.URL,
		"authType": cfg.AuthType,
	}

	return compare(req.Check.Operator, cfg.AuthType, p.Expected, evidence, data), nil
}

func lambdaEnvVar(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.FunctionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceLambda, err.Error()), nil
	}
	if p.FunctionName == "" || p.EnvKey == "" {
		return paramFail(types.ServiceLambda, "function_name and env_key are required"), nil
	}

	fn, _, failed := getFunction(ctx, req, clients, p.FunctionName)
	if failed != nil {
		return *failed, nil
	}

	value, ok := fn.Environment[p.EnvKey]
	data := functionData(fn)
	data["envValue"] = value

	if !ok {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: fmt.Sprintf("env var %s is set on %s", p.EnvKey, p.FunctionName),
			Observed: fmt.Sprintf("function %s has %d env vars", fn.Name, len(fn.Environment)),
			Reason:   fmt.Sprintf("env var %s is not set", p.EnvKey),
			Data:     data,
		}, nil
	}

	// Without an expectation, presence alone passes.
	if p.Expected == nil {
		evidence := fmt.Sprintf("env var %s is set", p.EnvKey)
		return found(fmt.Sprintf("env var %s is set on %s", p.EnvKey, p.FunctionName), evidence, data), nil
	}

	evidence := fmt.Sprintf("env var %s=%s", p.EnvKey, value)
	return compare(req.Check.Operator, value, p.Expected, evidence, data), nil
}

func lambdaLayerCount(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.FunctionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceLambda, err.Error()), nil
	}
	if p.FunctionName == "" {
		return paramFail(types.ServiceLambda, "function_name is required"), nil
	}

	fn, _, failed := getFunction(ctx, req, clients, p.FunctionName)
	if failed != nil {
		return *failed, nil
	}

	evidence := fmt.Sprintf("function %s has %d layers", fn.Name, len(fn.Layers))
	return compare(req.Check.Operator, len(fn.Layers), p.Expected, evidence, functionData(fn)), nil
}

func lambdaDLQConfigured(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.FunctionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceLambda, err.Error()), nil
	}
	if p.FunctionName == "" {
		return paramFail(types.ServiceLambda, "function_name is required"), nil
	}

	fn, _, failed := getFunction(ctx, req, clients, p.FunctionName)
	if failed != nil {
		return *failed, nil
	}

	expected := fmt.Sprintf("function %s has a dead-letter queue", p.FunctionName)

	if fn.DLQTarget == "" {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: "no dead-letter target configured",
			Reason:   "dead-letter queue is not configured",
			Data:     functionData(fn),
		}, nil
	}

	evidence := fmt.Sprintf("dead-letter target %s", fn.DLQTarget)
	return found(expected, evidence, functionData(fn)), nil
}

func lambdaFunctionCount(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.FunctionCountParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceLambda, err.Error()), nil
	}

	functions, err := clients.Functions(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceLambda, err), nil
	}

	count := 0
	scanned := 0
	token := ""

	for {
		page, next, err := functions.ListFunctions(ctx, token)
		if err != nil {
			return apiFail(types.ServiceLambda, err), nil
		}

		for _, fn := range page {
			scanned++
			if p.NamePrefix == "" || strings.HasPrefix(fn.Name, p.NamePrefix) {
				count++
			}
		}

		if next == "" || scanned >= functionScanCap {
			break
		}
		token = next
	}

	evidence := fmt.Sprintf("%d functions", count)
	if p.NamePrefix != "" {
		evidence = fmt.Sprintf("%d functions with prefix %q", count, p.NamePrefix)
	}

	return compare(req.Check.Operator, count, p.Expected, evidence, map[string]any{"count": count}), nil
}
