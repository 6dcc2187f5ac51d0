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

func iamChecks() map[string]Func {
	return map[string]Func{
		"role_exists":          iamRoleExists,
		"role_policy_attached": iamRolePolicyAttached,
		"policy_exists":        iamPolicyExists,
	}
}

func iamRoleExists(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.RoleParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceIAM, err.Error()), nil
	}
	if p.RoleName == "" {
		return paramFail(types.ServiceIAM, "role_name is required"), nil
	}

	identity, err := clients.Identity()
	if err != nil {
		return apiFail(types.ServiceIAM, err), nil
	}

	expected := fmt.Sprintf("role %s exists", p.RoleName)

	role, err := identity.GetRole(ctx, p.RoleName)
	if errors.Is(err, gateway.ErrNotFound) {
		return missing(expected, "role not found", err), nil
	}
	if err != nil {
		return apiFail(types.ServiceIAM, err), nil
	}

	evidence := fmt.Sprintf("role %s (%s)", role.Name, role.ARN)
	data := map[string]any{
		"roleName": role.Name,
		"roleArn":  role.ARN,
	}

	return found(expected, evidence, data), nil
}

func iamRolePolicyAttached(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.RolePolicyParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceIAM, err.Error()), nil
	}
	if p.RoleName == "" || p.PolicyARN == "" {
		return paramFail(types.ServiceIAM, "role_name and policy_arn are required"), nil
	}

	identity, err := clients.Identity()
	if err != nil {
		return apiFail(types.ServiceIAM, err), nil
	}

	policies, err := identity.AttachedRolePolicies(ctx, p.RoleName)
	if err != nil {
		return apiFail(types.ServiceIAM, err), nil
	}

	names := make([]string, len(policies))
	attached := false

	for i, policy := range policies {
		names[i] = policy.Name
		if strings.EqualFold(policy.ARN, p.PolicyARN) {
			attached = true
		}
	}

	expected := fmt.Sprintf("policy %s attached to role %s", p.PolicyARN, p.RoleName)
	evidence := fmt.Sprintf("%d attached policies: %s", len(policies), strings.Join(names, ", "))
	data := map[string]any{
		"attachedCount": len(policies),
		"attached":      attached,
	}

	if !attached {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: evidence,
			Reason:   fmt.Sprintf("policy %s is not attached", p.PolicyARN),
			Data:     data,
		}, nil
	}

	return found(expected, evidence, data), nil
}

func iamPolicyExists(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.PolicyParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceIAM, err.Error()), nil
	}
	if p.PolicyARN == "" {
		return paramFail(types.ServiceIAM, "policy_arn is required"), nil
	}

	identity, err := clients.Identity()
	if err != nil {
		return apiFail(types.ServiceIAM, err), nil
	}

	expected := fmt.Sprintf("policy %s exists", p.PolicyARN)

	policy, err := identity.GetPolicy(ctx, p.PolicyARN)
	if errors.Is(err, gateway.ErrNotFound) {
		return missing(expected, "policy not found", err), nil
	}
	if err != nil {
		return apiFail(types.ServiceIAM, err), nil
	}

	evidence := fmt.Sprintf("policy %s attached to %d entities", policy.Name, policy.AttachmentCount)
	data := map[string]any{
		"policyName":      policy.Name,
		"policyArn":       policy.ARN,
		"attachmentCount": policy.AttachmentCount,
	}

	return found(expected, evidence, data), nil
}
