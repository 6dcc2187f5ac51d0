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

func cloudfrontChecks() map[string]Func {
	return map[string]Func{
		"distribution_exists":  cloudfrontDistributionExists,
		"distribution_enabled": cloudfrontDistributionEnabled,
		"origin_domain":        cloudfrontOriginDomain,
		"waf_attached":         cloudfrontWAFAttached,
		"oac_configured":       cloudfrontOACConfigured,
	}
}

func distributionData(dist gateway.Distribution) map[string]any {
	origins := make([]any, len(dist.Origins))
	for i, origin := range dist.Origins {
		origins[i] = origin.Domain
	}

	return map[string]any{
		"distributionId": dist.ID,
		"domainName":     dist.DomainName,
		"status":         dist.Status,
		"enabled":        dist.Enabled,
		"origins":        origins,
		"webAclId":       dist.WebACLID,
	}
}

func getDistribution(ctx context.Context, req Request, clients gateway.Clients, id string) (gateway.Distribution, *invariants.CheckResult) {
	cdn, err := clients.CDN()
	if err != nil {
		result := apiFail(types.ServiceCloudFront, err)
		return gateway.Distribution{}, &result
	}

	dist, err := cdn.GetDistribution(ctx, id)
	if errors.Is(err, gateway.ErrNotFound) {
		result := missing(fmt.Sprintf("distribution %s exists", id), "distribution not found", err)
		return gateway.Distribution{}, &result
	}
	if err != nil {
		result := apiFail(types.ServiceCloudFront, err)
		return gateway.Distribution{}, &result
	}

	return dist, nil
}

func cloudfrontDistributionExists(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.DistributionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceCloudFront, err.Error()), nil
	}
	if p.DistributionID == "" {
		return paramFail(types.ServiceCloudFront, "distribution_id is required"), nil
	}

	dist, failed := getDistribution(ctx, req, clients, p.DistributionID)
	if failed != nil {
		return *failed, nil
	}

	expected := fmt.Sprintf("distribution %s exists", p.DistributionID)
	evidence := fmt.Sprintf("distribution %s (%s) is %s", dist.ID, dist.DomainName, dist.Status)

	return found(expected, evidence, distributionData(dist)), nil
}

func cloudfrontDistributionEnabled(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.DistributionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceCloudFront, err.Error()), nil
	}
	if p.DistributionID == "" {
		return paramFail(types.ServiceCloudFront, "distribution_id is required"), nil
	}

	dist, failed := getDistribution(ctx, req, clients, p.DistributionID)
	if failed != nil {
		return *failed, nil
	}

	expected := p.Expected
	if expected == nil {
		expected = true
	}

	evidence := fmt.Sprintf("distribution %s enabled=%t status=%s", dist.ID, dist.Enabled, dist.Status)
	return compare(req.Check.Operator, dist.Enabled, expected, evidence, distributionData(dist)), nil
}

func cloudfrontOriginDomain(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.DistributionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceCloudFront, err.Error()), nil
	}
	if p.DistributionID == "" {
		return paramFail(types.ServiceCloudFront, "distribution_id is required"), nil
	}

	dist, failed := getDistribution(ctx, req, clients, p.DistributionID)
	if failed != nil {
		return *failed, nil
	}

	domains := make([]any, len(dist.Origins))
	labels := make([]string, len(dist.Origins))

	for i, origin := range dist.Origins {
		domains[i] = origin.Domain
		labels[i] = origin.Domain
	}

	evidence := fmt.Sprintf("origins: %s", strings.Join(labels, ", "))

	operator := req.Check.Operator
	if operator == "" || operator == types.OpEquals {
		// A distribution has a set of origins; membership is the natural
		// default assertion.
		operator = types.OpContains
	}

	return compare(operator, domains, p.Expected, evidence, distributionData(dist)), nil
}

func cloudfrontWAFAttached(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.DistributionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceCloudFront, err.Error()), nil
	}
	if p.DistributionID == "" {
		return paramFail(types.ServiceCloudFront, "distribution_id is required"), nil
	}

	dist, failed := getDistribution(ctx, req, clients, p.DistributionID)
	if failed != nil {
		return *failed, nil
	}

	expected := fmt.Sprintf("distribution %s has a web ACL", p.DistributionID)

	if dist.WebACLID == "" {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: "no web ACL attached",
			Reason:   "no WAF web ACL is attached",
			Data:     distributionData(dist),
		}, nil
	}

	evidence := fmt.Sprintf("web ACL %s attached", dist.WebACLID)
	return found(expected, evidence, distributionData(dist)), nil
}

// cloudfrontOACConfigured verifies every origin carries an origin access
// control id.
func cloudfrontOACConfigured(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.DistributionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceCloudFront, err.Error()), nil
	}
	if p.DistributionID == "" {
		return paramFail(types.ServiceCloudFront, "distribution_id is required"), nil
	}

	dist, failed := getDistribution(ctx, req, clients, p.DistributionID)
	if failed != nil {
		return *failed, nil
	}

	expected := fmt.Sprintf("all origins of %s use origin access control", p.DistributionID)
	withOAC := 0
	unprotected := []string{}

	for _, origin := range dist.Origins {
		if origin.OACID != "" {
			withOAC++
		} else {
			unprotected = append(unprotected, origin.Domain)
		}
	}

	evidence := fmt.Sprintf("%d/%d origins with OAC", withOAC, len(dist.Origins))
	data := distributionData(dist)
	data["oacCount"] = withOAC

	if len(dist.Origins) == 0 || withOAC < len(dist.Origins) {
		reason := "no origins configured"
		if len(unprotected) > 0 {
			reason = fmt.Sprintf("origins without OAC: %s", strings.Join(unprotected, ", "))
		}

		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: evidence,
			Reason:   reason,
			Data:     data,
		}, nil
	}

	return found(expected, evidence, data), nil
}
