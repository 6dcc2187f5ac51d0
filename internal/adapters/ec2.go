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

func ec2Checks() map[string]Func {
	return map[string]Func{
		"instance_exists": ec2InstanceExists,
		"instance_state":  ec2InstanceState,
		"instance_type":   ec2InstanceType,
		"instance_count":  ec2InstanceCount,
	}
}

func instanceData(inst gateway.Instance) map[string]any {
	return map[string]any{
		"instanceId":   inst.ID,
		"name":         inst.Name,
		"state":        inst.State,
		"instanceType": inst.Type,
		"publicIp":     inst.PublicIP,
		"privateIp":    inst.PrivateIP,
		"az":           inst.AZ,
	}
}

func instanceEvidence(inst gateway.Instance) string {
	return fmt.Sprintf("instance %s is %s (%s) in %s", inst.ID, inst.State, inst.Type, inst.AZ)
}

func describeInstance(ctx context.Context, req Request, clients gateway.Clients, instanceID string) (gateway.Instance, *invariants.CheckResult) {
	compute, err := clients.Compute(req.Check.Region)
	if err != nil {
		result := apiFail(types.ServiceEC2, err)
		return gateway.Instance{}, &result
	}

	inst, err := compute.DescribeInstance(ctx, instanceID)
	if errors.Is(err, gateway.ErrNotFound) {
		result := missing(fmt.Sprintf("instance %s exists", instanceID), "instance not found", err)
		return gateway.Instance{}, &result
	}
	if err != nil {
		result := apiFail(types.ServiceEC2, err)
		return gateway.Instance{}, &result
	}

	return inst, nil
}

func ec2InstanceExists(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.InstanceParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceEC2, err.Error()), nil
	}
	if p.InstanceID == "" {
		return paramFail(types.ServiceEC2, "instance_id is required"), nil
	}

	inst, failed := describeInstance(ctx, req, clients, p.InstanceID)
	if failed != nil {
		return *failed, nil
	}

	return found(fmt.Sprintf("instance %s exists", p.InstanceID), instanceEvidence(inst), instanceData(inst)), nil
}

func ec2InstanceState(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.InstanceParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceEC2, err.Error()), nil
	}
	if p.InstanceID == "" {
		return paramFail(types.ServiceEC2, "instance_id is required"), nil
	}

	inst, failed := describeInstance(ctx, req, clients, p.InstanceID)
	if failed != nil {
		return *failed, nil
	}

	return compare(req.Check.Operator, inst.State, p.Expected, instanceEvidence(inst), instanceData(inst)), nil
}

func ec2InstanceType(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.InstanceParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceEC2, err.Error()), nil
	}
	if p.InstanceID == "" {
		return paramFail(types.ServiceEC2, "instance_id is required"), nil
	}

	inst, failed := describeInstance(ctx, req, clients, p.InstanceID)
	if failed != nil {
		return *failed, nil
	}

	return compare(req.Check.Operator, inst.Type, p.Expected, instanceEvidence(inst), instanceData(inst)), nil
}

func ec2InstanceCount(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.InstanceCountParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceEC2, err.Error()), nil
	}

	compute, err := clients.Compute(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceEC2, err), nil
	}

	count := 0
	scanned := 0
	token := ""

	for {
		page, next, err := compute.ListInstances(ctx, token)
		if err != nil {
			return apiFail(types.ServiceEC2, err), nil
		}

		for _, inst := range page {
			scanned++
			if instanceMatches(inst, p) {
				count++
			}
		}

		if next == "" || scanned >= listScanCap {
			break
		}
		token = next
	}

	evidence := fmt.Sprintf("%d matching instances", count)
	return compare(req.Check.Operator, count, p.Expected, evidence, map[string]any{"count": count}), nil
}

func instanceMatches(inst gateway.Instance, p types.InstanceCountParams) bool {
	if p.State != "" && !strings.EqualFold(inst.State, p.State) {
		return false
	}

	if p.NamePrefix != "" && !strings.HasPrefix(inst.Name, p.NamePrefix) {
		return false
	}

	if p.TagKey != "" {
		value, ok := inst.Tags[p.TagKey]
		if !ok {
			return false
		}
		if p.TagValue != "" && value != p.TagValue {
			return false
		}
	}

	return true
}
