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

func rdsChecks() map[string]Func {
	return map[string]Func{
		"instance_exists": rdsInstanceExists,
		"instance_status": rdsInstanceStatus,
		"multi_az":        rdsMultiAZ,
		"instance_count":  rdsInstanceCount,
	}
}

func dbInstanceData(inst gateway.DBInstance) map[string]any {
	return map[string]any{
		"instanceId": inst.ID,
		"status":     inst.Status,
		"engine":     inst.Engine,
		"version":    inst.Version,
		"class":      inst.Class,
		"multiAz":    inst.MultiAZ,
		"encrypted":  inst.Encrypted,
	}
}

func dbInstanceEvidence(inst gateway.DBInstance) string {
	return fmt.Sprintf("db instance %s is %s (%s %s, %s)", inst.ID, inst.Status, inst.Engine, inst.Version, inst.Class)
}

func describeDBInstance(ctx context.Context, req Request, clients gateway.Clients, instanceID string) (gateway.DBInstance, *invariants.CheckResult) {
	rds, err := clients.RelationalDB(req.Check.Region)
	if err != nil {
		result := apiFail(types.ServiceRDS, err)
		return gateway.DBInstance{}, &result
	}

	inst, err := rds.DescribeInstance(ctx, instanceID)
	if errors.Is(err, gateway.ErrNotFound) {
		result := missing(fmt.Sprintf("db instance %s exists", instanceID), "db instance not found", err)
		return gateway.DBInstance{}, &result
	}
	if err != nil {
		result := apiFail(types.ServiceRDS, err)
		return gateway.DBInstance{}, &result
	}

	return inst, nil
}

func rdsInstanceExists(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.DBInstanceParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceRDS, err.Error()), nil
	}
	if p.InstanceID == "" {
		return paramFail(types.ServiceRDS, "instance_id is required"), nil
	}

	inst, failed := describeDBInstance(ctx, req, clients, p.InstanceID)
	if failed != nil {
		return *failed, nil
	}

	return found(fmt.Sprintf("db instance %s exists", p.InstanceID), dbInstanceEvidence(inst), dbInstanceData(inst)), nil
}

func rdsInstanceStatus(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.DBInstanceParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceRDS, err.Error()), nil
	}
	if p.InstanceID == "" {
		return paramFail(types.ServiceRDS, "instance_id is required"), nil
	}

	inst, failed := describeDBInstance(ctx, req, clients, p.InstanceID)
	if failed != nil {
		return *failed, nil
	}

	return compare(req.Check.Operator, inst.Status, p.Expected, dbInstanceEvidence(inst), dbInstanceData(inst)), nil
}

func rdsMultiAZ(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.DBInstanceParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceRDS, err.Error()), nil
	}
	if p.InstanceID == "" {
		return paramFail(types.ServiceRDS, "instance_id is required"), nil
	}

	inst, failed := describeDBInstance(ctx, req, clients, p.InstanceID)
	if failed != nil {
		return *failed, nil
	}

	expected := p.Expected
	if expected == nil {
		expected = true
	}

	evidence := fmt.Sprintf("db instance %s multi-AZ=%t", inst.ID, inst.MultiAZ)
	return compare(req.Check.Operator, inst.MultiAZ, expected, evidence, dbInstanceData(inst)), nil
}

func rdsInstanceCount(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.DBInstanceCountParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceRDS, err.Error()), nil
	}

	rds, err := clients.RelationalDB(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceRDS, err), nil
	}

	count := 0
	scanned := 0
	token := ""

	for {
		page, next, err := rds.ListInstances(ctx, token)
		if err != nil {
			return apiFail(types.ServiceRDS, err), nil
		}

		for _, inst := range page {
			scanned++
			if p.Engine == "" || strings.EqualFold(inst.Engine, p.Engine) {
				count++
			}
		}

		if next == "" || scanned >= listScanCap {
			break
		}
		token = next
	}

	evidence := fmt.Sprintf("%d db instances", count)
	if p.Engine != "" {
		evidence = fmt.Sprintf("%d %s db instances", count, p.Engine)
	}

	return compare(req.Check.Operator, count, p.Expected, evidence, map[string]any{"count": count}), nil
}
