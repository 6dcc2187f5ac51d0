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

func ecsChecks() map[string]Func {
	return map[string]Func{
		"cluster_active":        ecsClusterActive,
		"service_exists":        ecsServiceExists,
		"service_running_count": ecsServiceRunningCount,
	}
}

func ecsClusterActive(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.ClusterParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceECS, err.Error()), nil
	}
	if p.Cluster == "" {
		return paramFail(types.ServiceECS, "cluster is required"), nil
	}

	containers, err := clients.Containers(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceECS, err), nil
	}

	expected := fmt.Sprintf("cluster %s is ACTIVE", p.Cluster)

	cluster, err := containers.DescribeCluster(ctx, p.Cluster)
	if errors.Is(err, gateway.ErrNotFound) {
		return missing(expected, "cluster not found", err), nil
	}
	if err != nil {
		return apiFail(types.ServiceECS, err), nil
	}

	evidence := fmt.Sprintf("cluster %s is %s (%d services, %d running tasks)",
		cluster.Name, cluster.Status, cluster.ActiveServices, cluster.RunningTasks)
	data := map[string]any{
		"cluster":        cluster.Name,
		"status":         cluster.Status,
		"activeServices": cluster.ActiveServices,
		"runningTasks":   cluster.RunningTasks,
	}

	if !strings.EqualFold(cluster.Status, "ACTIVE") {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: evidence,
			Reason:   fmt.Sprintf("cluster status is %s", cluster.Status),
			Data:     data,
		}, nil
	}

	return found(expected, evidence, data), nil
}

func ecsService(ctx context.Context, req Request, clients gateway.Clients, p types.ECSServiceParams) (gateway.Service, *invariants.CheckResult) {
	containers, err := clients.Containers(req.Check.Region)
	if err != nil {
		result := apiFail(types.ServiceECS, err)
		return gateway.Service{}, &result
	}

	service, err := containers.DescribeService(ctx, p.Cluster, p.Service)
	if errors.Is(err, gateway.ErrNotFound) {
		result := missing(fmt.Sprintf("service %s exists in cluster %s", p.Service, p.Cluster), "service not found", err)
		return gateway.Service{}, &result
	}
	if err != nil {
		result := apiFail(types.ServiceECS, err)
		return gateway.Service{}, &result
	}

	return service, nil
}

func ecsServiceData(service gateway.Service) map[string]any {
	return map[string]any{
		"service":      service.Name,
		"status":       service.Status,
		"desiredCount": service.DesiredCount,
		"runningCount": service.RunningCount,
		"pendingCount": service.PendingCount,
	}
}

func ecsServiceExists(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.ECSServiceParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceECS, err.Error()), nil
	}
	if p.Cluster == "" || p.Service == "" {
		return paramFail(types.ServiceECS, "cluster and service are required"), nil
	}

	service, failed := ecsService(ctx, req, clients, p)
	if failed != nil {
		return *failed, nil
	}

	expected := fmt.Sprintf("service %s exists in cluster %s", p.Service, p.Cluster)
	evidence := fmt.Sprintf("service %s is %s (%d/%d running)", service.Name, service.Status, service.RunningCount, service.DesiredCount)

	return found(expected, evidence, ecsServiceData(service)), nil
}

// ecsServiceRunningCount compares the running task count. With no explicit
// expectation it asserts running == desired.
func ecsServiceRunningCount(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.ECSServiceParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceECS, err.Error()), nil
	}
	if p.Cluster == "" || p.Service == "" {
		return paramFail(types.ServiceECS, "cluster and service are required"), nil
	}

	service, failed := ecsService(ctx, req, clients, p)
	if failed != nil {
		return *failed, nil
	}

	expected := p.Expected
	if expected == nil {
		expected = service.DesiredCount
	}

	evidence := fmt.Sprintf("service %s has %d running, %d pending, %d desired",
		service.Name, service.RunningCount, service.PendingCount, service.DesiredCount)

	return compare(req.Check.Operator, service.RunningCount, expected, evidence, ecsServiceData(service)), nil
}
