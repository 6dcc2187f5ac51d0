package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/driftwatch/driftwatch/internal/gateway"
	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/types"
)

func elbChecks() map[string]Func {
	return map[string]Func{
		"target_health":  elbTargetHealth,
		"listener_count": elbListenerCount,
	}
}

// elbTargetHealth counts healthy targets in the target group and compares the
// count against the expectation. Data exposes both counts so later checks can
// chain on them.
func elbTargetHealth(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.TargetHealthParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceELB, err.Error()), nil
	}
	if p.TargetGroupARN == "" {
		return paramFail(types.ServiceELB, "target_group_arn is required"), nil
	}

	lb, err := clients.LoadBalancing(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceELB, err), nil
	}

	targets, err := lb.TargetHealth(ctx, p.TargetGroupARN)
	if err != nil {
		return apiFail(types.ServiceELB, err), nil
	}

	healthy := 0
	unhealthyStates := []string{}

	for _, target := range targets {
		if strings.EqualFold(target.State, "healthy") {
			healthy++
		} else {
			unhealthyStates = append(unhealthyStates, fmt.Sprintf("%s=%s", target.TargetID, target.State))
		}
	}

	evidence := fmt.Sprintf("%d/%d targets healthy", healthy, len(targets))
	if len(unhealthyStates) > 0 {
		evidence += " (" + strings.Join(unhealthyStates, ", ") + ")"
	}

	data := map[string]any{
		"healthyCount": healthy,
		"targetCount":  len(targets),
	}

	return compare(req.Check.Operator, healthy, p.Expected, evidence, data), nil
}

func elbListenerCount(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.ListenerCountParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceELB, err.Error()), nil
	}
	if p.LoadBalancerARN == "" {
		return paramFail(types.ServiceELB, "load_balancer_arn is required"), nil
	}

	lb, err := clients.LoadBalancing(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceELB, err), nil
	}

	listeners, err := lb.Listeners(ctx, p.LoadBalancerARN)
	if err != nil {
		return apiFail(types.ServiceELB, err), nil
	}

	ports := make([]string, len(listeners))
	for i, listener := range listeners {
		ports[i] = fmt.Sprintf("%s:%d", listener.Protocol, listener.Port)
	}

	evidence := fmt.Sprintf("%d listeners", len(listeners))
	if len(ports) > 0 {
		evidence += " (" + strings.Join(ports, ", ") + ")"
	}

	data := map[string]any{"count": len(listeners)}
	return compare(req.Check.Operator, len(listeners), p.Expected, evidence, data), nil
}
