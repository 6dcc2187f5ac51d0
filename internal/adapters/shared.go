package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/types"
)

var serviceLabels = map[string]string{
	types.ServiceEC2:        "EC2",
	types.ServiceELB:        "ELBv2",
	types.ServiceRoute53:    "Route 53",
	types.ServiceIAM:        "IAM",
	types.ServiceS3:         "S3",
	types.ServiceRDS:        "RDS",
	types.ServiceECS:        "ECS",
	types.ServiceDynamoDB:   "DynamoDB",
	types.ServiceLambda:     "Lambda",
	types.ServiceCloudFront: "CloudFront",
	types.ServiceConfig:     "Config",
	types.ServiceNetwork:    "Network",
	types.ServiceDatabase:   "Database",
}

func serviceLabel(service string) string {
	if label, ok := serviceLabels[service]; ok {
		return label
	}
	return service
}

// decodeParams maps the generic parameter map onto a typed parameter struct.
func decodeParams(params map[string]any, out any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// apiFail captures an operational API failure as a FAIL result.
func apiFail(service string, err error) invariants.CheckResult {
	return invariants.CheckResult{
		Status:   types.StatusFail,
		Expected: fmt.Sprintf("Successful %s API call", serviceLabel(service)),
		Reason:   err.Error(),
	}
}

// paramFail captures a parameter validation failure as a FAIL result.
func paramFail(service, reason string) invariants.CheckResult {
	return invariants.CheckResult{
		Status:   types.StatusFail,
		Expected: fmt.Sprintf("Valid %s check parameters", serviceLabel(service)),
		Reason:   reason,
	}
}

// missing builds the FAIL result for a resource that does not exist.
func missing(expected, observed string, err error) invariants.CheckResult {
	return invariants.CheckResult{
		Status:   types.StatusFail,
		Expected: expected,
		Observed: observed,
		Reason:   err.Error(),
	}
}

// found builds the PASS result for an existence check.
func found(expected, evidence string, data map[string]any) invariants.CheckResult {
	return invariants.CheckResult{
		Status:   types.StatusPass,
		Expected: expected,
		Observed: evidence,
		Data:     data,
	}
}

// compare delegates the final verdict to the operator evaluator.
func compare(operator string, observed, expected any, evidence string, data map[string]any) invariants.CheckResult {
	verdict := invariants.EvaluateOperator(operator, observed, expected)

	status := types.StatusFail
	if verdict.Passed {
		status = types.StatusPass
	}

	return invariants.CheckResult{
		Status:   status,
		Expected: expectedLabel(operator, expected),
		Observed: evidence,
		Reason:   verdict.Reason,
		Data:     data,
	}
}

func expectedLabel(operator string, expected any) string {
	if operator == "" || operator == types.OpEquals {
		return invariants.Stringify(expected)
	}

	if expected == nil {
		return operator
	}

	return operator + " " + invariants.Stringify(expected)
}
