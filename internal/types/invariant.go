package types

// Status values carried by InvariantGroup.LastStatus, EvaluationRun.Status and
// per-check results. PENDING only ever appears on a group that has not been
// evaluated yet.
const (
	StatusPending = "PENDING"
	StatusPass    = "PASS"
	StatusFail    = "FAIL"
)

// Check scope. Regional checks require a region on the check itself; global
// services (IAM, Route53, CloudFront) ignore it.
const (
	ScopeGlobal   = "GLOBAL"
	ScopeRegional = "REGIONAL"
)

// Comparison operators applied between an observed and an expected value.
const (
	OpEquals              = "EQUALS"
	OpNotEquals           = "NOT_EQUALS"
	OpContains            = "CONTAINS"
	OpNotContains         = "NOT_CONTAINS"
	OpGreaterThan         = "GREATER_THAN"
	OpLessThan            = "LESS_THAN"
	OpGreaterThanOrEquals = "GREATER_THAN_OR_EQUALS"
	OpLessThanOrEquals    = "LESS_THAN_OR_EQUALS"
	OpInList              = "IN_LIST"
	OpNotInList           = "NOT_IN_LIST"
	OpIsEmpty             = "IS_EMPTY"
	OpIsNotEmpty          = "IS_NOT_EMPTY"
)

var Operators = []string{
	OpEquals,
	OpNotEquals,
	OpContains,
	OpNotContains,
	OpGreaterThan,
	OpLessThan,
	OpGreaterThanOrEquals,
	OpLessThanOrEquals,
	OpInList,
	OpNotInList,
	OpIsEmpty,
	OpIsNotEmpty,
}

// Supported resource services.
const (
	ServiceEC2        = "ec2"
	ServiceELB        = "elb"
	ServiceRoute53    = "route53"
	ServiceIAM        = "iam"
	ServiceS3         = "s3"
	ServiceRDS        = "rds"
	ServiceECS        = "ecs"
	ServiceDynamoDB   = "dynamodb"
	ServiceLambda     = "lambda"
	ServiceCloudFront = "cloudfront"
	ServiceConfig     = "config"
	ServiceNetwork    = "network"
	ServiceDatabase   = "database"
)

// GlobalServices are not region-scoped; checks against them use ScopeGlobal.
var GlobalServices = map[string]bool{
	ServiceRoute53:    true,
	ServiceIAM:        true,
	ServiceCloudFront: true,
	ServiceNetwork:    true,
	ServiceDatabase:   true,
}

func ValidOperator(op string) bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}
