package types

// Per-check parameter shapes, decoded from the generic parameter map a Check
// stores. The map stays untyped at the persistence boundary so that new fields
// round-trip; adapters decode into the struct matching their (service, type).
//
// `expected` is deliberately untyped: it is the right-hand side handed to the
// operator evaluator and may be a scalar, a list, or a JSON-array string.

type InstanceParams struct {
	InstanceID string `json:"instance_id"`
	Expected   any    `json:"expected"`
}

type InstanceCountParams struct {
	State      string `json:"state,omitempty"`
	NamePrefix string `json:"name_prefix,omitempty"`
	TagKey     string `json:"tag_key,omitempty"`
	TagValue   string `json:"tag_value,omitempty"`
	Expected   any    `json:"expected"`
}

type TargetHealthParams struct {
	TargetGroupARN string `json:"target_group_arn"`
	Expected       any    `json:"expected"`
}

type ListenerCountParams struct {
	LoadBalancerARN string `json:"load_balancer_arn"`
	Expected        any    `json:"expected"`
}

type RecordParams struct {
	ZoneID     string `json:"zone_id"`
	RecordName string `json:"record_name"`
	RecordType string `json:"record_type"`
	Expected   any    `json:"expected,omitempty"`
}

type RecordCountParams struct {
	ZoneID     string `json:"zone_id"`
	RecordType string `json:"record_type,omitempty"`
	Expected   any    `json:"expected"`
}

type RoleParams struct {
	RoleName string `json:"role_name"`
}

type RolePolicyParams struct {
	RoleName  string `json:"role_name"`
	PolicyARN string `json:"policy_arn"`
}

type PolicyParams struct {
	PolicyARN string `json:"policy_arn"`
}

type BucketParams struct {
	Bucket   string `json:"bucket"`
	Expected any    `json:"expected,omitempty"`
}

type ObjectParams struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

type ObjectCountParams struct {
	Bucket   string `json:"bucket"`
	Prefix   string `json:"prefix,omitempty"`
	Expected any    `json:"expected"`
}

type DBInstanceParams struct {
	InstanceID string `json:"instance_id"`
	Expected   any    `json:"expected,omitempty"`
}

type DBInstanceCountParams struct {
	Engine   string `json:"engine,omitempty"`
	Expected any    `json:"expected"`
}

type ClusterParams struct {
	Cluster string `json:"cluster"`
}

type ECSServiceParams struct {
	Cluster  string `json:"cluster"`
	Service  string `json:"service"`
	Expected any    `json:"expected,omitempty"`
}

type TableParams struct {
	Table    string `json:"table"`
	Expected any    `json:"expected,omitempty"`
}

type FunctionParams struct {
	FunctionName string `json:"function_name"`
	EnvKey       string `json:"env_key,omitempty"`
	Expected     any    `json:"expected,omitempty"`
}

type FunctionCountParams struct {
	NamePrefix string `json:"name_prefix,omitempty"`
	Expected   any    `json:"expected"`
}

type DistributionParams struct {
	DistributionID string `json:"distribution_id"`
	Expected       any    `json:"expected,omitempty"`
}

type PingParams struct {
	Host    string `json:"host"`
	Count   int    `json:"count,omitempty"`   // echo requests, default 3
	Timeout int    `json:"timeout,omitempty"` // seconds, default 10
}

type HTTPParams struct {
	URL          string `json:"url"`
	BodyContains string `json:"body_contains,omitempty"`
	Timeout      int    `json:"timeout,omitempty"` // seconds, default 10
}

type ConnectivityParams struct {
	Type     string `json:"type"` // "mysql", "postgres"
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	Timeout  int    `json:"timeout,omitempty"`
	SSLMode  string `json:"ssl_mode,omitempty"` // For postgres
}
