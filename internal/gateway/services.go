package gateway

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned (wrapped) by drivers when the addressed resource
// does not exist. Adapters use it to distinguish a missing resource from an
// API failure when wording evidence; both outcomes are a FAIL result.
var ErrNotFound = errors.New("resource not found")

// Clients is the read-only capability set one resolved cloud account exposes.
// Regional capabilities take an explicit region; global ones do not. The
// engine never issues mutating calls through any of these interfaces.
type Clients interface {
	Compute(region string) (ComputeService, error)
	LoadBalancing(region string) (LoadBalancingService, error)
	DNS() (DNSService, error)
	Identity() (IdentityService, error)
	Storage(region string) (StorageService, error)
	RelationalDB(region string) (RelationalDBService, error)
	Containers(region string) (ContainerService, error)
	Tables(region string) (TableService, error)
	Functions(region string) (FunctionService, error)
	CDN() (CDNService, error)
	Compliance(region string) (ComplianceService, error)
}

type Instance struct {
	ID        string
	Name      string
	State     string
	Type      string
	PublicIP  string
	PrivateIP string
	AZ        string
	Tags      map[string]string
}

type ComputeService interface {
	DescribeInstance(ctx context.Context, instanceID string) (Instance, error)
	// ListInstances pages through the account's instances; an empty returned
	// token means the last page.
	ListInstances(ctx context.Context, pageToken string) ([]Instance, string, error)
}

type TargetHealth struct {
	TargetID string
	Port     int
	State    string // "healthy", "unhealthy", "draining", ...
	Reason   string
}

type Listener struct {
	ARN      string
	Port     int
	Protocol string
}

type LoadBalancingService interface {
	TargetHealth(ctx context.Context, targetGroupARN string) ([]TargetHealth, error)
	Listeners(ctx context.Context, loadBalancerARN string) ([]Listener, error)
}

type Record struct {
	Name   string
	Type   string
	TTL    int
	Values []string
}

type DNSService interface {
	Records(ctx context.Context, zoneID, pageToken string) ([]Record, string, error)
}

type Role struct {
	Name      string
	ARN       string
	CreatedAt time.Time
}

type AttachedPolicy struct {
	Name string
	ARN  string
}

type Policy struct {
	Name            string
	ARN             string
	AttachmentCount int
}

type IdentityService interface {
	GetRole(ctx context.Context, roleName string) (Role, error)
	AttachedRolePolicies(ctx context.Context, roleName string) ([]AttachedPolicy, error)
	GetPolicy(ctx context.Context, policyARN string) (Policy, error)
}

type Bucket struct {
	Name   string
	Region string
}

type Object struct {
	Key          string
	Size         int64
	StorageClass string
	LastModified time.Time
}

type LifecycleRule struct {
	ID     string
	Status string
	Prefix string
}

type PublicAccessBlock struct {
	BlockPublicACLs       bool
	IgnorePublicACLs      bool
	BlockPublicPolicy     bool
	RestrictPublicBuckets bool
}

type StorageService interface {
	HeadBucket(ctx context.Context, bucket string) (Bucket, error)
	HeadObject(ctx context.Context, bucket, key string) (Object, error)
	ListObjects(ctx context.Context, bucket, prefix, pageToken string) ([]Object, string, error)
	LifecycleRules(ctx context.Context, bucket string) ([]LifecycleRule, error)
	GetPublicAccessBlock(ctx context.Context, bucket string) (PublicAccessBlock, error)
	// GetBucketPolicy returns the policy document and whether one exists.
	GetBucketPolicy(ctx context.Context, bucket string) (string, bool, error)
}

type DBInstance struct {
	ID        string
	Status    string
	Engine    string
	Version   string
	Class     string
	MultiAZ   bool
	Encrypted bool
}

type RelationalDBService interface {
	DescribeInstance(ctx context.Context, instanceID string) (DBInstance, error)
	ListInstances(ctx context.Context, pageToken string) ([]DBInstance, string, error)
}

type Cluster struct {
	Name           string
	Status         string
	ActiveServices int
	RunningTasks   int
}

type Service struct {
	Name         string
	Status       string
	DesiredCount int
	RunningCount int
	PendingCount int
}

type ContainerService interface {
	DescribeCluster(ctx context.Context, cluster string) (Cluster, error)
	DescribeService(ctx context.Context, cluster, service string) (Service, error)
}

type Table struct {
	Name              string
	Status            string
	BillingMode       string
	ItemCount         int64
	EncryptionEnabled bool
	EncryptionType    string
}

type TableBackups struct {
	PointInTimeRecovery bool
}

type TableService interface {
	DescribeTable(ctx context.Context, table string) (Table, error)
	ContinuousBackups(ctx context.Context, table string) (TableBackups, error)
}

type Function struct {
	Name        string
	Runtime     string
	State       string
	VPCSubnets  []string
	Environment map[string]string
	Layers      []string
	DLQTarget   string
}

type FunctionURLConfig struct {
	URL      string
	AuthType string
}

type FunctionService interface {
	GetFunction(ctx context.Context, name string) (Function, error)
	// ReservedConcurrency reports the configured limit and whether one is set.
	ReservedConcurrency(ctx context.Context, name string) (int, bool, error)
	// GetURLConfig reports the function URL config and whether one exists.
	GetURLConfig(ctx context.Context, name string) (FunctionURLConfig, bool, error)
	ListFunctions(ctx context.Context, pageToken string) ([]Function, string, error)
}

type Origin struct {
	ID     string
	Domain string
	OACID  string
}

type Distribution struct {
	ID         string
	DomainName string
	Status     string
	Enabled    bool
	Origins    []Origin
	WebACLID   string
}

type CDNService interface {
	GetDistribution(ctx context.Context, distributionID string) (Distribution, error)
}

type Recorder struct {
	Name         string
	Recording    bool
	AllSupported bool
}

type ComplianceService interface {
	Recorders(ctx context.Context) ([]Recorder, error)
}
