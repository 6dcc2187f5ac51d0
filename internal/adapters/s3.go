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

func s3Checks() map[string]Func {
	return map[string]Func{
		"bucket_exists":         s3BucketExists,
		"object_exists":         s3ObjectExists,
		"object_count":          s3ObjectCount,
		"lifecycle_rule_exists": s3LifecycleRuleExists,
		"public_access_block":   s3PublicAccessBlock,
		"bucket_policy_exists":  s3BucketPolicyExists,
	}
}

func s3BucketExists(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.BucketParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceS3, err.Error()), nil
	}
	if p.Bucket == "" {
		return paramFail(types.ServiceS3, "bucket is required"), nil
	}

	storage, err := clients.Storage(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceS3, err), nil
	}

	expected := fmt.Sprintf("bucket %s exists", p.Bucket)

	bucket, err := storage.HeadBucket(ctx, p.Bucket)
	if errors.Is(err, gateway.ErrNotFound) {
		return missing(expected, "bucket not found", err), nil
	}
	if err != nil {
		return apiFail(types.ServiceS3, err), nil
	}

	evidence := fmt.Sprintf("bucket %s in %s", bucket.Name, bucket.Region)
	data := map[string]any{
		"bucket": bucket.Name,
		"region": bucket.Region,
	}

	return found(expected, evidence, data), nil
}

func s3ObjectExists(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.ObjectParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceS3, err.Error()), nil
	}
	if p.Bucket == "" || p.Key == "" {
		return paramFail(types.ServiceS3, "bucket and key are required"), nil
	}

	storage, err := clients.Storage(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceS3, err), nil
	}

	expected := fmt.Sprintf("object s3://%s/%s exists", p.Bucket, p.Key)

	object, err := storage.HeadObject(ctx, p.Bucket, p.Key)
	if errors.Is(err, gateway.ErrNotFound) {
		return missing(expected, "object not found", err), nil
	}
	if err != nil {
		return apiFail(types.ServiceS3, err), nil
	}

	evidence := fmt.Sprintf("object %s (%d bytes, %s, modified %s)",
		object.Key, object.Size, object.StorageClass, object.LastModified.Format("2006-01-02 15:04:05"))
	data := map[string]any{
		"key":          object.Key,
		"size":         object.Size,
		"storageClass": object.StorageClass,
	}

	return found(expected, evidence, data), nil
}

func s3ObjectCount(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.ObjectCountParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceS3, err.Error()), nil
	}
	if p.Bucket == "" {
		return paramFail(types.ServiceS3, "bucket is required"), nil
	}

	storage, err := clients.Storage(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceS3, err), nil
	}

	count := 0
	token := ""

	for {
		page, next, err := storage.ListObjects(ctx, p.Bucket, p.Prefix, token)
		if err != nil {
			return apiFail(types.ServiceS3, err), nil
		}

		count += len(page)

		if next == "" || count >= listScanCap {
			break
		}
		token = next
	}

	evidence := fmt.Sprintf("%d objects in %s", count, p.Bucket)
	if p.Prefix != "" {
		evidence += fmt.Sprintf(" under prefix %q", p.Prefix)
	}

	return compare(req.Check.Operator, count, p.Expected, evidence, map[string]any{"count": count}), nil
}

func s3LifecycleRuleExists(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.BucketParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceS3, err.Error()), nil
	}
	if p.Bucket == "" {
		return paramFail(types.ServiceS3, "bucket is required"), nil
	}

	storage, err := clients.Storage(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceS3, err), nil
	}

	expected := fmt.Sprintf("bucket %s has lifecycle rules", p.Bucket)

	rules, err := storage.LifecycleRules(ctx, p.Bucket)
	if errors.Is(err, gateway.ErrNotFound) {
		return missing(expected, "no lifecycle configuration", err), nil
	}
	if err != nil {
		return apiFail(types.ServiceS3, err), nil
	}

	enabled := 0
	ids := make([]string, len(rules))

	for i, rule := range rules {
		ids[i] = rule.ID
		if strings.EqualFold(rule.Status, "Enabled") {
			enabled++
		}
	}

	evidence := fmt.Sprintf("%d lifecycle rules (%d enabled): %s", len(rules), enabled, strings.Join(ids, ", "))
	data := map[string]any{
		"ruleCount":    len(rules),
		"enabledCount": enabled,
	}

	if enabled == 0 {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: evidence,
			Reason:   "no enabled lifecycle rules",
			Data:     data,
		}, nil
	}

	return found(expected, evidence, data), nil
}

func s3PublicAccessBlock(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.BucketParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceS3, err.Error()), nil
	}
	if p.Bucket == "" {
		return paramFail(types.ServiceS3, "bucket is required"), nil
	}

	storage, err := clients.Storage(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceS3, err), nil
	}

	expected := fmt.Sprintf("bucket %s blocks all public access", p.Bucket)

	block, err := storage.GetPublicAccessBlock(ctx, p.Bucket)
	if errors.Is(err, gateway.ErrNotFound) {
		return missing(expected, "no public access block configuration", err), nil
	}
	if err != nil {
		return apiFail(types.ServiceS3, err), nil
	}

	allBlocked := block.BlockPublicACLs && block.IgnorePublicACLs && block.BlockPublicPolicy && block.RestrictPublicBuckets
	evidence := fmt.Sprintf("BlockPublicAcls=%t IgnorePublicAcls=%t BlockPublicPolicy=%t RestrictPublicBuckets=%t",
		block.BlockPublicACLs, block.IgnorePublicACLs, block.BlockPublicPolicy, block.RestrictPublicBuckets)
	data := map[string]any{
		"allBlocked":            allBlocked,
		"blockPublicAcls":       block.BlockPublicACLs,
		"ignorePublicAcls":      block.IgnorePublicACLs,
		"blockPublicPolicy":     block.BlockPublicPolicy,
		"restrictPublicBuckets": block.RestrictPublicBuckets,
	}

	if !allBlocked {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: evidence,
			Reason:   "public access is not fully blocked",
			Data:     data,
		}, nil
	}

	return found(expected, evidence, data), nil
}

func s3BucketPolicyExists(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.BucketParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceS3, err.Error()), nil
	}
	if p.Bucket == "" {
		return paramFail(types.ServiceS3, "bucket is required"), nil
	}

	storage, err := clients.Storage(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceS3, err), nil
	}

	expected := fmt.Sprintf("bucket %s has a bucket policy", p.Bucket)

	policy, ok, err := storage.GetBucketPolicy(ctx, p.Bucket)
	if err != nil && !errors.Is(err, gateway.ErrNotFound) {
		return apiFail(types.ServiceS3, err), nil
	}

	if !ok || policy == "" {
		return missing(expected, "no bucket policy", gateway.ErrNotFound), nil
	}

	evidence := fmt.Sprintf("bucket policy present (%d bytes)", len(policy))
	return found(expected, evidence, map[string]any{"policyLength": len(policy)}), nil
}
