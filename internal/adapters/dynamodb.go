package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/driftwatch/driftwatch/internal/gateway"
	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/types"
)

func dynamodbChecks() map[string]Func {
	return map[string]Func{
		"table_status":       dynamodbTableStatus,
		"billing_mode":       dynamodbBillingMode,
		"encryption_enabled": dynamodbEncryptionEnabled,
		"backup_enabled":     dynamodbBackupEnabled,
	}
}

func tableData(table gateway.Table) map[string]any {
	return map[string]any{
		"table":             table.Name,
		"status":            table.Status,
		"billingMode":       table.BillingMode,
		"itemCount":         table.ItemCount,
		"encryptionEnabled": table.EncryptionEnabled,
		"encryptionType":    table.EncryptionType,
	}
}

func describeTable(ctx context.Context, req Request, clients gateway.Clients, name string) (gateway.Table, *invariants.CheckResult) {
	tables, err := clients.Tables(req.Check.Region)
	if err != nil {
		result := apiFail(types.ServiceDynamoDB, err)
		return gateway.Table{}, &result
	}

	table, err := tables.DescribeTable(ctx, name)
	if errors.Is(err, gateway.ErrNotFound) {
		result := missing(fmt.Sprintf("table %s exists", name), "table not found", err)
		return gateway.Table{}, &result
	}
	if err != nil {
		result := apiFail(types.ServiceDynamoDB, err)
		return gateway.Table{}, &result
	}

	return table, nil
}

func dynamodbTableStatus(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.TableParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceDynamoDB, err.Error()), nil
	}
	if p.Table == "" {
		return paramFail(types.ServiceDynamoDB, "table is required"), nil
	}

	table, failed := describeTable(ctx, req, clients, p.Table)
	if failed != nil {
		return *failed, nil
	}

	expected := p.Expected
	if expected == nil {
		expected = "ACTIVE"
	}

	evidence := fmt.Sprintf("table %s is %s (%d items)", table.Name, table.Status, table.ItemCount)
	return compare(req.Check.Operator, table.Status, expected, evidence, tableData(table)), nil
}

func dynamodbBillingMode(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.TableParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceDynamoDB, err.Error()), nil
	}
	if p.Table == "" {
		return paramFail(types.ServiceDynamoDB, "table is required"), nil
	}

	table, failed := describeTable(ctx, req, clients, p.Table)
	if failed != nil {
		return *failed, nil
	}

	evidence := fmt.Sprintf("table %s billing mode is %s", table.Name, table.BillingMode)
	return compare(req.Check.Operator, table.BillingMode, p.Expected, evidence, tableData(table)), nil
}

func dynamodbEncryptionEnabled(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.TableParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceDynamoDB, err.Error()), nil
	}
	if p.Table == "" {
		return paramFail(types.ServiceDynamoDB, "table is required"), nil
	}

	table, failed := describeTable(ctx, req, clients, p.Table)
	if failed != nil {
		return *failed, nil
	}

	expected := fmt.Sprintf("table %s has server-side encryption", p.Table)
	evidence := fmt.Sprintf("table %s encryption enabled=%t type=%s", table.Name, table.EncryptionEnabled, table.EncryptionType)

	if !table.EncryptionEnabled {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: evidence,
			Reason:   "server-side encryption is not enabled",
			Data:     tableData(table),
		}, nil
	}

	return found(expected, evidence, tableData(table)), nil
}

func dynamodbBackupEnabled(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.TableParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceDynamoDB, err.Error()), nil
	}
	if p.Table == "" {
		return paramFail(types.ServiceDynamoDB, "table is required"), nil
	}

	tables, err := clients.Tables(req.Check.Region)
	if err != nil {
		return apiFail(types.ServiceDynamoDB, err), nil
	}

	expected := fmt.Sprintf("table %s has point-in-time recovery", p.Table)

	backups, err := tables.ContinuousBackups(ctx, p.Table)
	if errors.Is(err, gateway.ErrNotFound) {
		return missing(expected, "table not found", err), nil
	}
	if err != nil {
		return apiFail(types.ServiceDynamoDB, err), nil
	}

	evidence := fmt.Sprintf("table %s point-in-time recovery=%t", p.Table, backups.PointInTimeRecovery)
	data := map[string]any{"pointInTimeRecovery": backups.PointInTimeRecovery}

	if !backups.PointInTimeRecovery {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: evidence,
			Reason:   "point-in-time recovery is not enabled",
			Data:     data,
		}, nil
	}

	return found(expected, evidence, data), nil
}
