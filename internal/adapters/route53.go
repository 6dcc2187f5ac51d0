package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/driftwatch/driftwatch/internal/gateway"
	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/types"
)

func route53Checks() map[string]Func {
	return map[string]Func{
		"record_exists": route53RecordExists,
		"record_value":  route53RecordValue,
		"record_count":  route53RecordCount,
	}
}

// recordName comparisons are case-insensitive and ignore the trailing dot the
// zone API appends.
func sameRecordName(a, b string) bool {
	return strings.EqualFold(strings.TrimSuffix(a, "."), strings.TrimSuffix(b, "."))
}

func findRecord(ctx context.Context, dns gateway.DNSService, zoneID, name, recordType string) (gateway.Record, bool, error) {
	token := ""
	scanned := 0

	for {
		page, next, err := dns.Records(ctx, zoneID, token)
		if err != nil {
			return gateway.Record{}, false, err
		}

		for _, record := range page {
			scanned++
			if sameRecordName(record.Name, name) && strings.EqualFold(record.Type, recordType) {
				return record, true, nil
			}
		}

		if next == "" || scanned >= listScanCap {
			return gateway.Record{}, false, nil
		}
		token = next
	}
}

func recordData(record gateway.Record) map[string]any {
	values := make([]any, len(record.Values))
	for i, v := range record.Values {
		values[i] = v
	}

	data := map[string]any{
		"name":   record.Name,
		"type":   record.Type,
		"ttl":    record.TTL,
		"values": values,
	}

	if len(record.Values) > 0 {
		data["value"] = record.Values[0]
	}

	return data
}

func route53RecordExists(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.RecordParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceRoute53, err.Error()), nil
	}
	if p.ZoneID == "" || p.RecordName == "" || p.RecordType == "" {
		return paramFail(types.ServiceRoute53, "zone_id, record_name and record_type are required"), nil
	}

	dns, err := clients.DNS()
	if err != nil {
		return apiFail(types.ServiceRoute53, err), nil
	}

	record, ok, err := findRecord(ctx, dns, p.ZoneID, p.RecordName, p.RecordType)
	if err != nil {
		return apiFail(types.ServiceRoute53, err), nil
	}

	expected := fmt.Sprintf("%s record %s exists in zone %s", p.RecordType, p.RecordName, p.ZoneID)

	if !ok {
		return missing(expected, "record not found", gateway.ErrNotFound), nil
	}

	evidence := fmt.Sprintf("%s %s -> %s (TTL %d)", record.Type, record.Name, strings.Join(record.Values, ", "), record.TTL)
	return found(expected, evidence, recordData(record)), nil
}

func route53RecordValue(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.RecordParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceRoute53, err.Error()), nil
	}
	if p.ZoneID == "" || p.RecordName == "" || p.RecordType == "" {
		return paramFail(types.ServiceRoute53, "zone_id, record_name and record_type are required"), nil
	}

	dns, err := clients.DNS()
	if err != nil {
		return apiFail(types.ServiceRoute53, err), nil
	}

	record, ok, err := findRecord(ctx, dns, p.ZoneID, p.RecordName, p.RecordType)
	if err != nil {
		return apiFail(types.ServiceRoute53, err), nil
	}

	if !ok {
		expected := fmt.Sprintf("%s record %s exists in zone %s", p.RecordType, p.RecordName, p.ZoneID)
		return missing(expected, "record not found", gateway.ErrNotFound), nil
	}

	// Single-value records compare the value itself so EQUALS works as
	// naturally as CONTAINS does for multi-value sets.
	var observed any = record.Values

	if len(record.Values) == 1 {
		observed = record.Values[0]
	}

	evidence := fmt.Sprintf("%s %s -> %s", record.Type, record.Name, strings.Join(record.Values, ", "))
	return compare(req.Check.Operator, observed, p.Expected, evidence, recordData(record)), nil
}

func route53RecordCount(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	var p types.RecordCountParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceRoute53, err.Error()), nil
	}
	if p.ZoneID == "" {
		return paramFail(types.ServiceRoute53, "zone_id is required"), nil
	}

	dns, err := clients.DNS()
	if err != nil {
		return apiFail(types.ServiceRoute53, err), nil
	}

	count := 0
	scanned := 0
	token := ""

	for {
		page, next, err := dns.Records(ctx, p.ZoneID, token)
		if err != nil {
			return apiFail(types.ServiceRoute53, err), nil
		}

		for _, record := range page {
			scanned++
			if p.RecordType == "" || strings.EqualFold(record.Type, p.RecordType) {
				count++
			}
		}

		if next == "" || scanned >= listScanCap {
			break
		}
		token = next
	}

	label := "records"
	if p.RecordType != "" {
		label = strings.ToUpper(p.RecordType) + " records"
	}

	evidence := fmt.Sprintf("%d %s in zone %s", count, label, p.ZoneID)
	return compare(req.Check.Operator, count, p.Expected, evidence, map[string]any{"count": count}), nil
}
