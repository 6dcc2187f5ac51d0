package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/driftwatch/driftwatch/internal/gateway"
	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/types"
)

// Network probes bypass the resource gateway entirely: ping shells out to the
// OS ping utility and the HTTP probe uses a short-timeout GET.

const (
	defaultPingCount      = 3
	defaultProbeTimeout   = 10 // seconds
	maxProbeResponseBytes = 1 << 20
)

var (
	pingTimePattern = regexp.MustCompile(`time[=<]([\d.]+)\s*ms`)
	pingRTTPattern  = regexp.MustCompile(`=\s*[\d.]+/([\d.]+)/`)
)

func networkChecks() map[string]Func {
	return map[string]Func{
		"ping": networkPing,
		"http": networkHTTP,
	}
}

func networkPing(ctx context.Context, req Request, _ gateway.Clients) (invariants.CheckResult, error) {
	var p types.PingParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceNetwork, err.Error()), nil
	}
	if p.Host == "" {
		return paramFail(types.ServiceNetwork, "host is required"), nil
	}

	count := p.Count
	if count <= 0 {
		count = defaultPingCount
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	cctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(cctx, "ping", "-c", strconv.Itoa(count), "-W", strconv.Itoa(timeout), p.Host)
	output, err := cmd.CombinedOutput()

	expected := fmt.Sprintf("host %s responds to ICMP echo", p.Host)

	if err != nil {
		reason := err.Error()
		if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
			reason = lastLine(trimmed)
		}

		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: fmt.Sprintf("host %s is unreachable", p.Host),
			Reason:   reason,
		}, nil
	}

	latency, ok := parsePingLatency(string(output))
	evidence := fmt.Sprintf("host %s reachable", p.Host)
	data := map[string]any{"host": p.Host, "reachable": true}

	if ok {
		evidence = fmt.Sprintf("host %s reachable, avg rtt %.2f ms", p.Host, latency)
		data["latencyMs"] = latency
	}

	return found(expected, evidence, data), nil
}

// parsePingLatency prefers the rtt min/avg/max summary line and falls back to
// the last per-packet time= sample.
func parsePingLatency(output string) (float64, bool) {
	if m := pingRTTPattern.FindStringSubmatch(output); m != nil {
		if avg, err := strconv.ParseFloat(m[1], 64); err == nil {
			return avg, true
		}
	}

	matches := pingTimePattern.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return 0, false
	}

	last, err := strconv.ParseFloat(matches[len(matches)-1][1], 64)
	if err != nil {
		return 0, false
	}

	return last, true
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func networkHTTP(ctx context.Context, req Request, _ gateway.Clients) (invariants.CheckResult, error) {
	var p types.HTTPParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceNetwork, err.Error()), nil
	}
	if p.URL == "" {
		return paramFail(types.ServiceNetwork, "url is required"), nil
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	client := &http.Client{
		Timeout: time.Duration(timeout) * time.Second,
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return paramFail(types.ServiceNetwork, err.Error()), nil
	}

	expected := fmt.Sprintf("GET %s succeeds", p.URL)

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: fmt.Sprintf("GET %s failed", p.URL),
			Reason:   err.Error(),
		}, nil
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxProbeResponseBytes))

	evidence := fmt.Sprintf("GET %s -> %s in %d ms", p.URL, resp.Status, elapsed.Milliseconds())
	data := map[string]any{
		"statusCode":     resp.StatusCode,
		"responseTimeMs": elapsed.Milliseconds(),
	}

	if resp.StatusCode >= 400 {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: evidence,
			Reason:   "unexpected status code: " + resp.Status,
			Data:     data,
		}, nil
	}

	if p.BodyContains != "" && !strings.Contains(string(body), p.BodyContains) {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: fmt.Sprintf("response body contains %q", p.BodyContains),
			Observed: evidence,
			Reason:   fmt.Sprintf("%q not found in response body", p.BodyContains),
			Data:     data,
		}, nil
	}

	return found(expected, evidence, data), nil
}
