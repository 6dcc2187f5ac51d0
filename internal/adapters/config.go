package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/driftwatch/driftwatch/internal/gateway"
	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/types"
)

func configChecks() map[string]Func {
	return map[string]Func{
		"recorder_exists":    configRecorderExists,
		"recorder_recording": configRecorderRecording,
	}
}

func listRecorders(ctx context.Context, req Request, clients gateway.Clients) ([]gateway.Recorder, *invariants.CheckResult) {
	compliance, err := clients.Compliance(req.Check.Region)
	if err != nil {
		result := apiFail(types.ServiceConfig, err)
		return nil, &result
	}

	recorders, err := compliance.Recorders(ctx)
	if err != nil {
		result := apiFail(types.ServiceConfig, err)
		return nil, &result
	}

	return recorders, nil
}

func recorderEvidence(recorders []gateway.Recorder) string {
	if len(recorders) == 0 {
		return "no configuration recorders"
	}

	parts := make([]string, len(recorders))
	for i, recorder := range recorders {
		parts[i] = fmt.Sprintf("%s recording=%t", recorder.Name, recorder.Recording)
	}

	return strings.Join(parts, ", ")
}

func configRecorderExists(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	recorders, failed := listRecorders(ctx, req, clients)
	if failed != nil {
		return *failed, nil
	}

	expected := "a configuration recorder exists"
	data := map[string]any{"recorderCount": len(recorders)}

	if len(recorders) == 0 {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: recorderEvidence(recorders),
			Reason:   "no configuration recorder is set up",
			Data:     data,
		}, nil
	}

	return found(expected, recorderEvidence(recorders), data), nil
}

func configRecorderRecording(ctx context.Context, req Request, clients gateway.Clients) (invariants.CheckResult, error) {
	recorders, failed := listRecorders(ctx, req, clients)
	if failed != nil {
		return *failed, nil
	}

	expected := "a configuration recorder is recording"
	recording := false

	for _, recorder := range recorders {
		if recorder.Recording {
			recording = true
			break
		}
	}

	data := map[string]any{
		"recorderCount": len(recorders),
		"recording":     recording,
	}

	if !recording {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: recorderEvidence(recorders),
			Reason:   "no configuration recorder is recording",
			Data:     data,
		}, nil
	}

	return found(expected, recorderEvidence(recorders), data), nil
}
