package invariants

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/driftwatch/driftwatch/internal/gateway"
	"github.com/driftwatch/driftwatch/internal/models"
	"github.com/driftwatch/driftwatch/internal/types"
)

const defaultCheckTimeout = 30 * time.Second

// CheckEvaluator dispatches one resolved check to its (service, type) adapter.
// A returned error means the check could not be dispatched at all (unknown
// service or type); operational failures are FAIL results, not errors.
type CheckEvaluator interface {
	Evaluate(ctx context.Context, check models.Check, params map[string]any, clients gateway.Clients) (CheckResult, error)
}

// Engine evaluates invariant groups: it resolves chained parameters, runs each
// check in creation order, persists the run history, and reports status
// transitions. At most one evaluation runs per group at a time.
type Engine struct {
	store        Store
	checks       CheckEvaluator
	factory      gateway.Factory
	assumer      gateway.RoleAssumer
	logger       *zap.Logger
	clock        func() time.Time
	checkTimeout time.Duration
	locks        sync.Map // group ID -> *sync.Mutex
}

func NewEngine(store Store, checks CheckEvaluator, factory gateway.Factory, assumer gateway.RoleAssumer, logger *zap.Logger) *Engine {
	return &Engine{
		store:        store,
		checks:       checks,
		factory:      factory,
		assumer:      assumer,
		logger:       logger,
		clock:        time.Now,
		checkTimeout: defaultCheckTimeout,
	}
}

// SetClock overrides the time source. Must be called before EvaluateGroup.
func (e *Engine) SetClock(clock func() time.Time) {
	e.clock = clock
}

// SetCheckTimeout overrides the per-check deadline.
func (e *Engine) SetCheckTimeout(d time.Duration) {
	e.checkTimeout = d
}

// EvaluateGroup runs every live check of the group in creation order and
// persists one EvaluationRun with one CheckResultLog per check. A group with
// zero checks is skipped: no run is written and the group status is untouched.
func (e *Engine) EvaluateGroup(ctx context.Context, groupID uint) (Outcome, error) {
	mu := e.groupLock(groupID)
	mu.Lock()
	defer mu.Unlock()

	group, err := e.store.Group(groupID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load group %d: %w", groupID, err)
	}

	account, err := e.store.Account(group.CloudAccountID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load cloud account %d for group %d: %w", group.CloudAccountID, groupID, err)
	}

	checks, err := e.store.Checks(groupID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load checks for group %d: %w", groupID, err)
	}

	if len(checks) == 0 {
		return Outcome{
			GroupID:   groupID,
			Status:    group.LastStatus,
			OldStatus: group.LastStatus,
			Results:   []CheckResult{},
			Changed:   false,
			Skipped:   true,
		}, nil
	}

	clients, err := e.clientsFor(ctx, account, checks)
	if err != nil {
		return Outcome{}, err
	}

	// Checks run strictly in creation order: later checks may reference
	// earlier checks' data by alias. Each step threads its own context
	// snapshot.
	chain := Context{}
	results := make([]CheckResult, 0, len(checks))

	for _, check := range checks {
		result := e.evaluateCheck(ctx, check, clients, chain)
		results = append(results, result)

		if check.Alias != "" && result.Data != nil {
			chain = chain.With(check.Alias, result.Data)
		}
	}

	status := types.StatusPass

	for _, result := range results {
		if result.Status != types.StatusPass {
			status = types.StatusFail
			break
		}
	}

	oldStatus := group.LastStatus
	now := e.clock()

	run := models.EvaluationRun{
		GroupID:     groupID,
		Status:      status,
		EvaluatedAt: now,
	}

	logs := make([]models.CheckResultLog, len(results))

	for i, result := range results {
		logs[i] = models.CheckResultLog{
			CheckID:  result.CheckID,
			Status:   result.Status,
			Expected: result.Expected,
			Observed: result.Observed,
			Reason:   result.Reason,
		}
	}

	group.LastStatus = status
	group.LastEvaluatedAt = &now

	if err := e.store.SaveRun(&group, &run, logs); err != nil {
		return Outcome{}, fmt.Errorf("failed to persist run for group %d: %w", groupID, err)
	}

	e.logger.Info("group evaluated",
		zap.Uint("group_id", groupID),
		zap.String("status", status),
		zap.Int("checks", len(results)),
	)

	return Outcome{
		GroupID:   groupID,
		Status:    status,
		OldStatus: oldStatus,
		Results:   results,
		Changed:   status != oldStatus && oldStatus != types.StatusPending,
	}, nil
}

// evaluateCheck is the single boundary that turns dispatch errors into FAIL
// results; nothing below it may abort the group evaluation.
func (e *Engine) evaluateCheck(ctx context.Context, check models.Check, clients gateway.Clients, chain Context) CheckResult {
	params, resolutions := ResolvePlaceholders(map[string]any(check.Parameters), chain)

	cctx, cancel := context.WithTimeout(ctx, e.checkTimeout)
	defer cancel()

	result, err := e.checks.Evaluate(cctx, check, params, clients)
	if err != nil {
		result = CheckResult{
			Status:   types.StatusFail,
			Expected: "Successful API call",
			Reason:   err.Error(),
		}
	}

	result.CheckID = check.ID
	result.Alias = check.Alias

	if len(resolutions) > 0 {
		result.Expected += fmt.Sprintf(" (resolved from %s)", strings.Join(resolutions, ", "))
	}

	return result
}

// clientsFor resolves credentials and builds gateway clients, but only when
// the group actually contains gateway-backed checks; network and database
// probes never touch the cloud API.
func (e *Engine) clientsFor(ctx context.Context, account models.CloudAccount, checks []models.Check) (gateway.Clients, error) {
	needed := false

	for _, check := range checks {
		if check.Service != types.ServiceNetwork && check.Service != types.ServiceDatabase {
			needed = true
			break
		}
	}

	if !needed {
		return nil, nil
	}

	creds, err := gateway.ResolveCredentials(ctx, account, e.assumer)
	if err != nil {
		return nil, err
	}

	clients, err := e.factory.Clients(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway clients for account %q: %w", account.Name, err)
	}

	return clients, nil
}

func (e *Engine) groupLock(groupID uint) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(groupID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Global engine instance
var defaultEngine *Engine

// Initialize wires the global engine and returns it for direct use.
func Initialize(store Store, checks CheckEvaluator, factory gateway.Factory, assumer gateway.RoleAssumer, logger *zap.Logger) *Engine {
	defaultEngine = NewEngine(store, checks, factory, assumer, logger)
	return defaultEngine
}

// EvaluateGroup evaluates a group on the global engine.
func EvaluateGroup(ctx context.Context, groupID uint) (Outcome, error) {
	if defaultEngine == nil {
		return Outcome{}, fmt.Errorf("invariants engine is not initialized")
	}

	return defaultEngine.EvaluateGroup(ctx, groupID)
}
