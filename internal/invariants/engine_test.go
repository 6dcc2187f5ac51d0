package invariants

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/driftwatch/driftwatch/internal/gateway"
	"github.com/driftwatch/driftwatch/internal/models"
	"github.com/driftwatch/driftwatch/internal/types"
)

type fakeStore struct {
	group    models.InvariantGroup
	account  models.CloudAccount
	checks   []models.Check
	groupErr error

	savedGroup *models.InvariantGroup
	savedRun   *models.EvaluationRun
	savedLogs  []models.CheckResultLog
}

func (s *fakeStore) Group(id uint) (models.InvariantGroup, error) {
	if s.groupErr != nil {
		return models.InvariantGroup{}, s.groupErr
	}
	return s.group, nil
}

func (s *fakeStore) Account(id uint) (models.CloudAccount, error) {
	return s.account, nil
}

func (s *fakeStore) Checks(groupID uint) ([]models.Check, error) {
	return s.checks, nil
}

func (s *fakeStore) SaveRun(group *models.InvariantGroup, run *models.EvaluationRun, logs []models.CheckResultLog) error {
	s.savedGroup = group
	s.savedRun = run
	s.savedLogs = logs
	return nil
}

type fakeChecks struct {
	fn func(check models.Check, params map[string]any) (CheckResult, error)
}

func (f fakeChecks) Evaluate(ctx context.Context, check models.Check, params map[string]any, clients gateway.Clients) (CheckResult, error) {
	return f.fn(check, params)
}

type fakeFactory struct{}

func (fakeFactory) Clients(creds gateway.Credentials) (gateway.Clients, error) {
	return nil, nil
}

func testGroup(status string) models.InvariantGroup {
	group := models.InvariantGroup{
		Name:            "prod-web",
		CloudAccountID:  1,
		IntervalMinutes: 5,
		LastStatus:      status,
	}
	group.ID = 7
	return group
}

func testAccount() models.CloudAccount {
	account := models.CloudAccount{
		Name:            "prod",
		AccessKeyID:     "AKIA123",
		SecretAccessKey: "secret",
		DefaultRegion:   "us-east-1",
	}
	account.ID = 1
	return account
}

func networkCheck(id uint, alias string) models.Check {
	check := models.Check{
		GroupID:    7,
		Name:       "probe",
		Service:    types.ServiceNetwork,
		Scope:      types.ScopeGlobal,
		Type:       "http",
		Operator:   types.OpEquals,
		Alias:      alias,
		Parameters: datatypes.JSONMap{"url": "http://example.com"},
	}
	check.ID = id
	return check
}

func newTestEngine(store *fakeStore, fn func(models.Check, map[string]any) (CheckResult, error)) *Engine {
	engine := NewEngine(store, fakeChecks{fn: fn}, fakeFactory{}, nil, zap.NewNop())
	engine.SetClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
	return engine
}

func TestEvaluateGroupSkipsWhenNoChecks(t *testing.T) {
	store := &fakeStore{group: testGroup(types.StatusPass), account: testAccount()}
	engine := newTestEngine(store, nil)

	outcome, err := engine.EvaluateGroup(context.Background(), 7)

	require.NoError(t, err)
	assert.True(t, outcome.Skipped)
	assert.False(t, outcome.Changed)
	assert.Equal(t, types.StatusPass, outcome.Status)
	assert.Nil(t, store.savedRun, "skipped evaluation must not persist a run")
}

func TestEvaluateGroupAllPass(t *testing.T) {
	store := &fakeStore{
		group:   testGroup(types.StatusPass),
		account: testAccount(),
		checks:  []models.Check{networkCheck(1, ""), networkCheck(2, "")},
	}
	engine := newTestEngine(store, func(check models.Check, params map[string]any) (CheckResult, error) {
		return CheckResult{Status: types.StatusPass, Expected: "200", Observed: "200"}, nil
	})

	outcome, err := engine.EvaluateGroup(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, types.StatusPass, outcome.Status)
	assert.False(t, outcome.Changed)
	assert.Len(t, outcome.Results, 2)

	require.NotNil(t, store.savedRun)
	assert.Equal(t, types.StatusPass, store.savedRun.Status)
	assert.Len(t, store.savedLogs, 2)
	assert.Equal(t, types.StatusPass, store.savedGroup.LastStatus)
	require.NotNil(t, store.savedGroup.LastEvaluatedAt)
}

func TestEvaluateGroupSingleFailureFailsGroup(t *testing.T) {
	store := &fakeStore{
		group:   testGroup(types.StatusPass),
		account: testAccount(),
		checks:  []models.Check{networkCheck(1, ""), networkCheck(2, "")},
	}
	engine := newTestEngine(store, func(check models.Check, params map[string]any) (CheckResult, error) {
		if check.ID == 2 {
			return CheckResult{Status: types.StatusFail, Reason: "timeout"}, nil
		}
		return CheckResult{Status: types.StatusPass}, nil
	})

	outcome, err := engine.EvaluateGroup(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, types.StatusFail, outcome.Status)
	assert.True(t, outcome.Changed)
	assert.Equal(t, types.StatusPass, outcome.OldStatus)
}

func TestEvaluateGroupFirstEvaluationNeverCountsAsChange(t *testing.T) {
	store := &fakeStore{
		group:   testGroup(types.StatusPending),
		account: testAccount(),
		checks:  []models.Check{networkCheck(1, "")},
	}
	engine := newTestEngine(store, func(check models.Check, params map[string]any) (CheckResult, error) {
		return CheckResult{Status: types.StatusFail, Reason: "down"}, nil
	})

	outcome, err := engine.EvaluateGroup(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, types.StatusFail, outcome.Status)
	assert.False(t, outcome.Changed, "PENDING to anything is not a transition")
}

func TestEvaluateGroupSustainedFailureIsNotAChange(t *testing.T) {
	store := &fakeStore{
		group:   testGroup(types.StatusFail),
		account: testAccount(),
		checks:  []models.Check{networkCheck(1, "")},
	}
	engine := newTestEngine(store, func(check models.Check, params map[string]any) (CheckResult, error) {
		return CheckResult{Status: types.StatusFail, Reason: "still down"}, nil
	})

	outcome, err := engine.EvaluateGroup(context.Background(), 7)

	require.NoError(t, err)
	assert.False(t, outcome.Changed)
}

func TestEvaluateGroupRecoveryIsAChange(t *testing.T) {
	store := &fakeStore{
		group:   testGroup(types.StatusFail),
		account: testAccount(),
		checks:  []models.Check{networkCheck(1, "")},
	}
	engine := newTestEngine(store, func(check models.Check, params map[string]any) (CheckResult, error) {
		return CheckResult{Status: types.StatusPass}, nil
	})

	outcome, err := engine.EvaluateGroup(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, types.StatusPass, outcome.Status)
	assert.True(t, outcome.Changed)
}

func TestEvaluateGroupChainsAliasData(t *testing.T) {
	first := networkCheck(1, "web")
	second := networkCheck(2, "")
	second.Parameters = datatypes.JSONMap{"url": "http://{{web.publicIp}}/health"}

	var secondParams map[string]any

	store := &fakeStore{
		group:   testGroup(types.StatusPass),
		account: testAccount(),
		checks:  []models.Check{first, second},
	}
	engine := newTestEngine(store, func(check models.Check, params map[string]any) (CheckResult, error) {
		if check.ID == 1 {
			return CheckResult{
				Status: types.StatusPass,
				Data:   map[string]any{"publicIp": "54.1.2.3"},
			}, nil
		}
		secondParams = params
		return CheckResult{Status: types.StatusPass, Expected: "200"}, nil
	})

	outcome, err := engine.EvaluateGroup(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "http://54.1.2.3/health", secondParams["url"])

	// Resolved checks carry the provenance suffix on Expected.
	assert.Contains(t, outcome.Results[1].Expected, "(resolved from {{web.publicIp}})")
}

func TestEvaluateGroupDispatchErrorBecomesFailResult(t *testing.T) {
	store := &fakeStore{
		group:   testGroup(types.StatusPass),
		account: testAccount(),
		checks:  []models.Check{networkCheck(1, "")},
	}
	engine := newTestEngine(store, func(check models.Check, params map[string]any) (CheckResult, error) {
		return CheckResult{}, errors.New("unknown check type for service network: bogus")
	})

	outcome, err := engine.EvaluateGroup(context.Background(), 7)

	require.NoError(t, err, "dispatch errors must not abort the group")
	assert.Equal(t, types.StatusFail, outcome.Status)
	assert.Equal(t, "Successful API call", outcome.Results[0].Expected)
	assert.Contains(t, outcome.Results[0].Reason, "unknown check type")
}

func TestEvaluateGroupLoadFailurePropagates(t *testing.T) {
	store := &fakeStore{groupErr: errors.New("connection refused")}
	engine := newTestEngine(store, nil)

	_, err := engine.EvaluateGroup(context.Background(), 7)

	require.Error(t, err)
	assert.Nil(t, store.savedRun)
}
