package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/models"
	"github.com/driftwatch/driftwatch/internal/types"
)

type fakeSource struct {
	groups []models.InvariantGroup
	err    error
}

func (s fakeSource) EnabledGroups() ([]models.InvariantGroup, error) {
	return s.groups, s.err
}

type fakeEvaluator struct {
	outcomes  map[uint]invariants.Outcome
	errs      map[uint]error
	evaluated []uint
}

func (e *fakeEvaluator) EvaluateGroup(ctx context.Context, groupID uint) (invariants.Outcome, error) {
	e.evaluated = append(e.evaluated, groupID)

	if err, ok := e.errs[groupID]; ok {
		return invariants.Outcome{}, err
	}

	return e.outcomes[groupID], nil
}

type fakeAlerter struct {
	dispatched []uint
}

func (a *fakeAlerter) Dispatch(group models.InvariantGroup, results []invariants.CheckResult) {
	a.dispatched = append(a.dispatched, group.ID)
}

func groupWithLastRun(id uint, interval int, last *time.Time) models.InvariantGroup {
	group := models.InvariantGroup{
		Name:            "group",
		IntervalMinutes: interval,
		Enabled:         true,
		LastStatus:      types.StatusPass,
		LastEvaluatedAt: last,
	}
	group.ID = id
	return group
}

func TestDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("never evaluated is always due", func(t *testing.T) {
		assert.True(t, Due(groupWithLastRun(1, 5, nil), now))
	})

	t.Run("before the interval elapses", func(t *testing.T) {
		last := now.Add(-4 * time.Minute)
		assert.False(t, Due(groupWithLastRun(1, 5, &last), now))
	})

	t.Run("exactly at the interval", func(t *testing.T) {
		last := now.Add(-5 * time.Minute)
		assert.True(t, Due(groupWithLastRun(1, 5, &last), now))
	})

	t.Run("past the interval", func(t *testing.T) {
		last := now.Add(-90 * time.Minute)
		assert.True(t, Due(groupWithLastRun(1, 60, &last), now))
	})
}

func newTestScheduler(source GroupSource, evaluator Evaluator, alerter Alerter, now time.Time) *Scheduler {
	return New(source, evaluator, alerter, zap.NewNop(), WithClock(func() time.Time { return now }))
}

func TestTickEvaluatesOnlyDueGroups(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-1 * time.Minute)
	stale := now.Add(-10 * time.Minute)

	evaluator := &fakeEvaluator{outcomes: map[uint]invariants.Outcome{
		2: {GroupID: 2, Status: types.StatusPass},
	}}
	alerter := &fakeAlerter{}

	s := newTestScheduler(fakeSource{groups: []models.InvariantGroup{
		groupWithLastRun(1, 5, &recent),
		groupWithLastRun(2, 5, &stale),
	}}, evaluator, alerter, now)

	s.Tick()

	assert.Equal(t, []uint{2}, evaluator.evaluated)
}

func TestTickAlertsOnTransition(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	evaluator := &fakeEvaluator{outcomes: map[uint]invariants.Outcome{
		1: {GroupID: 1, Status: types.StatusPass, OldStatus: types.StatusFail, Changed: true},
	}}
	alerter := &fakeAlerter{}

	s := newTestScheduler(fakeSource{groups: []models.InvariantGroup{
		groupWithLastRun(1, 5, nil),
	}}, evaluator, alerter, now)

	s.Tick()

	assert.Equal(t, []uint{1}, alerter.dispatched)
}

func TestTickRealertsOnSustainedFailure(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	evaluator := &fakeEvaluator{outcomes: map[uint]invariants.Outcome{
		1: {GroupID: 1, Status: types.StatusFail, OldStatus: types.StatusFail, Changed: false},
	}}
	alerter := &fakeAlerter{}

	s := newTestScheduler(fakeSource{groups: []models.InvariantGroup{
		groupWithLastRun(1, 5, nil),
	}}, evaluator, alerter, now)

	s.Tick()

	assert.Equal(t, []uint{1}, alerter.dispatched)
}

func TestTickDoesNotAlertOnSteadyPass(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	evaluator := &fakeEvaluator{outcomes: map[uint]invariants.Outcome{
		1: {GroupID: 1, Status: types.StatusPass, OldStatus: types.StatusPass, Changed: false},
	}}
	alerter := &fakeAlerter{}

	s := newTestScheduler(fakeSource{groups: []models.InvariantGroup{
		groupWithLastRun(1, 5, nil),
	}}, evaluator, alerter, now)

	s.Tick()

	assert.Empty(t, alerter.dispatched)
}

func TestTickDoesNotAlertOnSkippedGroup(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	notified := 0
	evaluator := &fakeEvaluator{outcomes: map[uint]invariants.Outcome{
		1: {GroupID: 1, Status: types.StatusFail, Skipped: true},
	}}
	alerter := &fakeAlerter{}

	s := New(
		fakeSource{groups: []models.InvariantGroup{groupWithLastRun(1, 5, nil)}},
		evaluator,
		alerter,
		zap.NewNop(),
		WithClock(func() time.Time { return now }),
		WithNotify(func(models.InvariantGroup) { notified++ }),
	)

	s.Tick()

	assert.Empty(t, alerter.dispatched)
	assert.Zero(t, notified)
}

func TestTickContinuesPastFailingGroup(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	evaluator := &fakeEvaluator{
		outcomes: map[uint]invariants.Outcome{
			2: {GroupID: 2, Status: types.StatusPass},
		},
		errs: map[uint]error{1: errors.New("credential resolution failed")},
	}
	alerter := &fakeAlerter{}

	s := newTestScheduler(fakeSource{groups: []models.InvariantGroup{
		groupWithLastRun(1, 5, nil),
		groupWithLastRun(2, 5, nil),
	}}, evaluator, alerter, now)

	s.Tick()

	assert.Equal(t, []uint{1, 2}, evaluator.evaluated, "an erroring group must not stop the tick")
}

func TestTickNotifiesAfterEvaluation(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var notified []uint
	evaluator := &fakeEvaluator{outcomes: map[uint]invariants.Outcome{
		1: {GroupID: 1, Status: types.StatusPass},
	}}

	s := New(
		fakeSource{groups: []models.InvariantGroup{groupWithLastRun(1, 5, nil)}},
		evaluator,
		&fakeAlerter{},
		zap.NewNop(),
		WithClock(func() time.Time { return now }),
		WithNotify(func(group models.InvariantGroup) { notified = append(notified, group.ID) }),
	)

	s.Tick()

	assert.Equal(t, []uint{1}, notified)
}
