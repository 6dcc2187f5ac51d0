package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/driftwatch/driftwatch/db"
	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/models"
	"github.com/driftwatch/driftwatch/internal/types"
)

const DefaultTick = time.Minute

// GroupSource lists the groups eligible for scheduling.
type GroupSource interface {
	EnabledGroups() ([]models.InvariantGroup, error)
}

// Evaluator runs one group evaluation.
type Evaluator interface {
	EvaluateGroup(ctx context.Context, groupID uint) (invariants.Outcome, error)
}

// Alerter dispatches a notification for one evaluated group. Dispatch is
// fire-and-forget from the scheduler's point of view.
type Alerter interface {
	Dispatch(group models.InvariantGroup, results []invariants.CheckResult)
}

// Scheduler ticks once a minute, evaluates every enabled group that is due,
// and triggers alerting on the outcome. Per-group failures never abort the
// tick or the other groups.
type Scheduler struct {
	source    GroupSource
	evaluator Evaluator
	alerter   Alerter
	notify    func(group models.InvariantGroup)
	logger    *zap.Logger
	clock     func() time.Time
	tick      time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
}

type Option func(*Scheduler)

// WithTick overrides the tick cadence.
func WithTick(d time.Duration) Option {
	return func(s *Scheduler) { s.tick = d }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) { s.clock = clock }
}

// WithNotify sets a callback invoked after every non-skipped evaluation, used
// to push dashboard refreshes.
func WithNotify(notify func(group models.InvariantGroup)) Option {
	return func(s *Scheduler) { s.notify = notify }
}

func New(source GroupSource, evaluator Evaluator, alerter Alerter, logger *zap.Logger, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		source:    source,
		evaluator: evaluator,
		alerter:   alerter,
		logger:    logger,
		clock:     time.Now,
		tick:      DefaultTick,
		ctx:       ctx,
		cancel:    cancel,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start begins ticking in the background.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.Duration("tick", s.tick))

	go func() {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.Tick()
			}
		}
	}()
}

// Stop cancels the tick loop.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cancel()
}

// Tick evaluates every enabled group that is due.
func (s *Scheduler) Tick() {
	groups, err := s.source.EnabledGroups()
	if err != nil {
		s.logger.Error("failed to load groups", zap.Error(err))
		return
	}

	now := s.clock()

	for _, group := range groups {
		if !Due(group, now) {
			continue
		}

		s.evaluate(group)
	}
}

// Due reports whether the group's next run time has been reached. A group
// that has never been evaluated is always due.
func Due(group models.InvariantGroup, now time.Time) bool {
	last := time.Time{}
	if group.LastEvaluatedAt != nil {
		last = *group.LastEvaluatedAt
	}

	nextRun := last.Add(time.Duration(group.IntervalMinutes) * time.Minute)
	return !now.Before(nextRun)
}

func (s *Scheduler) evaluate(group models.InvariantGroup) {
	outcome, err := s.evaluator.EvaluateGroup(s.ctx, group.ID)
	if err != nil {
		s.logger.Error("group evaluation failed",
			zap.Uint("group_id", group.ID),
			zap.String("group", group.Name),
			zap.Error(err),
		)
		return
	}

	if outcome.Skipped {
		s.logger.Debug("group skipped, no checks", zap.Uint("group_id", group.ID))
		return
	}

	if s.notify != nil {
		s.notify(group)
	}

	// Re-alert on every sustained FAIL; alert exactly once on recovery.
	if outcome.Changed || outcome.Status == types.StatusFail {
		s.alerter.Dispatch(group, outcome.Results)
	}
}

// GormSource loads enabled groups from the application database.
type GormSource struct{}

func (GormSource) EnabledGroups() ([]models.InvariantGroup, error) {
	var groups []models.InvariantGroup
	err := db.DB.Where("enabled = ?", true).Find(&groups).Error
	return groups, err
}
