package myplan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/meltforce/myplan/internal/models"
)

// Backend is the plan API a Session talks to. Both *storage.DB (local) and
// *planapi.HTTPClient (remote) satisfy it.
type Backend interface {
	WorkoutGetter
	GetPlan(ctx context.Context, userID int) (*models.Plan, error)
	GetProgress(ctx context.Context, userID int) ([]models.ProgressRecord, error)
	GetPlanType(ctx context.Context, planID string) (models.PlanType, error)
	ChangeDate(ctx context.Context, userID, day int) error
	RateWorkout(ctx context.Context, userID int, req models.RateRequest) (models.RateAction, error)
	SaveProgress(ctx context.Context, userID int, req models.SaveProgressRequest) error
	ChangeDifficulty(ctx context.Context, userID int, action models.RateAction) error
}

// View receives everything the screen should show. Implementations must not
// call back into the Session.
type View interface {
	Display(top *TopInfo, sections []Section)
	ShowVideoPlayer(p Playback)
	ShowError(err error)
}

// Playback asks the view to open the video player.
type Playback struct {
	URL                string                `json:"url"`
	Day                int                   `json:"day"`
	IsCurrentDayOfPlan bool                  `json:"is_current_day_of_plan"`
	Workout            *models.WorkoutDetail `json:"workout,omitempty"`
}

// Options tune a Session.
type Options struct {
	CelebrationDelay time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Session is the "my plan" screen logic for one user: it loads the plan,
// tracks the selection and renders the selected day into a View.
type Session struct {
	api     Backend
	view    View
	profile models.Profile
	log     *slog.Logger
	now     func() time.Time

	store SnapshotStore

	mu       sync.Mutex
	sel      Selector
	planType *models.PlanType
	workouts WorkoutPair
	// workoutsDay is the plan day workouts were fetched for.
	workoutsDay int
	// epoch invalidates workout fetches started for an older selection.
	epoch uint64
	timer celebrationTimer
}

// NewSession creates a Session. Nothing is fetched until Reload is called.
func NewSession(api Backend, view View, profile models.Profile, log *slog.Logger, opts Options) *Session {
	if opts.CelebrationDelay <= 0 {
		opts.CelebrationDelay = DefaultCelebrationDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		api:     api,
		view:    view,
		profile: profile,
		log:     log.With("user_id", profile.UserID),
		now:     opts.Now,
		timer:   celebrationTimer{delay: opts.CelebrationDelay, schedule: afterFunc},
	}
}

// Reload fetches progress and plan, swaps in the new snapshot and renders the
// selected day. A failed progress fetch keeps the previous progress.
func (s *Session) Reload(ctx context.Context) error {
	uid := s.profile.UserID
	prev := s.store.Load()

	progress, err := s.api.GetProgress(ctx, uid)
	if err != nil {
		s.log.Warn("progress fetch failed", "error", err)
		progress = prev.Progress
	}

	plan, err := s.api.GetPlan(ctx, uid)
	if err != nil {
		if prev.Loaded() || s.profile.QuizCompleted {
			s.view.ShowError(err)
			return fmt.Errorf("fetching plan: %w", err)
		}
		s.log.Info("no plan yet, showing empty state", "error", err)
		s.view.Display(nil, EmptyState(s.profile.Name))
		return nil
	}

	planChanged := !prev.Loaded() || prev.Plan.PlanID != plan.PlanID
	var planType *models.PlanType
	if planChanged {
		if pt, err := s.api.GetPlanType(ctx, plan.PlanID); err != nil {
			s.log.Warn("plan type lookup failed", "plan_id", plan.PlanID, "error", err)
		} else {
			planType = &pt
		}
	}

	s.mu.Lock()
	s.store.Swap(&Snapshot{Plan: plan, Progress: progress})
	if planChanged {
		s.planType = planType
		s.workoutsDay = 0
	}
	s.sel.Adopt(plan, planChanged)
	s.timer.cancel()
	s.epoch++
	epoch, day := s.epoch, s.sel.Selection().SelectedDay
	s.mu.Unlock()

	s.loadWorkouts(ctx, epoch, day)
	return nil
}

// Select shows another day of the week. Unknown days fall back to the
// current day.
func (s *Session) Select(ctx context.Context, day int) {
	s.mu.Lock()
	effective := s.sel.Select(s.store.Load().Plan, day)
	s.timer.cancel()
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	s.loadWorkouts(ctx, epoch, effective)
}

// SetVariant chooses which workout of the day PlayVideo and SaveProgress use.
func (s *Session) SetVariant(v models.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.SetVariant(v)
}

// ChangeDate makes the selected day the current day of the plan. The local
// current day only changes once the backend accepted it.
func (s *Session) ChangeDate(ctx context.Context) error {
	day := s.Selection().SelectedDay
	if err := s.api.ChangeDate(ctx, s.profile.UserID, day); err != nil {
		s.view.ShowError(err)
		return fmt.Errorf("changing date to day %d: %w", day, err)
	}

	s.mu.Lock()
	s.sel.ConfirmDateChange()
	s.mu.Unlock()

	return s.Reload(ctx)
}

// SaveProgress records the selected workout of the selected day as watched
// and reloads the plan.
func (s *Session) SaveProgress(ctx context.Context) error {
	s.mu.Lock()
	sel := s.sel.Selection()
	w := s.selectedWorkout()
	s.mu.Unlock()

	req := models.SaveProgressRequest{Day: sel.SelectedDay, Time: 1}
	if w != nil {
		req.WorkoutID = w.ID
	}
	if err := s.api.SaveProgress(ctx, s.profile.UserID, req); err != nil {
		s.view.ShowError(err)
		return fmt.Errorf("saving progress for day %d: %w", sel.SelectedDay, err)
	}
	return s.Reload(ctx)
}

// Rate submits a rating. The bool reports whether the backend accepted it.
func (s *Session) Rate(ctx context.Context, rating, day int, workoutID string) (models.RateAction, bool) {
	action, err := s.api.RateWorkout(ctx, s.profile.UserID, models.RateRequest{
		Rating:    rating,
		WorkoutID: workoutID,
		Day:       day,
	})
	if err != nil {
		s.log.Warn("rating failed", "day", day, "workout_id", workoutID, "error", err)
		return models.RateActionNone, false
	}
	if action == "" {
		action = models.RateActionNone
	}
	return action, true
}

// ChangeDifficulty applies a rate action to the plan and reloads it.
func (s *Session) ChangeDifficulty(ctx context.Context, action models.RateAction) error {
	if err := s.api.ChangeDifficulty(ctx, s.profile.UserID, action); err != nil {
		return fmt.Errorf("changing difficulty: %w", err)
	}
	return s.Reload(ctx)
}

// MarkCompleted switches the selected day to the celebration view for
// workoutID until the celebration delay passes or another day is selected.
func (s *Session) MarkCompleted(workoutID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.MarkCompleted(workoutID)
	s.render()
}

// PlayVideo opens the player for force, or for the selected variant when
// force is nil. day is the plan day the video is played for, if any.
func (s *Session) PlayVideo(day *int, force *models.WorkoutDetail) Playback {
	s.mu.Lock()
	w := force
	if w == nil {
		w = s.selectedWorkout()
	}
	current := s.sel.Selection().CurrentDay
	s.mu.Unlock()

	p := Playback{Day: current, Workout: w}
	if w != nil {
		p.URL = w.VideoLink
	}
	if day != nil {
		p.Day = *day
		p.IsCurrentDayOfPlan = *day <= current
	}
	s.view.ShowVideoPlayer(p)
	return p
}

// Selection returns the current selection.
func (s *Session) Selection() models.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Selection()
}

// PlanType returns the type of the loaded plan, if known.
func (s *Session) PlanType() (models.PlanType, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.planType == nil {
		return "", false
	}
	return *s.planType, true
}

// Snapshot returns the current plan snapshot.
func (s *Session) Snapshot() *Snapshot {
	return s.store.Load()
}

func (s *Session) loadWorkouts(ctx context.Context, epoch uint64, dayNum int) {
	day, _ := s.store.Load().Plan.FindDay(dayNum)
	pair := FetchPair(ctx, s.api, day.WorkoutID, day.AltWorkoutID, s.log)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		s.log.Debug("dropping workouts of outdated selection", "day", dayNum)
		return
	}
	s.workouts = pair
	s.workoutsDay = dayNum
	s.render()
}

// render runs one reconciliation pass. Callers hold s.mu.
func (s *Session) render() {
	snap := s.store.Load()
	res, ok := Reconcile(Input{
		Plan:          snap.Plan,
		Selection:     s.sel.Selection(),
		Workouts:      s.dayWorkouts(),
		Progress:      snap.Progress,
		JustCompleted: s.sel.JustCompleted(),
		UserName:      s.profile.Name,
		Now:           s.now(),
	})
	if !ok {
		return
	}
	if res.Celebrating {
		s.timer.arm(s.expireCelebration)
	}
	top := res.Top
	top.RatePromptPending = res.Status == models.StatusPassed && !res.Celebrating && s.sel.RatePromptPending()
	s.view.Display(&top, Assemble(res.Rows))
}

func (s *Session) expireCelebration(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.timer.expired(gen) {
		return
	}
	s.sel.ExpireCelebration()
	s.render()
}

// dayWorkouts returns the fetched pair if it belongs to the selected day and
// an empty pair while the selected day's fetch is still in flight. Callers
// hold s.mu.
func (s *Session) dayWorkouts() WorkoutPair {
	if s.workoutsDay != s.sel.Selection().SelectedDay {
		return WorkoutPair{}
	}
	return s.workouts
}

// selectedWorkout returns the fetched workout of the selected variant.
// Callers hold s.mu.
func (s *Session) selectedWorkout() *models.WorkoutDetail {
	pair := s.dayWorkouts()
	if s.sel.Selection().Variant == models.VariantAlternate {
		return pair.Alternate
	}
	return pair.Primary
}
