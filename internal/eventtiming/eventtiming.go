// Package eventtiming classifies time-bounded session cards as upcoming, live or
// past and computes how long until the next visibility change.
//
// The scheduler holds no timer state. Callers arm a one-shot timer for
// Timing.NextTransition and call Compute again once it fires.
package eventtiming

import (
	"errors"
	"slices"
	"time"

	"github.com/benvon/card-collection/internal/dates"
	"github.com/benvon/card-collection/internal/models"
	"go.uber.org/zap"
)

// ErrInvertedWindow is reported for a session whose end precedes its start
var ErrInvertedWindow = errors.New("end date precedes start date")

// Window is a session's parsed bounds
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseWindow parses a session's start and end dates. Any missing, unparseable or
// inverted bound is reported as a *models.DataError.
func ParseWindow(session *models.Card) (Window, error) {
	start, err := dates.Parse(session.StartDate)
	if err != nil {
		return Window{}, &models.DataError{CardID: session.ID, Field: "start_date", Err: err}
	}
	end, err := dates.Parse(session.EndDate)
	if err != nil {
		return Window{}, &models.DataError{CardID: session.ID, Field: "end_date", Err: err}
	}
	if end.Before(start) {
		return Window{}, &models.DataError{CardID: session.ID, Field: "end_date", Err: ErrInvertedWindow}
	}
	return Window{Start: start, End: end}, nil
}

// State classifies the window at now. The window is half-open, [Start, End),
// so a zero-width window is never live.
func (w Window) State(now time.Time) models.SessionState {
	switch {
	case now.Before(w.Start):
		return models.SessionUpcoming
	case now.Before(w.End):
		return models.SessionLive
	default:
		return models.SessionPast
	}
}

// Classify returns the state of a single session at now
func Classify(session *models.Card, now time.Time) (models.SessionState, error) {
	w, err := ParseWindow(session)
	if err != nil {
		return "", err
	}
	return w.State(now), nil
}

// Sessions keeps the cards that carry a start or end date. Cards with only
// one of the two are kept so the scheduler reports them as data errors.
func Sessions(cards []*models.Card) []*models.Card {
	sessions := make([]*models.Card, 0, len(cards))
	for _, c := range cards {
		if c != nil && (c.StartDate != "" || c.EndDate != "") {
			sessions = append(sessions, c)
		}
	}
	return sessions
}

// Timing is the result of one scheduler computation
type Timing struct {
	// Now is the moment the sessions were classified against
	Now time.Time
	// VisibleSessions are the live sessions in input order
	VisibleSessions []*models.Card
	Live            []*models.Card
	Upcoming        []*models.Card
	Past            []*models.Card
	// NextTransition is the delay until the earliest future start or end.
	// Only meaningful when HasNextTransition is true.
	NextTransition    time.Duration
	HasNextTransition bool
	// DataErrors lists sessions that were left out because of bad dates
	DataErrors []error

	windows map[*models.Card]Window
}

// NextTransitionMs returns the delay until the next transition in milliseconds,
// rounded up so a timer never fires before the boundary
func (t *Timing) NextTransitionMs() (int64, bool) {
	if !t.HasNextTransition {
		return 0, false
	}
	ms := t.NextTransition.Milliseconds()
	if t.NextTransition%time.Millisecond != 0 {
		ms++
	}
	return ms, true
}

// NextTransitionAt returns the absolute moment of the next transition
func (t *Timing) NextTransitionAt() (time.Time, bool) {
	if !t.HasNextTransition {
		return time.Time{}, false
	}
	return t.Now.Add(t.NextTransition), true
}

// NearestUpcoming returns the upcoming session that starts first, or nil.
// Ties keep input order.
func (t *Timing) NearestUpcoming() *models.Card {
	var nearest *models.Card
	for _, s := range t.Upcoming {
		if nearest == nil || t.windows[s].Start.Before(t.windows[nearest].Start) {
			nearest = s
		}
	}
	return nearest
}

// UpcomingByStart returns the upcoming sessions ordered by start time.
// Ties keep input order.
func (t *Timing) UpcomingByStart() []*models.Card {
	upcoming := slices.Clone(t.Upcoming)
	slices.SortStableFunc(upcoming, func(a, b *models.Card) int {
		return t.windows[a].Start.Compare(t.windows[b].Start)
	})
	return upcoming
}

// EventOrder returns live sessions in input order, then upcoming sessions by
// start time, then past sessions in input order
func (t *Timing) EventOrder() []*models.Card {
	upcoming := t.UpcomingByStart()

	ordered := make([]*models.Card, 0, len(t.Live)+len(upcoming)+len(t.Past))
	ordered = append(ordered, t.Live...)
	ordered = append(ordered, upcoming...)
	ordered = append(ordered, t.Past...)
	return ordered
}

// Scheduler computes session timings against an injectable clock
type Scheduler struct {
	clock  dates.Clock
	logger *zap.Logger
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock sets the clock used as "now"
func WithClock(clock dates.Clock) Option {
	return func(s *Scheduler) {
		s.clock = dates.OrSystem(clock)
	}
}

// WithLogger sets the logger used to report bad session dates
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates a scheduler using the wall clock unless configured otherwise
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:  dates.SystemClock{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compute classifies the sessions at the scheduler's current moment
func (s *Scheduler) Compute(sessions []*models.Card) *Timing {
	return s.ComputeAt(sessions, s.clock.Now())
}

// ComputeAt classifies the sessions at now
func (s *Scheduler) ComputeAt(sessions []*models.Card, now time.Time) *Timing {
	timing := &Timing{
		Now:             now,
		VisibleSessions: []*models.Card{},
		windows:         make(map[*models.Card]Window, len(sessions)),
	}

	for _, session := range sessions {
		if session == nil {
			continue
		}
		w, err := ParseWindow(session)
		if err != nil {
			s.logger.Warn("session_date_invalid",
				zap.String("card_id", session.ID),
				zap.Error(err),
			)
			timing.DataErrors = append(timing.DataErrors, err)
			continue
		}
		timing.windows[session] = w

		var candidate time.Duration
		switch w.State(now) {
		case models.SessionUpcoming:
			timing.Upcoming = append(timing.Upcoming, session)
			candidate = w.Start.Sub(now)
		case models.SessionLive:
			timing.Live = append(timing.Live, session)
			candidate = w.End.Sub(now)
		case models.SessionPast:
			timing.Past = append(timing.Past, session)
			continue
		}

		if candidate > 0 && (!timing.HasNextTransition || candidate < timing.NextTransition) {
			timing.NextTransition = candidate
			timing.HasNextTransition = true
		}
	}

	timing.VisibleSessions = append(timing.VisibleSessions, timing.Live...)

	s.logger.Debug("session_timing_computed",
		zap.Int("sessions", len(sessions)),
		zap.Int("live", len(timing.Live)),
		zap.Int("upcoming", len(timing.Upcoming)),
		zap.Int("past", len(timing.Past)),
		zap.Int("invalid", len(timing.DataErrors)),
		zap.Bool("has_next_transition", timing.HasNextTransition),
		zap.Duration("next_transition", timing.NextTransition),
	)

	return timing
}
