package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"glycofy/internal/apiclient"
	"glycofy/internal/dates"
	"glycofy/internal/planner"
	"glycofy/internal/shopping"
	"glycofy/internal/summary"
	"glycofy/internal/units"
)

const activityPageSize = 200

// Login signs in and stores the returned credential.
func (a *App) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", ErrMalformedInput)
	}
	if _, err := a.backend.Login(ctx, email, password); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	return nil
}

// Logout ends the session and drops cached views.
func (a *App) Logout(ctx context.Context) error {
	err := a.backend.Logout(ctx)

	a.mu.Lock()
	a.weekGen++
	a.summaryGen++
	a.week = nil
	a.summary = nil
	a.mu.Unlock()
	a.clearCache(ctx)

	if err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

// LoadWeek fetches the seven plans of the week containing anchor and
// aggregates its grocery list.
func (a *App) LoadWeek(ctx context.Context, anchor string) (WeekView, error) {
	anchor = strings.TrimSpace(anchor)
	if anchor == "" {
		return WeekView{}, fmt.Errorf("%w: a date is required", ErrMalformedInput)
	}
	t := dates.ParseOr(anchor, time.Time{})
	if t.IsZero() {
		return WeekView{}, fmt.Errorf("%w: unrecognized date %q", ErrMalformedInput, anchor)
	}

	week := dates.Week(t)
	a.location.SetPath("/plan?week=" + week.Dates[0])
	token := a.begin(&a.weekGen)
	mark := a.mutationMark()
	diet := a.DietPref()

	plans, err := a.loader.Load(ctx, week, diet)
	if err == nil {
		plans, err = a.refetchMutated(ctx, week, diet, plans, mark, token)
	}

	var view WeekView
	commitErr := a.commit(&a.weekGen, token, func() {
		if err != nil {
			return
		}
		view = WeekView{Range: week, Plans: plans, Grocery: shopping.Aggregate(plans)}
		a.week = &view
	})
	if commitErr != nil {
		a.logger.Debug("discarding stale week load", zap.String("week", week.Dates[0]))
		return WeekView{}, commitErr
	}
	if err != nil {
		return WeekView{}, err
	}
	return view, nil
}

// ExportGrocery renders the loaded week's grocery list.
func (a *App) ExportGrocery(format shopping.Format) (shopping.File, error) {
	view, ok := a.Week()
	if !ok {
		return shopping.File{}, fmt.Errorf("%w: load a week first", ErrMalformedInput)
	}
	return shopping.Export(view.Grocery, format)
}

// LoadSummary aggregates every activity dated within [from, to].
func (a *App) LoadSummary(ctx context.Context, from, to string) (summary.Summary, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if !dates.IsISODate(from) || !dates.IsISODate(to) {
		return summary.Summary{}, fmt.Errorf("%w: from and to must be YYYY-MM-DD", ErrMalformedInput)
	}

	a.location.SetPath("/activities?from=" + from + "&to=" + to)
	token := a.begin(&a.summaryGen)

	acts, err := a.backend.ListAllActivities(ctx, activityPageSize)
	var s summary.Summary
	if err == nil {
		s, err = summary.Summarize(acts, from, to)
		if errors.Is(err, summary.ErrInvalidRange) {
			err = fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
	}

	commitErr := a.commit(&a.summaryGen, token, func() {
		if err == nil {
			a.summary = &s
		}
	})
	if commitErr != nil {
		return summary.Summary{}, commitErr
	}
	if err != nil {
		return summary.Summary{}, err
	}
	return s, nil
}

// LoadServerSummary fetches the backend's own aggregate for [from, to], to
// be shown next to the client-side fold. It does not touch the summary view.
func (a *App) LoadServerSummary(ctx context.Context, from, to string) (apiclient.RangeSummary, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if !dates.IsISODate(from) || !dates.IsISODate(to) {
		return apiclient.RangeSummary{}, fmt.Errorf("%w: from and to must be YYYY-MM-DD", ErrMalformedInput)
	}
	if from > to {
		from, to = to, from
	}
	res, err := a.backend.RangeSummary(ctx, from, to)
	if err != nil {
		return apiclient.RangeSummary{}, fmt.Errorf("failed to load server summary: %w", err)
	}
	return res, nil
}

// SwapMeal replaces one meal of date's plan.
func (a *App) SwapMeal(ctx context.Context, date, mealType string) (planner.DayPlan, error) {
	if !dates.IsISODate(date) {
		return planner.DayPlan{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrMalformedInput)
	}
	mt, ok := planner.ParseMealType(mealType)
	if !ok {
		return planner.DayPlan{}, fmt.Errorf("%w: unknown meal type %q", ErrMalformedInput, mealType)
	}

	plan, err := a.backend.SwapMeal(ctx, date, mt)
	if err != nil {
		return planner.DayPlan{}, fmt.Errorf("failed to swap %s on %s: %w", mt, date, err)
	}
	a.invalidate(ctx, date)
	a.updateWeek(date, func(p *planner.DayPlan) { *p = plan })
	return plan, nil
}

// LockDay locks or unlocks date's plan.
func (a *App) LockDay(ctx context.Context, date string, lock bool) (apiclient.LockResult, error) {
	if !dates.IsISODate(date) {
		return apiclient.LockResult{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrMalformedInput)
	}
	res, err := a.backend.LockPlan(ctx, date, lock)
	if err != nil {
		return apiclient.LockResult{}, fmt.Errorf("failed to lock %s: %w", date, err)
	}
	a.invalidate(ctx, date)
	a.updateWeek(date, func(p *planner.DayPlan) { p.Locked = res.Locked })
	return res, nil
}

func (a *App) mutationMark() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mutSeq
}

// refetchMutated handles swaps, locks and clears that landed while a week
// was loading: the load may have cached plans from before them. Those
// entries are evicted again, and swapped or locked days are refetched
// unless the load is already stale.
func (a *App) refetchMutated(ctx context.Context, week dates.WeekRange, diet string, plans []planner.DayPlan, mark, token uint64) ([]planner.DayPlan, error) {
	a.mu.Lock()
	cleared := a.clearedAt > mark
	var dirty []int
	for i, d := range week.Dates {
		if a.mutatedAt[d] > mark {
			dirty = append(dirty, i)
		}
	}
	a.mu.Unlock()

	if cleared {
		a.evictAll(ctx)
	}
	if len(dirty) == 0 {
		return plans, nil
	}
	for _, i := range dirty {
		a.evict(ctx, week.Dates[i])
	}
	if !a.current(&a.weekGen, token) {
		return plans, nil
	}

	out := make([]planner.DayPlan, len(plans))
	copy(out, plans)
	for _, i := range dirty {
		date := week.Dates[i]
		p, err := a.backend.GetDayPlan(ctx, date, diet)
		if err != nil {
			return nil, fmt.Errorf("failed to reload plan for %s: %w", date, err)
		}
		if p.Date == "" {
			p.Date = date
		}
		out[i] = p
	}
	return out, nil
}

func (a *App) invalidate(ctx context.Context, date string) {
	a.mu.Lock()
	a.mutSeq++
	a.mutatedAt[date] = a.mutSeq
	a.mu.Unlock()
	a.evict(ctx, date)
}

func (a *App) clearCache(ctx context.Context) {
	a.mu.Lock()
	a.mutSeq++
	a.clearedAt = a.mutSeq
	a.mu.Unlock()
	a.evictAll(ctx)
}

func (a *App) evict(ctx context.Context, date string) {
	if err := a.cache.Invalidate(ctx, date); err != nil {
		a.logger.Warn("plan cache invalidation failed", zap.String("date", date), zap.Error(err))
	}
}

func (a *App) evictAll(ctx context.Context) {
	if err := a.cache.Clear(ctx); err != nil {
		a.logger.Warn("plan cache clear failed", zap.Error(err))
	}
}

// updateWeek edits the committed week in place when it contains date.
func (a *App) updateWeek(date string, edit func(*planner.DayPlan)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.week == nil || !a.week.Range.Contains(date) {
		return
	}
	plans := make([]planner.DayPlan, len(a.week.Plans))
	copy(plans, a.week.Plans)
	for i := range plans {
		if plans[i].Date == date {
			edit(&plans[i])
		}
	}
	a.week = &WeekView{Range: a.week.Range, Plans: plans, Grocery: shopping.Aggregate(plans)}
}

// StravaState is the connection badge.
type StravaState string

const (
	StravaConnected    StravaState = "connected"
	StravaDisconnected StravaState = "disconnected"
	StatusUnknown      StravaState = "unknown"
)

// StravaStatus is best effort: any failure reads as StatusUnknown.
func (a *App) StravaStatus(ctx context.Context) StravaState {
	st, err := a.backend.StravaStatus(ctx)
	if err != nil {
		a.logger.Debug("strava status unavailable", zap.Error(err))
		return StatusUnknown
	}
	if st.Connected {
		return StravaConnected
	}
	return StravaDisconnected
}

// SyncStrava imports activities and forgets the summary view and cached
// plans, whose training kcal may have changed.
func (a *App) SyncStrava(ctx context.Context, replace bool) (apiclient.SyncResult, error) {
	res, err := a.backend.SyncStrava(ctx, replace)
	if err != nil {
		return apiclient.SyncResult{}, fmt.Errorf("failed to sync strava: %w", err)
	}
	a.mu.Lock()
	a.summaryGen++
	a.summary = nil
	a.mu.Unlock()
	a.clearCache(ctx)
	return res, nil
}

// ProfileView is the profile with imperial conversions for display.
type ProfileView struct {
	apiclient.User
	HeightIn units.Number
	WeightLb units.Number
}

// Profile fetches the signed-in user.
func (a *App) Profile(ctx context.Context) (ProfileView, error) {
	a.location.SetPath("/profile")
	u, err := a.backend.Me(ctx)
	if err != nil {
		return ProfileView{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if u.DietPref != "" {
		a.setDietPref(u.DietPref)
	}
	return newProfileView(u), nil
}

func newProfileView(u apiclient.User) ProfileView {
	return ProfileView{
		User:     u,
		HeightIn: units.Round1(units.CmToIn(u.HeightCm)),
		WeightLb: units.Round1(units.KgToLb(u.WeightKg)),
	}
}

// ProfileInput is a profile edit as typed by the user. Blank fields are
// left unchanged. With Imperial set, Height is inches and Weight pounds.
type ProfileInput struct {
	Name     string
	Timezone string
	DietPref string
	Goal     string
	Height   string
	Weight   string
	Imperial bool
}

// UpdateProfile converts and sends a profile edit.
func (a *App) UpdateProfile(ctx context.Context, in ProfileInput) (ProfileView, error) {
	var upd apiclient.UserUpdate
	setString := func(dst **string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = &v
		}
	}
	setString(&upd.Name, in.Name)
	setString(&upd.Timezone, in.Timezone)
	setString(&upd.DietPref, strings.ToLower(in.DietPref))
	setString(&upd.Goal, in.Goal)

	height, weight := units.Parse(in.Height), units.Parse(in.Weight)
	if strings.TrimSpace(in.Height) != "" && !height.Valid {
		return ProfileView{}, fmt.Errorf("%w: height %q is not a number", ErrMalformedInput, in.Height)
	}
	if strings.TrimSpace(in.Weight) != "" && !weight.Valid {
		return ProfileView{}, fmt.Errorf("%w: weight %q is not a number", ErrMalformedInput, in.Weight)
	}
	if in.Imperial {
		height, weight = units.InToCm(height), units.LbToKg(weight)
	}
	upd.HeightCm = units.Round1(height).Ptr()
	upd.WeightKg = units.Round1(weight).Ptr()

	u, err := a.backend.UpdateMe(ctx, upd)
	if err != nil {
		return ProfileView{}, fmt.Errorf("failed to update profile: %w", err)
	}
	if upd.DietPref != nil {
		a.setDietPref(u.DietPref)
	}
	return newProfileView(u), nil
}

func (a *App) setDietPref(pref string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if pref != "" && pref != a.dietPref {
		a.dietPref = pref
		a.weekGen++
		a.week = nil
	}
}
