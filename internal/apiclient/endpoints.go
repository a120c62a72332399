package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"glycofy/internal/activity"
	"glycofy/internal/planner"
	"glycofy/internal/summary"
	"glycofy/internal/units"
)

// ActivityPage is one page of GET /activities.
type ActivityPage struct {
	Items    []activity.Activity
	Total    int
	Page     int
	PageSize int
}

// User is the signed-in profile.
type User struct {
	Sub      string       `json:"sub"`
	Email    string       `json:"email"`
	Name     string       `json:"name"`
	Timezone string       `json:"timezone"`
	DietPref string       `json:"diet_pref"`
	Roles    []string     `json:"roles"`
	Sex      string       `json:"sex,omitempty"`
	DOB      string       `json:"dob,omitempty"`
	Goal     string       `json:"goal,omitempty"`
	HeightCm units.Number `json:"height_cm"`
	WeightKg units.Number `json:"weight_kg"`
}

// UserUpdate carries only the fields to change.
type UserUpdate struct {
	Name     *string  `json:"name,omitempty"`
	Timezone *string  `json:"timezone,omitempty"`
	DietPref *string  `json:"diet_pref,omitempty"`
	Sex      *string  `json:"sex,omitempty"`
	DOB      *string  `json:"dob,omitempty"`
	Goal     *string  `json:"goal,omitempty"`
	HeightCm *float64 `json:"height_cm,omitempty"`
	WeightKg *float64 `json:"weight_kg,omitempty"`
}

// LockResult is the answer to a lock toggle.
type LockResult struct {
	OK     bool   `json:"ok"`
	Date   string `json:"date"`
	Locked bool   `json:"locked"`
}

// SyncResult is the answer to a Strava import.
type SyncResult struct {
	OK       bool `json:"ok"`
	Inserted int  `json:"inserted"`
	Updated  int  `json:"updated"`
	Total    int  `json:"total"`
	Replaced bool `json:"replaced"`
}

// StravaStatus reports whether Strava is linked.
type StravaStatus struct {
	Connected bool   `json:"connected"`
	ExpiresAt *int64 `json:"expires_at"`
}

// LoginResult is what /auth/login returned. Token is empty for
// cookie-only sessions.
type LoginResult struct {
	OK        bool   `json:"ok"`
	CookieSet bool   `json:"cookie_set"`
	Token     string `json:"access_token"`
	TokenType string `json:"token_type"`
}

// RangeDay is one day of the server-side range summary.
type RangeDay struct {
	Date         string         `json:"date"`
	TrainingKcal int            `json:"training_kcal"`
	PlannedKcal  int            `json:"planned_kcal"`
	BySport      map[string]int `json:"by_sport"`
	BySportText  string         `json:"by_sport_text"`
}

// RangeSummary is GET /summary/range.
type RangeSummary struct {
	TotalTrainingKcal int                  `json:"total_training_kcal"`
	TotalPlannedKcal  int                  `json:"total_planned_kcal"`
	ActivityCount     int                  `json:"activity_count"`
	Days              []RangeDay           `json:"days"`
	TotalsBySport     []summary.SportTotal `json:"totals_by_sport"`
}

const maxActivityPages = 1000

// GetDayPlan fetches the plan for date.
func (c *Client) GetDayPlan(ctx context.Context, date, dietPref string) (planner.DayPlan, error) {
	q := url.Values{}
	if dietPref != "" {
		q.Set("diet_pref", dietPref)
	}
	resp, err := c.Do(ctx, http.MethodGet, "/v1/plan/"+url.PathEscape(date), q, nil)
	if err != nil {
		return planner.DayPlan{}, err
	}
	var dto dayPlanDTO
	if err := resp.Decode(&dto); err != nil {
		return planner.DayPlan{}, err
	}
	p := dto.toDayPlan()
	if p.Date == "" {
		p.Date = date
	}
	return p, nil
}

// SwapMeal asks the backend for a replacement meal and returns the new plan.
func (c *Client) SwapMeal(ctx context.Context, date string, mealType planner.MealType) (planner.DayPlan, error) {
	q := url.Values{"meal_type": {string(mealType)}}
	resp, err := c.Do(ctx, http.MethodPost, "/v1/plan/"+url.PathEscape(date)+"/swap", q, nil)
	if err != nil {
		return planner.DayPlan{}, err
	}
	var dto dayPlanDTO
	if err := resp.Decode(&dto); err != nil {
		return planner.DayPlan{}, err
	}
	p := dto.toDayPlan()
	if p.Date == "" {
		p.Date = date
	}
	return p, nil
}

// LockPlan locks or unlocks the plan for date.
func (c *Client) LockPlan(ctx context.Context, date string, lock bool) (LockResult, error) {
	q := url.Values{"lock": {strconv.FormatBool(lock)}}
	resp, err := c.Do(ctx, http.MethodPost, "/v1/plan/"+url.PathEscape(date)+"/lock", q, nil)
	if err != nil {
		return LockResult{}, err
	}
	var out LockResult
	if err := resp.Decode(&out); err != nil {
		return LockResult{}, err
	}
	return out, nil
}

// ListActivities fetches one page of activities.
func (c *Client) ListActivities(ctx context.Context, page, pageSize int) (ActivityPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	resp, err := c.Do(ctx, http.MethodGet, "/activities", q, nil)
	if err != nil {
		return ActivityPage{}, err
	}
	out, err := decodeActivities(resp.Body)
	if err != nil {
		return ActivityPage{}, fmt.Errorf("failed to decode activities: %w", err)
	}
	if out.Page == 0 {
		out.Page = page
	}
	if out.PageSize == 0 {
		out.PageSize = pageSize
	}
	return out, nil
}

// ListAllActivities walks every page.
func (c *Client) ListAllActivities(ctx context.Context, pageSize int) ([]activity.Activity, error) {
	if pageSize <= 0 {
		pageSize = 200
	}
	var all []activity.Activity
	for page := 1; page <= maxActivityPages; page++ {
		p, err := c.ListActivities(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Items...)
		if len(p.Items) == 0 || len(p.Items) < pageSize || len(all) >= p.Total {
			break
		}
	}
	return all, nil
}

// RangeSummary fetches the server's own aggregate for [from, to].
func (c *Client) RangeSummary(ctx context.Context, from, to string) (RangeSummary, error) {
	q := url.Values{"from": {from}, "to": {to}}
	resp, err := c.Do(ctx, http.MethodGet, "/summary/range", q, nil)
	if err != nil {
		return RangeSummary{}, err
	}
	var out RangeSummary
	if err := resp.Decode(&out); err != nil {
		return RangeSummary{}, err
	}
	return out, nil
}

// Me fetches the signed-in profile.
func (c *Client) Me(ctx context.Context) (User, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/users/me", nil, nil)
	if err != nil {
		return User{}, err
	}
	var u User
	if err := resp.Decode(&u); err != nil {
		return User{}, err
	}
	return u, nil
}

// UpdateMe sends a partial profile update with PUT.
func (c *Client) UpdateMe(ctx context.Context, update UserUpdate) (User, error) {
	resp, err := c.Do(ctx, http.MethodPut, "/users/me", nil, update)
	if err != nil {
		return User{}, err
	}
	var u User
	if err := resp.Decode(&u); err != nil {
		return User{}, err
	}
	return u, nil
}

// SyncStrava imports activities from Strava. replace drops existing ones first.
func (c *Client) SyncStrava(ctx context.Context, replace bool) (SyncResult, error) {
	q := url.Values{"replace": {strconv.FormatBool(replace)}}
	resp, err := c.Do(ctx, http.MethodPost, "/sync/strava", q, nil)
	if err != nil {
		return SyncResult{}, err
	}
	var out SyncResult
	if err := resp.Decode(&out); err != nil {
		return SyncResult{}, err
	}
	return out, nil
}

// StravaStatus reports whether Strava is connected.
func (c *Client) StravaStatus(ctx context.Context) (StravaStatus, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/oauth/strava/status", nil, nil)
	if err != nil {
		return StravaStatus{}, err
	}
	var out StravaStatus
	if err := resp.Decode(&out); err != nil {
		return StravaStatus{}, err
	}
	return out, nil
}

// Login authenticates. The session cookie lands in the client's jar; a
// bearer token in the body is stored in the session.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := c.Do(ctx, http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		return LoginResult{}, err
	}
	var out LoginResult
	if resp.JSON != nil {
		if err := resp.Decode(&out); err != nil {
			return LoginResult{}, err
		}
	}
	if out.Token != "" {
		if err := c.session.SetToken(ctx, out.Token); err != nil {
			return out, fmt.Errorf("failed to store token: %w", err)
		}
	}
	return out, nil
}

// Logout ends the server session and always clears the local token.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if clearErr := c.session.Clear(ctx); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}
