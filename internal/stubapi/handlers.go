package stubapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) readiness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// login accepts any credentials.
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	token, err := s.issueToken(req.Email)
	if err != nil {
		s.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, internalError)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(tokenTTL/time.Second), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"cookie_set":   true,
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Server) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type userUpdate struct {
	Name     *string  `json:"name"`
	Timezone *string  `json:"timezone"`
	DietPref *string  `json:"diet_pref"`
	Sex      *string  `json:"sex"`
	DOB      *string  `json:"dob"`
	Goal     *string  `json:"goal"`
	HeightCm *float64 `json:"height_cm"`
	WeightKg *float64 `json:"weight_kg"`
}

func (s *Server) getMe(c *gin.Context) {
	claims := claimsOf(c)
	c.JSON(http.StatusOK, userBody(claims, s.state.getPrefs(claims.Subject)))
}

func (s *Server) putMe(c *gin.Context) {
	claims := claimsOf(c)
	var upd userUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	p := s.state.getPrefs(claims.Subject)
	if upd.Name != nil {
		p.Name = upd.Name
	}
	if upd.Timezone != nil {
		p.Timezone = upd.Timezone
	}
	if upd.DietPref != nil {
		p.DietPref = upd.DietPref
	}
	if upd.Sex != nil {
		p.Sex = upd.Sex
	}
	if upd.DOB != nil {
		p.DOB = upd.DOB
	}
	if upd.Goal != nil {
		p.Goal = upd.Goal
	}
	if upd.HeightCm != nil {
		p.HeightCm = upd.HeightCm
	}
	if upd.WeightKg != nil {
		p.WeightKg = upd.WeightKg
	}
	s.state.putPrefs(claims.Subject, p)

	c.JSON(http.StatusOK, userBody(claims, p))
}

func userBody(claims *Claims, p prefs) gin.H {
	name := deref(p.Name)
	if name == "" {
		name = claims.Name
	}
	if name == "" {
		name = "user"
		if local, _, _ := strings.Cut(claims.Email, "@"); local != "" {
			name = local
		}
	}
	tz := deref(p.Timezone)
	if tz == "" {
		tz = "America/Los_Angeles"
	}
	diet := deref(p.DietPref)
	if diet == "" {
		diet = "omnivore"
	}
	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}
	return gin.H{
		"sub":       claims.Subject,
		"email":     claims.Email,
		"name":      name,
		"timezone":  tz,
		"diet_pref": diet,
		"roles":     roles,
		"sex":       deref(p.Sex),
		"dob":       deref(p.DOB),
		"goal":      deref(p.Goal),
		"height_cm": p.HeightCm,
		"weight_kg": p.WeightKg,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": key + " must be an integer"})
		return 0, false
	}
	return n, true
}

func (s *Server) listActivities(c *gin.Context) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "page_size", 25)
	if !ok {
		return
	}
	page = max(1, page)
	pageSize = max(1, min(pageSize, 200))

	rows, total := s.state.page(claimsOf(c).Subject, page, pageSize)
	items := make([]gin.H, 0, len(rows))
	for _, a := range rows {
		items = append(items, gin.H{
			"id":           strconv.Itoa(a.id),
			"name":         orDefault(a.Name, "workout"),
			"type":         orDefault(a.Type, "workout"),
			"start_time":   a.StartTime,
			"duration_sec": a.DurationSec,
			"distance_m":   int(a.DistanceM),
			"kcal":         a.Kcal,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "page": page, "page_size": pageSize})
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

type sportKcal struct {
	Sport string `json:"sport"`
	Kcal  int    `json:"kcal"`
}

type rangeDay struct {
	Date         string         `json:"date"`
	TrainingKcal int            `json:"training_kcal"`
	PlannedKcal  int            `json:"planned_kcal"`
	BySport      map[string]int `json:"by_sport"`
	BySportText  string         `json:"by_sport_text"`
}

func (s *Server) summaryRange(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "missing from/to"})
		return
	}
	start, err1 := time.Parse(time.DateOnly, from)
	end, err2 := time.Parse(time.DateOnly, to)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid from/to"})
		return
	}

	acts := s.state.inRange(claimsOf(c).Subject, from, to)
	total := 0
	perDay := make(map[string]map[string]int)
	var order []string
	overall := make(map[string]int)
	for _, a := range acts {
		sport := orDefault(a.Type, "Workout")
		d := datePart(a.StartTime)
		total += a.Kcal
		if _, ok := overall[sport]; !ok {
			order = append(order, sport)
		}
		overall[sport] += a.Kcal
		if perDay[d] == nil {
			perDay[d] = make(map[string]int)
		}
		perDay[d][sport] += a.Kcal
	}

	byKcal := make([]sportKcal, 0, len(order))
	for _, sp := range order {
		byKcal = append(byKcal, sportKcal{Sport: sp, Kcal: overall[sp]})
	}
	sort.SliceStable(byKcal, func(i, j int) bool { return byKcal[i].Kcal > byKcal[j].Kcal })

	days := []rangeDay{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		iso := d.Format(time.DateOnly)
		day := rangeDay{Date: iso, BySport: map[string]int{}}
		if sports, ok := perDay[iso]; ok {
			day.BySport = sports
			parts := make([]sportKcal, 0, len(sports))
			for sp, k := range sports {
				parts = append(parts, sportKcal{Sport: sp, Kcal: k})
				day.TrainingKcal += k
			}
			sort.Slice(parts, func(i, j int) bool {
				if parts[i].Kcal != parts[j].Kcal {
					return parts[i].Kcal > parts[j].Kcal
				}
				return parts[i].Sport < parts[j].Sport
			})
			text := make([]string, 0, len(parts))
			for _, p := range parts {
				text = append(text, p.Sport+": "+strconv.Itoa(p.Kcal)+" kcal")
			}
			day.BySportText = strings.Join(text, "; ")
		}
		days = append(days, day)
	}

	c.JSON(http.StatusOK, gin.H{
		"total_training_kcal": total,
		"total_planned_kcal":  0,
		"activity_count":      len(acts),
		"days":                days,
		"totals_by_sport":     byKcal,
	})
}

func (s *Server) stravaStatus(c *gin.Context) {
	connected, expiresAt := s.state.strava()
	c.JSON(http.StatusOK, gin.H{"connected": connected, "expires_at": expiresAt})
}

// syncStrava imports nothing; it only reports what is already stored.
func (s *Server) syncStrava(c *gin.Context) {
	replace := false
	if v := c.Query("replace"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "replace must be a boolean"})
			return
		}
		replace = b
	}
	if connected, _ := s.state.strava(); !connected {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "strava_not_connected"})
		return
	}
	if replace {
		s.state.clearActivities()
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "inserted": 0, "updated": 0, "total": s.state.countActivities(), "replaced": replace})
}

func (s *Server) plan(c *gin.Context, diet string, tweak int) dayPlan {
	sub := claimsOf(c).Subject
	date := c.Param("date")
	return buildPlan(date, diet, dailyMeals(diet, date, tweak), s.state.locked(sub, date), s.state.trainingKcal(sub, date))
}

func (s *Server) planDay(c *gin.Context) {
	c.JSON(http.StatusOK, s.plan(c, c.DefaultQuery("diet_pref", "omnivore"), 0))
}

// planSwap reshuffles the whole day regardless of meal_type.
func (s *Server) planSwap(c *gin.Context) {
	c.JSON(http.StatusOK, s.plan(c, "omnivore", 1))
}

func (s *Server) planLock(c *gin.Context) {
	date := c.Param("date")
	lock := strings.EqualFold(c.DefaultQuery("lock", "true"), "true")
	s.state.setLock(claimsOf(c).Subject, date, lock)
	c.JSON(http.StatusOK, gin.H{"ok": true, "date": date, "locked": lock})
}

func (s *Server) groceryItems(c *gin.Context) []string {
	return groceryList(dailyMeals(c.DefaultQuery("diet_pref", "omnivore"), c.Param("date"), 0))
}

func (s *Server) groceryText(c *gin.Context) {
	items := s.groceryItems(c)
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(strings.Join(lines, "\n")))
}

func (s *Server) groceryCSV(c *gin.Context) {
	items := s.groceryItems(c)
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = `"` + strings.ReplaceAll(it, `"`, `""`) + `"`
	}
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte("item\n"+strings.Join(lines, "\n")))
}
