package stubapi

import (
	"sort"
	"strconv"
	"sync"
)

// Activity is a workout held by the stub.
type Activity struct {
	Name        string
	Type        string
	StartTime   string
	DurationSec int
	DistanceM   float64
	Kcal        int
}

type storedActivity struct {
	Activity
	id int
}

type prefs struct {
	Name     *string
	Timezone *string
	DietPref *string
	Sex      *string
	DOB      *string
	Goal     *string
	HeightCm *float64
	WeightKg *float64
}

// state is the in-memory backend data, keyed by user subject where the
// backend keys it that way.
type state struct {
	mu          sync.Mutex
	nextID      int
	activities  map[string][]storedActivity
	locks       map[string]bool
	prefs       map[string]prefs
	stravaLinks map[string]int64
}

func newState() *state {
	return &state{
		nextID:      1,
		activities:  make(map[string][]storedActivity),
		locks:       make(map[string]bool),
		prefs:       make(map[string]prefs),
		stravaLinks: make(map[string]int64),
	}
}

func (s *state) addActivity(sub string, a Activity) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.activities[sub] = append(s.activities[sub], storedActivity{Activity: a, id: id})
	return strconv.Itoa(id)
}

// page returns activities newest first.
func (s *state) page(sub string, page, pageSize int) ([]storedActivity, int) {
	s.mu.Lock()
	all := append([]storedActivity(nil), s.activities[sub]...)
	s.mu.Unlock()

	sort.SliceStable(all, func(i, j int) bool { return all[i].StartTime > all[j].StartTime })
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, len(all)
	}
	end := min(start+pageSize, len(all))
	return all[start:end], len(all)
}

// inRange returns activities whose start date falls in [from, to].
func (s *state) inRange(sub, from, to string) []storedActivity {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storedActivity
	for _, a := range s.activities[sub] {
		d := datePart(a.StartTime)
		if d >= from && d <= to {
			out = append(out, a)
		}
	}
	return out
}

func (s *state) trainingKcal(sub, date string) int {
	total := 0
	for _, a := range s.inRange(sub, date, date) {
		total += a.Kcal
	}
	return total
}

func (s *state) clearActivities() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = make(map[string][]storedActivity)
}

func (s *state) countActivities() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, list := range s.activities {
		n += len(list)
	}
	return n
}

func lockKey(sub, date string) string { return sub + "|" + date }

func (s *state) locked(sub, date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locks[lockKey(sub, date)]
}

func (s *state) setLock(sub, date string, lock bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks[lockKey(sub, date)] = lock
}

func (s *state) getPrefs(sub string) prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs[sub]
}

func (s *state) putPrefs(sub string, p prefs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[sub] = p
}

func (s *state) linkStrava(sub string, expiresAt int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stravaLinks[sub] = expiresAt
}

// strava reports whether any account is linked and the earliest expiry.
func (s *state) strava() (bool, *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stravaLinks) == 0 {
		return false, nil
	}
	var earliest int64
	first := true
	for _, exp := range s.stravaLinks {
		if first || exp < earliest {
			earliest, first = exp, false
		}
	}
	return true, &earliest
}

func datePart(s string) string {
	if len(s) < 10 {
		return s
	}
	return s[:10]
}
