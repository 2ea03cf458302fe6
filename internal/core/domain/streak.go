package domain

import (
	"math"
	"sort"
	"time"
)

// DayLayout is the calendar-day key used by streak records.
const DayLayout = "2006-01-02"

// StreakRecord counts the activity pings recorded on one calendar day.
type StreakRecord struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// StreakState is the persisted login-streak slot of one user.
//
// LastStreakDate stays a raw string so that a corrupt value still loads; the
// transition treats anything unparseable as a broken streak.
type StreakState struct {
	Streak                int            `json:"streak"`
	LastStreakDate        string         `json:"lastStreakDate,omitempty"`
	LoginDates            []StreakRecord `json:"loginDates"`
	CurrentWeekDays       []StreakRecord `json:"currentWeekDays"`
	LastNotifiedMilestone int            `json:"lastNotifiedMilestone,omitempty"`
	LastReminderDay       string         `json:"lastReminderDay,omitempty"`
}

// StreakOutcome names the branch RecordLogin took.
type StreakOutcome string

const (
	StreakStarted  StreakOutcome = "started"
	StreakAdvanced StreakOutcome = "advanced"
	StreakKept     StreakOutcome = "kept"
	StreakReset    StreakOutcome = "reset"
)

// StreakStats summarises the login history for the dashboard widget.
type StreakStats struct {
	TotalDays  int `json:"totalDays"`
	ThisMonth  int `json:"thisMonth"`
	BestStreak int `json:"bestStreak"`
	LastWeek   int `json:"lastWeek"`
}

// NewStreakState returns the empty state used on first contact.
func NewStreakState() *StreakState {
	return &StreakState{
		LoginDates:      []StreakRecord{},
		CurrentWeekDays: []StreakRecord{},
	}
}

// Normalize repairs values RecordLogin can never produce.
func (s *StreakState) Normalize() {
	if s.Streak < 0 {
		s.Streak = 0
	}
	if s.LoginDates == nil {
		s.LoginDates = []StreakRecord{}
	}
	if s.CurrentWeekDays == nil {
		s.CurrentWeekDays = []StreakRecord{}
	}
}

// DayKey formats t as a calendar day in t's own location.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// RecordLogin registers one activity ping at now. Days are computed in
// now's location. Repeated calls on the same day bump that day's count but
// advance the streak at most once.
func (s *StreakState) RecordLogin(now time.Time) StreakOutcome {
	today := DayKey(now)
	yesterday := DayKey(shiftDay(now, -1))

	s.upsertDay(today)

	var outcome StreakOutcome
	if s.LastStreakDate == "" {
		s.Streak, outcome = 1, StreakStarted
	} else {
		last, err := s.lastDay(now.Location())
		switch {
		case err != nil:
			s.Streak, outcome = 1, StreakReset
		case last == yesterday:
			s.Streak, outcome = s.Streak+1, StreakAdvanced
		case last == today:
			outcome = StreakKept
		default:
			s.Streak, outcome = 1, StreakReset
		}
	}

	s.LastStreakDate = now.Format(time.RFC3339)
	s.CurrentWeekDays = s.WeekStreak(now)
	return outcome
}

// HasVisited reports whether a record exists for the given day key.
func (s *StreakState) HasVisited(day string) bool {
	for _, rec := range s.LoginDates {
		if rec.Date == day {
			return true
		}
	}
	return false
}

// WeekStreak returns the Sunday-start week containing now, with days that
// have no record defaulted to a zero count.
func (s *StreakState) WeekStreak(now time.Time) []StreakRecord {
	start := shiftDay(now, -int(now.Weekday()))
	week := make([]StreakRecord, 7)
	for i := range week {
		day := DayKey(shiftDay(start, i))
		week[i] = StreakRecord{Date: day, Count: s.countOn(day)}
	}
	return week
}

// Stats computes the history summary as of now.
func (s *StreakState) Stats(now time.Time) StreakStats {
	if len(s.LoginDates) == 0 {
		return StreakStats{}
	}

	today := DayKey(now)
	monthPrefix := now.Format("2006-01")
	weekFrom := DayKey(shiftDay(now, -6))

	stats := StreakStats{TotalDays: len(s.LoginDates), BestStreak: s.Streak}
	for _, rec := range s.LoginDates {
		if len(rec.Date) >= 7 && rec.Date[:7] == monthPrefix {
			stats.ThisMonth++
		}
		if rec.Date >= weekFrom && rec.Date <= today {
			stats.LastWeek++
		}
	}

	days := make([]string, 0, len(s.LoginDates))
	for _, rec := range s.LoginDates {
		days = append(days, rec.Date)
	}
	sort.Strings(days)

	run := 0
	var prev time.Time
	for _, day := range days {
		cur, err := time.Parse(DayLayout, day)
		if err != nil {
			continue
		}
		if prev.IsZero() {
			run = 1
		} else {
			switch diff := daysBetween(prev, cur); {
			case diff == 1:
				run++
				if run > stats.BestStreak {
					stats.BestStreak = run
				}
			case diff > 1:
				run = 1
			}
		}
		prev = cur
	}
	return stats
}

func (s *StreakState) upsertDay(day string) {
	for i := range s.LoginDates {
		if s.LoginDates[i].Date == day {
			s.LoginDates[i].Count++
			return
		}
	}
	s.LoginDates = append(s.LoginDates, StreakRecord{Date: day, Count: 1})
}

func (s *StreakState) countOn(day string) int {
	for _, rec := range s.LoginDates {
		if rec.Date == day {
			return rec.Count
		}
	}
	return 0
}

// lastDay resolves LastStreakDate to a day key in loc. Plain day keys are
// accepted as well as timestamps.
func (s *StreakState) lastDay(loc *time.Location) (string, error) {
	t, err := time.Parse(time.RFC3339, s.LastStreakDate)
	if err == nil {
		return DayKey(t.In(loc)), nil
	}
	if d, derr := time.ParseInLocation(DayLayout, s.LastStreakDate, loc); derr == nil {
		return DayKey(d), nil
	}
	return "", err
}

// daysBetween counts the calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(math.Round(shiftDay(b, 0).Sub(shiftDay(a, 0)).Hours() / 24))
}

// shiftDay moves t by n calendar days, pinned at noon so DST changes never
// skip or repeat a day.
func shiftDay(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 12, 0, 0, 0, t.Location())
}
