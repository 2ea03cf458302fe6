package domain

import (
	"fmt"
	"time"
)

// Milestone is a streak length that earns a one-time celebratory notice.
type Milestone struct {
	Days        int
	Title       string
	Description string
}

var milestones = []Milestone{
	{3, "3-Day Streak! 🔥", "Great start! You've been learning for 3 consecutive days."},
	{7, "7-Day Streak! 🔥🔥", "One week of consistent learning! Keep up the good work!"},
	{14, "2-Week Streak! 🔥🔥", "Two weeks of dedication! You're building great habits."},
	{30, "30-Day Streak! 🏆", "Amazing! A full month of daily learning. You're unstoppable!"},
	{60, "60-Day Streak! 🏆🏆", "Two months of consistent learning? That's impressive commitment!"},
	{100, "100-Day Streak! 🌟", "INCREDIBLE! 100 days of learning. You're in the elite group now!"},
	{365, "365-Day Streak! 👑", "A FULL YEAR of daily learning! You're a legend!"},
}

// ReminderMinStreak is the shortest streak worth a risk reminder.
const ReminderMinStreak = 3

// Milestones returns the milestone table in ascending order.
func Milestones() []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones)
	return out
}

// MilestoneFor returns the milestone whose length is exactly streak.
func MilestoneFor(streak int) (Milestone, bool) {
	for _, m := range milestones {
		if m.Days == streak {
			return m, true
		}
	}
	return Milestone{}, false
}

// ClaimMilestone returns the milestone due for the current streak and marks
// it notified. Only an exact match counts: a streak that jumps past a
// milestone never fires it.
func (s *StreakState) ClaimMilestone() (Milestone, bool) {
	m, ok := MilestoneFor(s.Streak)
	if !ok || s.LastNotifiedMilestone == s.Streak {
		return Milestone{}, false
	}
	s.LastNotifiedMilestone = s.Streak
	return m, true
}

// ClaimReminder reports whether a "don't break your streak" reminder is due
// at now, and marks today as reminded.
func (s *StreakState) ClaimReminder(now time.Time) bool {
	today := DayKey(now)
	if s.Streak < ReminderMinStreak || s.HasVisited(today) || s.LastReminderDay == today {
		return false
	}
	s.LastReminderDay = today
	return true
}

// ReminderCopy is the text of the streak risk reminder.
func ReminderCopy(streak int) (title, description string) {
	return "Don't break your streak! 🔥",
		fmt.Sprintf("You have a %d-day streak going. Make sure to complete an activity today!", streak)
}
