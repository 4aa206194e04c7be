package ledger

import "github.com/NexsisNelson/Polygon-For-Dummies/internal/catalog"

// ComputeEarnings is floor(percent/100 * reward). It never exceeds the course reward.
func ComputeEarnings(course catalog.Course, percent int) int {
	return clampPercent(percent) * course.TokenReward / 100
}

// TotalEarnings sums ComputeEarnings over the catalog. Ids not in the catalog are ignored.
func TotalEarnings(cat *catalog.Catalog, progress map[string]int) int {
	total := 0
	for _, c := range cat.Courses() {
		total += ComputeEarnings(c, progress[c.ID])
	}
	return total
}

type CourseEarning struct {
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Percent  int    `json:"percent"`
	Earned   int    `json:"earned"`
	Reward   int    `json:"reward"`
}

// GameEarning rows are placeholders: game play is not tracked, so Earned is
// always 0 and the row is not part of Total.
type GameEarning struct {
	GameID      string `json:"game_id"`
	Title       string `json:"title"`
	Earned      int    `json:"earned"`
	MaxReward   int    `json:"max_reward"`
	Placeholder bool   `json:"placeholder"`
}

type Report struct {
	Courses     []CourseEarning `json:"courses"`
	Games       []GameEarning   `json:"games"`
	Total       int             `json:"total"`
	Goal        int             `json:"goal"`
	GoalPercent int             `json:"goal_percent"`
}

// Earnings builds the earnings report for the current progress.
func (l *Ledger) Earnings(goal int) Report {
	r := Report{Goal: goal}
	for _, c := range l.catalog.Courses() {
		p := l.progress[c.ID]
		r.Courses = append(r.Courses, CourseEarning{
			CourseID: c.ID,
			Title:    c.Title,
			Percent:  p,
			Earned:   ComputeEarnings(c, p),
			Reward:   c.TokenReward,
		})
	}
	for _, g := range l.catalog.Games() {
		r.Games = append(r.Games, GameEarning{
			GameID:      g.ID,
			Title:       g.Title,
			MaxReward:   g.MaxTokenReward,
			Placeholder: true,
		})
	}
	r.Total = TotalEarnings(l.catalog, l.progress)
	if goal > 0 {
		r.GoalPercent = r.Total * 100 / goal
		if r.GoalPercent > 100 {
			r.GoalPercent = 100
		}
	}
	return r
}
