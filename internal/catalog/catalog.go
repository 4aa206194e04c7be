// Package catalog holds the fixed table of courses, games and missions.
// It is configuration: loaded and validated once at startup, never mutated.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrGameNotFound    = errors.New("game not found")
	ErrMissionNotFound = errors.New("mission not found")
	ErrInvalidCatalog  = errors.New("invalid catalog")
)

type Course struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Difficulty  string   `yaml:"difficulty" json:"difficulty"`
	Duration    string   `yaml:"duration" json:"duration"`
	TokenReward int      `yaml:"token_reward" json:"token_reward"`
	ModuleCount int      `yaml:"module_count" json:"module_count"`
	Modules     []string `yaml:"modules" json:"modules,omitempty"`
}

// Game is a mini-game whose reward ceiling is shown on the earnings page.
type Game struct {
	ID             string `yaml:"id" json:"id"`
	Title          string `yaml:"title" json:"title"`
	MaxTokenReward int    `yaml:"max_token_reward" json:"max_token_reward"`
}

type MissionType string

const (
	MissionLearning MissionType = "learning"
	MissionGame     MissionType = "game"
)

type Mission struct {
	ID          string      `yaml:"id" json:"id"`
	Title       string      `yaml:"title" json:"title"`
	Description string      `yaml:"description" json:"description"`
	Reward      string      `yaml:"reward" json:"reward"`
	XP          int         `yaml:"xp" json:"xp"`
	Badge       string      `yaml:"badge" json:"badge,omitempty"`
	Type        MissionType `yaml:"type" json:"type"`
	Difficulty  string      `yaml:"difficulty" json:"difficulty"`
	CourseID    string      `yaml:"course_id" json:"course_id,omitempty"`
	GameID      string      `yaml:"game_id" json:"game_id,omitempty"`
}

// Catalog is safe for concurrent reads.
type Catalog struct {
	courses  []Course
	games    []Game
	missions []Mission

	courseIdx  map[string]int
	gameIdx    map[string]int
	missionIdx map[string]int
}

type document struct {
	Courses  []Course  `yaml:"courses"`
	Games    []Game    `yaml:"games"`
	Missions []Mission `yaml:"missions"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}

// Load reads a catalog file, or returns the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML catalog.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(doc.Courses, doc.Games, doc.Missions)
}

// New validates the given records and builds a catalog from them.
func New(courses []Course, games []Game, missions []Mission) (*Catalog, error) {
	c := &Catalog{
		courses:    append([]Course(nil), courses...),
		games:      append([]Game(nil), games...),
		missions:   append([]Mission(nil), missions...),
		courseIdx:  make(map[string]int, len(courses)),
		gameIdx:    make(map[string]int, len(games)),
		missionIdx: make(map[string]int, len(missions)),
	}
	if len(c.courses) == 0 {
		return nil, fmt.Errorf("%w: no courses", ErrInvalidCatalog)
	}

	for i, co := range c.courses {
		if err := util.ValidateSlug(co.ID); err != nil {
			return nil, fmt.Errorf("%w: course %d: %v", ErrInvalidCatalog, i, err)
		}
		if _, dup := c.courseIdx[co.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate course %q", ErrInvalidCatalog, co.ID)
		}
		if co.TokenReward < 0 {
			return nil, fmt.Errorf("%w: course %q: negative token reward", ErrInvalidCatalog, co.ID)
		}
		if co.ModuleCount < 1 {
			return nil, fmt.Errorf("%w: course %q: module count must be positive", ErrInvalidCatalog, co.ID)
		}
		if len(co.Modules) > 0 && len(co.Modules) != co.ModuleCount {
			return nil, fmt.Errorf("%w: course %q: %d modules listed, module_count %d",
				ErrInvalidCatalog, co.ID, len(co.Modules), co.ModuleCount)
		}
		c.courseIdx[co.ID] = i
	}

	for i, g := range c.games {
		if err := util.ValidateSlug(g.ID); err != nil {
			return nil, fmt.Errorf("%w: game %d: %v", ErrInvalidCatalog, i, err)
		}
		if _, dup := c.gameIdx[g.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate game %q", ErrInvalidCatalog, g.ID)
		}
		if g.MaxTokenReward < 0 {
			return nil, fmt.Errorf("%w: game %q: negative reward", ErrInvalidCatalog, g.ID)
		}
		c.gameIdx[g.ID] = i
	}

	for i, m := range c.missions {
		if err := util.ValidateSlug(m.ID); err != nil {
			return nil, fmt.Errorf("%w: mission %d: %v", ErrInvalidCatalog, i, err)
		}
		if _, dup := c.missionIdx[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate mission %q", ErrInvalidCatalog, m.ID)
		}
		switch m.Type {
		case MissionLearning:
			if _, ok := c.courseIdx[m.CourseID]; !ok {
				return nil, fmt.Errorf("%w: mission %q: unknown course %q", ErrInvalidCatalog, m.ID, m.CourseID)
			}
		case MissionGame:
			if m.GameID != "" {
				if _, ok := c.gameIdx[m.GameID]; !ok {
					return nil, fmt.Errorf("%w: mission %q: unknown game %q", ErrInvalidCatalog, m.ID, m.GameID)
				}
			}
		default:
			return nil, fmt.Errorf("%w: mission %q: unknown type %q", ErrInvalidCatalog, m.ID, m.Type)
		}
		c.missionIdx[m.ID] = i
	}

	return c, nil
}

// Courses returns the courses in catalog order.
func (c *Catalog) Courses() []Course {
	return append([]Course(nil), c.courses...)
}

func (c *Catalog) Course(id string) (Course, error) {
	i, ok := c.courseIdx[id]
	if !ok {
		return Course{}, fmt.Errorf("%w: %q", ErrCourseNotFound, id)
	}
	return c.courses[i], nil
}

func (c *Catalog) Games() []Game {
	return append([]Game(nil), c.games...)
}

func (c *Catalog) Game(id string) (Game, error) {
	i, ok := c.gameIdx[id]
	if !ok {
		return Game{}, fmt.Errorf("%w: %q", ErrGameNotFound, id)
	}
	return c.games[i], nil
}

func (c *Catalog) Missions() []Mission {
	return append([]Mission(nil), c.missions...)
}

func (c *Catalog) Mission(id string) (Mission, error) {
	i, ok := c.missionIdx[id]
	if !ok {
		return Mission{}, fmt.Errorf("%w: %q", ErrMissionNotFound, id)
	}
	return c.missions[i], nil
}

// TotalTokenReward is the sum of all course rewards.
func (c *Catalog) TotalTokenReward() int {
	total := 0
	for _, co := range c.courses {
		total += co.TokenReward
	}
	return total
}

// SearchResult is one hit of Search, with the page it links to.
type SearchResult struct {
	Kind        string `json:"kind"` // page / course / game / mission
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

var sitePages = []SearchResult{
	{Kind: "page", ID: "home", Title: "Home", Description: "Welcome to Polygon for Dummies", URL: "/"},
	{Kind: "page", ID: "learn", Title: "Learn", Description: "Start your journey in blockchain education", URL: "/learn"},
	{Kind: "page", ID: "games", Title: "Games", Description: "Play interactive games to understand blockchain concepts", URL: "/games"},
	{Kind: "page", ID: "resources", Title: "Resources", Description: "Explore additional materials about Polygon and blockchain", URL: "/resources"},
	{Kind: "page", ID: "missions", Title: "Missions", Description: "Complete challenges to earn rewards", URL: "/missions"},
	{Kind: "page", ID: "about", Title: "About", Description: "Learn about our mission and vision", URL: "/about"},
	{Kind: "page", ID: "faq", Title: "FAQ", Description: "Find answers to common questions", URL: "/faq"},
	{Kind: "page", ID: "contact", Title: "Contact", Description: "Get in touch with us", URL: "/contact"},
}

// Search matches q case-insensitively against titles and descriptions of
// site pages, courses, games and missions, in that order. A blank q matches nothing.
func (c *Catalog) Search(q string) []SearchResult {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []SearchResult{}
	if q == "" {
		return out
	}
	match := func(r SearchResult) {
		if strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Description), q) {
			out = append(out, r)
		}
	}

	for _, p := range sitePages {
		match(p)
	}
	for _, co := range c.courses {
		match(SearchResult{Kind: "course", ID: co.ID, Title: co.Title, Description: co.Description, URL: "/learn/" + co.ID})
	}
	for _, g := range c.games {
		match(SearchResult{Kind: "game", ID: g.ID, Title: g.Title, URL: "/games/" + g.ID})
	}
	for _, m := range c.missions {
		match(SearchResult{Kind: "mission", ID: m.ID, Title: m.Title, Description: m.Description, URL: "/missions"})
	}
	return out
}
