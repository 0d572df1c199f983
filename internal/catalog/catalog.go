// Package catalog holds the static course content configuration: modules,
// their lessons and their release delays.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophcourse/internal/drip"
)

//go:embed default.json
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

type Lesson struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Duration    string `json:"duration"`
	VideoURL    string `json:"videoUrl"`
	AssetKey    string `json:"assetKey,omitempty"`
	Description string `json:"description,omitempty"`
}

type Module struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Subtitle          string   `json:"subtitle"`
	CoverImage        string   `json:"coverImage"`
	Lessons           []Lesson `json:"lessons"`
	ReleaseDelayDays  int      `json:"releaseDelayDays"`
	ReleaseDelayHours *int     `json:"releaseDelayHours,omitempty"`
}

// Policy returns the module's release policy.
func (m Module) Policy() drip.Policy {
	return drip.Policy{DelayDays: m.ReleaseDelayDays, DelayHours: m.ReleaseDelayHours}
}

// Catalog is an immutable, validated list of modules indexed by id.
type Catalog struct {
	modules []Module
	modIdx  map[string]int
	lessons map[string]lessonRef
}

type lessonRef struct {
	module int
	lesson int
}

type document struct {
	Modules []Module `json:"modules"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path. An empty path selects the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(doc.Modules)
}

// New validates modules and builds the lookup indexes. Module and lesson ids
// must be non-empty and unique across the whole catalog.
func New(modules []Module) (*Catalog, error) {
	c := &Catalog{
		modules: modules,
		modIdx:  make(map[string]int, len(modules)),
		lessons: make(map[string]lessonRef),
	}

	if len(modules) == 0 {
		return nil, fmt.Errorf("%w: no modules", ErrInvalidCatalog)
	}

	for i, m := range modules {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: module %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.modIdx[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate module id %q", ErrInvalidCatalog, m.ID)
		}
		c.modIdx[m.ID] = i

		for j, l := range m.Lessons {
			if l.ID == "" {
				return nil, fmt.Errorf("%w: module %q lesson %d has no id", ErrInvalidCatalog, m.ID, j)
			}
			if _, dup := c.lessons[l.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate lesson id %q", ErrInvalidCatalog, l.ID)
			}
			c.lessons[l.ID] = lessonRef{module: i, lesson: j}
		}
	}

	return c, nil
}

// Modules returns the modules in display order.
func (c *Catalog) Modules() []Module {
	out := make([]Module, len(c.modules))
	copy(out, c.modules)
	return out
}

func (c *Catalog) Module(id string) (Module, bool) {
	i, ok := c.modIdx[id]
	if !ok {
		return Module{}, false
	}
	return c.modules[i], true
}

// FindLesson returns the lesson with the given id and the module containing it.
func (c *Catalog) FindLesson(id string) (Lesson, Module, bool) {
	ref, ok := c.lessons[id]
	if !ok {
		return Lesson{}, Module{}, false
	}
	m := c.modules[ref.module]
	return m.Lessons[ref.lesson], m, true
}

// TotalLessons counts lessons across all modules.
func (c *Catalog) TotalLessons() int {
	return len(c.lessons)
}
