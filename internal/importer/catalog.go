package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/meltforce/myplan/internal/models"
	"gopkg.in/yaml.v3"
)

// catalogNamespace derives stable workout IDs from catalog keys, so
// re-importing the same catalog updates rows instead of duplicating them.
var catalogNamespace = uuid.MustParse("6f1c2d9e-3b7a-4e55-9a0c-8d2f4b6e1a37")

// Catalog is the YAML file read by the importer.
type Catalog struct {
	Workouts []CatalogWorkout `yaml:"workouts"`
	Plan     *CatalogPlan     `yaml:"plan"`
}

// CatalogWorkout is one workout video. Key names the workout inside the
// catalog; ID may pin an explicit UUID.
type CatalogWorkout struct {
	Key       string   `yaml:"key"`
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title"`
	VideoLink string   `yaml:"video_link"`
	Thumbnail string   `yaml:"video_thumbnail"`
	Duration  int      `yaml:"video_duration_sec"`
	Equipment []string `yaml:"equipment"`
	Calories  int      `yaml:"calories"`
}

// CatalogPlan seeds a week for the importing user.
type CatalogPlan struct {
	Type       models.PlanType `yaml:"type"`
	CurrentDay int             `yaml:"current_day"`
	Days       []CatalogDay    `yaml:"days"`
}

// CatalogDay references workouts by catalog key.
type CatalogDay struct {
	Day       int    `yaml:"day"`
	DayOff    bool   `yaml:"day_off"`
	Workout   string `yaml:"workout"`
	Alternate string `yaml:"alternate"`
}

// ParseCatalog decodes and validates a catalog. Unknown fields are rejected.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog is empty")
		}
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Workouts) == 0 {
		return fmt.Errorf("catalog has no workouts")
	}

	keys := make(map[string]bool, len(c.Workouts))
	for i, w := range c.Workouts {
		if w.Key == "" {
			return fmt.Errorf("workout %d: key is required", i+1)
		}
		if keys[w.Key] {
			return fmt.Errorf("workout %q: duplicate key", w.Key)
		}
		keys[w.Key] = true
		if w.Title == "" {
			return fmt.Errorf("workout %q: title is required", w.Key)
		}
		if w.VideoLink == "" {
			return fmt.Errorf("workout %q: video_link is required", w.Key)
		}
		if w.Duration < 0 || w.Calories < 0 {
			return fmt.Errorf("workout %q: duration and calories must not be negative", w.Key)
		}
		if w.ID != "" {
			if _, err := uuid.Parse(w.ID); err != nil {
				return fmt.Errorf("workout %q: invalid id: %w", w.Key, err)
			}
		}
	}

	if c.Plan == nil {
		return nil
	}
	return c.Plan.validate(keys)
}

func (p *CatalogPlan) validate(keys map[string]bool) error {
	switch p.Type {
	case models.PlanTypeChallenge, models.PlanTypeMyPlan, models.PlanTypeQuiz:
	case "":
		p.Type = models.PlanTypeMyPlan
	default:
		return fmt.Errorf("plan: unknown type %q", p.Type)
	}
	if len(p.Days) == 0 {
		return fmt.Errorf("plan: no days")
	}

	days := make(map[int]bool, len(p.Days))
	for _, d := range p.Days {
		if d.Day < 1 {
			return fmt.Errorf("plan: day numbers start at 1, got %d", d.Day)
		}
		if days[d.Day] {
			return fmt.Errorf("plan: day %d listed twice", d.Day)
		}
		days[d.Day] = true

		if d.DayOff {
			if d.Workout != "" || d.Alternate != "" {
				return fmt.Errorf("plan: day %d is a day off but has workouts", d.Day)
			}
			continue
		}
		if d.Workout == "" {
			return fmt.Errorf("plan: day %d has no workout", d.Day)
		}
		for _, key := range []string{d.Workout, d.Alternate} {
			if key != "" && !keys[key] {
				return fmt.Errorf("plan: day %d references unknown workout %q", d.Day, key)
			}
		}
	}

	if p.CurrentDay == 0 {
		p.CurrentDay = 1
	}
	if !days[p.CurrentDay] {
		return fmt.Errorf("plan: current_day %d is not one of the plan days", p.CurrentDay)
	}
	return nil
}

// workoutID returns the stored ID of a catalog workout.
func (w CatalogWorkout) workoutID() string {
	if w.ID != "" {
		return uuid.MustParse(w.ID).String()
	}
	return uuid.NewSHA1(catalogNamespace, []byte(w.Key)).String()
}

func (w CatalogWorkout) detail() models.WorkoutDetail {
	return models.WorkoutDetail{
		ID:             w.workoutID(),
		Title:          w.Title,
		VideoLink:      w.VideoLink,
		VideoThumbnail: w.Thumbnail,
		VideoDuration:  w.Duration,
		Equipment:      w.Equipment,
		Calories:       w.Calories,
	}
}
