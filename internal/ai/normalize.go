package ai

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/nextup/internal/constants"
	apperrors "github.com/julianstephens/nextup/internal/errors"
	"github.com/julianstephens/nextup/internal/models"
)

// EstimateBuckets are the only estimates a parsed task may carry.
var EstimateBuckets = []int{15, 25, 45, 60, 90}

const (
	// DefaultEstimate is used when the service gives no usable estimate.
	DefaultEstimate = constants.DefaultEstimatedMinutes
	// DefaultConfidence is assumed for fields the service did not rate.
	DefaultConfidence = 1.0
	// DegradedConfidence caps the confidence of a field that was corrected.
	DegradedConfidence = 0.3
)

// Minutes accepts a JSON number or numeric string. Anything else decodes as
// zero instead of failing the whole reply.
type Minutes float64

func (m *Minutes) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*m = Minutes(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*m = Minutes(f)
			return nil
		}
	}
	*m = 0
	return nil
}

// RawTask is the service's reply, before normalization.
type RawTask struct {
	Title            string             `json:"title"`
	Priority         string             `json:"priority"`
	Energy           string             `json:"energy"`
	EstimatedMinutes Minutes            `json:"estimated_minutes"`
	Deadline         string             `json:"deadline"`
	Confidence       map[string]float64 `json:"confidence"`
}

// Confidence holds per-field confidence in [0,1].
type Confidence struct {
	Title            float64 `json:"title"`
	Priority         float64 `json:"priority"`
	Energy           float64 `json:"energy"`
	EstimatedMinutes float64 `json:"estimated_minutes"`
	Deadline         float64 `json:"deadline"`
}

// ParsedTask is a normalized task draft.
type ParsedTask struct {
	Title            string          `json:"title"`
	Priority         models.Priority `json:"priority"`
	Energy           models.Energy   `json:"energy"`
	EstimatedMinutes int             `json:"estimated_minutes"`
	Deadline         *time.Time      `json:"deadline,omitempty"`
	Confidence       Confidence      `json:"confidence"`
	// Corrected lists the fields that were replaced by a safe default.
	Corrected []string `json:"corrected,omitempty"`
}

// Task converts the draft into a task with the given id and position.
func (p ParsedTask) Task(id string, position int, createdAt string) models.Task {
	return models.Task{
		ID:               id,
		Title:            p.Title,
		Priority:         p.Priority,
		Energy:           p.Energy,
		EstimatedMinutes: p.EstimatedMinutes,
		Deadline:         p.Deadline,
		Position:         position,
		CreatedAt:        createdAt,
	}
}

type RawStep struct {
	Title            string  `json:"title"`
	EstimatedMinutes Minutes `json:"estimated_minutes"`
	Energy           string  `json:"energy"`
}

type rawBreakdown struct {
	Steps []RawStep `json:"steps"`
}

// Step is one normalized breakdown step.
type Step struct {
	Title            string        `json:"title"`
	EstimatedMinutes int           `json:"estimated_minutes"`
	Energy           models.Energy `json:"energy"`
}

// NormalizeParse maps a raw reply onto safe values. Unknown values are
// replaced by defaults and their confidence lowered; only a missing title
// with no input text to fall back on is an error.
func NormalizeParse(raw RawTask, input string, loc *time.Location) (ParsedTask, error) {
	out := ParsedTask{
		Confidence: Confidence{
			Title:            confidence(raw.Confidence, "title"),
			Priority:         confidence(raw.Confidence, "priority"),
			Energy:           confidence(raw.Confidence, "energy"),
			EstimatedMinutes: confidence(raw.Confidence, "estimated_minutes"),
			Deadline:         confidence(raw.Confidence, "deadline"),
		},
	}
	degrade := func(field string, c *float64) {
		out.Corrected = append(out.Corrected, field)
		*c = min(*c, DegradedConfidence)
	}

	out.Title = truncate(strings.TrimSpace(raw.Title))
	if out.Title == "" {
		out.Title = truncate(strings.TrimSpace(input))
		if out.Title == "" {
			return ParsedTask{}, emptyInputError()
		}
		degrade("title", &out.Confidence.Title)
	}

	if p, ok := models.ParsePriority(raw.Priority); ok {
		out.Priority = p
	} else {
		out.Priority = models.PriorityMedium
		degrade("priority", &out.Confidence.Priority)
	}

	if e, ok := models.ParseEnergy(raw.Energy); ok {
		out.Energy = e
	} else {
		out.Energy = models.EnergyNormal
		degrade("energy", &out.Confidence.Energy)
	}

	minutes, exact := SnapEstimate(raw.EstimatedMinutes)
	out.EstimatedMinutes = minutes
	if !exact {
		degrade("estimated_minutes", &out.Confidence.EstimatedMinutes)
	}

	if strings.TrimSpace(raw.Deadline) != "" {
		if d, ok := parseDeadline(raw.Deadline, loc); ok {
			out.Deadline = &d
		} else {
			out.Confidence.Deadline = 0
			out.Corrected = append(out.Corrected, "deadline")
		}
	}

	return out, nil
}

// NormalizeSteps normalizes breakdown steps, dropping untitled ones.
func NormalizeSteps(raw []RawStep) ([]Step, error) {
	steps := make([]Step, 0, len(raw))
	for _, r := range raw {
		title := truncate(strings.TrimSpace(r.Title))
		if title == "" {
			continue
		}
		minutes, _ := SnapEstimate(r.EstimatedMinutes)
		steps = append(steps, Step{
			Title:            title,
			EstimatedMinutes: minutes,
			Energy:           models.NormalizeEnergy(models.Energy(r.Energy)),
		})
	}
	if len(steps) == 0 {
		return nil, apperrors.Invalid("steps", "the AI service returned no usable steps")
	}
	return steps, nil
}

// SnapEstimate maps a raw estimate onto the nearest bucket, preferring the
// smaller bucket on ties. Missing or non-positive values become
// DefaultEstimate. exact is true only when the value was already a bucket.
func SnapEstimate(m Minutes) (minutes int, exact bool) {
	f := float64(m)
	if f <= 0 {
		return DefaultEstimate, false
	}
	best := EstimateBuckets[0]
	for _, b := range EstimateBuckets[1:] {
		if abs(float64(b)-f) < abs(float64(best)-f) {
			best = b
		}
	}
	return best, float64(best) == f
}

func parseDeadline(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04", constants.DateFormat} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func confidence(m map[string]float64, key string) float64 {
	c, ok := m[key]
	if !ok {
		return DefaultConfidence
	}
	return max(0, min(1, c))
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= constants.MaxTitleLength {
		return s
	}
	return string([]rune(s)[:constants.MaxTitleLength])
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func emptyInputError() error {
	return apperrors.Invalid("title", "is required")
}
