// Package stuck tracks tasks that keep being surfaced and declined.
package stuck

import (
	"sort"

	"github.com/julianstephens/nextup/internal/models"
)

// DefaultThreshold is the number of consecutive head skips that marks a task
// as stuck.
const DefaultThreshold = 3

// Option is a way out offered for a stuck task.
type Option string

const (
	OptionBreakdown Option = "breakdown"
	OptionDelegate  Option = "delegate"
	OptionHireOut   Option = "hire_out"
	OptionKeep      Option = "keep"
)

// Options lists every option in the order they are offered.
var Options = []Option{OptionBreakdown, OptionDelegate, OptionHireOut, OptionKeep}

// Policy controls when skip counts reset. Completion always resets.
type Policy struct {
	Threshold    int  `yaml:"threshold"`
	ResetOnKeep  bool `yaml:"reset_on_keep"`
	ResetOnDefer bool `yaml:"reset_on_defer"`
}

// DefaultPolicy keeps the count through keep and defer.
func DefaultPolicy() Policy {
	return Policy{Threshold: DefaultThreshold}
}

// Signal is raised when a task crosses the threshold.
type Signal struct {
	TaskID    string   `json:"task_id"`
	SkipCount int      `json:"skip_count"`
	Options   []Option `json:"options"`
}

// Detector holds the per-task skip state. It is not safe for concurrent use.
type Detector struct {
	policy  Policy
	entries map[string]*models.StuckInfo
}

func New(policy Policy) *Detector {
	if policy.Threshold <= 0 {
		policy.Threshold = DefaultThreshold
	}
	return &Detector{policy: policy, entries: make(map[string]*models.StuckInfo)}
}

func (d *Detector) Policy() Policy {
	return d.policy
}

func (d *Detector) entry(taskID string) *models.StuckInfo {
	e, ok := d.entries[taskID]
	if !ok {
		e = &models.StuckInfo{TaskID: taskID}
		d.entries[taskID] = e
	}
	return e
}

// RecordSkip counts a skip of taskID. Only skips of the current head count.
// The returned bool is true once the count has reached the threshold.
func (d *Detector) RecordSkip(taskID string, wasHead bool) (Signal, bool) {
	if !wasHead {
		return Signal{}, false
	}
	e := d.entry(taskID)
	e.SkipCount++
	if e.SkipCount < d.policy.Threshold {
		return Signal{}, false
	}
	return d.signal(e), true
}

// RecordCompletion clears the task's skip count.
func (d *Detector) RecordCompletion(taskID string) {
	delete(d.entries, taskID)
}

// Resolve drops the task's state once it has been broken down into steps.
func (d *Detector) Resolve(taskID string) {
	delete(d.entries, taskID)
}

// Keep stores a blocker note for the task.
func (d *Detector) Keep(taskID, reason string) {
	e := d.entry(taskID)
	e.Blocker = reason
	if d.policy.ResetOnKeep {
		e.SkipCount = 0
	}
}

// Defer applies the defer policy to the task.
func (d *Detector) Defer(taskID string) {
	if !d.policy.ResetOnDefer {
		return
	}
	if e, ok := d.entries[taskID]; ok {
		e.SkipCount = 0
	}
}

// Info returns the current state of taskID.
func (d *Detector) Info(taskID string) models.StuckInfo {
	if e, ok := d.entries[taskID]; ok {
		return *e
	}
	return models.StuckInfo{TaskID: taskID}
}

// IsStuck reports whether taskID has reached the threshold.
func (d *Detector) IsStuck(taskID string) bool {
	return d.Info(taskID).SkipCount >= d.policy.Threshold
}

// Stuck returns every task at or past the threshold, by task id.
func (d *Detector) Stuck() []models.StuckInfo {
	var out []models.StuckInfo
	for _, e := range d.entries {
		if e.SkipCount >= d.policy.Threshold {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out
}

// Hydrate replays an audit trail, oldest first, into a fresh state.
func (d *Detector) Hydrate(events []models.SkipEvent) {
	d.entries = make(map[string]*models.StuckInfo)
	for _, ev := range events {
		switch ev.Kind {
		case models.SkipEventSkip:
			d.RecordSkip(ev.TaskID, ev.WasHead)
		case models.SkipEventComplete:
			d.RecordCompletion(ev.TaskID)
		case models.SkipEventKeep:
			d.Keep(ev.TaskID, ev.Reason)
		case models.SkipEventDefer:
			d.Defer(ev.TaskID)
		case models.SkipEventBreakdown:
			d.Resolve(ev.TaskID)
		}
	}
}

func (d *Detector) signal(e *models.StuckInfo) Signal {
	opts := make([]Option, len(Options))
	copy(opts, Options)
	return Signal{TaskID: e.TaskID, SkipCount: e.SkipCount, Options: opts}
}
