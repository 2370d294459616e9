// Package wizard implements the linear step controller shared by every
// multi-step flow: signup, verification and report generation.
//
// A Controller is not safe for concurrent use; callers serialise access
// (see flow.Flow).
package wizard

import (
	"errors"
	"fmt"

	"github.com/iwvelando/company-valuation/pkg/mathutil"
)

var (
	ErrNoSteps      = errors.New("wizard needs at least one step")
	ErrStepSequence = errors.New("step ids must start at 1 and increase by one")
	ErrMissingRule  = errors.New("step has no completion rule")
)

// Step is one screen of a wizard. Steps are immutable once handed to New.
type Step struct {
	ID          int
	Title       string
	Description string
	// Complete reports whether the data this step collects has been supplied.
	Complete func() bool
}

// Controller owns step progression for one linear flow.
type Controller struct {
	steps      []Step
	current    int // index into steps
	completion map[int]bool
	finished   bool
	onComplete func()
}

// New validates the step table and positions the controller on the first step.
// onComplete, when non-nil, runs when Advance succeeds on the last step.
func New(steps []Step, onComplete func()) (*Controller, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	for i, step := range steps {
		if step.ID != i+1 {
			return nil, fmt.Errorf("step %q has id %d at position %d: %w", step.Title, step.ID, i+1, ErrStepSequence)
		}
		if step.Complete == nil {
			return nil, fmt.Errorf("step %d %q: %w", step.ID, step.Title, ErrMissingRule)
		}
	}

	table := make([]Step, len(steps))
	copy(table, steps)

	return &Controller{
		steps:      table,
		completion: make(map[int]bool, len(steps)),
		onComplete: onComplete,
	}, nil
}

// Current returns the step the user is on.
func (c *Controller) Current() Step {
	return c.steps[c.current]
}

// Steps returns a copy of the step table.
func (c *Controller) Steps() []Step {
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}

// IsComplete reports whether the step with the given id has been completed.
func (c *Controller) IsComplete(id int) bool {
	return c.completion[id]
}

// CompletedSteps lists completed step ids in display order.
func (c *Controller) CompletedSteps() []int {
	done := make([]int, 0, len(c.completion))
	for _, step := range c.steps {
		if c.completion[step.ID] {
			done = append(done, step.ID)
		}
	}
	return done
}

// FirstIncomplete returns the id of the earliest incomplete step, or 0 when
// every step is complete.
func (c *Controller) FirstIncomplete() int {
	for _, step := range c.steps {
		if !c.completion[step.ID] {
			return step.ID
		}
	}
	return 0
}

// Progress is completed steps over total steps. It is derived on every call.
func (c *Controller) Progress() float64 {
	return mathutil.Ratio(len(c.CompletedSteps()), len(c.steps))
}

// Finished reports whether the completion callback has fired.
func (c *Controller) Finished() bool {
	return c.finished
}

// CanGoTo reports whether GoToStep(id) would move the controller.
func (c *Controller) CanGoTo(id int) bool {
	if id < 1 || id > len(c.steps) {
		return false
	}
	return id == 1 || c.completion[id] || id == c.FirstIncomplete()
}

// GoToStep jumps to step 1, to any completed step, or to the first incomplete
// step. Any other target is ignored and false is returned.
func (c *Controller) GoToStep(id int) bool {
	if c.finished || !c.CanGoTo(id) {
		return false
	}
	c.current = id - 1
	return true
}

// Advance marks the current step complete when its rule passes and moves to
// the next step. On the last step it fires the completion callback instead,
// unless an earlier step lost its completion; then it moves back to that step.
// A failing rule leaves the state untouched and returns false.
func (c *Controller) Advance() bool {
	if c.finished {
		return false
	}

	step := c.steps[c.current]
	if !step.Complete() {
		return false
	}
	c.completion[step.ID] = true

	if c.current == len(c.steps)-1 {
		if first := c.FirstIncomplete(); first != 0 {
			c.current = first - 1
			return true
		}
		c.finished = true
		if c.onComplete != nil {
			c.onComplete()
		}
		return true
	}

	c.current++
	return true
}

// Revalidate clears the completion mark of any step whose rule no longer
// passes, e.g. after the user edited an earlier screen in review mode. Only
// a step's own rule decides its state.
func (c *Controller) Revalidate() {
	for _, step := range c.steps {
		if c.completion[step.ID] && !step.Complete() {
			delete(c.completion, step.ID)
		}
	}
}

// StepView is the serialisable state of one step.
type StepView struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Complete    bool   `json:"complete"`
	Reachable   bool   `json:"reachable"`
}

// Snapshot is the serialisable controller state.
type Snapshot struct {
	Current   int        `json:"current"`
	Completed []int      `json:"completed"`
	Progress  float64    `json:"progress"`
	Finished  bool       `json:"finished"`
	Steps     []StepView `json:"steps"`
}

// Snapshot captures the current state for rendering.
func (c *Controller) Snapshot() Snapshot {
	views := make([]StepView, 0, len(c.steps))
	for _, step := range c.steps {
		views = append(views, StepView{
			ID:          step.ID,
			Title:       step.Title,
			Description: step.Description,
			Complete:    c.completion[step.ID],
			Reachable:   c.CanGoTo(step.ID),
		})
	}
	return Snapshot{
		Current:   c.Current().ID,
		Completed: c.CompletedSteps(),
		Progress:  c.Progress(),
		Finished:  c.finished,
		Steps:     views,
	}
}
