// Package flow runs the multi-step screens of the product: signup, email
// verification and report generation. A Flow couples a wizard controller
// with the forms, documents and projection result of its steps and tells the
// caller what to mount once it completes.
package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/company-valuation/internal/billing"
	"github.com/iwvelando/company-valuation/internal/form"
	"github.com/iwvelando/company-valuation/internal/projection"
	"github.com/iwvelando/company-valuation/internal/session"
	"github.com/iwvelando/company-valuation/internal/upload"
	"github.com/iwvelando/company-valuation/internal/wizard"
	"go.uber.org/zap"
)

var (
	ErrStepIncomplete = errors.New("step is incomplete")
	ErrStepLocked     = errors.New("step is not reachable yet")
	ErrFinished       = errors.New("flow already finished")
	ErrNoDocuments    = errors.New("flow does not accept documents")
	ErrOwnerRequired  = errors.New("flow requires an account")
	ErrNotAvailable   = errors.New("action not available on this screen")
)

// FieldDocuments is the error key of the documents step.
const FieldDocuments = "documents"

// Deps are the collaborators flows call into.
type Deps struct {
	Logger     *zap.Logger
	Accounts   session.AccountService
	Calculator *projection.Calculator
	Uploads    upload.Config
	Store      upload.Store
	Reports    *History
	Clock      func() time.Time
}

func (d Deps) withDefaults() (Deps, error) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Calculator == nil {
		calc, err := projection.NewCalculator(d.Logger, projection.DefaultAssumptions())
		if err != nil {
			return d, err
		}
		d.Calculator = calc
	}
	if d.Reports == nil {
		d.Reports = NewHistory()
	}
	return d, nil
}

// Handoff tells the caller what comes after a completed flow: either another
// flow to mount or a client route to navigate to.
type Handoff struct {
	FlowID   string `json:"flowId,omitempty"`
	Screen   Screen `json:"screen,omitempty"`
	Route    string `json:"route,omitempty"`
	ReportID string `json:"reportId,omitempty"`

	Flow  *Flow  `json:"-"`
	Owner string `json:"-"`
	Next  Kind   `json:"-"`
}

// Outcome reports the result of one Advance call.
type Outcome struct {
	Advanced bool              `json:"advanced"`
	Finished bool              `json:"finished"`
	Errors   map[string]string `json:"errors,omitempty"`
	Handoff  *Handoff          `json:"handoff,omitempty"`
}

// stage is one step of a flow together with what the step needs beyond its
// form: an extra completion predicate, a collaborator call made on submit,
// and a hook that drops derived state when the step's inputs change.
type stage struct {
	screen      Screen
	title       string
	description string
	form        *form.Form
	complete    func() bool
	action      func(ctx context.Context) error
	reset       func()
	hintField   string
	hint        string
}

// Flow is one running wizard. It is safe for concurrent use.
type Flow struct {
	mu sync.Mutex

	id      string
	kind    Kind
	owner   string
	deps    Deps
	wizard  *wizard.Controller
	stages  []*stage
	updated time.Time

	queue     *upload.Queue
	result    *projection.Projection
	plan      *billing.PlanSelection
	verified  bool
	twoFactor bool
	setupCode string
	account   *session.Account
	handoff   *Handoff
}

// New builds a flow of the given kind. Verification and report flows belong
// to an account identified by owner (its email address).
func New(kind Kind, owner string, deps Deps) (*Flow, error) {
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}

	f := &Flow{
		id:      uuid.New().String(),
		kind:    kind,
		owner:   owner,
		deps:    deps,
		updated: deps.Clock(),
	}

	switch kind {
	case KindSignup:
		f.stages = f.signupStages()
	case KindVerification:
		if owner == "" {
			return nil, ErrOwnerRequired
		}
		f.stages = f.verificationStages()
	case KindReport:
		if owner == "" {
			return nil, ErrOwnerRequired
		}
		f.queue = upload.NewQueue(deps.Logger, deps.Uploads, deps.Store)
		f.stages = f.reportStages()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}

	steps := make([]wizard.Step, len(f.stages))
	for i, st := range f.stages {
		st := st
		steps[i] = wizard.Step{
			ID:          i + 1,
			Title:       st.title,
			Description: st.description,
			Complete: func() bool {
				if st.form != nil && !st.form.Valid() {
					return false
				}
				return st.complete == nil || st.complete()
			},
		}
	}

	f.wizard, err = wizard.New(steps, f.finish)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s flow: %w", kind, err)
	}
	return f, nil
}

func (f *Flow) newForm(schema form.Schema) *form.Form {
	return form.New(schema, form.OnSubmit).WithClock(f.deps.Clock)
}

func (f *Flow) ID() string {
	return f.id
}

func (f *Flow) Kind() Kind {
	return f.kind
}

func (f *Flow) Owner() string {
	return f.owner
}

// UpdatedAt is the last time the flow was touched.
func (f *Flow) UpdatedAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updated
}

func (f *Flow) current() *stage {
	return f.stages[f.wizard.Current().ID-1]
}

func (f *Flow) touch() {
	f.updated = f.deps.Clock()
}

// SetFields stores values on the current step's form. Derived state of the
// step, such as a computed projection, is dropped, and any step whose data no
// longer holds loses its completion mark.
func (f *Flow) SetFields(values map[string]string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.wizard.Finished() {
		return nil, ErrFinished
	}
	st := f.current()
	if st.form == nil {
		return nil, fmt.Errorf("%w: %s has no fields", form.ErrUnknownField, st.screen)
	}
	if err := st.form.SetAll(values); err != nil {
		return nil, err
	}
	if st.reset != nil {
		st.reset()
	}
	f.wizard.Revalidate()
	f.touch()
	return st.form.Errors(), nil
}

// Advance validates the current step, runs its collaborator call and moves
// on. A rejected step returns ErrStepIncomplete or the collaborator's error
// together with the messages to show.
func (f *Flow) Advance(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.wizard.Finished() {
		return Outcome{Finished: true, Handoff: f.handoffCopy()}, ErrFinished
	}
	f.touch()

	st := f.current()
	if st.form != nil && !st.form.Validate() {
		return Outcome{Errors: st.form.Errors()}, ErrStepIncomplete
	}
	if st.action != nil {
		if err := st.action(ctx); err != nil {
			out := Outcome{}
			if st.form != nil {
				out.Errors = st.form.Errors()
			}
			return out, err
		}
	}
	if !f.wizard.Advance() {
		out := Outcome{}
		if st.hint != "" {
			out.Errors = map[string]string{st.hintField: st.hint}
		}
		return out, ErrStepIncomplete
	}

	out := Outcome{Advanced: true, Finished: f.wizard.Finished()}
	if out.Finished {
		out.Handoff = f.handoffCopy()
	}
	f.deps.Logger.Debug("flow advanced",
		zap.String("op", "flow.Advance"),
		zap.String("flow", f.id),
		zap.Stringer("kind", f.kind),
		zap.Bool("finished", out.Finished),
	)
	return out, nil
}

// GoToStep jumps back to a completed step, or forward to the first
// incomplete one.
func (f *Flow) GoToStep(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.wizard.Finished() {
		return ErrFinished
	}
	if !f.wizard.GoToStep(id) {
		return fmt.Errorf("%w: %d", ErrStepLocked, id)
	}
	f.touch()
	return nil
}

// AddDocuments hands files to the documents queue of a report flow.
func (f *Flow) AddDocuments(files []upload.File) ([]upload.Document, []upload.Rejection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue == nil {
		return nil, nil, ErrNoDocuments
	}
	if f.wizard.Finished() {
		return nil, nil, ErrFinished
	}
	accepted, rejected := f.queue.Add(files)
	f.touch()
	return accepted, rejected, nil
}

// RemoveDocument drops one document and re-checks the documents step. Only
// the documents screen offers it.
func (f *Flow) RemoveDocument(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue == nil {
		return false, ErrNoDocuments
	}
	if f.wizard.Finished() {
		return false, ErrFinished
	}
	if f.current().screen != ScreenReportDocuments {
		return false, ErrNotAvailable
	}
	removed := f.queue.Remove(id)
	f.wizard.Revalidate()
	f.touch()
	return removed, nil
}

// Documents lists the documents of a report flow in upload order.
func (f *Flow) Documents() []upload.Document {
	if f.queue == nil {
		return nil
	}
	return f.queue.List()
}

// WaitDocuments blocks until no upload of the flow is running.
func (f *Flow) WaitDocuments(ctx context.Context) error {
	f.mu.Lock()
	queue := f.queue
	f.mu.Unlock()
	if queue == nil {
		return ErrNoDocuments
	}
	return queue.Wait(ctx)
}

// Close cancels outstanding uploads.
func (f *Flow) Close() {
	if f.queue != nil {
		f.queue.Close()
	}
}

// View is what the client renders for a flow.
type View struct {
	ID         string                 `json:"id"`
	Kind       Kind                   `json:"kind"`
	Owner      string                 `json:"owner,omitempty"`
	Screen     Screen                 `json:"screen"`
	Wizard     wizard.Snapshot        `json:"wizard"`
	Fields     []form.FieldView       `json:"fields,omitempty"`
	Documents  []upload.Document      `json:"documents,omitempty"`
	Projection *projection.Projection `json:"projection,omitempty"`
	Plans      []billing.Plan         `json:"plans,omitempty"`
	SetupCode  string                 `json:"setupCode,omitempty"`
	Handoff    *Handoff               `json:"handoff,omitempty"`
}

// Render maps the current step to its screen and the data that screen shows.
func (f *Flow) Render() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	view := View{
		ID:     f.id,
		Kind:   f.kind,
		Owner:  f.owner,
		Wizard: f.wizard.Snapshot(),
	}
	if f.wizard.Finished() {
		view.Screen = ScreenDone
		view.Handoff = f.handoffCopy()
		return view
	}

	st := f.current()
	view.Screen = st.screen
	if st.form != nil {
		view.Fields = st.form.Views()
	}
	switch st.screen {
	case ScreenSignupPlan:
		view.Plans = billing.Plans
	case ScreenTwoFactor:
		view.SetupCode = f.setupCode
	case ScreenReportDocuments:
		view.Documents = f.queue.List()
	case ScreenReportProjection:
		view.Projection = f.result
	case ScreenReportReview:
		view.Documents = f.queue.List()
		view.Projection = f.result
	}
	return view
}

// handoffCopy returns a copy of the handoff so callers never share the
// flow's own value. f.mu must be held.
func (f *Flow) handoffCopy() *Handoff {
	if f.handoff == nil {
		return nil
	}
	h := *f.handoff
	return &h
}

// attachNext records the flow mounted after this one and returns the
// updated handoff.
func (f *Flow) attachNext(next *Flow) *Handoff {
	screen := next.Render().Screen

	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.handoffCopy()
	if h == nil {
		h = &Handoff{}
	}
	h.Flow = next
	h.FlowID = next.ID()
	h.Screen = screen
	f.handoff = h
	return f.handoffCopy()
}

// finish runs once, from the wizard's completion callback, with f.mu held.
func (f *Flow) finish() {
	switch f.kind {
	case KindSignup:
		f.handoff = &Handoff{Next: KindVerification, Owner: f.account.Email}
	case KindVerification:
		f.handoff = &Handoff{Route: "/dashboard", Owner: f.owner}
	case KindReport:
		report := f.deps.Reports.Add(f.buildReport())
		f.handoff = &Handoff{
			Route:    "/dashboard/reports/" + report.ID,
			ReportID: report.ID,
			Owner:    f.owner,
		}
	}
	f.deps.Logger.Info("flow completed",
		zap.String("op", "flow.finish"),
		zap.String("flow", f.id),
		zap.Stringer("kind", f.kind),
	)
}
