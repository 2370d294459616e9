// Package form holds per-screen field state and runs the validation rules of
// the login, signup, profile, billing and report screens.
package form

import (
	"errors"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/iwvelando/company-valuation/pkg/validation"
	"github.com/microcosm-cc/bluemonday"
)

// ErrUnknownField is returned when a value is set for a field the schema does
// not declare.
var ErrUnknownField = errors.New("unknown field")

// Mode selects when field rules run.
type Mode int

const (
	// OnSubmit validates only when Validate is called; editing a field clears its error.
	OnSubmit Mode = iota
	// OnChange re-validates a field every time it is set.
	OnChange
)

// FieldState is the value and current error of one field.
type FieldState struct {
	Value string `json:"value"`
	Error string `json:"error,omitempty"`
}

// Values gives rules read access to the whole form.
type Values struct {
	fields map[string]*FieldState
	now    time.Time
}

// Get returns the value of a field, or "" if unset.
func (v Values) Get(name string) string {
	if f, ok := v.fields[name]; ok {
		return f.Value
	}
	return ""
}

// Now is the clock reading the validation run uses.
func (v Values) Now() time.Time {
	return v.now
}

// Rule inspects the form and returns a message for its field, or "".
type Rule func(v Values) string

// Field declares one input of a schema.
type Field struct {
	Name     string
	Label    string
	Required bool
	// FreeText values are stripped of markup before they are stored.
	FreeText bool
	// Secret values are never echoed back in views.
	Secret bool
	Rules  []Rule
}

// Schema is an ordered list of fields.
type Schema struct {
	Name   string
	Fields []Field
}

var (
	sanitizerOnce sync.Once
	sanitizer     *bluemonday.Policy
)

func strictPolicy() *bluemonday.Policy {
	sanitizerOnce.Do(func() {
		sanitizer = bluemonday.StrictPolicy()
	})
	return sanitizer
}

// Form is the field state of one screen.
type Form struct {
	schema Schema
	mode   Mode
	fields map[string]*FieldState
	clock  func() time.Time
}

// New creates an empty form for the schema.
func New(schema Schema, mode Mode) *Form {
	fields := make(map[string]*FieldState, len(schema.Fields))
	for _, f := range schema.Fields {
		fields[f.Name] = &FieldState{}
	}
	return &Form{schema: schema, mode: mode, fields: fields, clock: time.Now}
}

// WithClock overrides the time source used by date-sensitive rules.
func (f *Form) WithClock(clock func() time.Time) *Form {
	if clock != nil {
		f.clock = clock
	}
	return f
}

// Schema returns the form's schema.
func (f *Form) Schema() Schema {
	return f.schema
}

// Set stores a value. In OnSubmit mode the field's error is cleared; in
// OnChange mode the field is re-validated immediately.
func (f *Form) Set(name, value string) error {
	spec, ok := f.spec(name)
	if !ok {
		return fmt.Errorf("%s: %w %q", f.schema.Name, ErrUnknownField, name)
	}
	if spec.FreeText {
		// The policy drops markup but also escapes entities; the value is
		// stored as plain text, so the escaping is undone.
		value = html.UnescapeString(strictPolicy().Sanitize(value))
	}

	state := f.fields[name]
	state.Value = value
	state.Error = ""
	if f.mode == OnChange {
		state.Error = f.check(spec, f.values())
	}
	return nil
}

// SetAll applies every entry of values, stopping at the first unknown field.
func (f *Form) SetAll(values map[string]string) error {
	for _, spec := range f.schema.Fields {
		if value, ok := values[spec.Name]; ok {
			if err := f.Set(spec.Name, value); err != nil {
				return err
			}
		}
	}
	for name := range values {
		if _, ok := f.fields[name]; !ok {
			return fmt.Errorf("%s: %w %q", f.schema.Name, ErrUnknownField, name)
		}
	}
	return nil
}

// Value returns the stored value of a field.
func (f *Form) Value(name string) string {
	if state, ok := f.fields[name]; ok {
		return state.Value
	}
	return ""
}

// Error returns the current error of a field.
func (f *Form) Error(name string) string {
	if state, ok := f.fields[name]; ok {
		return state.Error
	}
	return ""
}

// Errors returns the field-to-message map of the last validation.
func (f *Form) Errors() map[string]string {
	errs := make(map[string]string)
	for name, state := range f.fields {
		if state.Error != "" {
			errs[name] = state.Error
		}
	}
	return errs
}

// Validate runs every rule, records the messages and reports whether the form
// is valid. It never fails in any other way.
func (f *Form) Validate() bool {
	values := f.values()
	valid := true
	for _, spec := range f.schema.Fields {
		msg := f.check(spec, values)
		f.fields[spec.Name].Error = msg
		if msg != "" {
			valid = false
		}
	}
	return valid
}

// Valid reports whether Validate would succeed without touching the stored
// errors. Step completion rules use it.
func (f *Form) Valid() bool {
	values := f.values()
	for _, spec := range f.schema.Fields {
		if f.check(spec, values) != "" {
			return false
		}
	}
	return true
}

// Fail records a message reported by a collaborator, e.g. a code the
// account service rejected. Unknown fields are ignored.
func (f *Form) Fail(name, msg string) {
	if state, ok := f.fields[name]; ok {
		state.Error = msg
	}
}

// Reset clears every value and error.
func (f *Form) Reset() {
	for _, state := range f.fields {
		*state = FieldState{}
	}
}

// FieldView is the rendered state of one field.
type FieldView struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Value    string `json:"value,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Views renders the fields in schema order, masking secret values.
func (f *Form) Views() []FieldView {
	views := make([]FieldView, 0, len(f.schema.Fields))
	for _, spec := range f.schema.Fields {
		state := f.fields[spec.Name]
		view := FieldView{
			Name:     spec.Name,
			Label:    spec.Label,
			Required: spec.Required,
			Value:    state.Value,
			Error:    state.Error,
		}
		if spec.Secret {
			view.Value = ""
		}
		views = append(views, view)
	}
	return views
}

func (f *Form) spec(name string) (Field, bool) {
	for _, spec := range f.schema.Fields {
		if spec.Name == name {
			return spec, true
		}
	}
	return Field{}, false
}

func (f *Form) values() Values {
	return Values{fields: f.fields, now: f.clock()}
}

func (f *Form) check(spec Field, values Values) string {
	if spec.Required {
		if msg := validation.Required(spec.Label, values.Get(spec.Name)); msg != "" {
			return msg
		}
	}
	for _, rule := range spec.Rules {
		if msg := rule(values); msg != "" {
			return msg
		}
	}
	return ""
}
