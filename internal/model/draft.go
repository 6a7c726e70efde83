package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Draft holds the caller supplied fields of a task that does not exist yet.
type Draft struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Importance  *Importance `json:"importance,omitempty"`
	Status      *Status     `json:"status,omitempty"`
	DueDate     Date        `json:"dueDate"`
}

// Task builds the unsaved task for d, trimming the title. Importance and
// status default only when absent; an explicit value, even "", is kept so
// validation rejects it.
func (d Draft) Task() Task {
	t := Task{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Importance:  ImportanceNormal,
		Status:      StatusPending,
		DueDate:     d.DueDate,
	}
	if d.Importance != nil {
		t.Importance = *d.Importance
	}
	if d.Status != nil {
		t.Status = *d.Status
	}
	return t
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Importance  *Importance `json:"importance,omitempty"`
	Status      *Status     `json:"status,omitempty"`
	DueDate     *Date       `json:"dueDate,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Importance == nil && p.Status == nil && p.DueDate == nil
}

// Apply writes the set fields onto t and returns the JSON names of the
// fields whose value changed.
func (p Patch) Apply(t *Task) []string {
	var changed []string
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title != t.Title {
			changed = append(changed, "title")
		}
		t.Title = title
	}
	if p.Description != nil {
		if *p.Description != t.Description {
			changed = append(changed, "description")
		}
		t.Description = *p.Description
	}
	if p.Importance != nil {
		if *p.Importance != t.Importance {
			changed = append(changed, "importance")
		}
		t.Importance = *p.Importance
	}
	if p.Status != nil {
		if *p.Status != t.Status {
			changed = append(changed, "status")
		}
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		if !p.DueDate.Equal(t.DueDate.Time) {
			changed = append(changed, "dueDate")
		}
		t.DueDate = *p.DueDate
	}
	return changed
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// a zero Date counts as missing
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(Date); ok {
			return d.Time
		}
		return nil
	}, Date{})
	return v
}

func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
