// ABOUTME: Form validation for templates and reports
// ABOUTME: Maps validator struct-tag failures to the localized labels shown to technicians
package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// ErrNotTemplate is returned when promotion is asked of a dated report.
var ErrNotTemplate = errors.New("only templates can be promoted")

// fieldLabels lists the required fields in display order.
var fieldLabels = []struct {
	field string
	label string
}{
	{"Date", "Data"},
	{"Equipment", "Equipamento"},
	{"Local", "Local"},
	{"OMNumber", "N° OM"},
	{"StartTime", "Horário Inicial"},
	{"EndTime", "Horário Final"},
	{"OMDescription", "Descrição da OM"},
	{"ActivityExecuted", "Atividades executada"},
	{"Technicians", "Técnicos"},
	{"IAMODescription", "Explicação IAMO"},
	{"PendencyDescription", "Detalhes Pendência"},
}

// templateFields are the only fields a template must carry.
var templateFields = []string{"OMDescription", "ActivityExecuted"}

// ValidationError lists the labels of every missing required field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// ValidateTemplate applies the lenient rules used while authoring a template.
func ValidateTemplate(r *Report) error {
	return toValidationError(validate.StructPartial(r, templateFields...))
}

// ValidateReport applies the full rules a dated report must satisfy.
func ValidateReport(r *Report) error {
	return toValidationError(validate.Struct(r))
}

// Validate picks the rule set from the record type.
func Validate(r *Report) error {
	if r.IsTemplate() {
		return ValidateTemplate(r)
	}
	return ValidateReport(r)
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	order := make(map[string]int, len(fieldLabels))
	for i, fl := range fieldLabels {
		order[fl.field] = i
	}

	idx := make([]int, 0, len(verrs))
	for _, fe := range verrs {
		if i, ok := order[fe.StructField()]; ok {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)

	ve := &ValidationError{}
	for _, i := range idx {
		ve.Fields = append(ve.Fields, fieldLabels[i].label)
	}
	return ve
}

// Promote derives a new dated report from a template. The template must pass
// report validation; the copy gets a fresh id, today's date and deep-copied
// photos.
func Promote(tmpl *Report, now time.Time) (*Report, error) {
	if !tmpl.IsTemplate() {
		return nil, fmt.Errorf("%s: %w", tmpl.ID, ErrNotTemplate)
	}
	if err := ValidateReport(tmpl); err != nil {
		return nil, err
	}

	r := tmpl.Clone()
	r.ID = uuid.NewString()
	r.Type = TypeReport
	r.TemplateID = tmpl.ID
	r.Date = now.Format(DateLayout)
	r.CreatedAt = 0
	r.UpdatedAt = 0
	return r, nil
}
