package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Los límites se repiten en las etiquetas validate de TaskInput y TaskPatch.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxCategoryLength    = 50
)

// validator.Validate es seguro para uso concurrente y cachea la información de cada struct.
var validate = validator.New()

// ValidationError describe un campo inválido. errors.Is(err, ErrInvalidTask) es true.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid task: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidTask
}

// TaskInput son los datos de creación. Priority vacía equivale a medium.
type TaskInput struct {
	Title       string `validate:"required,max=100"`
	Description string `validate:"max=500"`
	Priority    Priority
	DueDate     *Date
	Category    string `validate:"max=50"`
}

// Validate aplica las reglas del formulario: título obligatorio y límites de longitud.
func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if err := checkTags(in); err != nil {
		return err
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return invalidPriority(in.Priority)
	}
	return nil
}

// TaskPatch es una actualización parcial: solo se aplican los campos no nulos.
// ClearDueDate elimina la fecha límite y tiene prioridad sobre DueDate.
type TaskPatch struct {
	Title        *string `validate:"omitempty,max=100"`
	Description  *string `validate:"omitempty,max=500"`
	Completed    *bool
	Priority     *Priority
	DueDate      *Date
	ClearDueDate bool
	Category     *string `validate:"omitempty,max=50"`
}

func (p TaskPatch) Validate() error {
	// Un título presente pero vacío o en blanco no es válido; las etiquetas omitempty no lo detectan.
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if err := checkTags(p); err != nil {
		return err
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalidPriority(*p.Priority)
	}
	return nil
}

// checkTags ejecuta las etiquetas validate y traduce el primer fallo a ValidationError.
func checkTags(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Reason: "is required"}
	case "max":
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %s characters", fe.Param())}
	}
	return &ValidationError{Field: field, Reason: fmt.Sprintf("failed %q check", fe.Tag())}
}

func invalidPriority(p Priority) error {
	return &ValidationError{Field: "priority", Reason: fmt.Sprintf("must be low, medium or high (got %q)", p)}
}
