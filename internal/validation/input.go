package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/nextup/internal/constants"
	apperrors "github.com/julianstephens/nextup/internal/errors"
	"github.com/julianstephens/nextup/internal/models"
)

// ValidateTask checks user or AI supplied task fields before the task is
// stored or scored. Priority and energy must already be canonical.
func ValidateTask(task models.Task) error {
	title := strings.TrimSpace(task.Title)
	if title == "" {
		return apperrors.Invalid("title", "is required")
	}
	if utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return apperrors.Invalid("title", "must be at most %d characters", constants.MaxTitleLength)
	}
	if err := ValidateEstimate(task.EstimatedMinutes); err != nil {
		return err
	}
	if _, ok := models.ParsePriority(string(task.Priority)); !ok {
		return apperrors.Invalid("priority", "unknown value %q", task.Priority)
	}
	if _, ok := models.ParseEnergy(string(task.Energy)); !ok {
		return apperrors.Invalid("energy", "unknown value %q", task.Energy)
	}
	if task.Completed && task.Skipped {
		return apperrors.Invalid("status", "a task cannot be both completed and skipped")
	}
	if task.CarriedFromDate != "" {
		if _, err := time.Parse(constants.DateFormat, task.CarriedFromDate); err != nil {
			return apperrors.Invalid("carried_from_date", "expected YYYY-MM-DD, got %q", task.CarriedFromDate)
		}
	}
	return nil
}

// ValidateEstimate checks an estimate in minutes.
func ValidateEstimate(minutes int) error {
	if minutes <= 0 {
		return apperrors.Invalid("estimated_minutes", "must be positive")
	}
	if minutes > constants.MaxEstimatedMinutes {
		return apperrors.Invalid("estimated_minutes", "must be at most %d", constants.MaxEstimatedMinutes)
	}
	return nil
}

// ValidateBudget checks a planning budget in minutes.
func ValidateBudget(minutes int) error {
	if minutes <= 0 {
		return apperrors.Invalid("available_minutes", "must be positive")
	}
	if minutes > constants.MaxEstimatedMinutes {
		return apperrors.Invalid("available_minutes", "cannot exceed a day (%d minutes)", constants.MaxEstimatedMinutes)
	}
	return nil
}

// ParseEnergyInput maps user input onto the canonical energy scale.
func ParseEnergyInput(s string) (models.Energy, error) {
	e, ok := models.ParseEnergy(s)
	if !ok {
		return "", apperrors.Invalid("energy", "expected one of high, normal, low (or peak, medium), got %q", s)
	}
	return e, nil
}

// ParsePriorityInput maps user input onto the canonical priority scale. An
// empty string is medium.
func ParsePriorityInput(s string) (models.Priority, error) {
	if strings.TrimSpace(s) == "" {
		return models.PriorityMedium, nil
	}
	p, ok := models.ParsePriority(s)
	if !ok {
		return "", apperrors.Invalid("priority", "expected one of high, medium, low, got %q", s)
	}
	return p, nil
}
