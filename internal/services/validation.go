package services

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	MinSearchLength  = 3
	MaxTitleLength   = 255
)

// validateDueDate rejects due dates strictly before now and returns the
// due date in UTC.
func validateDueDate(dueDate *time.Time, now time.Time) (*time.Time, error) {
	if dueDate == nil {
		return nil, nil
	}

	normalized := dueDate.UTC()
	if normalized.Before(now.UTC()) {
		return nil, ErrDueDateInPast
	}
	return &normalized, nil
}

func validateRegisterParams(params RegisterParams) error {
	err := validation.ValidateStruct(&params,
		validation.Field(&params.Email, validation.Required, validation.Length(3, 255), is.Email),
		validation.Field(&params.Password, validation.Required, validation.Length(1, 255)),
		validation.Field(&params.FullName, validation.Length(0, 255)),
	)
	if err != nil {
		return validationError(err)
	}
	return nil
}

// validateSearch requires a non-empty search term to be at least
// MinSearchLength characters long.
func validateSearch(search string) error {
	err := validation.Validate(search, validation.RuneLength(MinSearchLength, 0))
	if err != nil {
		return validationError(errors.New("search: " + err.Error()))
	}
	return nil
}

// normalizePage applies the default limit and checks the bounds. An
// explicit zero limit is rejected rather than defaulted.
func normalizePage(params PageParams) (storage.Page, error) {
	err := validation.ValidateStruct(&params,
		validation.Field(&params.Limit,
			validation.NilOrNotEmpty.Error("must be no less than 1"),
			validation.Min(1),
			validation.Max(MaxPageLimit),
		),
		validation.Field(&params.Skip, validation.Min(0)),
	)
	if err != nil {
		return storage.Page{}, validationError(err)
	}

	page := storage.Page{Limit: DefaultPageLimit, Skip: params.Skip}
	if params.Limit != nil {
		page.Limit = *params.Limit
	}
	return page, nil
}

func validateTitle(title string) error {
	err := validation.Validate(strings.TrimSpace(title),
		validation.Required,
		validation.RuneLength(1, MaxTitleLength),
	)
	if err != nil {
		return validationError(errors.New("title: " + err.Error()))
	}
	return nil
}

func validateTaskStatus(status models.TaskStatus) error {
	if !status.Valid() {
		return validationError(errors.New("status: must be one of TODO, IN_PROGRESS, DONE"))
	}
	return nil
}

func validateTaskCategory(category models.TaskCategory) error {
	if !category.Valid() {
		return validationError(errors.New("category: must be one of WORK, PERSONAL, SHOPPING, HEALTH, OTHER"))
	}
	return nil
}
