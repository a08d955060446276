package leitner

import (
	"github.com/google/uuid"

	"github.com/flagwars/backend/internal/domain"
)

// GetDueInput holds the parameters for fetching due cards.
type GetDueInput struct {
	Limit int
}

// Validate checks all fields and collects all errors.
func (i *GetDueInput) Validate() error {
	var errs []domain.FieldError

	if i.Limit < 0 || i.Limit > 200 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ReviewInput holds the parameters for submitting a review.
type ReviewInput struct {
	CountryID uuid.UUID
	IsCorrect bool
}

// Validate checks all fields and collects all errors.
func (i *ReviewInput) Validate() error {
	var errs []domain.FieldError

	if i.CountryID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "country_id", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// AddNewCardsInput holds the parameters for materializing fresh box-1 records.
type AddNewCardsInput struct {
	Limit int
}

// Validate checks all fields and collects all errors.
func (i *AddNewCardsInput) Validate() error {
	var errs []domain.FieldError

	if i.Limit < 0 || i.Limit > 100 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 100"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
