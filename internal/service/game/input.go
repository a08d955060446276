package game

import (
	"github.com/flagwars/backend/internal/domain"
)

// StartInput holds the parameters for starting a new session.
type StartInput struct {
	Mode domain.GameMode
}

// Validate checks all fields and collects all errors.
func (i *StartInput) Validate() error {
	var errs []domain.FieldError

	if i.Mode == "" {
		errs = append(errs, domain.FieldError{Field: "mode", Message: "required"})
	} else if !i.Mode.IsValid() {
		errs = append(errs, domain.FieldError{Field: "mode", Message: "must be QUIZ or ENDLESS"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SubmitAnswerInput holds the parameters for answering the current question.
type SubmitAnswerInput struct {
	Answer string
}

// Validate checks all fields and collects all errors.
func (i *SubmitAnswerInput) Validate() error {
	var errs []domain.FieldError

	if domain.NormalizeAnswer(i.Answer) == "" {
		errs = append(errs, domain.FieldError{Field: "answer", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// FinishInput holds the parameters for sealing a session.
type FinishInput struct {
	// ElapsedSeconds is the client-measured session duration. When present it
	// is trusted over the server-side wall clock: client timers track the
	// user-perceived duration, the server clock includes network gaps.
	ElapsedSeconds *int
}

// Validate checks all fields and collects all errors.
func (i *FinishInput) Validate() error {
	var errs []domain.FieldError

	if i.ElapsedSeconds != nil && *i.ElapsedSeconds < 0 {
		errs = append(errs, domain.FieldError{Field: "elapsed_seconds", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// HistoryInput holds the parameters for listing past sessions.
type HistoryInput struct {
	Mode      *domain.GameMode
	Completed *bool
	Limit     int
	Offset    int
}

// Validate checks all fields and collects all errors.
func (i *HistoryInput) Validate() error {
	var errs []domain.FieldError

	if i.Mode != nil && !i.Mode.IsValid() {
		errs = append(errs, domain.FieldError{Field: "mode", Message: "must be QUIZ or ENDLESS"})
	}
	if i.Limit < 0 || i.Limit > 200 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
