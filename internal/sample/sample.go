package sample

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dmitrymomot/kickstart"
)

// Pagination limits.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// StringFieldMaxLen bounds Sample.StringField, in characters.
const StringFieldMaxLen = 255

// Sample is a row of sample_table.
type Sample struct {
	CreatedOn     time.Time      `json:"created_on"`
	ModifiedOn    time.Time      `json:"modified_on"`
	OptionalUUID  *uuid.UUID     `json:"optional_uuid"`
	OptionalText  *string        `json:"optional_text"`
	RequiredJSONB map[string]any `json:"required_jsonb"`
	OptionalJSONB map[string]any `json:"optional_jsonb"`
	StringField   string         `json:"string_field"`
	BigInt        int64          `json:"big_int"`
	ID            uuid.UUID      `json:"id"`
	RequiredUUID  uuid.UUID      `json:"required_uuid"`
	IsActive      bool           `json:"is_active"`
	IsDeleted     bool           `json:"is_deleted"`
}

// CreateRequest is the payload for a new sample. BigInt defaults to 1.
type CreateRequest struct {
	RequiredUUID  *uuid.UUID     `json:"required_uuid"`
	OptionalUUID  *uuid.UUID     `json:"optional_uuid"`
	OptionalText  *string        `json:"optional_text"`
	BigInt        *int64         `json:"big_int"`
	RequiredJSONB map[string]any `json:"required_jsonb"`
	OptionalJSONB map[string]any `json:"optional_jsonb"`
	StringField   string         `json:"string_field"`
}

// Validate implements kickstart.Validator.
func (r *CreateRequest) Validate() error {
	errs := kickstart.ValidationErrors{}
	if r.RequiredUUID == nil {
		errs.Add("required_uuid", "is required")
	}
	validateStringField(errs, r.StringField)
	if r.RequiredJSONB == nil {
		errs.Add("required_jsonb", "is required")
	}
	validateBigInt(errs, r.BigInt)
	return errs.Err()
}

// UpdateRequest carries the fields to change. Absent and null fields are
// left untouched; id and created_on cannot be changed.
type UpdateRequest struct {
	RequiredUUID  *uuid.UUID     `json:"required_uuid"`
	OptionalUUID  *uuid.UUID     `json:"optional_uuid"`
	StringField   *string        `json:"string_field"`
	OptionalText  *string        `json:"optional_text"`
	BigInt        *int64         `json:"big_int"`
	IsActive      *bool          `json:"is_active"`
	RequiredJSONB map[string]any `json:"required_jsonb"`
	OptionalJSONB map[string]any `json:"optional_jsonb"`
}

// Empty reports whether no field is set.
func (r *UpdateRequest) Empty() bool {
	return r.RequiredUUID == nil && r.OptionalUUID == nil && r.StringField == nil &&
		r.OptionalText == nil && r.BigInt == nil && r.IsActive == nil &&
		r.RequiredJSONB == nil && r.OptionalJSONB == nil
}

// Validate implements kickstart.Validator.
func (r *UpdateRequest) Validate() error {
	errs := kickstart.ValidationErrors{}
	if r.StringField != nil {
		validateStringField(errs, *r.StringField)
	}
	validateBigInt(errs, r.BigInt)
	return errs.Err()
}

// ListParams selects a page of samples.
type ListParams struct {
	Skip            int
	Limit           int
	IncludeInactive bool
}

// Validate checks the pagination bounds.
func (p ListParams) Validate() error {
	errs := kickstart.ValidationErrors{}
	if p.Skip < 0 {
		errs.Add("skip", "must be greater than or equal to 0")
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		errs.Add("limit", "must be between 1 and 1000")
	}
	return errs.Err()
}

// ListResult is one page of samples with the total matching count.
type ListResult struct {
	Items []Sample `json:"items"`
	Total int64    `json:"total"`
	Skip  int      `json:"skip"`
	Limit int      `json:"limit"`
}

// DeleteResult reports a successful delete.
type DeleteResult struct {
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id"`
	Success bool      `json:"success"`
}

func validateStringField(errs kickstart.ValidationErrors, s string) {
	switch n := utf8.RuneCountInString(s); {
	case n == 0:
		errs.Add("string_field", "is required")
	case n > StringFieldMaxLen:
		errs.Add("string_field", "must be at most 255 characters")
	}
}

func validateBigInt(errs kickstart.ValidationErrors, v *int64) {
	if v != nil && *v < 0 {
		errs.Add("big_int", "must be greater than or equal to 0")
	}
}
