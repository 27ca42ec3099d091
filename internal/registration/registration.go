package registration

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// Form field names shared by the HTML form and the submission payload.
const (
	FieldCourseTitle  = "courseTitle"
	FieldName         = "name"
	FieldPhone        = "phone"
	FieldEmail        = "email"
	FieldDiscountCode = "discountCode"
)

// Data is one registration as sent upstream.
type Data struct {
	CourseTitle  string `json:"courseTitle"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	DiscountCode string `json:"discountCode,omitempty"`
}

// Normalize returns a copy with surrounding whitespace removed from every field.
func (d Data) Normalize() Data {
	return Data{
		CourseTitle:  strings.TrimSpace(d.CourseTitle),
		Name:         strings.TrimSpace(d.Name),
		Phone:        strings.TrimSpace(d.Phone),
		Email:        strings.TrimSpace(d.Email),
		DiscountCode: strings.TrimSpace(d.DiscountCode),
	}
}

// ErrInvalid is matched by every *ValidationError.
var ErrInvalid = errors.New("invalid registration")

// ValidationError names the first field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid registration: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Validate checks that every required field is present and that the e-mail
// address parses. Fields are checked in form order.
func (d Data) Validate() error {
	d = d.Normalize()

	required := []struct {
		field, value string
	}{
		{FieldCourseTitle, d.CourseTitle},
		{FieldName, d.Name},
		{FieldPhone, d.Phone},
		{FieldEmail, d.Email},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{Field: r.field, Reason: "is required"}
		}
	}

	addr, err := mail.ParseAddress(d.Email)
	if err != nil || addr.Address != d.Email {
		return &ValidationError{Field: FieldEmail, Reason: "is not a valid address"}
	}

	return nil
}
