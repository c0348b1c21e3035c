package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidClockTime(t *testing.T) {
	valid := []string{"09:00", "17:30:00", "00:00", "23:59:59"}
	invalid := []string{"9:00", "24:00", "12:60", "12:00:60", "noon", ""}
	for _, s := range valid {
		assert.True(t, IsValidClockTime(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsValidClockTime(s), s)
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"9876543210", "+919876543210", "0091 98765 43210", "(555) 123-4567"}
	invalid := []string{"123456", "12345678901234567", "98765abc10", ""}
	for _, phone := range valid {
		if !IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = false, want true", phone)
		}
	}
	for _, phone := range invalid {
		if IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = true, want false", phone)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "invalid"},
		{Field: "phone", Message: "required"},
	}
	got := errs.Error()
	want := "email: invalid; phone: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "invalid"},
		{Field: "phone", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"email": "invalid", "phone": "required"}
	assert.Equal(t, want, got)
}

type structSample struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Start string  `json:"workStartTime" validate:"required,clock"`
	Phone *string `json:"phone" validate:"omitempty,phone"`
	Kind  string  `json:"type" validate:"oneof=in out"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		phone := "+919876543210"
		err := Struct(structSample{Name: "A", Email: "a@b.co", Start: "09:00", Phone: &phone, Kind: "in"})
		assert.NoError(t, err)
	})

	t.Run("reports json field names", func(t *testing.T) {
		bad := "12"
		err := Struct(structSample{Email: "nope", Start: "9am", Phone: &bad, Kind: "sideways"})
		require.Error(t, err)

		var errs ValidationErrors
		require.True(t, errors.As(err, &errs))

		m := errs.ToMap()
		assert.Equal(t, "name is required", m["name"])
		assert.Equal(t, "email must be a valid email address", m["email"])
		assert.Contains(t, m["workStartTime"], "HH:MM")
		assert.Equal(t, "phone must be a valid phone number", m["phone"])
		assert.Equal(t, "type must be one of: in out", m["type"])
	})
}
