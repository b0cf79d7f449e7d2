package validator

import (
	"strings"
	"testing"
)

func TestValidateDoubtCreate_TitleBounds(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"too short (4 chars)", "abcd", true},
		{"minimum length (5 chars)", "abcde", false},
		{"maximum length (100 chars)", strings.Repeat("a", 100), false},
		{"too long (101 chars)", strings.Repeat("a", 101), true},
		{"whitespace padding is trimmed", "   ab   ", true},
		{"empty", "", true},
		// Bounds count characters, not bytes
		{"maximum length non-ASCII (100 chars)", strings.Repeat("é", 100), false},
		{"too long non-ASCII (101 chars)", strings.Repeat("é", 101), true},
		{"minimum length non-ASCII (6 chars)", "hỏi gì", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &DoubtCreateRequest{Title: tt.title, Content: "a sufficiently long content body"}
			errs := bv.ValidateDoubtCreate(req)
			if tt.wantErr && len(errs) == 0 {
				t.Errorf("expected validation error for title %q", tt.title)
			}
			if !tt.wantErr && len(errs) > 0 {
				t.Errorf("unexpected errors for title %q: %v", tt.title, errs)
			}
		})
	}
}

func TestValidateDoubtCreate_ContentBounds(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"too short (9 chars)", strings.Repeat("a", 9), true},
		{"minimum length (10 chars)", strings.Repeat("a", 10), false},
		{"maximum length (1000 chars)", strings.Repeat("a", 1000), false},
		{"too long (1001 chars)", strings.Repeat("a", 1001), true},
		{"maximum length non-ASCII (1000 chars)", strings.Repeat("ư", 1000), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &DoubtCreateRequest{Title: "valid title", Content: tt.content}
			errs := bv.ValidateDoubtCreate(req)
			if tt.wantErr && len(errs) == 0 {
				t.Errorf("expected validation error for %d-char content", len(tt.content))
			}
			if !tt.wantErr && len(errs) > 0 {
				t.Errorf("unexpected errors for %d-char content: %v", len(tt.content), errs)
			}
		})
	}
}

func TestValidateDoubtUpdate(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("no fields supplied", func(t *testing.T) {
		errs := bv.ValidateDoubtUpdate(&DoubtUpdateRequest{})
		if len(errs) == 0 {
			t.Error("expected error when neither title nor content is provided")
		}
	})

	t.Run("title only", func(t *testing.T) {
		title := "new question title"
		errs := bv.ValidateDoubtUpdate(&DoubtUpdateRequest{Title: &title})
		if len(errs) > 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("invalid title still rejected", func(t *testing.T) {
		title := "abc"
		errs := bv.ValidateDoubtUpdate(&DoubtUpdateRequest{Title: &title})
		if len(errs) == 0 {
			t.Error("expected error for 3-char title")
		}
	})
}

func TestValidateAnswerCreate(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"too short", "short", true},
		{"minimum length (10 chars)", strings.Repeat("x", 10), false},
		{"maximum length (2000 chars)", strings.Repeat("x", 2000), false},
		{"too long (2001 chars)", strings.Repeat("x", 2001), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateAnswerCreate(&AnswerCreateRequest{Content: tt.content})
			if tt.wantErr && len(errs) == 0 {
				t.Errorf("expected validation error for %d-char answer", len(tt.content))
			}
			if !tt.wantErr && len(errs) > 0 {
				t.Errorf("unexpected errors for %d-char answer: %v", len(tt.content), errs)
			}
		})
	}
}

func TestValidateRegister(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("valid student registration", func(t *testing.T) {
		errs := bv.Validate(&RegisterRequest{
			Name:     "Alice Nguyen",
			Email:    "alice@example.com",
			Password: "s3cretpass",
			Role:     "STUDENT",
		})
		if len(errs) > 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		errs := bv.Validate(&RegisterRequest{
			Name:     "Alice Nguyen",
			Email:    "alice@example.com",
			Password: "s3cretpass",
			Role:     "ADMIN",
		})
		if len(errs) == 0 {
			t.Error("expected error for role ADMIN")
		}
	})

	t.Run("malformed email rejected", func(t *testing.T) {
		errs := bv.Validate(&RegisterRequest{
			Name:     "Alice Nguyen",
			Email:    "not-an-email",
			Password: "s3cretpass",
			Role:     "STUDENT",
		})
		if len(errs) == 0 {
			t.Error("expected error for malformed email")
		}
	})
}

func TestValidationErrorsError(t *testing.T) {
	if got := (ValidationErrors{}).Error(); got != "validation failed" {
		t.Errorf("empty errors: got %q", got)
	}

	one := ValidationErrors{{Field: "title", Message: "must be between 5 and 100 characters"}}
	if got := one.Error(); got != "validation failed: title must be between 5 and 100 characters" {
		t.Errorf("single error: got %q", got)
	}

	many := ValidationErrors{{Field: "title"}, {Field: "content"}}
	if got := many.Error(); got != "validation failed: 2 field errors" {
		t.Errorf("multiple errors: got %q", got)
	}
}
