package validator

// DoubtCreateRequest represents the request structure for creating doubts
type DoubtCreateRequest struct {
	Title   string `json:"title" validate:"required,doubt_title"`
	Content string `json:"content" validate:"required,doubt_content"`
}

// DoubtUpdateRequest represents the request structure for updating doubts
type DoubtUpdateRequest struct {
	Title   *string `json:"title" validate:"omitempty,doubt_title"`
	Content *string `json:"content" validate:"omitempty,doubt_content"`
}

// AnswerCreateRequest represents the request structure for posting answers
type AnswerCreateRequest struct {
	Content string `json:"content" validate:"required,answer_content"`
}

// RegisterRequest represents the request structure for account registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,user_role"`
}

// LoginRequest represents the request structure for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SuggestAnswerRequest represents the request structure for AI answer suggestions
type SuggestAnswerRequest struct {
	Title   string `json:"title" validate:"required,doubt_title"`
	Content string `json:"content" validate:"required,doubt_content"`
}
