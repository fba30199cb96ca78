package dto

type RegisterRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
	Name  string `json:"name"  validate:"required,min=2"`
	PIN   string `json:"pin"   validate:"required,len=6,numeric"`
	Role  string `json:"role"  validate:"required,oneof=manager owner"`
}

type LoginRequest struct {
	Phone string `json:"phone" validate:"required"`
	PIN   string `json:"pin"   validate:"required"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	User         ProfileResponse `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ProfileResponse struct {
	ID       string `json:"id"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"is_admin"`
	Approved bool   `json:"approved"`
}

type SetApprovalRequest struct {
	Approved bool `json:"approved"`
}
