package model

// User represents a stored account record. PasswordHash is internal state
// and must never appear in an API response.
type User struct {
	ID               int64
	Email            string
	PasswordHash     string
	FirstName        string
	LastName         string
	Phone            string
	MembershipCode   string
	MembershipLevel  string
	RegistrationDate string
	PointsBalance    int64
}

// RegisterRequest represents a registration request. All fields besides
// email and password are optional profile data.
type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Phone            string `json:"phone"`
	MembershipCode   string `json:"membership_code"`
	MembershipLevel  string `json:"membership_level"`
	RegistrationDate string `json:"registration_date"`
	PointsBalance    int64  `json:"points_balance"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents user data safe for API responses.
type UserResponse struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Phone            string `json:"phone,omitempty"`
	MembershipCode   string `json:"membership_code,omitempty"`
	MembershipLevel  string `json:"membership_level,omitempty"`
	RegistrationDate string `json:"registration_date,omitempty"`
	PointsBalance    int64  `json:"points_balance"`
}

// AuthResponse is the body returned by register and login.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// ProfileResponse is the body returned by the profile endpoint.
type ProfileResponse struct {
	User UserResponse `json:"user"`
}

// NewUserResponse strips internal fields from a stored user record.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Phone:            u.Phone,
		MembershipCode:   u.MembershipCode,
		MembershipLevel:  u.MembershipLevel,
		RegistrationDate: u.RegistrationDate,
		PointsBalance:    u.PointsBalance,
	}
}
