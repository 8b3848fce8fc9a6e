package domain

// Session is the authenticated identity used for every non-auth call.
type Session struct {
	Username string `yaml:"username" json:"username"`
	Token    string `yaml:"token" json:"token"`
}

// LoggedIn reports whether the session carries a credential.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// AuthResponse is returned by both auth endpoints.
type AuthResponse struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// MinPasswordLength is enforced client side before registering.
const MinPasswordLength = 6
