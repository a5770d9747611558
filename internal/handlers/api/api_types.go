package api

type RegisterForm struct {
	Email     string `form:"email" validate:"required,email"`
	Password  string `form:"password" validate:"required,min=6"`
	FirstName string `form:"firstName" validate:"omitempty,max=64"`
	LastName  string `form:"lastName" validate:"omitempty,max=64"`
	Birthday  string `form:"birthday" validate:"omitempty,max=32"`
	Phone     string `form:"phone" validate:"omitempty,max=32"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,numeric,len=6"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserInfo struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Birthday    string `json:"birthday"`
	Phone       string `json:"phone"`
	ValidIDPath string `json:"validIDPath"`
}

type LoginResponse struct {
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
	Token   string   `json:"token,omitempty"`
}

type ProfileResponse struct {
	User UserInfo `json:"user"`
}
