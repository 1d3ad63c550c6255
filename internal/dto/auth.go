package dto

type RegisterRequestDTO struct {
	PhoneNumber string `json:"phone_number" validate:"required,len=8" example:"99112233"`
	FullName    string `json:"full_name" validate:"required,max=100" example:"Bat-Erdene Dorj"`
	Password    string `json:"password" validate:"required,min=6" example:"s3cret!"`
}

type LoginRequestDTO struct {
	PhoneNumber string `json:"phone_number" validate:"required,len=8" example:"99112233"`
	Password    string `json:"password" validate:"required,min=6" example:"s3cret!"`
}

type UserDTO struct {
	ID          int    `json:"id" example:"1"`
	PhoneNumber string `json:"phone_number" example:"99112233"`
	FullName    string `json:"full_name" example:"Bat-Erdene Dorj"`
}

type AuthResponseDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type MeResponseDTO struct {
	User   UserDTO           `json:"user"`
	Wallet WalletResponseDTO `json:"wallet"`
}

type ChangePasswordRequestDTO struct {
	CurrentPassword string `json:"current_password" validate:"required" example:"s3cret!"`
	NewPassword     string `json:"new_password" validate:"required,min=6" example:"n3ws3cret!"`
}

type UpdateProfileRequestDTO struct {
	FullName string `json:"full_name" validate:"required,max=100" example:"Bat-Erdene Dorj"`
}
