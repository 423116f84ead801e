package dto

type UpdateAccountDTO struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken"`
}
