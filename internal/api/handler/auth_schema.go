package handler

import (
	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

// registerRequest holds the text parts of the registration form. The avatar
// and coverImage file parts are read separately.
type registerRequest struct {
	FullName string `form:"fullName" json:"fullName"`
	Email    string `form:"email"    json:"email"    validate:"omitempty,email"`
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type loginResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func toRegisterInput(req registerRequest, avatarPath, coverPath string) ports.RegisterInput {
	return ports.RegisterInput{
		Username:       req.Username,
		Email:          req.Email,
		FullName:       req.FullName,
		Password:       req.Password,
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	}
}
