package handlers

import (
	"net/http"
	"strings"

	"food-ordering-api/apperr"
	"food-ordering-api/middleware"
	"food-ordering-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	auth   *service.AuthService
	tokens *middleware.TokenManager
}

func NewUserHandler(auth *service.AuthService, tokens *middleware.TokenManager) *UserHandler {
	return &UserHandler{auth: auth, tokens: tokens}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verificationCode"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// profileRequest is the JSON form of a profile update; the picture is a
// data URI.
type profileRequest struct {
	service.ProfileInput
	ProfilePicture string `json:"profilePicture"`
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req service.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}
	user, err := h.auth.Signup(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.tokens.Issue(c, user.ID); err != nil {
		c.Error(apperr.Internal("failed to issue session", err))
		return
	}
	apperr.Success(c, http.StatusCreated, gin.H{
		"message": "Account created successfully. Verification code sent.",
		"user":    user,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}
	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.tokens.Issue(c, user.ID); err != nil {
		c.Error(apperr.Internal("failed to issue session", err))
		return
	}
	apperr.OK(c, gin.H{"message": "Welcome back " + user.Fullname, "user": user})
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.tokens.Clear(c)
	apperr.OK(c, gin.H{"message": "Logged out successfully."})
}

func (h *UserHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}
	user, err := h.auth.VerifyEmail(c.Request.Context(), req.Email, req.VerificationCode)
	if err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"message": "Account verified successfully.", "user": user})
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}
	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"message": service.ForgotPasswordMessage})
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), c.Param("token"), req.NewPassword); err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"message": "Password reset successfully."})
}

func (h *UserHandler) CheckAuth(c *gin.Context) {
	user, err := h.auth.CheckAuth(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"user": user})
}

// UpdateProfile takes JSON with a data URI picture, or a multipart form
// with the picture as a file.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var in service.ProfileInput
	var picture string

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&in); err != nil {
			c.Error(err)
			return
		}
		up, err := imageFile(c, "profilePicture")
		if err != nil {
			c.Error(err)
			return
		}
		defer closeUpload(up)
		in.ProfilePicture = up
		if up == nil {
			picture = c.PostForm("profilePicture")
		}
	} else {
		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(err)
			return
		}
		in = req.ProfileInput
		picture = req.ProfilePicture
	}

	// an http(s) URL is the picture the client already has
	if picture != "" && !strings.HasPrefix(picture, "http://") && !strings.HasPrefix(picture, "https://") {
		up, err := dataURI("profile", picture)
		if err != nil {
			c.Error(err)
			return
		}
		in.ProfilePicture = up
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"user": user, "message": "Profile updated successfully"})
}
