package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"food-ordering-api/apperr"
	"food-ordering-api/models"
	"food-ordering-api/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8

	verificationTTL = 24 * time.Hour
	resetTTL        = time.Hour
)

// ForgotPasswordMessage is returned whether or not the account exists
const ForgotPasswordMessage = "If an account exists with this email, a password reset link has been sent"

const msgBadCredentials = "Incorrect email or password"

var contactPattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

type AuthConfig struct {
	// Relaxed tolerates a failed verification dispatch at signup
	Relaxed         bool
	DefaultDialCode string
	FrontendURL     string
}

// AuthService owns the account lifecycle: signup, login, verification,
// password reset and profile edits.
type AuthService struct {
	users  repository.UserRepository
	mailer Mailer
	otp    OTPProvider
	images ImageUploader
	cfg    AuthConfig
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, mailer Mailer, otp OTPProvider, images ImageUploader, cfg AuthConfig) *AuthService {
	return &AuthService{
		users:  users,
		mailer: mailer,
		otp:    otp,
		images: images,
		cfg:    cfg,
		now:    time.Now,
	}
}

type SignupInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Contact  string `json:"contact"`
}

// Signup creates an unverified account and sends the phone verification
// challenge. Outside relaxed mode a failed dispatch removes the account again.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	fullname := strings.TrimSpace(in.Fullname)
	email := normalizeEmail(in.Email)
	contact := strings.TrimSpace(in.Contact)

	if fullname == "" || email == "" || in.Password == "" || contact == "" {
		return nil, apperr.Validation("All fields are required: fullname, email, password, contact")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperr.Validation("Password must be at least 8 characters long")
	}
	if !isEmail(email) {
		return nil, apperr.Validation("Invalid email address")
	}
	if !contactPattern.MatchString(contact) {
		return nil, apperr.Validation("Contact number must be 10 to 15 digits")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("User already exist with this email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}
	code, err := verificationCode()
	if err != nil {
		return nil, apperr.Internal("failed to generate verification code", err)
	}
	expires := s.now().Add(verificationTTL)

	user := &models.User{
		Fullname:                   fullname,
		Email:                      email,
		PasswordHash:               string(hash),
		Contact:                    contact,
		Address:                    models.DefaultAddress,
		City:                       models.DefaultCity,
		Country:                    models.DefaultCountry,
		VerificationToken:          &code,
		VerificationTokenExpiresAt: &expires,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("User already exist with this email")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	if err := s.otp.SendCode(ctx, s.phoneNumber(contact)); err != nil {
		if !s.cfg.Relaxed {
			if derr := s.users.Delete(ctx, user.ID); derr != nil {
				logrus.WithError(derr).WithField("user_id", user.ID).Error("failed to roll back user after OTP failure")
			}
			return nil, apperr.Dependency("Failed to send verification code. Please try again later.", err)
		}
		logrus.WithError(err).WithField("user_id", user.ID).Warn("verification code not sent")
	}

	return user, nil
}

// Login checks credentials and records the login time. Unknown email and
// wrong password fail with the same message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, apperr.Auth(msgBadCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Auth(msgBadCredentials)
	}

	user.LastLogin = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal("failed to record login", err)
	}
	return user, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) (*models.User, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, apperr.Validation("Verification code and email are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}

	ok, err := s.otp.CheckCode(ctx, s.phoneNumber(user.Contact), code)
	if err != nil {
		return nil, apperr.Dependency("Failed to check verification code. Please try again later.", err)
	}
	if !ok {
		return nil, apperr.Auth("Invalid or expired verification code")
	}

	user.IsVerified = true
	user.VerificationToken = nil
	user.VerificationTokenExpiresAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal("failed to verify user", err)
	}

	if err := s.mailer.SendWelcome(ctx, user.Email, user.Fullname); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("welcome email not sent")
	}
	return user, nil
}

// ForgotPassword issues a one-hour reset token and mails the link. It
// succeeds silently for unknown addresses.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperr.Validation("Email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperr.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil
	}

	token, err := resetToken()
	if err != nil {
		return apperr.Internal("failed to generate reset token", err)
	}
	expires := s.now().Add(resetTTL)
	user.ResetPasswordToken = &token
	user.ResetPasswordTokenExpiresAt = &expires
	if err := s.users.Update(ctx, user); err != nil {
		return apperr.Internal("failed to store reset token", err)
	}

	link := strings.TrimRight(s.cfg.FrontendURL, "/") + "/resetpassword/" + token
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return apperr.Dependency("Failed to send password reset email. Please try again later.", err)
	}
	return nil
}

// ResetPassword consumes a reset token. The token is cleared on success so
// it cannot be replayed.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperr.Auth("Invalid or expired reset token")
	}

	user, err := s.users.FindByResetToken(ctx, token, s.now())
	if err != nil {
		return apperr.Internal("failed to look up reset token", err)
	}
	if user == nil {
		return apperr.Auth("Invalid or expired reset token")
	}
	if len(newPassword) < MinPasswordLength {
		return apperr.Validation("Password must be at least 8 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	user.PasswordHash = string(hash)
	user.ResetPasswordToken = nil
	user.ResetPasswordTokenExpiresAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return apperr.Internal("failed to reset password", err)
	}

	if err := s.mailer.SendResetSuccess(ctx, user.Email); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("reset confirmation email not sent")
	}
	return nil
}

func (s *AuthService) CheckAuth(ctx context.Context, sess Session) (*models.User, error) {
	if !sess.Authenticated() {
		return nil, apperr.Auth("User not authenticated")
	}
	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

// ProfileInput carries the fields to change; empty strings are left alone
type ProfileInput struct {
	Fullname       string  `json:"fullname" form:"fullname"`
	Email          string  `json:"email" form:"email"`
	Address        string  `json:"address" form:"address"`
	City           string  `json:"city" form:"city"`
	Country        string  `json:"country" form:"country"`
	ProfilePicture *Upload `json:"-" form:"-"`
}

func (s *AuthService) UpdateProfile(ctx context.Context, sess Session, in ProfileInput) (*models.User, error) {
	user, err := s.CheckAuth(ctx, sess)
	if err != nil {
		return nil, err
	}

	if in.Email != "" {
		email := normalizeEmail(in.Email)
		if !isEmail(email) {
			return nil, apperr.Validation("Invalid email address")
		}
		other, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, apperr.Internal("failed to look up user", err)
		}
		if other != nil && other.ID != user.ID {
			return nil, apperr.Conflict("Email is already in use")
		}
		user.Email = email
	}
	if v := strings.TrimSpace(in.Fullname); v != "" {
		user.Fullname = v
	}
	if v := strings.TrimSpace(in.Address); v != "" {
		user.Address = v
	}
	if v := strings.TrimSpace(in.City); v != "" {
		user.City = v
	}
	if v := strings.TrimSpace(in.Country); v != "" {
		user.Country = v
	}

	if in.ProfilePicture != nil {
		url, err := uploadImage(ctx, s.images, folderProfiles, in.ProfilePicture)
		if err != nil {
			return nil, apperr.Dependency("Failed to upload profile picture", err)
		}
		user.ProfilePicture = url
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("Email is already in use")
		}
		return nil, apperr.Internal("failed to update profile", err)
	}
	return user, nil
}

// phoneNumber puts a contact into E.164 form for the OTP provider
func (s *AuthService) phoneNumber(contact string) string {
	if strings.HasPrefix(contact, "+") {
		return contact
	}
	return s.cfg.DefaultDialCode + contact
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func resetToken() (string, error) {
	b := make([]byte, 40)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
