package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "github.com/tejgit8102/expensemate-backend/internal/errors"
	"github.com/tejgit8102/expensemate-backend/internal/logger"
	"github.com/tejgit8102/expensemate-backend/internal/models"
)

// otpTTL is how long a password-reset OTP stays valid.
const otpTTL = 10 * time.Minute

// userService handles account and credential business logic.
type userService struct {
	db     *gorm.DB
	mailer Mailer
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, mailer Mailer) UserServicer {
	return &userService{db: db, mailer: mailer}
}

// Register creates a new active user with the USER role. Username and email
// must be unique; emails are stored lowercased.
func (s *userService) Register(username, email, password string) (*models.User, error) {
	email = strings.ToLower(email)
	if err := s.checkUsernameAvailable(username, 0); err != nil {
		return nil, err
	}
	if err := s.checkEmailAvailable(email, 0); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
		Active:   true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Authenticate verifies an email/password pair. Unknown emails and wrong
// passwords fail identically; disabled accounts fail with their own error.
func (s *userService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, apperrors.ErrAccountDisabled
	}
	return &user, nil
}

// GetUserByID retrieves a user by primary key.
func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of a profile update. Username and
// email changes re-check uniqueness; a new password is re-hashed.
func (s *userService) UpdateProfile(userID uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil && *update.Username != user.Username {
		if err := s.checkUsernameAvailable(*update.Username, userID); err != nil {
			return nil, err
		}
		user.Username = *update.Username
	}
	if update.Email != nil && strings.ToLower(*update.Email) != user.Email {
		newEmail := strings.ToLower(*update.Email)
		if err := s.checkEmailAvailable(newEmail, userID); err != nil {
			return nil, err
		}
		user.Email = newEmail
	}
	if update.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		user.Password = string(hash)
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// ChangePassword replaces a user's password after verifying the current one.
func (s *userService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidCredentials, "Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(user).Update("password", string(hash)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RequestPasswordReset issues a fresh six-digit OTP for an account, replacing
// any previous tokens for the email, and mails it out. Mail delivery is
// best-effort after the token is committed.
func (s *userService) RequestPasswordReset(email string) error {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return err
	}

	otp, err := generateOTP()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	token := &models.PasswordResetToken{
		Email:     user.Email,
		OTP:       otp,
		ExpiresAt: time.Now().Add(otpTTL).UnixMilli(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", user.Email).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	go func(to, otp string) {
		if err := s.mailer.SendOTP(to, otp); err != nil {
			logger.Get().Errorw("failed to send OTP email", "email", to, "error", err.Error())
		}
	}(user.Email, otp)

	return nil
}

// VerifyOTP reports whether an OTP is currently valid for an email. Expired
// tokens are deleted on check.
func (s *userService) VerifyOTP(email, otp string) (bool, error) {
	var token models.PasswordResetToken
	err := s.db.Where("email = ? AND otp = ?", email, otp).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if token.ExpiresAt < time.Now().UnixMilli() {
		if err := s.db.Delete(&token).Error; err != nil {
			logger.Get().Warnw("failed to delete expired OTP token", "email", email, "error", err.Error())
		}
		return false, nil
	}
	return true, nil
}

// ResetPassword sets a new password after OTP verification. The new password
// must differ from the current one; used tokens are consumed.
func (s *userService) ResetPassword(email, otp, newPassword string) error {
	valid, err := s.VerifyOTP(email, otp)
	if err != nil {
		return err
	}
	if !valid {
		return apperrors.ErrInvalidOTP
	}

	user, err := s.GetUserByEmail(email)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(newPassword)) == nil {
		return apperrors.ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password", string(hash)).Error; err != nil {
			return err
		}
		return tx.Where("email = ?", email).Delete(&models.PasswordResetToken{}).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// EnsureAdmin seeds the admin account on startup when it does not exist yet.
func (s *userService) EnsureAdmin(username, email, password string) error {
	email = strings.ToLower(email)
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	admin := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleAdmin,
		Active:   true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("admin account seeded", "email", email)
	return nil
}

func (s *userService) checkUsernameAvailable(username string, excludeID uint) error {
	var count int64
	query := s.db.Model(&models.User{}).Where("username = ?", username)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateUsername
	}
	return nil
}

func (s *userService) checkEmailAvailable(email string, excludeID uint) error {
	var count int64
	query := s.db.Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateEmail
	}
	return nil
}

// generateOTP produces a six-digit numeric one-time password.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
