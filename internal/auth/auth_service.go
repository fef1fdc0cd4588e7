package auth

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	autherrors "approval-portal/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	passwordMaxAgeDays = 90
	passwordWarnDays   = 10
	tokenLifetime      = 24 * time.Hour
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (LoginResponse, error)
	Login(ctx context.Context, empID, password string) (LoginResponse, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	GetMe(ctx context.Context, empID string) (LoginResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, logger: l, now: time.Now}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (LoginResponse, error) {
	if _, err := s.repo.GetByEmpID(ctx, req.EmpID); err == nil {
		s.logger.Warn("register on taken emp_id", zap.String("emp_id", req.EmpID))
		return LoginResponse{}, autherrors.ErrEmpIDTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("register lookup failed", zap.Error(err))
		return LoginResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return LoginResponse{}, err
	}

	var roles datatypes.JSON
	if len(req.Roles) > 0 {
		encoded, err := json.Marshal(req.Roles)
		if err != nil {
			return LoginResponse{}, err
		}
		roles = encoded
	}

	user := &User{
		ID:                 uuid.New(),
		EmpID:              req.EmpID,
		Name:               req.Name,
		Directorate:        req.Directorate,
		Division:           req.Division,
		Phone:              req.Phone,
		Password:           string(hashed),
		Roles:              roles,
		LastPasswordChange: s.now(),
		IsActive:           true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Error("persist registration failed", zap.Error(err))
		return LoginResponse{}, err
	}

	s.logger.Info("registration success", zap.String("emp_id", user.EmpID))
	return s.toSnapshot(user, "", passwordMaxAgeDays), nil
}

func (s *service) Login(ctx context.Context, empID, password string) (LoginResponse, error) {
	user, err := s.repo.GetByEmpID(ctx, empID)
	if err != nil {
		s.logger.Warn("login unknown emp_id", zap.String("emp_id", empID))
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Warn("login bad password", zap.String("emp_id", empID))
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	daysToExpiry := s.daysToExpiry(user.LastPasswordChange)
	if daysToExpiry <= 0 {
		s.logger.Warn("login with expired password", zap.String("emp_id", empID))
		return LoginResponse{}, autherrors.ErrPasswordExpired
	}

	token, err := s.generateToken(user.EmpID, user.Name)
	if err != nil {
		s.logger.Error("token generation failed", zap.Error(err))
		return LoginResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("login success",
		zap.String("emp_id", user.EmpID),
		zap.Int("days_to_password_expiry", daysToExpiry),
	)
	return s.toSnapshot(user, token, daysToExpiry), nil
}

func (s *service) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	user, err := s.repo.GetByEmpID(ctx, req.EmpID)
	if err != nil {
		return autherrors.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return autherrors.ErrPasswordMismatch
	}
	if req.OldPassword == req.NewPassword {
		return autherrors.ErrPasswordReused
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.Password = string(hashed)
	user.LastPasswordChange = s.now()
	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("persist password change failed", zap.Error(err))
		return err
	}

	s.logger.Info("password changed", zap.String("emp_id", user.EmpID))
	return nil
}

func (s *service) GetMe(ctx context.Context, empID string) (LoginResponse, error) {
	user, err := s.repo.GetByEmpID(ctx, empID)
	if err != nil {
		return LoginResponse{}, autherrors.ErrUserNotFound
	}
	return s.toSnapshot(user, "", s.daysToExpiry(user.LastPasswordChange)), nil
}

// daysToExpiry counts whole days remaining in the 90-day password window.
func (s *service) daysToExpiry(lastChange time.Time) int {
	elapsed := int(s.now().Sub(lastChange).Hours() / 24)
	return passwordMaxAgeDays - elapsed
}

func (s *service) toSnapshot(user *User, token string, daysToExpiry int) LoginResponse {
	var roles []Role
	if len(user.Roles) > 0 {
		if err := json.Unmarshal(user.Roles, &roles); err != nil {
			s.logger.Error("decode user roles failed",
				zap.String("emp_id", user.EmpID),
				zap.Error(err),
			)
		}
	}
	return LoginResponse{
		Token:                  token,
		EmpID:                  user.EmpID,
		Name:                   user.Name,
		Directorate:            user.Directorate,
		Division:               user.Division,
		Phone:                  user.Phone,
		Roles:                  roles,
		LastPasswordChangeDate: user.LastPasswordChange.Format("2006-01-02"),
		DaysToPasswordExpiry:   daysToExpiry,
		PasswordExpiringSoon:   daysToExpiry <= passwordWarnDays,
	}
}

func (s *service) generateToken(empID, name string) (string, error) {
	claims := jwt.MapClaims{
		"emp_id": empID,
		"name":   name,
		"exp":    s.now().Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
