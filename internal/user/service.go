package user

import (
	"context"

	"gymdesk/internal/apperr"
	"gymdesk/internal/attendance"
	"gymdesk/internal/auth"
	"gymdesk/internal/logger"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	// Logout closes the caller's open attendance session, if any. It never
	// fails the logout itself.
	Logout(ctx context.Context, caller auth.Identity)
}

type service struct {
	repo       Repository
	attendance attendance.Service
	jwtSecret  string
}

func NewService(repo Repository, attendanceService attendance.Service, jwtSecret string) Service {
	return &service{
		repo:       repo,
		attendance: attendanceService,
		jwtSecret:  jwtSecret,
	}
}

func identityOf(u *User) auth.Identity {
	return auth.Identity{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		MemberID:  u.MemberID,
		TrainerID: u.TrainerID,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", apperr.Conflict("email already registered")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	u, err := s.repo.Create(ctx, req.Name, req.Email, passwordHash, auth.RoleMember)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(identityOf(u), s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return u, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", "", apperr.Unauthorized("invalid email or password")
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, "", "", apperr.Unauthorized("invalid email or password")
	}

	accessToken, refreshToken, err := auth.GenerateTokens(identityOf(u), s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return u, accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	newAccessToken, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", nil, apperr.Unauthorized("invalid refresh token")
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, u, nil
}

func (s *service) Logout(ctx context.Context, caller auth.Identity) {
	if caller.MemberID == nil {
		return
	}

	if err := s.attendance.CheckOutOpenSessionForMember(ctx, *caller.MemberID); err != nil {
		logger.Errorf("Failed to close open session on logout for member %d: %v", *caller.MemberID, err)
	}
}
