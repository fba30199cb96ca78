package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mrinmay27/the149-store/internal/config"
	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/model"
	"github.com/mrinmay27/the149-store/internal/repository"
	"github.com/mrinmay27/the149-store/internal/worker"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.ProfileResponse, error)
	// Login verifies the phone/PIN credential and issues tokens.
	// Unapproved profiles are rejected with ErrNotApproved.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	// SetApproval flips the approval flag; callers must already be admins.
	SetApproval(ctx context.Context, id uuid.UUID, approved bool) (*dto.ProfileResponse, error)
	ListProfiles(ctx context.Context) ([]dto.ProfileResponse, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

type authService struct {
	repo       repository.ProfileRepository
	cfg        *config.Config
	dispatcher *worker.Dispatcher
}

func NewAuthService(repo repository.ProfileRepository, cfg *config.Config, dispatcher *worker.Dispatcher) AuthService {
	return &authService{repo: repo, cfg: cfg, dispatcher: dispatcher}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.ProfileResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), 12)
	if err != nil {
		return nil, err
	}
	p := &model.Profile{
		Phone:   req.Phone,
		Name:    req.Name,
		Role:    req.Role,
		PINHash: string(hash),
		// Approved stays false until an admin flips it.
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		job := worker.NotificationJob{
			Kind:        worker.KindRegistration,
			SubjectID:   p.ID,
			Title:       "New profile awaiting approval",
			Description: fmt.Sprintf("%s (%s) registered as %s", p.Name, p.Phone, p.Role),
			Metadata:    map[string]interface{}{"profile_id": p.ID.String()},
		}
		if err := s.dispatcher.EnqueueNotification(ctx, job); err != nil {
			log.Error().Err(err).Msg("registration notification enqueue failed")
		}
	}

	return profileToResponse(p), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	p, err := s.repo.FindByPhone(ctx, req.Phone)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PINHash), []byte(req.PIN)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !p.Approved {
		return nil, ErrNotApproved
	}
	return s.issueTokens(p)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	p, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	// Approval may have been revoked since the token was minted.
	if !p.Approved {
		return nil, ErrNotApproved
	}
	return s.issueTokens(p)
}

func (s *authService) SetApproval(ctx context.Context, id uuid.UUID, approved bool) (*dto.ProfileResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	p.Approved = approved
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if s.dispatcher != nil && approved {
		job := worker.NotificationJob{
			Kind:        model.NotifApproval,
			SubjectID:   p.ID,
			Title:       "Account approved",
			Description: "Your account has been approved. You can now use the store.",
			Metadata:    map[string]interface{}{"profile_id": p.ID.String()},
		}
		if err := s.dispatcher.EnqueueNotification(ctx, job); err != nil {
			log.Error().Err(err).Msg("approval notification enqueue failed")
		}
	}

	return profileToResponse(p), nil
}

func (s *authService) ListProfiles(ctx context.Context) ([]dto.ProfileResponse, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		resp = append(resp, *profileToResponse(&profiles[i]))
	}
	return resp, nil
}

func (s *authService) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *authService) issueTokens(p *model.Profile) (*dto.LoginResponse, error) {
	access, err := s.generateToken(p, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(p, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         *profileToResponse(p),
	}, nil
}

func (s *authService) generateToken(p *model.Profile, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  p.ID.String(),
		"phone":    p.Phone,
		"name":     p.Name,
		"role":     p.Role,
		"is_admin": p.IsAdmin,
		"approved": p.Approved,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func profileToResponse(p *model.Profile) *dto.ProfileResponse {
	return &dto.ProfileResponse{
		ID:       p.ID.String(),
		Phone:    p.Phone,
		Name:     p.Name,
		Role:     p.Role,
		IsAdmin:  p.IsAdmin,
		Approved: p.Approved,
	}
}
