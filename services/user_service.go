package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"stepRivalsAPI/internal/apperr"
	"stepRivalsAPI/internal/clock"
	"stepRivalsAPI/internal/repository"
	"stepRivalsAPI/internal/timeutil"
	"stepRivalsAPI/internal/types/badge"
	"stepRivalsAPI/internal/types/challenge"
	"stepRivalsAPI/internal/types/goals"
	"stepRivalsAPI/internal/types/user"
)

const (
	minPasswordLength = 8
	sessionTTL        = 30 * 24 * time.Hour
)

type UserService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	goals      repository.GoalsRepository
	steps      repository.StepRepository
	badges     repository.BadgeRepository
	challenges repository.ChallengeRepository
	clock      clock.Clock
	jwtSecret  []byte
}

func NewUserService(
	usersRepo repository.UserRepository,
	sessionsRepo repository.SessionRepository,
	goalsRepo repository.GoalsRepository,
	stepsRepo repository.StepRepository,
	badgesRepo repository.BadgeRepository,
	challengesRepo repository.ChallengeRepository,
	clk clock.Clock,
	jwtSecret []byte,
) *UserService {
	return &UserService{
		users:      usersRepo,
		sessions:   sessionsRepo,
		goals:      goalsRepo,
		steps:      stepsRepo,
		badges:     badgesRepo,
		challenges: challengesRepo,
		clock:      clk,
		jwtSecret:  jwtSecret,
	}
}

func (s *UserService) Register(ctx context.Context, req *user.RegisterRequest) (*user.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", apperr.ErrValidation)
	}
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", apperr.ErrValidation)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, minPasswordLength)
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	if !timeutil.ValidTimezone(timezone) {
		return nil, fmt.Errorf("%w: unknown timezone %q", apperr.ErrValidation, timezone)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Timezone:     timezone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, fmt.Errorf("%w: email already registered", apperr.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &user.AuthResponse{User: u, Token: token}, nil
}

func (s *UserService) Login(ctx context.Context, req *user.LoginRequest) (*user.AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &user.AuthResponse{User: u, Token: token}, nil
}

func (s *UserService) issueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	now := s.clock.Now()
	tokenID := uuid.New().String()
	expiresAt := now.Add(sessionTTL)

	claims := jwt.MapClaims{
		"sub": userID.String(),
		"jti": tokenID,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.sessions.Create(ctx, &user.Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return signed, nil
}

// ValidateToken checks the signature and the backing session, returning the
// authenticated user id. Used by the auth middleware.
func (s *UserService) ValidateToken(ctx context.Context, tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !parsed.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: invalid token claims", apperr.ErrUnauthorized)
	}
	tokenID, _ := claims["jti"].(string)
	subject, _ := claims["sub"].(string)

	sess, err := s.sessions.GetByTokenID(ctx, tokenID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: session not found", apperr.ErrUnauthorized)
	}
	if sess.RevokedAt != nil || s.clock.Now().After(sess.ExpiresAt) {
		return uuid.Nil, fmt.Errorf("%w: session expired", apperr.ErrUnauthorized)
	}

	userID, err := uuid.Parse(subject)
	if err != nil || userID != sess.UserID {
		return uuid.Nil, fmt.Errorf("%w: invalid token subject", apperr.ErrUnauthorized)
	}
	return userID, nil
}

func (s *UserService) Logout(ctx context.Context, tokenString string) error {
	parsed, _ := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if parsed == nil {
		return fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("%w: invalid token claims", apperr.ErrUnauthorized)
	}
	tokenID, _ := claims["jti"].(string)
	if err := s.sessions.Revoke(ctx, tokenID, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *user.UpdateProfileRequest) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}
	if username := strings.TrimSpace(req.Username); username != "" {
		u.Username = username
	}
	if req.Timezone != "" {
		if !timeutil.ValidTimezone(req.Timezone) {
			return nil, fmt.Errorf("%w: unknown timezone %q", apperr.ErrValidation, req.Timezone)
		}
		u.Timezone = req.Timezone
	}
	if req.ImageURL != "" {
		imageURL := req.ImageURL
		u.ImageURL = &imageURL
	}
	u.UpdatedAt = s.clock.Now()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetGoals(ctx context.Context, userID uuid.UUID) (*goals.UserGoals, error) {
	g, err := s.goals.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	return g, nil
}

func (s *UserService) UpdateGoals(ctx context.Context, userID uuid.UUID, req *goals.UpdateRequest) (*goals.UserGoals, error) {
	g, err := s.goals.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	if req.DailyStepTarget != nil {
		if *req.DailyStepTarget <= 0 {
			return nil, fmt.Errorf("%w: daily target must be positive", apperr.ErrValidation)
		}
		g.DailyStepTarget = *req.DailyStepTarget
	}
	if req.WeeklyStepTarget != nil {
		if *req.WeeklyStepTarget <= 0 {
			return nil, fmt.Errorf("%w: weekly target must be positive", apperr.ErrValidation)
		}
		g.WeeklyStepTarget = *req.WeeklyStepTarget
	}
	if req.Paused != nil {
		g.Paused = *req.Paused
	}
	if err := s.goals.Update(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to update goals: %w", err)
	}
	return g, nil
}

func (s *UserService) GetStats(ctx context.Context, userID uuid.UUID) (*user.Stats, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}

	today, err := timeutil.DateIn(u.Timezone, s.clock.Now())
	if err != nil {
		return nil, err
	}

	stats := &user.Stats{}

	if entry, err := s.steps.Get(ctx, userID, today); err == nil {
		stats.TodaySteps = entry.StepCount
	}

	weekSteps, err := s.steps.SumRange(ctx, userID, timeutil.WeekStart(today), today)
	if err != nil {
		return nil, fmt.Errorf("failed to sum weekly steps: %w", err)
	}
	stats.WeekSteps = weekSteps

	g, err := s.goals.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	stats.CurrentStreak = g.CurrentStreak
	stats.LongestStreak = g.LongestStreak

	badgeCount, err := s.badges.CountForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count badges: %w", err)
	}
	stats.BadgeCount = badgeCount

	list, err := s.challenges.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	stats.ChallengeCount = len(list)
	for _, c := range list {
		if c.Status == challenge.StatusCompleted {
			stats.CompletedCount++
		}
	}

	return stats, nil
}

func (s *UserService) ListBadges(ctx context.Context, userID uuid.UUID) ([]*badge.UserBadge, error) {
	list, err := s.badges.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	if list == nil {
		list = []*badge.UserBadge{}
	}
	return list, nil
}
