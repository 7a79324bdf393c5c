package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/safo-124/high-purchase-sub010/internal/ledger"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
)

// --- DTOs ---

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
	ShopID   string `json:"shop_id"` // required for shop_admin and collector
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserResponse struct {
	ID         string  `json:"id"`
	BusinessID string  `json:"business_id"`
	ShopID     *string `json:"shop_id"`
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Role       string  `json:"role"`
	CreatedAt  string  `json:"created_at"`
}

// --- Interface ---

type UserService interface {
	CreateUser(ctx context.Context, businessID uuid.UUID, req CreateUserRequest) (UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, id string) (UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
}

type userService struct {
	repo      repository.UserRepository
	jwtSecret []byte
}

func NewUserService(repo repository.UserRepository, jwtSecret []byte) UserService {
	return &userService{repo: repo, jwtSecret: jwtSecret}
}

func toUserResponse(user *model.User) UserResponse {
	resp := UserResponse{
		ID:         user.ID.String(),
		BusinessID: user.BusinessID.String(),
		Username:   user.Username,
		Email:      user.Email,
		Phone:      user.Phone,
		Role:       user.Role,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}
	if user.ShopID != nil {
		id := user.ShopID.String()
		resp.ShopID = &id
	}
	return resp
}

func (s *userService) CreateUser(ctx context.Context, businessID uuid.UUID, req CreateUserRequest) (UserResponse, error) {
	if !model.ValidRole(req.Role) {
		return UserResponse{}, &ledger.ValidationError{Field: "role", Message: "must be business_admin, shop_admin, accountant, or collector"}
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return UserResponse{}, &ledger.ValidationError{Field: "username", Message: "already exists"}
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return UserResponse{}, &ledger.ValidationError{Field: "email", Message: "already exists"}
	}

	var shopID *uuid.UUID
	if req.Role == model.RoleShopAdmin || req.Role == model.RoleCollector {
		if req.ShopID == "" {
			return UserResponse{}, &ledger.ValidationError{Field: "shop_id", Message: "required for this role"}
		}
		id, err := parseUUID("shop_id", req.ShopID)
		if err != nil {
			return UserResponse{}, err
		}
		shopID = &id
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, err
	}

	user := &model.User{
		BusinessID: businessID,
		ShopID:     shopID,
		Username:   req.Username,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   string(hashedPassword),
		Role:       req.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, &ledger.ValidationError{Message: "invalid email or password"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, &ledger.ValidationError{Message: "invalid email or password"}
	}
	return s.issueTokens(ctx, user)
}

func (s *userService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	stored, err := s.repo.GetRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, &ledger.ValidationError{Message: "invalid refresh token"}
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, req.RefreshToken)
		return nil, &ledger.ValidationError{Message: "refresh token expired"}
	}

	user, err := s.repo.GetByID(ctx, stored.UserID.String())
	if err != nil {
		return nil, err
	}

	// Rotate: the presented token is single-use.
	if err := s.repo.DeleteRefreshToken(ctx, req.RefreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenResponse, error) {
	claims := jwt.MapClaims{
		"sub":         user.ID.String(),
		"role":        user.Role,
		"business_id": user.BusinessID.String(),
		"exp":         time.Now().Add(24 * time.Hour).Unix(),
		"iat":         time.Now().Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	refresh := hex.EncodeToString(raw)

	if err := s.repo.CreateRefreshToken(ctx, &model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}); err != nil {
		return nil, err
	}

	return &TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return UserResponse{}, notFound(err, "user", id)
	}
	return toUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toUserResponse(&users[i]))
	}
	return responses, total, nil
}
