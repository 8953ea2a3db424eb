package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rajagopika181204/website-backend/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// Default cost for bcrypt password hashing
	bcryptCost = 10

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	Secret string
	TTL    time.Duration
}

// AuthGate handles signup and login. Only bcrypt hashes are stored.
type AuthGate struct {
	db  *gorm.DB
	cfg AuthConfig
	log *zap.Logger
}

func NewAuthGate(db *gorm.DB, cfg AuthConfig, log *zap.Logger) *AuthGate {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &AuthGate{db: db, cfg: cfg, log: log}
}

func (a *AuthGate) Signup(ctx context.Context, in models.SignupData) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return models.User{}, validationError("all fields are required")
	}

	var count int64
	if err := a.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return models.User{}, persistenceFailure("failed to check existing users", err)
	}
	if count > 0 {
		return models.User{}, &Error{Kind: KindConflict, Message: "username or email already exists"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return models.User{}, persistenceFailure("failed to hash password", err)
	}

	user := models.User{Username: username, Email: email, Password: string(hash), Role: RoleUser}
	if err := a.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return models.User{}, &Error{Kind: KindConflict, Message: "username or email already exists", Err: err}
		}
		return models.User{}, persistenceFailure("failed to register user", err)
	}
	a.log.Info("User registered", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Login checks the credentials and returns the user with a signed token.
func (a *AuthGate) Login(ctx context.Context, in models.LoginData) (models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var user models.User
	err := a.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, "", &Error{Kind: KindUnauthorized, Message: "invalid credentials"}
	}
	if err != nil {
		return models.User{}, "", persistenceFailure("login failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return models.User{}, "", &Error{Kind: KindUnauthorized, Message: "invalid credentials"}
	}

	token, err := a.issueToken(user)
	if err != nil {
		return models.User{}, "", persistenceFailure("failed to generate token", err)
	}
	return user, token, nil
}

func (a *AuthGate) issueToken(user models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.cfg.Secret))
}

// ParseToken validates a bearer token and returns its claims.
func (a *AuthGate) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.cfg.Secret), nil
	})
	if err != nil {
		return nil, &Error{Kind: KindUnauthorized, Message: "invalid or expired token", Err: err}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, &Error{Kind: KindUnauthorized, Message: "invalid token"}
	}
	return claims, nil
}
