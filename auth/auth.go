package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"energymon/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserInactive       = errors.New("user is inactive")
)

const tokenTTL = 24 * time.Hour

type AuthModule struct {
	db        *pgxpool.Pool
	jwtSecret string
}

func NewAuthModule(db *pgxpool.Pool, jwtSecret string) *AuthModule {
	return &AuthModule{
		db:        db,
		jwtSecret: jwtSecret,
	}
}

func (a *AuthModule) createUser(ctx context.Context, email, password string, fullName *string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var exists bool
	err := a.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM app_users WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{ID: uuid.NewString(), Email: email, FullName: fullName}
	err = a.db.QueryRow(ctx, `
		INSERT INTO app_users (id, email, password_hash, full_name)
		VALUES ($1, $2, $3, $4)
		RETURNING is_active, created_at, updated_at`,
		user.ID, email, string(hashedPassword), fullName,
	).Scan(&user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (a *AuthModule) generateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(tokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.jwtSecret))
}

func (a *AuthModule) authenticateUser(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var userID, passwordHash string
	var isActive bool
	err := a.db.QueryRow(ctx,
		"SELECT id, password_hash, is_active FROM app_users WHERE email = $1", email,
	).Scan(&userID, &passwordHash, &isActive)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	if !isActive {
		return "", ErrUserInactive
	}

	return userID, nil
}

// Register creates an account and returns its profile
func (a *AuthModule) Register(ctx context.Context, email, password string, fullName *string) (*models.User, error) {
	return a.createUser(ctx, email, password, fullName)
}

// Login validates credentials and returns a signed bearer token.
// The last-login timestamp update is best effort.
func (a *AuthModule) Login(ctx context.Context, email, password string) (string, error) {
	userID, err := a.authenticateUser(ctx, email, password)
	if err != nil {
		return "", err
	}

	if _, err := a.db.Exec(ctx, "UPDATE app_users SET last_login_at = now() WHERE id = $1", userID); err != nil {
		return "", err
	}

	return a.generateJWT(userID)
}

// ValidateToken parses a bearer token and returns the user id it names
func (a *AuthModule) ValidateToken(ctx context.Context, header string) (string, error) {
	raw := strings.TrimPrefix(header, "Bearer ")

	parsedToken, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.jwtSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return "", errors.New("invalid token")
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", errors.New("invalid token subject")
	}
	return userID, nil
}

// CurrentUser loads the profile of a token-identified user. Inactive
// accounts are rejected even when their token is still valid.
func (a *AuthModule) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := a.db.QueryRow(ctx, `
		SELECT id, email, full_name, is_active, created_at, updated_at, last_login_at
		FROM app_users
		WHERE id = $1`, userID,
	).Scan(&user.ID, &user.Email, &user.FullName, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return &user, nil
}

// ChangePassword changes the user's password after verifying the old one
func (a *AuthModule) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	var passwordHash string
	err := a.db.QueryRow(ctx, "SELECT password_hash FROM app_users WHERE id = $1", userID).Scan(&passwordHash)
	if err != nil {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = a.db.Exec(ctx, "UPDATE app_users SET password_hash = $1, updated_at = now() WHERE id = $2",
		string(hashedPassword), userID)
	return err
}
