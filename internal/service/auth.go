// Package service contains the business logic layer.
//
// Handlers parse HTTP and delegate here; services validate, enforce the
// domain rules, and talk to the repositories. Nothing in this package knows
// about status codes or JSON — the same methods could back a CLI or a gRPC
// surface unchanged.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/mnavarro/notas-api/internal/apperror"
	"github.com/mnavarro/notas-api/internal/auth"
	"github.com/mnavarro/notas-api/internal/model"
	"github.com/mnavarro/notas-api/internal/repository"
)

// MinPasswordLength matches the rule the API has always enforced.
const MinPasswordLength = 6

// AuthService handles registration and login.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the authenticated user with the issued token so the
// handler can build the login response in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new account.
//
// Validation happens before any store access, so a rejected registration
// leaves no partial state. A duplicate email surfaces as Conflict — that
// one IS reported distinctly (the original API does, and registration is
// rate-limitable separately from login).
func (s *AuthService) Register(ctx context.Context, nombre, email, password string) (*model.User, error) {
	nombre = strings.TrimSpace(nombre)
	email = strings.TrimSpace(strings.ToLower(email))

	if nombre == "" {
		return nil, apperror.ValidationFailed("nombre", "El nombre es obligatorio")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "Email invalido")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("La contraseña debe tener al menos %d caracteres", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Nombre:       nombre,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login verifies the credentials and issues a token.
//
// Unknown email and wrong password both return the SAME Unauthorized error:
// distinguishing them would let an attacker enumerate which emails hold
// accounts. The two cases are still logged apart for operators.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		s.logger.Debug("login failed: unknown email", slog.String("email", email))
		return nil, apperror.Unauthorized("Credenciales invalidas")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Debug("login failed: bad password", slog.String("userID", user.ID))
		return nil, apperror.Unauthorized("Credenciales invalidas")
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}
