package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/logger"
	"github.com/rl1809/aspas/internal/metrics"
	"github.com/rl1809/aspas/internal/port"
)

type defaultUser struct {
	username string
	password string
	role     domain.Role
}

var defaultUsers = []defaultUser{
	{username: "admin", password: "admin123", role: domain.RoleAdmin},
	{username: "employee1", password: "emp123", role: domain.RoleEmployee},
}

// AuthService checks credentials against stored bcrypt hashes.
type AuthService struct {
	store   port.LedgerStore
	audit   *AuditService
	metrics *metrics.Metrics
	cost    int
}

// NewAuthService uses bcrypt.DefaultCost when cost is out of range.
func NewAuthService(store port.LedgerStore, audit *AuditService, m *metrics.Metrics, cost int) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{store: store, audit: audit, metrics: m, cost: cost}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Session, error) {
	const op = "service.AuthService.Login"

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.metrics.LoginFailed()
		return domain.Session{}, fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	}

	user, err := s.store.FindUser(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		s.metrics.LoginFailed()
		logger.Warn(ctx, "login rejected", logger.String("user", username))
		return domain.Session{}, fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if !VerifyPassword(user.PasswordHash, password) {
		s.metrics.LoginFailed()
		logger.Warn(ctx, "login rejected", logger.String("user", username))
		return domain.Session{}, fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	}

	sess := domain.Session{Username: user.Username, Role: user.Role}
	details := fmt.Sprintf("User login: %s (%s)", sess.Username, sess.Role)
	if err := s.audit.Record(ctx, sess, domain.ActionLogin, details); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info(ctx, "user logged in", logger.String("user", sess.Username), logger.String("role", string(sess.Role)))
	return sess, nil
}

func (s *AuthService) Logout(ctx context.Context, sess domain.Session) error {
	const op = "service.AuthService.Logout"

	if err := s.audit.Record(ctx, sess, domain.ActionLogout, "User logout: "+sess.Username); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// EnsureDefaultUsers seeds the stock accounts on an empty users table. It
// returns the number of users created.
func (s *AuthService) EnsureDefaultUsers(ctx context.Context) (int, error) {
	const op = "service.AuthService.EnsureDefaultUsers"

	n, err := s.store.CountUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		return 0, nil
	}

	users := make([]domain.User, 0, len(defaultUsers))
	for _, u := range defaultUsers {
		hash, err := HashPassword(u.password, s.cost)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, domain.User{Username: u.username, PasswordHash: hash, Role: u.role})
	}

	err = s.store.InTx(ctx, func(tx port.LedgerTx) error {
		for _, u := range users {
			if err := tx.InsertUser(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info(ctx, "seeded default users", logger.Int("count", len(users)))
	return len(users), nil
}

// CreateUser stores a new credential record. Admin only.
func (s *AuthService) CreateUser(ctx context.Context, sess domain.Session, username, password string, role domain.Role) error {
	const op = "service.AuthService.CreateUser"

	if err := requireAdmin(sess); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return fmt.Errorf("%s: %w", op, &domain.ValidationError{Field: "username", Reason: "required"})
	case password == "":
		return fmt.Errorf("%s: %w", op, &domain.ValidationError{Field: "password", Reason: "required"})
	case !role.Valid():
		return fmt.Errorf("%s: %w", op, &domain.ValidationError{Field: "role", Reason: "unknown role " + string(role)})
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.store.InTx(ctx, func(tx port.LedgerTx) error {
		return tx.InsertUser(ctx, domain.User{Username: username, PasswordHash: hash, Role: role})
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
