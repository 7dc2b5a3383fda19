package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/validate"
)

var ErrEmailTaken = errors.New("email already registered")

// UserStore persists local identity credentials.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string, fullName *string) (string, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.LocalUser, error)
}

type PgUserStore struct {
	Pool *pgxpool.Pool
}

func (s *PgUserStore) CreateUser(ctx context.Context, email, passwordHash string, fullName *string) (string, error) {
	var id string
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO local_users (email, password_hash, full_name)
		 VALUES (lower($1), $2, $3)
		 RETURNING id::text`,
		email, passwordHash, fullName,
	).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return "", ErrEmailTaken
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PgUserStore) FindUserByEmail(ctx context.Context, email string) (*domain.LocalUser, error) {
	var u domain.LocalUser
	err := s.Pool.QueryRow(ctx,
		`SELECT id::text, email, password_hash, full_name, created_at
		 FROM local_users WHERE email = lower($1)`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// LocalHandler serves signup and login when the service is its own identity
// provider.
type LocalHandler struct {
	Users  UserStore
	Issuer *Issuer
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,mail"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"max=200"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (h *LocalHandler) Signup(c *fiber.Ctx) error {
	var body signupRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	body.Email = strings.TrimSpace(body.Email)
	body.FullName = strings.TrimSpace(body.FullName)
	if err := validate.Struct(body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), cost)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}

	var fullName *string
	if body.FullName != "" {
		fullName = &body.FullName
	}

	userID, err := h.Users.CreateUser(c.UserContext(), body.Email, string(hashed), fullName)
	if errors.Is(err, ErrEmailTaken) {
		return fiber.NewError(fiber.StatusConflict, "email already registered")
	}
	if err != nil {
		return err
	}

	token, err := h.Issuer.Issue(userID, strings.ToLower(body.Email))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tokenResponse{Token: token, UserID: userID})
}

func (h *LocalHandler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	body.Email = strings.TrimSpace(body.Email)
	if body.Email == "" || body.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password required")
	}

	u, err := h.Users.FindUserByEmail(c.UserContext(), body.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(body.Password)); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := h.Issuer.Issue(u.ID, u.Email)
	if err != nil {
		return err
	}
	return c.JSON(tokenResponse{Token: token, UserID: u.ID})
}
