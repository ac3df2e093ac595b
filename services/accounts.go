package services

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strconv"
	"strings"

	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/store"
	"github.com/dcode-github/homlet/utils"
)

const minPasswordLength = 6

type Accounts struct {
	store store.Store
}

func NewAccounts(s store.Store) *Accounts {
	return &Accounts{store: s}
}

type RegisterInput struct {
	FullName       string
	Email          string
	Phone          string
	Password       string
	Commission     string
	Bio            string
	ProfilePicture string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *Accounts) RegisterClient(ctx context.Context, in RegisterInput) (*models.User, error) {
	user, err := newUser(in, models.RoleClient)
	if err != nil {
		return nil, err
	}
	return a.create(ctx, user, in.Password)
}

func (a *Accounts) RegisterAgent(ctx context.Context, in RegisterInput) (*models.User, error) {
	user, err := newUser(in, models.RoleAgent)
	if err != nil {
		return nil, err
	}
	commission, err := strconv.ParseFloat(strings.TrimSpace(in.Commission), 64)
	if err != nil || commission < 0 || commission > 100 {
		return nil, models.WrapError(models.ErrInvalidInput, "Commission must be between 0 and 100", err)
	}
	user.Commission = commission
	user.Bio = strings.TrimSpace(in.Bio)
	user.ProfilePicture = in.ProfilePicture
	return a.create(ctx, user, in.Password)
}

func newUser(in RegisterInput, role models.Role) (*models.User, error) {
	user := &models.User{
		FullName: strings.TrimSpace(in.FullName),
		Email:    normalizeEmail(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Role:     role,
	}
	if user.FullName == "" || user.Phone == "" {
		return nil, models.NewError(models.ErrInvalidInput, "Please provide valid information")
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return nil, models.WrapError(models.ErrInvalidInput, "Please provide a valid email", err)
	}
	if len(in.Password) < minPasswordLength {
		return nil, models.NewError(models.ErrInvalidInput, "Password must be at least 6 characters")
	}
	return user, nil
}

func (a *Accounts) create(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if _, err := a.store.FindUserByEmail(ctx, user.Email); err == nil {
		return nil, models.NewError(models.ErrConflict, "Email already registered")
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, models.WrapError(models.ErrUnavailable, "Registration failed", err)
	}
	user.Password = hashed

	if err := a.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.WrapError(models.ErrConflict, "Email already registered", err)
		}
		return nil, err
	}
	log.Printf("Registered %s %s", user.Role, user.Email)
	return user, nil
}

// Login only accepts accounts holding the requested role.
func (a *Accounts) Login(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	user, err := a.store.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewError(models.ErrForbidden, "Invalid credentials")
		}
		return nil, err
	}
	if user.Role != role || !utils.CheckPasswordHash(password, user.Password) {
		return nil, models.NewError(models.ErrForbidden, "Invalid credentials")
	}
	return user, nil
}

// EnsureAdmin seeds the default administrator when no account uses the email.
func (a *Accounts) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if _, err := a.store.FindUserByEmail(ctx, email); err == nil {
		log.Println("Admin user already exists")
		return nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		FullName: "HomLet Administrator",
		Email:    email,
		Phone:    "+234-800-HOMLET",
		Password: hashed,
		Role:     models.RoleAdmin,
	}
	if err := a.store.CreateUser(ctx, admin); err != nil {
		return err
	}
	log.Printf("Default admin created: %s", email)
	return nil
}

func (a *Accounts) Find(ctx context.Context, userHex string) (*models.User, error) {
	id, err := parseID(userHex, "user")
	if err != nil {
		return nil, err
	}
	return a.store.FindUserByID(ctx, id)
}
