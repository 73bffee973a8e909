package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"schooladmin/internal/docstore"
)

// AdminsCollection holds one document per admin, keyed by lowercased email.
const AdminsCollection = "admins"

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWeakPassword is returned when a new password is too short.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
)

const minPasswordLen = 6

type admin struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Accounts verifies admin credentials stored in the record store.
type Accounts struct {
	store docstore.Store
	cost  int
	now   func() time.Time
}

// NewAccounts builds an account set over store. cost <= 0 uses bcrypt.DefaultCost.
func NewAccounts(store docstore.Store, cost int) *Accounts {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Accounts{store: store, cost: cost, now: time.Now}
}

func accountID(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EnsureAdmin creates the admin when absent. An existing account keeps its password.
func (a *Accounts) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	id := accountID(email)
	if id == "" {
		return false, errors.New("admin email is empty")
	}
	_, err := a.store.Get(ctx, AdminsCollection, id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return false, err
	}
	if err := a.setPassword(ctx, id, password); err != nil {
		return false, err
	}
	return true, nil
}

// SignIn checks email and password and returns the canonical account email.
func (a *Accounts) SignIn(ctx context.Context, email, password string) (string, error) {
	id := accountID(email)
	acct, err := a.load(ctx, id)
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return id, nil
}

// ChangePassword replaces the password after verifying the current one.
func (a *Accounts) ChangePassword(ctx context.Context, email, current, next string) error {
	if _, err := a.SignIn(ctx, email, current); err != nil {
		return err
	}
	return a.setPassword(ctx, accountID(email), next)
}

func (a *Accounts) load(ctx context.Context, id string) (admin, error) {
	if id == "" {
		return admin{}, ErrInvalidCredentials
	}
	doc, err := a.store.Get(ctx, AdminsCollection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return admin{}, ErrInvalidCredentials
	}
	if err != nil {
		return admin{}, err
	}
	var acct admin
	if err := docstore.Decode(doc, &acct); err != nil {
		return admin{}, err
	}
	return acct, nil
}

func (a *Accounts) setPassword(ctx context.Context, id, password string) error {
	if len(password) < minPasswordLen {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	doc, err := docstore.Encode(admin{Email: id, PasswordHash: string(hash), UpdatedAt: a.now().UTC()})
	if err != nil {
		return err
	}
	return a.store.Set(ctx, AdminsCollection, id, doc)
}
