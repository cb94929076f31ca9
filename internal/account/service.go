package account

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/auth"
	"github.com/AndresIzquierdoBrito/AppCacheAPI/internal/idea"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoEmail means the external provider returned an identity without
	// an email claim, so the account cannot be matched or created.
	ErrNoEmail = errors.New("external identity has no email claim")
)

// ValidationErrors carries the full list of registration problems so the
// client sees them all at once.
type ValidationErrors []string

func (v ValidationErrors) Error() string { return strings.Join(v, "; ") }

const (
	minPasswordLen = 6
	maxUsernameLen = 50
)

// Service owns the registration and first-login lifecycle: creating users,
// assigning the base role and provisioning the default category exactly
// once per user.
type Service struct {
	DB *gorm.DB
}

// Register creates a local account. User, role and default category are
// written in one transaction; if provisioning fails, the user does not
// exist either.
func (s *Service) Register(ctx context.Context, email, username, password string) (*auth.User, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)

	var errs ValidationErrors
	if email == "" {
		errs = append(errs, "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, "email is not a valid address")
	}
	if username == "" {
		errs = append(errs, "username is required")
	} else if len(username) > maxUsernameLen {
		errs = append(errs, "username must be at most 50 characters")
	}
	if len(password) < minPasswordLen {
		errs = append(errs, "password must be at least 6 characters")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var user auth.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&auth.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ValidationErrors{"email is already taken"}
		}

		user = auth.User{Email: email, Username: username, PasswordHash: hash}
		ensureRole(&user, auth.RoleUser)
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return ensureDefaultCategory(tx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies local credentials. It never provisions anything; that
// happened at registration.
func (s *Service) Login(ctx context.Context, email, password string) (*auth.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user auth.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" || !auth.ComparePassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// CompleteExternalLogin resolves an externally authenticated identity to a
// local account. First sight creates and provisions the account; later
// logins only look it up.
func (s *Service) CompleteExternalLogin(ctx context.Context, ident auth.ExternalIdentity) (*auth.User, error) {
	email := normalizeEmail(ident.Email)
	if email == "" {
		return nil, ErrNoEmail
	}

	var user auth.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username := strings.TrimSpace(ident.Name)
	if username == "" {
		username = email
		if i := strings.Index(email, "@"); i > 0 {
			username = email[:i]
		}
	}
	if len(username) > maxUsernameLen {
		username = username[:maxUsernameLen]
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user = auth.User{Email: email, Username: username, IsGoogleUser: true}
		ensureRole(&user, auth.RoleUser)
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return ensureDefaultCategory(tx, user.ID)
	})
	if err != nil {
		// Two first logins racing: the unique email index fails the loser,
		// the winner's row is the account.
		var existing auth.User
		if ferr := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &user, nil
}

// Principal builds the session claims for a user.
func Principal(u *auth.User) auth.Principal {
	return auth.Principal{UserID: u.ID, Username: u.Username, Roles: []string(u.Roles)}
}

func ensureRole(u *auth.User, role string) {
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
}

func ensureDefaultCategory(tx *gorm.DB, userID uint64) error {
	var n int64
	err := tx.Model(&idea.Category{}).
		Where("user_id = ? AND title = ?", userID, idea.DefaultCategoryTitle).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return tx.Create(&idea.Category{UserID: userID, Title: idea.DefaultCategoryTitle}).Error
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
