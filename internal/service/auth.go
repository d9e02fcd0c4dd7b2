package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/auth"
	"github.com/lalith-99/beans/internal/directory"
	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/stats"
	"github.com/lalith-99/beans/internal/store"
)

type AuthService struct {
	base
	tokens TokenConfig
}

// Session is what register and login hand back to the client.
type Session struct {
	UserID int64
	Token  string
}

// Identity is the caller behind a valid token.
type Identity struct {
	UserID    int64
	SessionID uuid.UUID
}

var errBadCredentials = fmt.Errorf("%w: invalid email or password", models.ErrInvalidInput)

// Register creates a user and logs them in. The first user ever registered
// becomes the global owner.
func (s *AuthService) Register(ctx context.Context, email, password, nameFirst, nameLast string) (*Session, error) {
	if !s.validEmail(email) {
		return nil, fmt.Errorf("%w: invalid email %q", models.ErrInvalidInput, email)
	}
	if len(password) < MinPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", models.ErrInvalidInput, MinPasswordLen)
	}
	if err := checkLength("name_first", nameFirst, 1, MaxNameLength); err != nil {
		return nil, err
	}
	if err := checkLength("name_last", nameLast, 1, MaxNameLength); err != nil {
		return nil, err
	}

	// bcrypt is slow on purpose; keep it outside the store lock.
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var out *Session
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		dir := directory.New(tx.Data)
		if dir.UserByEmail(email) != nil {
			return fmt.Errorf("%w: email %q already registered", models.ErrInvalidInput, email)
		}

		user := models.User{
			ID:           tx.NextID(store.UserSeq),
			Email:        email,
			NameFirst:    nameFirst,
			NameLast:     nameLast,
			Handle:       generateHandle(dir, nameFirst, nameLast),
			PasswordHash: hash,
			GlobalOwner:  len(tx.Data.Users) == 0,
			CreatedAt:    tx.Now,
		}
		tx.Data.Users = append(tx.Data.Users, user)
		stats.New(tx.Data, tx.Now).Seed(user.ID)

		out, err = s.openSession(tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", out.UserID))
	return out, nil
}

// Login fails with the same error for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	var userID int64
	var hash string
	_ = s.store.View(func(data *models.Data) error {
		if u := directory.New(data).UserByEmail(email); u != nil {
			userID, hash = u.ID, u.PasswordHash
		}
		return nil
	})
	if hash == "" || !auth.CheckPassword(hash, password) {
		return nil, errBadCredentials
	}

	var out *Session
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		// The user may have been removed while bcrypt was running.
		if !directory.New(tx.Data).UserExists(userID) {
			return errBadCredentials
		}
		var err error
		out, err = s.openSession(tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Logout deletes the session, which invalidates its token immediately.
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		i := slices.IndexFunc(tx.Data.Sessions, func(sess models.Session) bool { return sess.ID == sessionID })
		if i < 0 {
			return fmt.Errorf("%w: unknown session", models.ErrUnauthenticated)
		}
		tx.Data.Sessions = slices.Delete(tx.Data.Sessions, i, i+1)
		return nil
	})
}

// ResolveToken verifies the token and checks that its session is still open.
func (s *AuthService) ResolveToken(token string) (Identity, error) {
	claims, err := auth.ParseToken(token, s.tokens.Secret, s.store.Now())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", models.ErrUnauthenticated, err)
	}

	var id Identity
	err = s.store.View(func(data *models.Data) error {
		userID, err := directory.New(data).ResolveSession(claims.SessionID)
		if err != nil {
			return err
		}
		id = Identity{UserID: userID, SessionID: claims.SessionID}
		return nil
	})
	if err != nil {
		return Identity{}, err
	}
	if id.UserID != claims.UserID {
		return Identity{}, fmt.Errorf("%w: session does not match token", models.ErrUnauthenticated)
	}
	return id, nil
}

func (s *AuthService) openSession(tx *store.Tx, userID int64) (*Session, error) {
	sess := models.Session{ID: uuid.New(), UserID: userID, CreatedAt: tx.Now}
	token, err := auth.GenerateToken(userID, sess.ID, s.tokens.Secret, tx.Now, s.tokens.TTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	tx.Data.Sessions = append(tx.Data.Sessions, sess)
	return &Session{UserID: userID, Token: token}, nil
}

// generateHandle lowercases first+last, drops anything that is not a letter
// or digit, and cuts the result to MaxHandleLength. A taken handle gets the
// smallest free numeric suffix, starting at 0, appended after the cut.
func generateHandle(dir *directory.Directory, nameFirst, nameLast string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(nameFirst + nameLast) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	handle := b.String()
	if len(handle) > MaxHandleLength {
		handle = handle[:MaxHandleLength]
	}
	if handle == "" {
		handle = "user"
	}

	if dir.UserByHandle(handle) == nil {
		return handle
	}
	for n := 0; ; n++ {
		candidate := handle + strconv.Itoa(n)
		if dir.UserByHandle(candidate) == nil {
			return candidate
		}
	}
}
