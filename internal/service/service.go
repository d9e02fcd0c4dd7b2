// Package service implements every user-facing operation on top of the
// snapshot store. Each write runs inside one store.Update, so it either
// applies completely or not at all.
package service

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/directory"
	"github.com/lalith-99/beans/internal/feed"
	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/stats"
	"github.com/lalith-99/beans/internal/store"
	"github.com/lalith-99/beans/internal/tagging"
)

const (
	MaxMessageLength = 1000
	MaxNameLength    = 50
	MaxChannelName   = 20
	MinPasswordLen   = 6
	MinHandleLength  = 3
	MaxHandleLength  = 20
)

// Services is the full operation surface, one field per area.
type Services struct {
	Auth          *AuthService
	Users         *UserService
	Channels      *ChannelService
	Dms           *DmService
	Messages      *MessageService
	Standups      *StandupService
	Notifications *NotificationService
	Admin         *AdminService
}

// TokenConfig controls the session tokens handed out by AuthService.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

func New(st *store.Store, tokens TokenConfig, logger *zap.Logger) *Services {
	b := base{store: st, logger: logger, validate: validator.New()}
	return &Services{
		Auth:          &AuthService{base: b.named("auth"), tokens: tokens},
		Users:         &UserService{base: b.named("users")},
		Channels:      &ChannelService{base: b.named("channels")},
		Dms:           &DmService{base: b.named("dms")},
		Messages:      &MessageService{base: b.named("messages")},
		Standups:      &StandupService{base: b.named("standups")},
		Notifications: &NotificationService{base: b.named("notifications")},
		Admin:         &AdminService{base: b.named("admin")},
	}
}

type base struct {
	store    *store.Store
	logger   *zap.Logger
	validate *validator.Validate
}

func (b base) named(name string) base {
	b.logger = b.logger.Named(name)
	return b
}

func (b base) validEmail(email string) bool {
	return b.validate.Var(email, "required,email") == nil
}

func (b base) validHandle(handle string) bool {
	return b.validate.Var(handle, fmt.Sprintf("alphanum,min=%d,max=%d", MinHandleLength, MaxHandleLength)) == nil
}

func checkLength(field, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(value)
	if n < minLen || n > maxLen {
		return fmt.Errorf("%w: %s must be %d-%d characters", models.ErrInvalidInput, field, minLen, maxLen)
	}
	return nil
}

func requireUser(dir *directory.Directory, userID int64) (*models.User, error) {
	u := dir.UserByID(userID)
	if u == nil {
		return nil, fmt.Errorf("%w: user %d", models.ErrNotFound, userID)
	}
	return u, nil
}

// requireMember resolves the container and checks that userID belongs to it.
func requireMember(dir *directory.Directory, userID int64, ref models.ContainerRef) (*directory.Container, error) {
	c, err := dir.Container(ref)
	if err != nil {
		return nil, err
	}
	if !dir.IsMember(userID, ref) {
		return nil, fmt.Errorf("%w: user %d is not a member of %s", models.ErrForbidden, userID, ref)
	}
	return c, nil
}

// deliver appends msg to its container and notifies every member tagged in
// the body. The caller has already validated the sender and body.
func deliver(tx *store.Tx, dir *directory.Directory, c *directory.Container, msg models.Message) {
	post(tx, c, msg)
	notifyTagged(tx, dir, c, msg.SenderID, msg.Body)
}

// post appends msg and counts it, without tagging anyone.
func post(tx *store.Tx, c *directory.Container, msg models.Message) {
	*c.Messages = append(*c.Messages, msg)
	rec := stats.New(tx.Data, tx.Now)
	rec.MessageSent(msg.SenderID)
	rec.Workspace()
}

// notifyTagged records one tag notification per tagged member. It never
// retracts earlier notifications, so an edit adds to what is already there.
func notifyTagged(tx *store.Tx, dir *directory.Directory, c *directory.Container, senderID int64, body string) {
	sender := dir.UserByID(senderID)
	if sender == nil {
		return
	}
	f := feed.New(tx.Data, tx.Now)
	excerpt := tagging.Excerpt(body)
	for _, uid := range tagging.Tag(dir, c.Ref, body) {
		f.RecordTagged(uid, c.Ref, sender.Handle, c.Name, excerpt)
	}
}
