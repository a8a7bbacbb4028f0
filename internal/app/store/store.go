/*
Package store is the single source of truth for users, posts and active chat sessions.

It is the only component allowed to mutate them. Handlers and WebSocket clients call its
operations, which re-check role and ban state on every mutating entry point. Session
changes are published to a Notifier so connected clients can follow along.
*/
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"biochat/internal/app/chat"
	"biochat/internal/app/post"
	"biochat/internal/app/user"
	"biochat/internal/pkg/logx"
	"biochat/internal/pkg/randx"
)

var (
	ErrInvalidCredentials = errors.New("real name and college are required")
	ErrUserNotFound       = errors.New("user not found")
	ErrBanned             = errors.New("account is banned")
	ErrNotAdmin           = errors.New("admin role required")
	ErrProtectedUser      = errors.New("admin accounts cannot be moderated")
	ErrInvalidTopic       = errors.New("unknown chat topic")
	ErrNoActiveSession    = errors.New("no active chat session")
	ErrContentTooLong     = errors.New("content too long")
	ErrClosed             = errors.New("store is shut down")
)

// IdentityMinter mints persona names. It must never fail.
type IdentityMinter interface {
	Generate(ctx context.Context) string
}

// ReplyGenerator produces simulated peer replies. It must never fail.
type ReplyGenerator interface {
	Generate(ctx context.Context, topic chat.Topic, history []chat.Message, peerName string) string
}

// Notifier receives session events addressed to a user. Notify is called with the store
// lock held, so it must not block or call back into the Store.
type Notifier interface {
	Notify(userID string, evt chat.Event)
}

// Options tune a Store.
type Options struct {
	// AdminBypass enables the literal admin/system login.
	AdminBypass bool

	// ReplyDelayMin and ReplyDelayMax bound the simulated network latency before a peer reply.
	ReplyDelayMin time.Duration
	ReplyDelayMax time.Duration

	// Notifier is optional.
	Notifier Notifier

	// Now defaults to time.Now.
	Now func() time.Time
}

// activeSession is a chat session plus the number of replies still in flight.
type activeSession struct {
	session chat.Session
	pending int
}

// Store holds all application state in memory.
type Store struct {
	mu sync.RWMutex

	users    []user.User
	posts    []post.Post
	sessions map[string]*activeSession

	identities IdentityMinter
	replies    ReplyGenerator
	opts       Options

	// ctx bounds delayed replies; cancelled by Shutdown.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool

	logger zerolog.Logger
}

// New builds a Store seeded with the initial users and posts.
func New(identities IdentityMinter, replies ReplyGenerator, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := opts.Now()

	return &Store{
		users:      user.Seed(now),
		posts:      post.Seed(now),
		sessions:   make(map[string]*activeSession),
		identities: identities,
		replies:    replies,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logx.Component("Store"),
	}
}

// LoginOrRegister returns the admin for the literal admin credentials, otherwise mints a
// new identity through the IdentityMinter and registers it.
func (s *Store) LoginOrRegister(ctx context.Context, realName, college string) (user.User, error) {
	realName = strings.TrimSpace(realName)
	college = strings.TrimSpace(college)

	if realName == "" || college == "" {
		return user.User{}, ErrInvalidCredentials
	}

	if s.opts.AdminBypass && user.IsAdminCredential(realName, college) {
		s.mu.RLock()
		defer s.mu.RUnlock()

		admin, ok := s.findLocked(user.AdminID)
		if !ok {
			return user.User{}, ErrUserNotFound
		}
		s.logger.Info().Str("user_id", admin.ID).Msg("Admin signed in via bypass.")
		return *admin, nil
	}

	name := s.identities.Generate(ctx)

	seed, err := randx.AvatarSeed()
	if err != nil {
		return user.User{}, err
	}

	u := user.User{
		ID:         randx.UserID(),
		Username:   name,
		RealName:   realName,
		College:    college,
		Role:       user.RoleUser,
		JoinedAt:   s.opts.Now(),
		AvatarSeed: seed,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.findLocked(u.ID); ok {
		return *existing, nil
	}
	s.users = append(s.users, u)

	s.logger.Info().
		Str("user_id", u.ID).
		Str("username", u.Username).
		Int("total_users", len(s.users)).
		Msg("New identity registered.")

	return u, nil
}

// User returns a copy of the user with id.
func (s *Store) User(id string) (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.findLocked(id)
	if !ok {
		return user.User{}, false
	}
	return *u, true
}

// Users returns a snapshot of every registered user.
func (s *Store) Users() []user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]user.User(nil), s.users...)
}

// Authorize returns the user with id if it exists and is not banned.
func (s *Store) Authorize(id string) (user.User, error) {
	u, ok := s.User(id)
	if !ok {
		return user.User{}, ErrUserNotFound
	}
	if u.IsBanned {
		return u, ErrBanned
	}
	return u, nil
}

// ToggleBan flips the ban flag of userID. Unknown ids are ignored.
// It does not check roles; HTTP callers go through ModerateBan.
func (s *Store) ToggleBan(userID string) {
	s.mu.Lock()
	u, ok := s.findLocked(userID)
	if !ok {
		s.mu.Unlock()
		return
	}
	u.IsBanned = !u.IsBanned
	banned := u.IsBanned
	s.endBannedSessionLocked(userID, banned)
	s.mu.Unlock()

	s.logBan(userID, banned)
}

// ModerateBan toggles the ban flag of targetID on behalf of actorID.
// The actor must be an unbanned admin and the target must not be an admin.
func (s *Store) ModerateBan(actorID, targetID string) (user.User, error) {
	s.mu.Lock()

	actor, ok := s.findLocked(actorID)
	if !ok {
		s.mu.Unlock()
		return user.User{}, ErrUserNotFound
	}
	if actor.IsBanned {
		s.mu.Unlock()
		return user.User{}, ErrBanned
	}
	if !actor.IsAdmin() {
		s.mu.Unlock()
		return user.User{}, ErrNotAdmin
	}

	target, ok := s.findLocked(targetID)
	if !ok {
		s.mu.Unlock()
		return user.User{}, ErrUserNotFound
	}
	if target.IsAdmin() {
		s.mu.Unlock()
		return user.User{}, ErrProtectedUser
	}

	target.IsBanned = !target.IsBanned
	updated := *target
	s.endBannedSessionLocked(targetID, updated.IsBanned)
	s.mu.Unlock()

	s.logBan(targetID, updated.IsBanned)

	return updated, nil
}

// CreatePost prepends a post by authorID. A blank body is ignored and reported with
// created == false.
func (s *Store) CreatePost(authorID, body string) (p post.Post, created bool, err error) {
	if strings.TrimSpace(body) == "" {
		return post.Post{}, false, nil
	}

	if utf8.RuneCountInString(body) > post.MaxContentLength {
		return post.Post{}, false, ErrContentTooLong
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	author, ok := s.findLocked(authorID)
	if !ok {
		return post.Post{}, false, ErrUserNotFound
	}
	if author.IsBanned {
		return post.Post{}, false, ErrBanned
	}

	p = post.New(randx.NewID(), *author, body, s.opts.Now())
	s.posts = append([]post.Post{p}, s.posts...)

	s.logger.Info().
		Str("post_id", p.ID).
		Str("author_id", authorID).
		Int("total_posts", len(s.posts)).
		Msg("Post created.")

	return p.Clone(), true, nil
}

// Posts returns the feed, newest first.
func (s *Store) Posts() []post.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]post.Post, len(s.posts))
	for i, p := range s.posts {
		out[i] = p.Clone()
	}
	return out
}

// Shutdown cancels pending delayed replies and waits for them to exit.
func (s *Store) Shutdown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.logger.Info().Msg("Store shutdown complete.")
}

func (s *Store) findLocked(id string) (*user.User, bool) {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i], true
		}
	}
	return nil, false
}

// endBannedSessionLocked discards the chat session of a freshly banned user and publishes
// its end. s.mu must be held.
func (s *Store) endBannedSessionLocked(userID string, banned bool) {
	if !banned {
		return
	}
	active, ok := s.sessions[userID]
	if !ok {
		return
	}
	delete(s.sessions, userID)
	s.notify(userID, chat.TypeSessionEnded, active.session.ID, nil)
}

func (s *Store) logBan(userID string, banned bool) {
	s.logger.Info().
		Str("user_id", userID).
		Bool("is_banned", banned).
		Msg("Ban flag toggled.")
}

// notify publishes a session event. Callers hold s.mu so events leave in the order the
// changes were applied; the Notifier must not block.
func (s *Store) notify(userID string, eventType chat.EventType, sessionID string, payload any) {
	if s.opts.Notifier == nil {
		return
	}

	evt, err := chat.NewEvent(eventType, sessionID, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("Failed to build session event.")
		return
	}

	s.opts.Notifier.Notify(userID, evt)
}
