package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type (
	// TokenStore keeps the server side payload of every live session,
	// keyed by the opaque token the client carries in its cookie.
	TokenStore interface {
		Save(ctx context.Context, token string, payload []byte) error
		Lookup(ctx context.Context, token string) ([]byte, bool, error)
		Delete(ctx context.Context, token string) error
	}

	// Sessions owns the session lifecycle: anonymous on first contact,
	// authenticated after Bind, gone after End or expiry.
	Sessions struct {
		tokens TokenStore
		ttl    time.Duration
	}

	sessionPayload struct {
		UserID   int64               `json:"user_id"`
		IssuedAt int64               `json:"issued_at"`
		Flash    map[string][]string `json:"flash,omitempty"`
	}
)

func NewSessions(tokens TokenStore, ttl time.Duration) *Sessions {
	return &Sessions{tokens: tokens, ttl: ttl}
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

// Begin allocates a fresh anonymous session and returns its token.
// Tokens are random, they carry no information about the user.
func (s *Sessions) Begin(ctx context.Context) (string, error) {
	token := uuid.NewString()
	err := s.save(ctx, token, sessionPayload{IssuedAt: time.Now().UnixNano()})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a token to the user id bound to it, ok is false for
// missing or expired sessions. An expired session is dropped on
// sight, the caller should treat the request as anonymous.
func (s *Sessions) Resolve(ctx context.Context, token string) (int64, bool, error) {
	p, ok, err := s.load(ctx, token)
	if !ok || err != nil {
		return 0, false, err
	}
	return p.UserID, true, nil
}

// Bind marks the session as belonging to the given user and restarts
// its expiry window. The token is reused, flash state survives login.
func (s *Sessions) Bind(ctx context.Context, token string, userID int64) error {
	p, ok, err := s.load(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		p = sessionPayload{}
	}
	p.UserID = userID
	p.IssuedAt = time.Now().UnixNano()
	return s.save(ctx, token, p)
}

// End drops the session, the token becomes worthless immediately.
func (s *Sessions) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.tokens.Delete(ctx, token)
}

// Flash appends a single-read message under the given key.
func (s *Sessions) Flash(ctx context.Context, token string, key string, msg string) error {
	p, ok, err := s.load(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if p.Flash == nil {
		p.Flash = map[string][]string{}
	}
	p.Flash[key] = append(p.Flash[key], msg)
	return s.save(ctx, token, p)
}

// TakeFlash returns the messages stored under key and clears them,
// a second call always comes back empty.
func (s *Sessions) TakeFlash(ctx context.Context, token string, key string) ([]string, error) {
	p, ok, err := s.load(ctx, token)
	if err != nil || !ok {
		return nil, err
	}
	msgs := p.Flash[key]
	if len(msgs) == 0 {
		return nil, nil
	}
	delete(p.Flash, key)
	err = s.save(ctx, token, p)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Sessions) load(ctx context.Context, token string) (sessionPayload, bool, error) {
	var p sessionPayload
	if token == "" {
		return p, false, nil
	}
	buf, ok, err := s.tokens.Lookup(ctx, token)
	if err != nil {
		return p, false, fmt.Errorf("unable to lookup session, cause %w", err)
	}
	if !ok {
		return p, false, nil
	}
	err = json.Unmarshal(buf, &p)
	if err != nil {
		return sessionPayload{}, false, fmt.Errorf("unable to decode session payload, cause %w", err)
	}
	if time.Since(time.Unix(0, p.IssuedAt)) > s.ttl {
		// expired, drop it now rather than waiting for eviction
		_ = s.tokens.Delete(ctx, token)
		return sessionPayload{}, false, nil
	}
	return p, true, nil
}

func (s *Sessions) save(ctx context.Context, token string, p sessionPayload) error {
	buf, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("unable to encode session payload, cause %w", err)
	}
	err = s.tokens.Save(ctx, token, buf)
	if err != nil {
		return fmt.Errorf("unable to save session, cause %w", err)
	}
	return nil
}
