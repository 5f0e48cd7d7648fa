package store

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/golang/glog"

	"blackjack_ai/internal/domain"
	"blackjack_ai/internal/table"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrSessionNotFound  = errors.New("session not found")
	ErrNoActiveGame     = errors.New("no active game")
	ErrUsernameRequired = errors.New("username required")
)

type Session struct {
	SessionID string `json:"sessionId"`
	Username  string `json:"username"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type entry struct {
	Session
	table      *table.Table
	lastActive int64
}

type Options struct {
	// Secret signs session tokens. A random secret is generated when empty.
	Secret      []byte
	TTL         time.Duration
	IdleTimeout time.Duration
	// Seed makes every session's shuffles reproducible when non-zero.
	Seed int64
}

// MemoryStore keeps one game table per session. The policy is shared by
// every table and only used for greedy decisions.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	policy   table.Policy
	seeds    *mrand.Rand

	secret      []byte
	ttl         time.Duration
	idleTimeout time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore(policy table.Policy, opts Options) *MemoryStore {
	if len(opts.Secret) == 0 {
		opts.Secret = make([]byte, 32)
		if _, err := rand.Read(opts.Secret); err != nil {
			panic(fmt.Sprintf("generate session secret: %v", err))
		}
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 60 * time.Minute
	}
	ms := &MemoryStore{
		sessions:    map[string]*entry{},
		policy:      policy,
		seeds:       domain.NewRNG(opts.Seed),
		secret:      opts.Secret,
		ttl:         opts.TTL,
		idleTimeout: opts.IdleTimeout,
		stop:        make(chan struct{}),
	}
	go ms.idleCleanupLoop()
	return ms
}

// Close stops the idle cleanup loop.
func (m *MemoryStore) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *MemoryStore) CreateSession(username string) (*Session, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	now := time.Now()
	id := newSessionID()
	exp := now.Add(m.ttl).Unix()
	claims := jwt.MapClaims{
		"sub":  id,
		"name": username,
		"iat":  now.Unix(),
		"exp":  exp,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	env := domain.NewEnvironment(domain.ChildRNG(m.seeds))
	e := &entry{
		Session: Session{
			SessionID: id,
			Username:  username,
			Token:     token,
			ExpiresAt: exp,
		},
		table:      table.New(env, m.policy),
		lastActive: now.Unix(),
	}
	m.sessions[id] = e
	s := e.Session
	return &s, nil
}

// Authenticate validates a session token and returns its live session.
func (m *MemoryStore) Authenticate(tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, ErrUnauthorized
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthorized
	}
	id, _ := claims["sub"].(string)
	s, ok := m.GetSession(id)
	if !ok {
		return nil, ErrUnauthorized
	}
	return s, nil
}

func (m *MemoryStore) GetSession(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok || e.ExpiresAt <= time.Now().Unix() {
		return nil, false
	}
	s := e.Session
	return &s, true
}

func newSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("s-fallback-%d", time.Now().UnixNano())
	}
	return "s-" + hex.EncodeToString(b)
}

// lookup must be called with m.mu held.
func (m *MemoryStore) lookup(id string) (*entry, error) {
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastActive = time.Now().Unix()
	return e, nil
}

// NewGame deals a fresh round for the session, replacing any round in
// progress.
func (m *MemoryStore) NewGame(sessionID string) (table.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.lookup(sessionID)
	if err != nil {
		return table.View{}, err
	}
	return e.table.NewGame()
}

// Act applies the player's action to the session's round.
func (m *MemoryStore) Act(sessionID string, a domain.Action) (table.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.lookup(sessionID)
	if err != nil {
		return table.View{}, err
	}
	v, err := e.table.Act(a)
	if errors.Is(err, table.ErrNoGame) {
		return table.View{}, ErrNoActiveGame
	}
	return v, err
}

func (m *MemoryStore) State(sessionID string) (table.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.lookup(sessionID)
	if err != nil {
		return table.View{}, err
	}
	if !e.table.Started() {
		return table.View{}, ErrNoActiveGame
	}
	return e.table.View(), nil
}

func (m *MemoryStore) TouchSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.lastActive = time.Now().Unix()
	}
}

// RemoveSession deletes the session and its table.
func (m *MemoryStore) RemoveSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// removeIdle drops sessions that expired or sat idle past the timeout.
func (m *MemoryStore) removeIdle(now time.Time) int {
	idle := int64(m.idleTimeout / time.Second)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if now.Unix()-e.lastActive >= idle || e.ExpiresAt <= now.Unix() {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *MemoryStore) idleCleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			if n := m.removeIdle(now); n > 0 {
				glog.Infof("removed %d idle sessions", n)
			}
		}
	}
}
