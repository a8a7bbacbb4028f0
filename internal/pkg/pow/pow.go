/*
Package pow implements the Proof-of-Work gate in front of identity minting.

Every new identity costs an oracle call, so when a difficulty is configured a client must
first solve a SHA-256 puzzle and present the resulting short-lived proof token at login.
A difficulty of zero disables the gate.
*/
package pow

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// TokenHeaderKey is the HTTP header carrying the proof token.
	TokenHeaderKey = "X-PoW-Token"

	// ProofTokenDuration is how long an issued proof token stays valid.
	ProofTokenDuration = 30 * time.Second

	// NonceExpiryDuration is how long a challenge nonce stays valid.
	NonceExpiryDuration = 5 * time.Minute
)

var (
	// ErrNonceInvalid is returned for unknown, expired or already consumed nonces.
	ErrNonceInvalid = errors.New("nonce expired or invalid")

	// ErrProofTooWeak is returned when the hash lacks the required leading zeros.
	ErrProofTooWeak = errors.New("proof does not meet difficulty requirement")
)

// Challenge is handed to clients before they may mint an identity.
type Challenge struct {
	Nonce      string `json:"nonce"`
	Difficulty int    `json:"difficulty"`
}

// Manager tracks outstanding nonces and issued proof tokens. It is safe for concurrent use.
type Manager struct {
	// difficulty is the number of leading hex zeros the hash must have.
	difficulty int

	nonces map[string]time.Time
	tokens map[string]time.Time

	mu sync.Mutex

	now func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewManager creates a Manager and starts its expiry janitor. Call Stop to release it.
func NewManager(difficulty int) *Manager {
	m := &Manager{
		difficulty: difficulty,
		nonces:     make(map[string]time.Time),
		tokens:     make(map[string]time.Time),
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	go m.cleanupExpiredEntries()

	return m
}

// Enabled reports whether proofs are required at all.
func (m *Manager) Enabled() bool {
	return m.difficulty > 0
}

// NewChallenge issues a fresh nonce.
func (m *Manager) NewChallenge() Challenge {
	m.mu.Lock()
	defer m.mu.Unlock()

	nonce := uuid.New().String()
	m.nonces[nonce] = m.now().Add(NonceExpiryDuration)

	return Challenge{Nonce: nonce, Difficulty: m.difficulty}
}

// Verify checks that sha256(nonce + counter) meets the difficulty, consumes the nonce
// and returns a proof token.
func (m *Manager) Verify(nonce, counter string) (string, error) {
	if !Meets(nonce, counter, m.difficulty) {
		return "", ErrProofTooWeak
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.nonces[nonce]
	if !ok || m.now().After(expiry) {
		return "", ErrNonceInvalid
	}
	delete(m.nonces, nonce)

	token := uuid.New().String()
	m.tokens[token] = m.now().Add(ProofTokenDuration)

	return token, nil
}

// Consume reports whether the request carries a valid proof token and invalidates it.
// When the gate is disabled every request passes.
func (m *Manager) Consume(r *http.Request) bool {
	if !m.Enabled() {
		return true
	}

	token := r.Header.Get(TokenHeaderKey)
	if token == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.tokens[token]
	if !ok {
		return false
	}
	delete(m.tokens, token)

	return !m.now().After(expiry)
}

// Stop terminates the janitor goroutine. It is safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	<-m.done
}

// Meets reports whether sha256(nonce+counter) has difficulty leading hex zeros.
func Meets(nonce, counter string, difficulty int) bool {
	hash := sha256.Sum256([]byte(nonce + counter))
	return strings.HasPrefix(hex.EncodeToString(hash[:]), strings.Repeat("0", difficulty))
}

func (m *Manager) cleanupExpiredEntries() {
	defer close(m.done)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.purge()
		}
	}
}

func (m *Manager) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for nonce, expiry := range m.nonces {
		if now.After(expiry) {
			delete(m.nonces, nonce)
		}
	}
	for token, expiry := range m.tokens {
		if now.After(expiry) {
			delete(m.tokens, token)
		}
	}
}
