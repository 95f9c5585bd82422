package holidaysapi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Server tokens expire after 24 hours; treat them as stale an hour early
// so an in-flight request never crosses the expiry.
const defaultTokenLifetime = 23 * time.Hour

// TokenStore keeps the bearer token in memory and mirrors it to a file so
// it survives process restarts. The file holds the token together with the
// time it was obtained; an expired file token is ignored.
type TokenStore struct {
	mu       sync.RWMutex
	filePath string
	lifetime time.Duration
	token    string
	obtained time.Time
	logger   *zap.Logger
}

// tokenFile is the on-disk representation
type tokenFile struct {
	Token      string    `json:"token"`
	ObtainedAt time.Time `json:"obtained_at"`
}

// NewTokenStore creates a token store backed by the given file path
func NewTokenStore(filePath string, lifetime time.Duration, logger *zap.Logger) *TokenStore {
	if lifetime == 0 {
		lifetime = defaultTokenLifetime
	}

	return &TokenStore{
		filePath: filePath,
		lifetime: lifetime,
		logger:   logger,
	}
}

// Get returns the current token, loading it from the file when the
// in-memory copy is missing or stale. Returns "" when no valid token exists.
func (s *TokenStore) Get() string {
	s.mu.RLock()
	if s.token != "" && time.Since(s.obtained) < s.lifetime {
		token := s.token
		s.mu.RUnlock()
		return token
	}
	s.mu.RUnlock()

	return s.loadFromFile()
}

// Set stores a freshly obtained token and persists it
func (s *TokenStore) Set(token string) {
	now := time.Now()

	s.mu.Lock()
	s.token = token
	s.obtained = now
	s.mu.Unlock()

	if err := s.saveToFile(token, now); err != nil {
		// A missing token file only costs a re-auth on the next run
		s.logger.Warn("Failed to persist auth token",
			zap.String("file", s.filePath),
			zap.Error(err))
	}
}

// Clear drops the in-memory token, forcing the next Get to consult the
// file or report no token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	s.token = ""
	s.obtained = time.Time{}
	s.mu.Unlock()
}

// Discard removes the token from memory and deletes the file. Used when
// the server rejects the token as invalid.
func (s *TokenStore) Discard() {
	s.Clear()

	if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove token file",
			zap.String("file", s.filePath),
			zap.Error(err))
	}
}

func (s *TokenStore) loadFromFile() string {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read token file",
				zap.String("file", s.filePath),
				zap.Error(err))
		}
		return ""
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		s.logger.Warn("Token file is corrupt, ignoring",
			zap.String("file", s.filePath),
			zap.Error(err))
		return ""
	}

	if tf.Token == "" || time.Since(tf.ObtainedAt) >= s.lifetime {
		s.logger.Debug("File token expired",
			zap.String("file", s.filePath),
			zap.Time("obtained_at", tf.ObtainedAt))
		return ""
	}

	s.mu.Lock()
	s.token = tf.Token
	s.obtained = tf.ObtainedAt
	s.mu.Unlock()

	s.logger.Debug("Loaded auth token from file", zap.String("file", s.filePath))

	return tf.Token
}

func (s *TokenStore) saveToFile(token string, obtained time.Time) error {
	data, err := json.Marshal(tokenFile{Token: token, ObtainedAt: obtained})
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create token dir: %w", err)
		}
	}

	if err := os.WriteFile(s.filePath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}
