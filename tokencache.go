package arduinocloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultTokenCacheFile is the file name used by DefaultTokenCachePath.
const DefaultTokenCacheFile = "AccessToken.json"

// TokenCache is a durable side-cache for access tokens.
// It lets a restarted process reuse a token that has not expired yet.
// Implementations must be safe for concurrent use. Load returns
// ErrTokenCacheMiss when nothing is stored.
type TokenCache interface {
	Load(ctx context.Context) (*Token, error)
	Save(ctx context.Context, token *Token) error
}

// DefaultTokenCachePath returns AccessToken.json in the directory of the
// running executable, falling back to the working directory.
func DefaultTokenCachePath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultTokenCacheFile
	}
	return filepath.Join(filepath.Dir(exe), DefaultTokenCacheFile)
}

// FileTokenCache stores the access token in a human-readable JSON file.
type FileTokenCache struct {
	filepath string
	mu       sync.RWMutex
}

// NewFileTokenCache creates a FileTokenCache backed by the given path.
func NewFileTokenCache(filepath string) *FileTokenCache {
	return &FileTokenCache{
		filepath: filepath,
	}
}

// Path returns the backing file path.
func (f *FileTokenCache) Path() string {
	return f.filepath
}

// Save writes the token to the file
func (f *FileTokenCache) Save(ctx context.Context, token *Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	// Ensure the directory exists
	dir := filepath.Dir(f.filepath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	// Write to a temporary file first, then rename for atomicity
	tmpFile := f.filepath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	if err := os.Rename(tmpFile, f.filepath); err != nil {
		// Clean up temp file on failure
		os.Remove(tmpFile)
		return fmt.Errorf("failed to save token file: %w", err)
	}

	return nil
}

// Load reads the token from the file
func (f *FileTokenCache) Load(ctx context.Context) (*Token, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrTokenCacheMiss
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	return &token, nil
}

// Delete removes the token file
func (f *FileTokenCache) Delete(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.filepath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// MemoryTokenCache keeps the token in process memory (useful for testing)
type MemoryTokenCache struct {
	token *Token
	mu    sync.RWMutex
}

// NewMemoryTokenCache creates an empty in-memory token cache.
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{}
}

// Save stores a copy of the token.
func (m *MemoryTokenCache) Save(ctx context.Context, token *Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := *token
	m.token = &t
	return nil
}

// Load returns a copy of the stored token.
func (m *MemoryTokenCache) Load(ctx context.Context) (*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == nil {
		return nil, ErrTokenCacheMiss
	}
	t := *m.token
	return &t, nil
}

// Clear removes the stored token
func (m *MemoryTokenCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = nil
}
