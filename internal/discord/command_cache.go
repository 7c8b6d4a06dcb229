package discord

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// commandCache remembers the digest of the last command set pushed to each
// scope so restarts skip the overwrite when nothing changed.
type commandCache struct {
	dir string
}

func newCommandCache(dir string) *commandCache {
	return &commandCache{dir: dir}
}

type cachedCommands struct {
	AppID string `json:"app_id"`
	Hash  string `json:"hash"`
}

func (c *commandCache) path(scope string) string {
	if scope == "" {
		scope = "global"
	}
	return filepath.Join(c.dir, scope+".json")
}

// load returns the cached digest for appID in scope, or "" when unknown.
func (c *commandCache) load(appID, scope string) string {
	if c.dir == "" {
		return ""
	}
	data, err := os.ReadFile(c.path(scope))
	if err != nil {
		return ""
	}
	var entry cachedCommands
	if err := json.Unmarshal(data, &entry); err != nil || entry.AppID != appID {
		return ""
	}
	return entry.Hash
}

func (c *commandCache) save(appID, scope, hash string) error {
	if c.dir == "" {
		return nil
	}
	p := c.path(scope)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create command cache dir: %w", err)
	}
	data, err := json.MarshalIndent(cachedCommands{AppID: appID, Hash: hash}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}
