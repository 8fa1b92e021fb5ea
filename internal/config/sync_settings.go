package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/taskvault/internal/sync"
)

// SyncSettings is the on-disk shape of the configured sync backend. Only
// the section matching Type is consulted.
type SyncSettings struct {
	Type   string `yaml:"type"`
	Local  struct {
		Path string `yaml:"path"`
	} `yaml:"local"`
	Remote struct {
		URL      string `yaml:"url"`
		ClientID string `yaml:"client_id"`
		Secret   string `yaml:"encryption_secret"`
	} `yaml:"remote"`
	GCP struct {
		Bucket         string `yaml:"bucket"`
		CredentialPath string `yaml:"credential_path"`
		Secret         string `yaml:"encryption_secret"`
	} `yaml:"gcp"`
}

// LoadSyncSettings reads the YAML settings file. A missing file means no
// sync is configured, not an error.
func LoadSyncSettings(path string) (SyncSettings, error) {
	var s SyncSettings
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.Type = string(sync.TypeNone)
			return s, nil
		}
		return SyncSettings{}, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return SyncSettings{}, fmt.Errorf("parse sync settings: %w", err)
	}
	if s.Type == "" {
		s.Type = string(sync.TypeNone)
	}
	return s, nil
}

// SaveSyncSettings writes the settings file, creating its directory.
func SaveSyncSettings(path string, s SyncSettings) error {
	raw, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, raw, 0o600)
}

// Backend converts the settings into the tagged backend variant the sync
// coordinator dispatches on.
func (s SyncSettings) Backend() (sync.Backend, error) {
	typ := sync.Type(s.Type)
	if !typ.IsValid() {
		return sync.Backend{}, fmt.Errorf("config: unknown sync type %q", s.Type)
	}
	b := sync.Backend{Type: typ}
	switch typ {
	case sync.TypeLocal:
		b.Local = &sync.LocalConfig{Path: s.Local.Path}
	case sync.TypeRemote:
		b.Remote = &sync.RemoteConfig{URL: s.Remote.URL, ClientID: s.Remote.ClientID, Secret: s.Remote.Secret}
	case sync.TypeGCP:
		b.GCP = &sync.GCPConfig{Bucket: s.GCP.Bucket, CredentialPath: s.GCP.CredentialPath, Secret: s.GCP.Secret}
	}
	return b, nil
}
