package sync

import (
	"context"
	"fmt"
	"strings"
)

type Type string

const (
	TypeNone   Type = "none"
	TypeLocal  Type = "local"
	TypeRemote Type = "remote"
	TypeGCP    Type = "gcp"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeNone, TypeLocal, TypeRemote, TypeGCP:
		return true
	default:
		return false
	}
}

type LocalConfig struct {
	Path string
}

type RemoteConfig struct {
	URL      string
	ClientID string
	Secret   string
}

type GCPConfig struct {
	Bucket         string
	CredentialPath string
	Secret         string
}

// Backend is a tagged variant describing the configured sync target. At
// most the config matching Type is set.
type Backend struct {
	Type   Type
	Local  *LocalConfig
	Remote *RemoteConfig
	GCP    *GCPConfig
}

// UnavailableError reports a backend whose availability precondition
// failed. Title and Message are ready for direct display in an alert.
type UnavailableError struct {
	Title   string
	Message string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("sync unavailable: %s: %s", e.Title, e.Message)
}

// SettingName is the label the backend shows in settings.
func (b Backend) SettingName() string {
	switch b.Type {
	case TypeLocal:
		return "Local file"
	case TypeRemote:
		return "Sync server"
	case TypeGCP:
		return "Google Cloud bucket"
	default:
		return "No sync"
	}
}

func (b Backend) errorTitle() string {
	switch b.Type {
	case TypeLocal:
		return "Local Sync Unavailable"
	case TypeRemote:
		return "Server Sync Unavailable"
	case TypeGCP:
		return "Cloud Sync Unavailable"
	default:
		return "Sync Unavailable"
	}
}

// Available checks the backend's precondition: required configuration
// present for its type. It returns an *UnavailableError describing what
// is missing, or nil.
func (b Backend) Available() error {
	switch b.Type {
	case TypeNone:
		return nil
	case TypeLocal:
		if b.Local == nil || strings.TrimSpace(b.Local.Path) == "" {
			return &UnavailableError{Title: b.errorTitle(), Message: "No sync file path is configured."}
		}
		return nil
	case TypeRemote:
		if b.Remote == nil || b.Remote.URL == "" || b.Remote.ClientID == "" || b.Remote.Secret == "" {
			return &UnavailableError{Title: b.errorTitle(), Message: "Server URL, client id and encryption secret are all required."}
		}
		return nil
	case TypeGCP:
		if b.GCP == nil || b.GCP.Bucket == "" || b.GCP.Secret == "" {
			return &UnavailableError{Title: b.errorTitle(), Message: "Bucket name and encryption secret are required."}
		}
		return nil
	default:
		return &UnavailableError{Title: "Sync Unavailable", Message: fmt.Sprintf("Unknown sync backend %q.", b.Type)}
	}
}

// Run performs one sync cycle against the replica using this backend's
// entry point. It returns the replica's needs-further-sync indicator.
func (b Backend) Run(ctx context.Context, replica Replica) (bool, error) {
	if replica == nil {
		return false, &UnavailableError{Title: b.errorTitle(), Message: "No replica backend is linked."}
	}
	if err := b.Available(); err != nil {
		return false, err
	}
	switch b.Type {
	case TypeNone:
		return replica.SyncNoServer(ctx)
	case TypeLocal:
		return replica.SyncLocalServer(ctx, b.Local.Path)
	case TypeRemote:
		return replica.SyncRemoteServer(ctx, b.Remote.URL, b.Remote.ClientID, b.Remote.Secret)
	case TypeGCP:
		return replica.SyncGCP(ctx, b.GCP.Bucket, b.GCP.CredentialPath, b.GCP.Secret)
	default:
		return false, b.Available()
	}
}
