// Package sync selects and drives the replica backend used to reconcile
// the local task dataset with its peers. The replica itself is opaque;
// this package only decides which of its sync entry points to call and
// reports whether another cycle is needed.
package sync

import "context"

// Replica is the opaque handle to the replicated task dataset. Each call
// runs one sync handshake and reports whether further syncing is needed.
// Implementations live outside this module.
type Replica interface {
	SyncNoServer(ctx context.Context) (needsSync bool, err error)
	SyncLocalServer(ctx context.Context, path string) (needsSync bool, err error)
	SyncRemoteServer(ctx context.Context, url, clientID, secret string) (needsSync bool, err error)
	SyncGCP(ctx context.Context, bucket, credentialPath, secret string) (needsSync bool, err error)
}
