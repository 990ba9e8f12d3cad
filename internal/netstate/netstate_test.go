package netstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	t.Parallel()

	// Online always derives StatusOnline, whatever the pending flag says.
	assert.Equal(t, StatusOnline, DeriveStatus(Online, true))
	assert.Equal(t, StatusOnline, DeriveStatus(Online, false))

	assert.Equal(t, StatusOfflinePending, DeriveStatus(Offline, true))
	assert.Equal(t, StatusOfflineNoData, DeriveStatus(Offline, false))
}

func TestStringNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "online", Online.String())
	assert.Equal(t, "offline", Offline.String())

	assert.Equal(t, "online", StatusOnline.String())
	assert.Equal(t, "offline_pending", StatusOfflinePending.String())
	assert.Equal(t, "offline_no_data", StatusOfflineNoData.String())

	assert.Equal(t, "unreachable", Unreachable.String())
	assert.Equal(t, "reachable_remote", ReachableRemote.String())
	assert.Equal(t, "reachable_local", ReachableLocal.String())
	assert.Equal(t, "unknown", ReachabilityUnknown.String())

	assert.Equal(t, "connectivity_changed", EventConnectivityChanged.String())
	assert.Equal(t, "status_changed", EventStatusChanged.String())
	assert.Equal(t, "retry_ready", EventRetryReady.String())
	assert.Equal(t, "connection_lost", EventConnectionLost.String())
	assert.Equal(t, "connection_restored", EventConnectionRestored.String())
}
