package sse

import (
	"github.com/GTDGit/gtd_catalog/internal/catalog"
)

// SnapshotNotifier is told about every snapshot the catalog service installs.
type SnapshotNotifier interface {
	NotifySnapshot(snap *catalog.Snapshot)
}

// HubNotifier turns installed snapshots into hub broadcasts.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// NotifySnapshot broadcasts even with no listeners so the hub keeps the
// latest version for stale-event checks.
func (n *HubNotifier) NotifySnapshot(snap *catalog.Snapshot) {
	n.hub.Broadcast(snapshotEvent(snap))
}

func snapshotEvent(snap *catalog.Snapshot) *SnapshotEvent {
	return &SnapshotEvent{
		Event:      EventSnapshotLoaded,
		Version:    snap.Version,
		Products:   len(snap.Products),
		Categories: len(snap.Nodes),
		Timestamp:  snap.LoadedAt,
	}
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) NotifySnapshot(*catalog.Snapshot) {}
