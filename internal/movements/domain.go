// Package movements is the append-only audit trail for asset lifecycle
// events. Records are never updated or deleted once written.
package movements

import (
	"errors"
	"time"
)

// Movement kinds.
const (
	KindInbound     = "inbound"
	KindOutbound    = "outbound"
	KindTransfer    = "transfer"
	KindMaintenance = "maintenance"
	KindWriteOff    = "write_off"
)

// ErrAppendFailed reports that the underlying audit write did not
// happen. The caller decides whether the primary mutation stands.
var ErrAppendFailed = errors.New("movements: append failed")

// Movement is one immutable audit entry.
type Movement struct {
	ID          int64     `json:"id"`
	Ref         string    `json:"ref"`
	AssetID     int64     `json:"asset_id"`
	ActorID     int64     `json:"actor_id"`
	Kind        string    `json:"kind"`
	Origin      string    `json:"origin,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Entry is the caller-supplied portion of a movement.
type Entry struct {
	AssetID     int64
	ActorID     int64
	Kind        string
	Origin      string
	Destination string
	Notes       string
}

// HistoryFilters narrows a movement history query. Zero values mean
// no constraint.
type HistoryFilters struct {
	AssetID int64
	Kind    string
	From    time.Time
	To      time.Time
	Limit   int
	Offset  int
}

// ValidKind reports whether kind is one of the recognised movement kinds.
func ValidKind(kind string) bool {
	switch kind {
	case KindInbound, KindOutbound, KindTransfer, KindMaintenance, KindWriteOff:
		return true
	}
	return false
}
