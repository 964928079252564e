package event

import (
	"context"
)

// Bus is the per-room fan-out channel between bid writers and the processes
// holding live viewers. Publish is best-effort: a broker outage degrades live
// push but must never fail the bid path, so it returns nothing and implementations
// log and drop on error. Ordering is only guaranteed within one publishing
// process; consumers treat the bid amount, not arrival order, as the source
// of truth for the current highest.
type Bus interface {
	Publish(ctx context.Context, roomID string, ev Envelope)
	// Subscribe delivers raw envelope payloads for one room until ctx is
	// cancelled, after which the returned channel is closed.
	Subscribe(ctx context.Context, roomID string) (<-chan []byte, error)
}
