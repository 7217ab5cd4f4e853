package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one recorded observation-shell action: a suggestion
// accepted or rejected, a restart, a start/pause toggle. Subjects are kept
// as opaque strings (turn IDs, trip IDs, suggestion IDs) since the audit
// log's job is traceability, not structured querying.
type AuditEntry struct {
	ID      string    `json:"id"`
	At      time.Time `json:"at"`
	Action  string    `json:"action"`
	Subject string    `json:"subject"`
	Detail  string    `json:"detail"`
}

// auditLog is a fixed-capacity ring buffer of AuditEntry plus subscriber
// channels for clients that want to stream new entries as they arrive,
// grounded on the teacher's auditState ring-buffer-plus-subscribers shape.
type auditLog struct {
	mu          sync.RWMutex
	entries     []AuditEntry
	cap         int
	subscribers map[chan AuditEntry]bool
}

func newAuditLog(capacity int) *auditLog {
	return &auditLog{cap: capacity, subscribers: make(map[chan AuditEntry]bool)}
}

func (a *auditLog) append(action, subject, detail string) AuditEntry {
	e := AuditEntry{ID: uuid.NewString(), At: time.Now().UTC(), Action: action, Subject: subject, Detail: detail}
	a.mu.Lock()
	a.entries = append(a.entries, e)
	if len(a.entries) > a.cap {
		a.entries = a.entries[len(a.entries)-a.cap:]
	}
	subs := make([]chan AuditEntry, 0, len(a.subscribers))
	for ch := range a.subscribers {
		subs = append(subs, ch)
	}
	a.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
		}
	}
	return e
}

func (a *auditLog) subscribe() chan AuditEntry {
	ch := make(chan AuditEntry, 32)
	a.mu.Lock()
	a.subscribers[ch] = true
	a.mu.Unlock()
	return ch
}

func (a *auditLog) unsubscribe(ch chan AuditEntry) {
	a.mu.Lock()
	delete(a.subscribers, ch)
	a.mu.Unlock()
	close(ch)
}

func (a *auditLog) getSince(id string) []AuditEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if id == "" {
		out := make([]AuditEntry, len(a.entries))
		copy(out, a.entries)
		return out
	}
	for i, e := range a.entries {
		if e.ID == id {
			out := make([]AuditEntry, len(a.entries)-i-1)
			copy(out, a.entries[i+1:])
			return out
		}
	}
	out := make([]AuditEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

type auditObject struct{}

// dispatch lets a client page through the audit log without opening a
// second streaming connection, handy for a client that just reconnected.
func (o *auditObject) dispatch(h *Hub, req Request, conn *connection) {
	ch := conn.pushChan
	switch req.Action {
	case "list":
		var p struct {
			Since string `json:"since"`
		}
		_ = json.Unmarshal(req.Params, &p)
		data, err := json.Marshal(h.audit.getSince(p.Since))
		if err != nil {
			ch <- NewErrorResponse(req.ID, fmt.Errorf("internal error: %s", err))
			return
		}
		ch <- NewResponse(req.ID, data)
	default:
		ch <- NewErrorResponse(req.ID, fmt.Errorf("unknown action %s/%s", req.Object, req.Action))
	}
}

var _ hubObject = (*auditObject)(nil)
