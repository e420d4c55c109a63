package lifecycle

import (
	"context"
	"sync"

	"github.com/straye-as/salesflow-api/internal/domain"
)

// MemoryLedger is a process-local SideEffectLedger
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]*MemoryLedgerEntry
}

// MemoryLedgerEntry is the recorded state of one claimed side effect
type MemoryLedgerEntry struct {
	Intent   TicketIntent
	Status   domain.SideEffectStatus
	TicketID string
	LastErr  string
}

// NewMemoryLedger creates an empty in-memory ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]*MemoryLedgerEntry)}
}

func (l *MemoryLedger) Claim(ctx context.Context, intent TicketIntent) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[intent.IdempotencyKey]; ok {
		return false, nil
	}
	l.entries[intent.IdempotencyKey] = &MemoryLedgerEntry{Intent: intent, Status: domain.SideEffectPending}
	return true, nil
}

func (l *MemoryLedger) MarkDispatched(ctx context.Context, idempotencyKey, ticketID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[idempotencyKey]; ok {
		e.Status = domain.SideEffectDispatched
		e.TicketID = ticketID
		e.LastErr = ""
	}
	return nil
}

func (l *MemoryLedger) MarkFailed(ctx context.Context, idempotencyKey string, cause error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[idempotencyKey]; ok {
		e.Status = domain.SideEffectFailed
		if cause != nil {
			e.LastErr = cause.Error()
		}
	}
	return nil
}

// Entry returns a copy of the ledger entry for a key
func (l *MemoryLedger) Entry(idempotencyKey string) (MemoryLedgerEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[idempotencyKey]
	if !ok {
		return MemoryLedgerEntry{}, false
	}
	return *e, true
}
