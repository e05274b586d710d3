package reservation

import (
	"sync"

	"travelbooking/internal/domain"
)

// Board is the reservation list held for one session. The aggregator replaces
// it after a fetch; transitions and deletes patch it in place.
type Board struct {
	mu    sync.RWMutex
	items []domain.Reservation
}

func (b *Board) Replace(items []domain.Reservation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append([]domain.Reservation(nil), items...)
}

func (b *Board) Snapshot() []domain.Reservation {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.Reservation(nil), b.items...)
}

func (b *Board) Find(ref domain.ReservationRef) (domain.Reservation, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, r := range b.items {
		if r.Ref() == ref {
			return r, true
		}
	}
	return domain.Reservation{}, false
}

// Upsert replaces a known record; unknown records are ignored until the next fetch.
func (b *Board) Upsert(r domain.Reservation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Ref() == r.Ref() {
			b.items[i] = r
			return
		}
	}
}

func (b *Board) Remove(ref domain.ReservationRef) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Ref() == ref {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// Boards keys boards by session id.
type Boards struct {
	mu        sync.Mutex
	bySession map[string]*Board
}

func NewBoards() *Boards {
	return &Boards{bySession: make(map[string]*Board)}
}

// For returns the session's board, creating it on first use. A nil registry
// hands out throwaway boards.
func (bs *Boards) For(sessionID string) *Board {
	if bs == nil {
		return &Board{}
	}
	bs.mu.Lock()
	defer bs.mu.Unlock()
	b, ok := bs.bySession[sessionID]
	if !ok {
		b = &Board{}
		bs.bySession[sessionID] = b
	}
	return b
}

func (bs *Boards) Drop(sessionID string) {
	if bs == nil {
		return
	}
	bs.mu.Lock()
	defer bs.mu.Unlock()
	delete(bs.bySession, sessionID)
}
