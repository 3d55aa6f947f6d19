package repository

import (
	"sync"

	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/domain"
)

// MemoryStore keeps bookings and quotes in process memory behind one lock
type MemoryStore struct {
	mu sync.RWMutex

	bookingSeq int64
	quoteSeq   int64
	bookings   map[int64]*domain.Booking
	regIndex   map[string]int64
	quotes     map[int64]*domain.Quote // keyed by booking id
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: make(map[int64]*domain.Booking),
		regIndex: make(map[string]int64),
		quotes:   make(map[int64]*domain.Quote),
	}
}
