package pkg

import (
	"math"
	"sync"
)

// An IDManager hands out packet identifiers and ensures their uniqueness by maintaining a set
// of the identifiers that are in use. Zero is never handed out.
type IDManager interface {
	// NextFreePacketID allocates and returns the next free packet ID
	NextFreePacketID() uint16

	// Reserve marks the given id as in use. It returns false if the id already was in use or
	// if it is zero.
	Reserve(id uint16) bool

	// ReleasePacketID releases a previously allocated packet ID
	ReleasePacketID(uint16)
}

type idManager struct {
	lock     sync.Mutex
	inUse    map[uint16]bool
	lastUsed uint16
}

// NewIDManager creates a new IDManager. The first id that it hands out is 1.
func NewIDManager() IDManager {
	return &idManager{inUse: make(map[uint16]bool, 37)}
}

func (m *idManager) NextFreePacketID() uint16 {
	m.lock.Lock()
	defer m.lock.Unlock()
	id := m.lastUsed
	// when all ids are in use, the last used id is handed out again
	for i := 0; i < math.MaxUint16; i++ {
		id++
		if id == 0 {
			// counter flipped over and zero is not a valid ID
			id++
		}
		if !m.inUse[id] {
			break
		}
	}
	m.inUse[id] = true
	m.lastUsed = id
	return id
}

func (m *idManager) Reserve(id uint16) bool {
	if id == 0 {
		return false
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.inUse[id] {
		return false
	}
	m.inUse[id] = true
	return true
}

func (m *idManager) ReleasePacketID(id uint16) {
	m.lock.Lock()
	delete(m.inUse, id)
	m.lock.Unlock()
}
