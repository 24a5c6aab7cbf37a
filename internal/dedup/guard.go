package dedup

import "sync"

// Slot holds the last admitted transaction hash of one subscription.
//
// A hash is suppressed only when it equals the immediately preceding admitted
// hash; any different hash in between resets the slot.
type Slot struct {
	mu   sync.Mutex
	last string
}

// ShouldSuppress reports whether txHash repeats the last admitted hash.
func (s *Slot) ShouldSuppress(txHash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last != "" && s.last == txHash
}

// Record advances the slot to txHash.
func (s *Slot) Record(txHash string) {
	s.mu.Lock()
	s.last = txHash
	s.mu.Unlock()
}

// Admit checks and records in one step. It returns false when txHash is suppressed.
func (s *Slot) Admit(txHash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last != "" && s.last == txHash {
		return false
	}
	s.last = txHash
	return true
}

// Last returns the last admitted hash.
func (s *Slot) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Guard keeps one Slot per subscription. Slots are locked independently.
type Guard struct {
	mu    sync.RWMutex
	slots map[string]*Slot
}

func NewGuard() *Guard {
	return &Guard{slots: make(map[string]*Slot)}
}

// Slot returns the slot for a subscription, creating it on first use.
func (g *Guard) Slot(subscriptionID string) *Slot {
	g.mu.RLock()
	slot, ok := g.slots[subscriptionID]
	g.mu.RUnlock()
	if ok {
		return slot
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if slot, ok = g.slots[subscriptionID]; ok {
		return slot
	}
	slot = &Slot{}
	g.slots[subscriptionID] = slot
	return slot
}

func (g *Guard) ShouldSuppress(subscriptionID, txHash string) bool {
	return g.Slot(subscriptionID).ShouldSuppress(txHash)
}

func (g *Guard) Record(subscriptionID, txHash string) {
	g.Slot(subscriptionID).Record(txHash)
}

func (g *Guard) Admit(subscriptionID, txHash string) bool {
	return g.Slot(subscriptionID).Admit(txHash)
}
