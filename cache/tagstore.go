package cache

import "sort"

// A slot holds the bookkeeping for one resident line. The tag is
// meaningless while the slot is invalid. Among the valid slots of a set,
// recency values form a dense ranking in [0, ways-1] with 0 being the most
// recently touched line; the field is only maintained under LRU.
type slot struct {
	tag     uint64
	valid   bool
	dirty   bool
	recency uint64
}

// A tagStore keeps the resident-line bookkeeping for one cache core. Two
// variants exist: an array-backed store for set-associative geometries and
// a map-backed store for the single-set fully-associative case.
type tagStore interface {
	// lookup returns the slot holding tag, or nil on a miss. Under LRU,
	// a probe with touch set counts as an access and re-ranks the set;
	// inspection-only probes pass touch=false.
	lookup(tag uint64, touch bool) *slot

	// victimize picks a slot for tag, installs the tag (valid, clean,
	// most recent), and returns the slot's prior contents so the caller
	// can decide about a writeback.
	victimize(tag uint64, rng *LFSR) slot

	// snapshot deep-copies the store, sharing no state with the original.
	snapshot() tagStore
}

// setAssocStore is the fixed-capacity variant: sets×ways slots in one
// array, slot index (set×ways)+way.
type setAssocStore struct {
	sets  uint64
	ways  uint64
	lru   bool
	slots []slot
}

func newSetAssocStore(sets, ways uint64, lru bool) *setAssocStore {
	return &setAssocStore{
		sets:  sets,
		ways:  ways,
		lru:   lru,
		slots: make([]slot, sets*ways),
	}
}

func (s *setAssocStore) setBase(tag uint64) uint64 {
	return (tag % s.sets) * s.ways
}

func (s *setAssocStore) lookup(tag uint64, touch bool) *slot {
	base := s.setBase(tag)

	for i := uint64(0); i < s.ways; i++ {
		sl := &s.slots[base+i]
		if sl.valid && sl.tag == tag {
			if touch && s.lru {
				s.touch(base, sl)
			}
			return sl
		}
	}

	return nil
}

// touch re-ranks the set after a hit: every other valid slot younger than
// the hit slot ages by one, and the hit slot becomes the most recent. This
// keeps the ranking dense instead of using raw timestamps.
func (s *setAssocStore) touch(base uint64, hit *slot) {
	for i := uint64(0); i < s.ways; i++ {
		sl := &s.slots[base+i]
		if sl != hit && sl.valid && sl.recency < hit.recency {
			sl.recency++
		}
	}

	hit.recency = 0
}

func (s *setAssocStore) victimize(tag uint64, rng *LFSR) slot {
	base := s.setBase(tag)

	var way uint64
	if s.lru {
		way = s.lruVictimWay(base)
	} else {
		way = uint64(rng.Next()) % s.ways
	}

	victim := s.slots[base+way]

	if s.lru {
		// Everything else ages by one so the ranking stays dense once
		// the new line takes rank 0.
		for i := uint64(0); i < s.ways; i++ {
			if i != way && s.slots[base+i].valid {
				s.slots[base+i].recency++
			}
		}
	}

	s.slots[base+way] = slot{tag: tag, valid: true}

	return victim
}

// lruVictimWay picks an invalid slot if the set still has one (lowest way
// first), otherwise the slot with the maximum recency, ties broken by the
// lowest way index.
func (s *setAssocStore) lruVictimWay(base uint64) uint64 {
	for i := uint64(0); i < s.ways; i++ {
		if !s.slots[base+i].valid {
			return i
		}
	}

	found := false
	var maxWay, maxRecency uint64
	for i := uint64(0); i < s.ways; i++ {
		if !found || s.slots[base+i].recency > maxRecency {
			found = true
			maxWay = i
			maxRecency = s.slots[base+i].recency
		}
	}

	if !found {
		panic("cache: lru recency bookkeeping desynchronized")
	}

	return maxWay
}

func (s *setAssocStore) snapshot() tagStore {
	dup := *s
	dup.slots = make([]slot, len(s.slots))
	copy(dup.slots, s.slots)

	return &dup
}

// fullyAssocStore is the dynamic variant for sets==1 with many ways: a
// tag-keyed map bounded by the way count, evicting only at capacity.
type fullyAssocStore struct {
	ways    uint64
	lru     bool
	entries map[uint64]*slot
}

func newFullyAssocStore(ways uint64, lru bool) *fullyAssocStore {
	return &fullyAssocStore{
		ways:    ways,
		lru:     lru,
		entries: make(map[uint64]*slot),
	}
}

func (s *fullyAssocStore) lookup(tag uint64, touch bool) *slot {
	e, ok := s.entries[tag]
	if !ok || !e.valid {
		return nil
	}

	if touch && s.lru {
		for t, other := range s.entries {
			if t != tag && other.valid && other.recency < e.recency {
				other.recency++
			}
		}
		e.recency = 0
	}

	return e
}

func (s *fullyAssocStore) victimize(tag uint64, rng *LFSR) slot {
	var victim slot

	if uint64(len(s.entries)) == s.ways {
		var victimTag uint64
		if s.lru {
			victimTag = s.lruVictimTag()
		} else {
			victimTag = s.randomVictimTag(rng)
		}

		victim = *s.entries[victimTag]
		delete(s.entries, victimTag)
	}

	if s.lru {
		for _, e := range s.entries {
			if e.valid {
				e.recency++
			}
		}
	}

	s.entries[tag] = &slot{tag: tag, valid: true}

	return victim
}

// lruVictimTag returns the tag with the maximum recency. The dense ranking
// makes the maximum unique; the lower tag wins if the ranking ever ties so
// that eviction stays deterministic.
func (s *fullyAssocStore) lruVictimTag() uint64 {
	found := false
	var maxTag, maxRecency uint64
	for t, e := range s.entries {
		if !found ||
			e.recency > maxRecency ||
			(e.recency == maxRecency && t < maxTag) {
			found = true
			maxTag = t
			maxRecency = e.recency
		}
	}

	if !found {
		panic("cache: lru recency bookkeeping desynchronized")
	}

	return maxTag
}

// randomVictimTag picks the n-th resident tag in ascending tag order, with
// n drawn from the generator. Ordering by tag keeps the choice independent
// of map iteration order.
func (s *fullyAssocStore) randomVictimTag(rng *LFSR) uint64 {
	tags := make([]uint64, 0, len(s.entries))
	for t := range s.entries {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	return tags[uint64(rng.Next())%s.ways]
}

func (s *fullyAssocStore) snapshot() tagStore {
	dup := &fullyAssocStore{
		ways:    s.ways,
		lru:     s.lru,
		entries: make(map[uint64]*slot, len(s.entries)),
	}
	for t, e := range s.entries {
		c := *e
		dup.entries[t] = &c
	}

	return dup
}
