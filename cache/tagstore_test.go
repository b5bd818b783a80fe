package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SetAssocStore", func() {
	var store *setAssocStore

	BeforeEach(func() {
		store = newSetAssocStore(4, 2, true)
	})

	It("should miss on an empty store", func() {
		Expect(store.lookup(0x100, true)).To(BeNil())
	})

	It("should hit a resident tag", func() {
		store.victimize(0x100, nil)

		sl := store.lookup(0x100, true)
		Expect(sl).NotTo(BeNil())
		Expect(sl.tag).To(Equal(uint64(0x100)))
		Expect(sl.valid).To(BeTrue())
		Expect(sl.dirty).To(BeFalse())
	})

	It("should fill invalid ways before evicting, lowest way first", func() {
		// Tags 0x100 and 0x200 map to the same set (sets=4).
		v := store.victimize(0x100, nil)
		Expect(v.valid).To(BeFalse())

		v = store.victimize(0x200, nil)
		Expect(v.valid).To(BeFalse())

		Expect(store.lookup(0x100, false)).NotTo(BeNil())
		Expect(store.lookup(0x200, false)).NotTo(BeNil())
	})

	It("should evict the least recently used tag", func() {
		store.victimize(0x100, nil)
		store.victimize(0x200, nil)

		// Touch 0x100 so that 0x200 becomes the LRU line.
		store.lookup(0x100, true)

		v := store.victimize(0x300, nil)
		Expect(v.valid).To(BeTrue())
		Expect(v.tag).To(Equal(uint64(0x200)))

		Expect(store.lookup(0x100, false)).NotTo(BeNil())
		Expect(store.lookup(0x200, false)).To(BeNil())
		Expect(store.lookup(0x300, false)).NotTo(BeNil())
	})

	It("should not re-rank on inspection-only probes", func() {
		store.victimize(0x100, nil)
		store.victimize(0x200, nil)

		// An inspection probe must not rescue 0x100 from eviction.
		store.lookup(0x100, false)

		v := store.victimize(0x300, nil)
		Expect(v.tag).To(Equal(uint64(0x100)))
	})

	It("should keep recency values dense within a set", func() {
		store = newSetAssocStore(1, 4, true)

		for _, tag := range []uint64{1, 2, 3, 4} {
			store.victimize(tag, nil)
		}
		store.lookup(2, true)
		store.lookup(4, true)

		seen := map[uint64]bool{}
		for way := uint64(0); way < 4; way++ {
			r := store.slots[way].recency
			Expect(r).To(BeNumerically("<", 4))
			Expect(seen[r]).To(BeFalse())
			seen[r] = true
		}
	})

	It("should pick the victim with the generator under random replacement", func() {
		store = newSetAssocStore(1, 4, false)
		rng1 := NewLFSR(1)
		rng2 := NewLFSR(1)

		for _, tag := range []uint64{1, 2, 3, 4, 5, 6} {
			store.victimize(tag, rng1)

			expectedWay := uint64(rng2.Next()) % 4
			Expect(store.slots[expectedWay].tag).To(Equal(tag))
		}
	})

	It("should deep-copy on snapshot", func() {
		store.victimize(0x100, nil)

		dup := store.snapshot().(*setAssocStore)
		dup.lookup(0x100, false).dirty = true

		Expect(store.lookup(0x100, false).dirty).To(BeFalse())
	})
})

var _ = Describe("FullyAssocStore", func() {
	var store *fullyAssocStore

	BeforeEach(func() {
		store = newFullyAssocStore(4, true)
	})

	It("should insert without evicting below capacity", func() {
		for _, tag := range []uint64{1, 2, 3, 4} {
			v := store.victimize(tag, nil)
			Expect(v.valid).To(BeFalse())
		}

		Expect(store.entries).To(HaveLen(4))
	})

	It("should evict the least recently used tag at capacity", func() {
		for _, tag := range []uint64{1, 2, 3, 4} {
			store.victimize(tag, nil)
		}

		// Re-touch everything but tag 2.
		store.lookup(1, true)
		store.lookup(3, true)
		store.lookup(4, true)

		v := store.victimize(5, nil)
		Expect(v.valid).To(BeTrue())
		Expect(v.tag).To(Equal(uint64(2)))
		Expect(store.lookup(2, false)).To(BeNil())
	})

	It("should bound occupancy by the way count", func() {
		for tag := uint64(0); tag < 100; tag++ {
			store.victimize(tag, nil)
		}

		Expect(store.entries).To(HaveLen(4))
	})

	It("should deep-copy on snapshot", func() {
		store.victimize(7, nil)

		dup := store.snapshot().(*fullyAssocStore)
		dup.lookup(7, false).dirty = true

		Expect(store.lookup(7, false).dirty).To(BeFalse())
	})

	It("should match the one-set array variant hit for hit under LRU", func() {
		fa := newFullyAssocStore(8, true)
		sa := newSetAssocStore(1, 8, true)

		// A scripted access pattern with reuse, conflict, and streaming
		// phases.
		pattern := []uint64{}
		for i := uint64(0); i < 200; i++ {
			pattern = append(pattern, i%3, i%17, i%11, i)
		}

		for _, tag := range pattern {
			faHit := fa.lookup(tag, true) != nil
			saHit := sa.lookup(tag, true) != nil
			Expect(faHit).To(Equal(saHit))

			if !faHit {
				faVictim := fa.victimize(tag, nil)
				saVictim := sa.victimize(tag, nil)
				Expect(faVictim.valid).To(Equal(saVictim.valid))
				if faVictim.valid {
					Expect(faVictim.tag).To(Equal(saVictim.tag))
				}
			}
		}
	})
})
