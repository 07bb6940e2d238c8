// ════════════════════════════════════════════════════════════════════════════════════════════════
// Root Chain — Producer → Drainer Handoff
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Hierarchical Block Profiler
// Component: Lock-Free Single-Slot Root Chain
//
// Description:
//   A single atomically-held slot naming the head of a singly-linked chain
//   of completed, thread-local root blocks awaiting drain. Producers merge
//   their own tree into the chain when a top-level scope closes; the drain
//   worker atomically detaches the whole chain to process it exclusively.
//
// Safety:
//   - Swap-to-0 before re-install makes this protocol naturally ABA-immune:
//     a stolen head can never be mistaken for a head that was never removed.
//   - Sibling order at the root level carries no meaning; only the
//     parent/child/sibling structure *within* a single published tree does.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package rootchain

import (
	"sync/atomic"

	"profiler/block"
	"profiler/pool"
)

// Chain is a lock-free producer-to-drainer handoff of completed block
// trees. The zero value, once given a Pool, is ready to use.
type Chain struct {
	head uint32 // block.Slot of the chain head, 0 = empty
	pool *pool.Pool
}

// New returns a Chain backed by p.
func New(p *pool.Pool) *Chain {
	return &Chain{pool: p}
}

// Publish installs b as the new chain head, merging with any concurrently
// published chain rather than clobbering it. b must have just closed as a
// thread-local root (Previous == 0). If b.Sibling is already non-zero (as
// it is on a retry after an earlier steal), the stolen head is appended
// after the tail of b's sibling chain.
func (c *Chain) Publish(b block.Slot) {
	self := c.pool.Get(b)
	for {
		if atomic.CompareAndSwapUint32(&c.head, 0, uint32(b)) {
			return
		}

		var stolen block.Slot
		for {
			cur := block.Slot(atomic.LoadUint32(&c.head))
			if cur == 0 {
				break
			}
			if atomic.CompareAndSwapUint32(&c.head, uint32(cur), 0) {
				stolen = cur
				break
			}
		}
		if stolen == 0 {
			continue
		}

		if self.Sibling != 0 {
			leaf := self.Sibling
			for c.pool.Get(leaf).Sibling != 0 {
				leaf = c.pool.Get(leaf).Sibling
			}
			c.pool.Get(stolen).Previous = leaf
			c.pool.Get(leaf).Sibling = stolen
		} else {
			self.Sibling = stolen
		}
	}
}

// Detach atomically swaps the chain head to empty and returns the previous
// head, giving the caller (the drain worker) exclusive ownership of the
// detached chain for traversal.
func (c *Chain) Detach() block.Slot {
	return block.Slot(atomic.SwapUint32(&c.head, 0))
}

// Empty reports whether the chain currently has no pending trees. This is
// a best-effort snapshot used only to skip unnecessary drain work; it is
// not linearizable with concurrent Publish/Detach.
func (c *Chain) Empty() bool {
	return atomic.LoadUint32(&c.head) == 0
}
