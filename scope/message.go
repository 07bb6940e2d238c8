// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: message.go — log/lock/wait message blocks
//
// Purpose:
//   - Implements Log, TryLock, Lock, Unlock, Wait and Signal: one-shot
//     annotation blocks that carry an arbitrary-length message instead of a
//     timed duration. Messages longer than block.MaxNameLen bytes are split
//     across a chain of continuation blocks linked by sequence number.
//
// Notes:
//   - Continuation ids are always base+1 of the originating message kind
//     (LogMessage -> LogContinue, TryLock -> TryLock+1, ...), matching the
//     "Continue values generated by +1 in block split" convention the
//     reserved id table inherits.
//   - A continuation's ParentID holds the predecessor block's sequence
//     number (its End field), not a scope id — see block package docs.
// ─────────────────────────────────────────────────────────────────────────────

package scope

import (
	"profiler/block"
	"profiler/internal/gid"
	"profiler/internal/hostclock"
	"profiler/internal/hwcore"
)

// Log records a one-shot log message under the calling goroutine's current
// open block (or as a root if none is open).
func (t *Tracker) Log(message string) { t.putMessageBlock(block.IDLogMessage, message) }

// TryLock records a lock-attempt annotation.
func (t *Tracker) TryLock(name string) { t.putMessageBlock(block.IDTryLock, name) }

// Lock records a lock-acquired annotation.
func (t *Tracker) Lock(name string) { t.putMessageBlock(block.IDLock, name) }

// Unlock records a lock-released annotation.
func (t *Tracker) Unlock(name string) { t.putMessageBlock(block.IDUnlock, name) }

// Wait records a condition-wait annotation.
func (t *Tracker) Wait(name string) { t.putMessageBlock(block.IDWait, name) }

// Signal records a condition-signal annotation.
func (t *Tracker) Signal(name string) { t.putMessageBlock(block.IDSignal, name) }

// putMessageBlock builds the head block and, for messages longer than
// block.MaxNameLen bytes, a chain of continuation blocks threaded through
// Child/Sibling exactly like a tiny already-flattened subtree, then attaches
// the head as a peer of the calling goroutine's current open block. On
// allocation failure partway through a long message, the blocks already
// allocated are intentionally left unattached and unfreed — a deliberate,
// bounded leak under exhaustion, matching the original's own "just return"
// behavior rather than unwinding a partial chain.
func (t *Tracker) putMessageBlock(id int32, message string) {
	goroutineID := gid.Current()

	slot, ok := t.pool.Allocate()
	if !ok {
		return
	}
	head := t.pool.Get(slot)
	head.ID = id
	head.Processor = hwcore.Current()
	head.Thread = uint32(goroutineID)
	head.Start = hostclock.Now() - t.groundTime
	head.End = int64(t.nextID())

	rest := message
	if len(rest) > block.MaxNameLen {
		head.SetName(rest[:block.MaxNameLen])
		rest = rest[block.MaxNameLen:]
	} else {
		head.SetName(rest)
		rest = ""
	}

	subSlot := slot
	sub := head
	for len(rest) > 0 {
		cSlot, ok := t.pool.Allocate()
		if !ok {
			return
		}
		c := t.pool.Get(cSlot)
		c.ID = id + 1
		c.ParentID = int32(sub.End)
		c.Processor = head.Processor
		c.Thread = head.Thread
		c.Start = head.Start
		c.End = int64(t.nextID())

		if len(rest) > block.MaxNameLen {
			c.SetName(rest[:block.MaxNameLen])
			rest = rest[block.MaxNameLen:]
		} else {
			c.SetName(rest)
			rest = ""
		}

		c.Sibling = sub.Child
		if c.Sibling != 0 {
			t.pool.Get(c.Sibling).Previous = cSlot
		}
		sub.Child = cSlot
		c.Previous = subSlot

		subSlot = cSlot
		sub = c
	}

	s := t.stateFor(goroutineID)
	t.attachSimple(s.current, slot)
}
