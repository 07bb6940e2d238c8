// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: block.go — fixed-size profile block record
//
// Purpose:
//   - Defines the 64-byte pool-resident record shared by the freelist, the
//     scope stack, the root chain and the drain worker.
//   - The first 58 bytes are the serialized wire prefix (see AppendRecord);
//     the trailing Previous/Sibling/Child fields are pool-internal and are
//     reused by the freelist to thread unused slots.
//
// Notes:
//   - Field order matches the wire layout exactly: id, parentid, processor,
//     thread, start, end, name. Little-endian throughout.
// ─────────────────────────────────────────────────────────────────────────────

package block

// Reserved event kinds. Values 0-127 are reserved for system events; user
// scope ids are assigned starting at ScopeIDBase.
const (
	IDEndOfStream = 0
	IDSysInfo     = 1
	IDLogMessage  = 2
	IDLogContinue = 3
	IDEndFrame    = 4
	IDTryLock     = 5
	IDLock        = 7
	IDUnlock      = 9
	IDWait        = 11
	IDSignal      = 12

	// ScopeIDBase is the first id issued to a user scope by the shared
	// scope-id counter.
	ScopeIDBase = 128
)

// MaxNameLen is the number of significant bytes a block's Name field can
// hold before a message must be split across continuation blocks.
const MaxNameLen = 25

// NameLen is the storage size of Name: MaxNameLen plus a NUL terminator.
const NameLen = MaxNameLen + 1

// RecordSize is the length of the serialized wire prefix: 4+4+4+4+8+8+26.
const RecordSize = 58

// Slot is a 16-bit index into a Pool. Slot 0 is reserved and never handed
// out; it is the "no block" sentinel used throughout.
type Slot uint16

// Block is the fixed 64-byte pool-resident record. Size and field order are
// load-bearing: the freelist reuses Child to thread unused slots, and
// AppendRecord depends on the exact field order below for its manual
// little-endian encode.
type Block struct {
	ID int32
	// ParentID is the enclosing scope's ID, or 0 for a root. In a message
	// continuation block it holds the predecessor block's End sequence
	// number instead of a scope id.
	ParentID  int32
	Processor uint32
	Thread    uint32
	Start     int64
	// End is the end tick relative to ground time. In message blocks it is
	// a sequence number from the shared counter; in end-of-frame blocks it
	// is the caller's frame counter.
	End  int64
	Name [NameLen]byte

	// Previous is the in-pool back pointer: parent for a first child,
	// earlier sibling otherwise. Reused by the freelist as "don't care".
	Previous Slot
	// Sibling is the next sibling in the parent's child list, 0-terminated.
	// Reused by the freelist as "don't care".
	Sibling Slot
	// Child is the first child, most-recently-inserted. Reused by the
	// freelist to thread the chain of unused slots.
	Child Slot
}

// SetName copies up to MaxNameLen bytes of s into Name, NUL-terminating.
// Longer names are truncated here; the message helpers split overflow into
// continuation blocks before calling SetName, while scope.Begin keeps only
// the first MaxNameLen bytes.
func (b *Block) SetName(s string) {
	n := copy(b.Name[:MaxNameLen], s)
	b.Name[n] = 0
}

// NameString returns the significant bytes of Name as a string, stopping
// at the first NUL.
func (b *Block) NameString() string {
	for i, c := range b.Name {
		if c == 0 {
			return string(b.Name[:i])
		}
	}
	return string(b.Name[:])
}

// Reset zeroes every field, matching the pool's "zero the returned block's
// memory" allocation step.
func (b *Block) Reset() {
	*b = Block{}
}

// AppendRecord appends the 64-byte wire image of b to dst: the 58-byte
// serialized prefix (id, parentid, processor, thread, start, end, name),
// little-endian, followed by 6 bytes of zero padding reserved for forward
// compatibility (writers SHOULD preserve, per the external record-stream
// contract; this module never encodes Previous/Sibling/Child on the wire).
func AppendRecord(dst []byte, b *Block) []byte {
	var buf [64]byte
	putInt32(buf[0:4], b.ID)
	putInt32(buf[4:8], b.ParentID)
	putUint32(buf[8:12], b.Processor)
	putUint32(buf[12:16], b.Thread)
	putInt64(buf[16:24], b.Start)
	putInt64(buf[24:32], b.End)
	copy(buf[32:32+NameLen], b.Name[:])
	// buf[58:64] stays zero: reserved padding.
	return append(dst, buf[:]...)
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func putInt32(b []byte, v int32) { putUint32(b, uint32(v)) }

func putInt64(b []byte, v int64) {
	u := uint64(v)
	b[0] = byte(u)
	b[1] = byte(u >> 8)
	b[2] = byte(u >> 16)
	b[3] = byte(u >> 24)
	b[4] = byte(u >> 32)
	b[5] = byte(u >> 40)
	b[6] = byte(u >> 48)
	b[7] = byte(u >> 56)
}
