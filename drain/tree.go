// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: tree.go — flatten a completed block tree into a single chain
//
// Purpose:
//   - processTree walks a just-closed tree of blocks exactly once, writing
//     each block to the output stream in preorder (node, then its child
//     subtree, then its sibling subtree) while rewriting every Child/Sibling
//     pointer along the way into one singly-linked chain reachable through
//     Child alone, so the whole tree can be freed back to the pool in one
//     pool.Free(head, tail) call.
//
// Notes:
//   - The original algorithm this generalizes is naturally recursive
//     (profile_process_block in the C original): write self, recurse into
//     the child subtree, recurse into the sibling subtree, then point the
//     node's Child at the sibling subtree's flattened chain and splice the
//     child subtree's chain onto its tail. This file reproduces that exact
//     write order and rewiring
//     with an explicit stack instead of Go call-stack recursion, so a
//     pathologically deep or wide tree can't blow the goroutine stack.
//   - "Leaf" below always means "the last node of the flattened chain",
//     which is the return value the recursive version threads back up
//     through each call so the caller can splice onto it - not necessarily
//     a leaf of the original tree shape.
// ─────────────────────────────────────────────────────────────────────────────

package drain

import (
	"profiler/block"
	"profiler/pool"
)

// treeFramePhase tracks which step of the recursive algorithm a stack frame
// is simulating.
type treeFramePhase int

const (
	// phaseEnter: haven't written this node yet.
	phaseEnter treeFramePhase = iota
	// phaseAfterChild: wrote self, descended into the child subtree (if any),
	// now deciding whether to also descend into the sibling subtree.
	phaseAfterChild
	// phaseAfterChildAndSibling: had both a child and a sibling subtree;
	// both are flattened, time to splice them together.
	phaseAfterChildAndSibling
	// phaseNoChildCheckSibling: had no child; deciding whether to descend
	// into the sibling subtree in its place.
	phaseNoChildCheckSibling
	// phaseAfterSiblingOnly: had no child but did have a sibling subtree;
	// splice it in as this node's new Child.
	phaseAfterSiblingOnly
)

type treeFrame struct {
	slot                 block.Slot
	phase                treeFramePhase
	origChild            block.Slot
	origSibling          block.Slot
	childLeaf            block.Slot
}

// processTree writes every block in the tree rooted at root to emit, in
// preorder, and rewrites the tree into a single chain reachable through
// Child so the caller can free the whole thing with one pool.Free call. It
// returns the slot of the last node in that chain.
func processTree(p *pool.Pool, emit func(*block.Block), root block.Slot) block.Slot {
	stack := []*treeFrame{{slot: root, phase: phaseEnter}}
	var result block.Slot // leaf of the most recently completed subtree

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		switch top.phase {
		case phaseEnter:
			b := p.Get(top.slot)
			emit(b)
			top.origChild = b.Child
			top.origSibling = b.Sibling

			if top.origChild != 0 {
				top.phase = phaseAfterChild
				stack = append(stack, &treeFrame{slot: top.origChild, phase: phaseEnter})
			} else {
				top.phase = phaseNoChildCheckSibling
			}

		case phaseAfterChild:
			// result holds the leaf of the flattened child subtree.
			if top.origSibling != 0 {
				top.childLeaf = result
				top.phase = phaseAfterChildAndSibling
				stack = append(stack, &treeFrame{slot: top.origSibling, phase: phaseEnter})
			} else {
				// No sibling: this node's leaf is just the child subtree's.
				stack = stack[:len(stack)-1]
			}

		case phaseAfterChildAndSibling:
			// result holds the leaf of the flattened sibling subtree. The
			// child subtree's chain is spliced after it, so the child
			// subtree's leaf is the last node of this node's chain.
			subleaf := result
			self := p.Get(top.slot)
			p.Get(subleaf).Child = top.origChild
			self.Child = top.origSibling
			self.Sibling = 0
			result = top.childLeaf
			stack = stack[:len(stack)-1]

		case phaseNoChildCheckSibling:
			if top.origSibling != 0 {
				top.phase = phaseAfterSiblingOnly
				stack = append(stack, &treeFrame{slot: top.origSibling, phase: phaseEnter})
			} else {
				result = top.slot
				stack = stack[:len(stack)-1]
			}

		case phaseAfterSiblingOnly:
			leaf := result
			self := p.Get(top.slot)
			self.Child = top.origSibling
			self.Sibling = 0
			result = leaf
			stack = stack[:len(stack)-1]
		}
	}

	return result
}
