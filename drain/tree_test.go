package drain

import (
	"testing"

	"profiler/block"
	"profiler/pool"
)

// buildChild links child as the new head of parent's child list, exactly
// the way scope.Begin does, so these tests build trees independent of the
// scope package.
func buildChild(p *pool.Pool, parent, child block.Slot) {
	parentBlock := p.Get(parent)
	childBlock := p.Get(child)
	childBlock.Previous = parent
	childBlock.Sibling = parentBlock.Child
	if parentBlock.Child != 0 {
		p.Get(parentBlock.Child).Previous = child
	}
	parentBlock.Child = child
}

func TestProcessTree_SingleNode(t *testing.T) {
	p := pool.New(8)
	root, _ := p.Allocate()
	p.Get(root).SetName("root")

	var emitted []string
	leaf := processTree(p, func(b *block.Block) { emitted = append(emitted, b.NameString()) }, root)

	if leaf != root {
		t.Errorf("single-node leaf should be the node itself, got slot %d want %d", leaf, root)
	}
	if len(emitted) != 1 || emitted[0] != "root" {
		t.Errorf("got %v", emitted)
	}
	if p.Get(root).Child != 0 || p.Get(root).Sibling != 0 {
		t.Error("a single flattened node should have no child or sibling left")
	}
}

func TestProcessTree_LinearChain(t *testing.T) {
	p := pool.New(8)
	root, _ := p.Allocate()
	p.Get(root).SetName("root")
	a, _ := p.Allocate()
	p.Get(a).SetName("a")
	buildChild(p, root, a)

	var emitted []string
	leaf := processTree(p, func(b *block.Block) { emitted = append(emitted, b.NameString()) }, root)

	if want := []string{"root", "a"}; !equalSlices(emitted, want) {
		t.Errorf("got %v, want %v", emitted, want)
	}
	if leaf != a {
		t.Errorf("leaf should be the only child, got slot %d want %d", leaf, a)
	}
	if p.Get(root).Child != a {
		t.Errorf("root.Child should be a after flattening, got %d", p.Get(root).Child)
	}
	if p.Get(a).Sibling != 0 {
		t.Error("flattened chain must have no sibling links remaining")
	}
}

func TestProcessTree_ChildAndSibling(t *testing.T) {
	p := pool.New(8)
	root, _ := p.Allocate()
	p.Get(root).SetName("root")

	// root has two children: "first" (opened, closed), then "second"
	// (opened, closed) - "second" ends up as the head, "first" its sibling,
	// exactly as scope.Begin/End would leave them.
	first, _ := p.Allocate()
	p.Get(first).SetName("first")
	buildChild(p, root, first)
	second, _ := p.Allocate()
	p.Get(second).SetName("second")
	buildChild(p, root, second)

	// "first" also has a grandchild.
	grand, _ := p.Allocate()
	p.Get(grand).SetName("grand")
	buildChild(p, first, grand)

	var emitted []string
	leaf := processTree(p, func(b *block.Block) { emitted = append(emitted, b.NameString()) }, root)

	// Preorder: root, then root's child subtree (second, its own children -
	// none), then root's sibling subtree - but root has no sibling of its
	// own; "second"'s sibling is "first", descended after second's child
	// subtree (second has none).
	want := []string{"root", "second", "first", "grand"}
	if !equalSlices(emitted, want) {
		t.Errorf("got %v, want %v", emitted, want)
	}
	if leaf != grand {
		t.Errorf("leaf should be the deepest/last node in the flattened chain, got slot %d want %d", leaf, grand)
	}

	// Walk the flattened chain via Child only and confirm it visits every
	// node exactly once with no Sibling links remaining anywhere.
	var chain []block.Slot
	for s := root; s != 0; s = p.Get(s).Child {
		chain = append(chain, s)
		if p.Get(s).Sibling != 0 {
			t.Errorf("slot %d still has a Sibling link after flattening", s)
		}
	}
	if len(chain) != 4 {
		t.Fatalf("expected a 4-node flattened chain, got %d: %v", len(chain), chain)
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
