package orchestrator

import (
	"github.com/grease-xmr/aztec-packages-sub005/prover"
)

// The proof tree is a fixed-shape binary merge tree over an arena of nodes
// indexed by (level, position). Leaves are transaction base proofs (or block
// and checkpoint proofs at the higher scopes); every inner node merges two
// siblings. A level with an odd count greater than one is completed with a
// canonical padding node, and a zero-leaf tree collapses to a single padding
// root. Building a parent only needs its two child handles, uniformly
// whether a child is real or padding.

type nodeKind uint8

const (
	nodeLeaf nodeKind = iota
	nodeMerge
	nodePadding
)

type treeNode struct {
	kind  nodeKind
	proof *prover.Proof
	// dispatched marks a merge node whose job has been handed out, so a
	// pair never merges twice.
	dispatched bool
}

// mergeJob asks for the merge of two completed siblings; the result lands at
// (level, index) in the same tree.
type mergeJob struct {
	level, index int
	left, right  *prover.Proof
}

type proofTree struct {
	// levels[0] holds the leaves (plus a possible padding tail); the last
	// level holds exactly the root.
	levels [][]*treeNode
}

// newProofTree lays out the arena for the given leaf count. The shape is
// fixed up front: merge ordering depends only on position, never on
// completion order.
func newProofTree(numLeaves int) *proofTree {
	t := &proofTree{}

	if numLeaves == 0 {
		t.levels = [][]*treeNode{{&treeNode{kind: nodePadding}}}
		return t
	}

	level := make([]*treeNode, 0, numLeaves+1)
	for i := 0; i < numLeaves; i++ {
		level = append(level, &treeNode{kind: nodeLeaf})
	}
	for {
		if len(level)%2 == 1 && len(level) > 1 {
			level = append(level, &treeNode{kind: nodePadding})
		}
		t.levels = append(t.levels, level)
		if len(level) == 1 {
			return t
		}
		next := make([]*treeNode, len(level)/2)
		for i := range next {
			next[i] = &treeNode{kind: nodeMerge}
		}
		level = next
	}
}

// setLeaf records a completed leaf proof and returns any merges it unblocks.
func (t *proofTree) setLeaf(index int, p *prover.Proof) []mergeJob {
	return t.setNode(0, index, p)
}

// setNode records a completed proof at (level, index) and walks up one step,
// emitting the parent merge when both siblings are now complete.
func (t *proofTree) setNode(level, index int, p *prover.Proof) []mergeJob {
	t.levels[level][index].proof = p
	return t.readyAt(level, index)
}

// fillPadding records the canonical padding proof on every padding node that
// is still empty, returning all merges that become ready.
func (t *proofTree) fillPadding(p *prover.Proof) []mergeJob {
	var jobs []mergeJob
	for level, nodes := range t.levels {
		for index, n := range nodes {
			if n.kind == nodePadding && n.proof == nil {
				n.proof = p
				jobs = append(jobs, t.readyAt(level, index)...)
			}
		}
	}
	return jobs
}

func (t *proofTree) readyAt(level, index int) []mergeJob {
	if level == len(t.levels)-1 {
		return nil
	}
	left, right := index&^1, index|1
	l, r := t.levels[level][left], t.levels[level][right]
	parent := t.levels[level+1][index/2]
	if l.proof == nil || r.proof == nil || parent.dispatched {
		return nil
	}
	parent.dispatched = true
	return []mergeJob{{level: level + 1, index: index / 2, left: l.proof, right: r.proof}}
}

// rootProof returns the tree's root proof, or nil while incomplete.
func (t *proofTree) rootProof() *prover.Proof {
	top := t.levels[len(t.levels)-1]
	return top[0].proof
}

func (t *proofTree) isComplete() bool {
	return t.rootProof() != nil
}

// numPaddingNodes counts the padding slots in the arena.
func (t *proofTree) numPaddingNodes() int {
	n := 0
	for _, nodes := range t.levels {
		for _, node := range nodes {
			if node.kind == nodePadding {
				n++
			}
		}
	}
	return n
}
