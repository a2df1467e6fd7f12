// Copyright © 2024 rigid2d contributors
// Use is governed by a BSD-style license found in the LICENSE file.

// Package broadphase implements the dynamic AABB tree used to cull
// body/fixture pairs before the narrow phase runs, plus the pair buffer
// that turns tree overlaps into deduplicated candidate contacts.
package broadphase

import (
	"github.com/gazed/rigid2d/math2d"
	"github.com/gazed/rigid2d/shape"
)

// nullNode marks an absent child/parent/next link.
const nullNode = -1

// aabbExtension is how far a leaf's AABB is fattened beyond the tight
// shape bounds, so that small motions don't force a tree update.
const aabbExtension = 0.1

// aabbMultiplier predicts a moving leaf's AABB one step ahead along its
// displacement, reducing tree churn for fast-moving bodies.
const aabbMultiplier = 2.0

// ProxyID identifies a leaf proxy in a Tree.
type ProxyID int

type treeNode struct {
	aabb               shape.AABB
	userData           interface{}
	parent             int // also used as "next" while on the free list
	child1, child2     int
	height             int // -1 means this slot is free
}

func (n *treeNode) isLeaf() bool { return n.child1 == nullNode }

// Tree is a bounding-volume hierarchy over fattened AABBs, rebalanced on
// insertion using Box2D's cost-driven sibling search and AVL-style
// rotations so that query cost stays close to O(log n).
type Tree struct {
	nodes        []treeNode
	root         int
	freeList     int
	nodeCount    int
	insertCount  int
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	t := &Tree{root: nullNode}
	t.growPool(16)
	return t
}

func (t *Tree) growPool(capacity int) {
	start := len(t.nodes)
	if capacity <= start {
		return
	}
	grown := make([]treeNode, capacity)
	copy(grown, t.nodes)
	for i := start; i < capacity-1; i++ {
		grown[i].parent = i + 1
		grown[i].height = nullNode
	}
	grown[capacity-1].parent = nullNode
	grown[capacity-1].height = nullNode
	t.nodes = grown
	t.freeList = start
}

func (t *Tree) allocateNode() int {
	if t.freeList == nullNode {
		t.growPool(max(16, len(t.nodes)*2))
	}
	id := t.freeList
	t.freeList = t.nodes[id].parent
	t.nodes[id] = treeNode{parent: nullNode, child1: nullNode, child2: nullNode, height: 0}
	t.nodeCount++
	return id
}

func (t *Tree) freeNode(id int) {
	t.nodes[id].parent = t.freeList
	t.nodes[id].height = nullNode
	t.freeList = id
	t.nodeCount--
}

// CreateProxy inserts a fattened leaf for aabb carrying userData (typically
// a fixture/body handle) and returns its id.
func (t *Tree) CreateProxy(aabb shape.AABB, userData interface{}) ProxyID {
	id := t.allocateNode()
	t.nodes[id].aabb = aabb.Extend(aabbExtension)
	t.nodes[id].userData = userData
	t.nodes[id].height = 0
	t.insertLeaf(id)
	return ProxyID(id)
}

// DestroyProxy removes a previously created leaf.
func (t *Tree) DestroyProxy(id ProxyID) {
	t.removeLeaf(int(id))
	t.freeNode(int(id))
}

// MoveProxy re-fattens and predictively extends the leaf's AABB along
// displacement, re-inserting it only if the new tight aabb has escaped the
// existing fat bounds. Returns true if a re-insertion happened.
func (t *Tree) MoveProxy(id ProxyID, aabb shape.AABB, displacement math2d.Vec2) bool {
	n := int(id)
	if t.nodes[n].aabb.Contains(aabb) {
		return false
	}
	t.removeLeaf(n)

	fat := aabb.Extend(aabbExtension)
	lower, upper := fat.LowerBound, fat.UpperBound
	d := math2d.Mul(displacement, aabbMultiplier)
	if d.X < 0 {
		lower.X += d.X
	} else {
		upper.X += d.X
	}
	if d.Y < 0 {
		lower.Y += d.Y
	} else {
		upper.Y += d.Y
	}
	t.nodes[n].aabb = shape.AABB{LowerBound: lower, UpperBound: upper}
	t.insertLeaf(n)
	return true
}

// FatAABB returns the stored (fattened) bounds for a proxy.
func (t *Tree) FatAABB(id ProxyID) shape.AABB { return t.nodes[id].aabb }

// UserData returns the payload a proxy was created with.
func (t *Tree) UserData(id ProxyID) interface{} { return t.nodes[id].userData }

func (t *Tree) insertLeaf(leaf int) {
	t.insertCount++
	if t.root == nullNode {
		t.root = leaf
		t.nodes[leaf].parent = nullNode
		return
	}

	leafAABB := t.nodes[leaf].aabb
	index := t.root
	for !t.nodes[index].isLeaf() {
		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2

		area := t.nodes[index].aabb.Perimeter()
		combined := shape.Combine(t.nodes[index].aabb, leafAABB)
		combinedArea := combined.Perimeter()

		cost := 2 * combinedArea
		inheritCost := 2 * (combinedArea - area)

		var cost1 float64
		if t.nodes[child1].isLeaf() {
			cost1 = shape.Combine(leafAABB, t.nodes[child1].aabb).Perimeter() + inheritCost
		} else {
			newArea := shape.Combine(leafAABB, t.nodes[child1].aabb).Perimeter()
			oldArea := t.nodes[child1].aabb.Perimeter()
			cost1 = (newArea - oldArea) + inheritCost
		}

		var cost2 float64
		if t.nodes[child2].isLeaf() {
			cost2 = shape.Combine(leafAABB, t.nodes[child2].aabb).Perimeter() + inheritCost
		} else {
			newArea := shape.Combine(leafAABB, t.nodes[child2].aabb).Perimeter()
			oldArea := t.nodes[child2].aabb.Perimeter()
			cost2 = (newArea - oldArea) + inheritCost
		}

		if cost < cost1 && cost < cost2 {
			break
		}
		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index
	oldParent := t.nodes[sibling].parent
	newParent := t.allocateNode()
	t.nodes[newParent].parent = oldParent
	t.nodes[newParent].aabb = shape.Combine(leafAABB, t.nodes[sibling].aabb)
	t.nodes[newParent].height = t.nodes[sibling].height + 1

	if oldParent != nullNode {
		if t.nodes[oldParent].child1 == sibling {
			t.nodes[oldParent].child1 = newParent
		} else {
			t.nodes[oldParent].child2 = newParent
		}
	} else {
		t.root = newParent
	}
	t.nodes[newParent].child1 = sibling
	t.nodes[newParent].child2 = leaf
	t.nodes[sibling].parent = newParent
	t.nodes[leaf].parent = newParent

	index = t.nodes[leaf].parent
	for index != nullNode {
		index = t.balance(index)
		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2
		t.nodes[index].height = 1 + max(t.nodes[child1].height, t.nodes[child2].height)
		t.nodes[index].aabb = shape.Combine(t.nodes[child1].aabb, t.nodes[child2].aabb)
		index = t.nodes[index].parent
	}
}

func (t *Tree) removeLeaf(leaf int) {
	if leaf == t.root {
		t.root = nullNode
		return
	}
	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent
	var sibling int
	if t.nodes[parent].child1 == leaf {
		sibling = t.nodes[parent].child2
	} else {
		sibling = t.nodes[parent].child1
	}

	if grandParent != nullNode {
		if t.nodes[grandParent].child1 == parent {
			t.nodes[grandParent].child1 = sibling
		} else {
			t.nodes[grandParent].child2 = sibling
		}
		t.nodes[sibling].parent = grandParent
		t.freeNode(parent)

		index := grandParent
		for index != nullNode {
			index = t.balance(index)
			child1 := t.nodes[index].child1
			child2 := t.nodes[index].child2
			t.nodes[index].aabb = shape.Combine(t.nodes[child1].aabb, t.nodes[child2].aabb)
			t.nodes[index].height = 1 + max(t.nodes[child1].height, t.nodes[child2].height)
			index = t.nodes[index].parent
		}
	} else {
		t.root = sibling
		t.nodes[sibling].parent = nullNode
		t.freeNode(parent)
	}
}

// balance performs at most one AVL-style rotation around iA and returns
// the index of the subtree's new root.
func (t *Tree) balance(iA int) int {
	a := &t.nodes[iA]
	if a.isLeaf() || a.height < 2 {
		return iA
	}
	iB, iC := a.child1, a.child2
	b, c := &t.nodes[iB], &t.nodes[iC]

	if c.height > b.height+1 {
		iF, iG := c.child1, c.child2
		f, g := &t.nodes[iF], &t.nodes[iG]

		c.child1 = iA
		c.parent = a.parent
		a.parent = iC

		if c.parent != nullNode {
			if t.nodes[c.parent].child1 == iA {
				t.nodes[c.parent].child1 = iC
			} else {
				t.nodes[c.parent].child2 = iC
			}
		} else {
			t.root = iC
		}

		if f.height > g.height {
			c.child2 = iF
			a.child2 = iG
			g.parent = iA
			a.aabb = shape.Combine(b.aabb, g.aabb)
			c.aabb = shape.Combine(a.aabb, f.aabb)
			a.height = 1 + max(b.height, g.height)
			c.height = 1 + max(a.height, f.height)
		} else {
			c.child2 = iG
			a.child2 = iF
			f.parent = iA
			a.aabb = shape.Combine(b.aabb, f.aabb)
			c.aabb = shape.Combine(a.aabb, g.aabb)
			a.height = 1 + max(b.height, f.height)
			c.height = 1 + max(a.height, g.height)
		}
		return iC
	}

	if b.height > c.height+1 {
		iD, iE := b.child1, b.child2
		d, e := &t.nodes[iD], &t.nodes[iE]

		b.child1 = iA
		b.parent = a.parent
		a.parent = iB

		if b.parent != nullNode {
			if t.nodes[b.parent].child1 == iA {
				t.nodes[b.parent].child1 = iB
			} else {
				t.nodes[b.parent].child2 = iB
			}
		} else {
			t.root = iB
		}

		if d.height > e.height {
			b.child2 = iD
			a.child1 = iE
			e.parent = iA
			a.aabb = shape.Combine(c.aabb, e.aabb)
			b.aabb = shape.Combine(a.aabb, d.aabb)
			a.height = 1 + max(c.height, e.height)
			b.height = 1 + max(a.height, d.height)
		} else {
			b.child2 = iE
			a.child1 = iD
			d.parent = iA
			a.aabb = shape.Combine(c.aabb, d.aabb)
			b.aabb = shape.Combine(a.aabb, e.aabb)
			a.height = 1 + max(c.height, d.height)
			b.height = 1 + max(a.height, e.height)
		}
		return iB
	}

	return iA
}

// Height returns the tree's root height, or -1 for an empty tree.
func (t *Tree) Height() int {
	if t.root == nullNode {
		return -1
	}
	return t.nodes[t.root].height
}

// ShiftOrigin translates every stored AABB by -newOrigin, used when the
// simulation periodically re-centers its coordinate system to control
// floating point error far from the origin.
func (t *Tree) ShiftOrigin(newOrigin math2d.Vec2) {
	for i := range t.nodes {
		if t.nodes[i].height == nullNode {
			continue
		}
		t.nodes[i].aabb.LowerBound = math2d.Minus(t.nodes[i].aabb.LowerBound, newOrigin)
		t.nodes[i].aabb.UpperBound = math2d.Minus(t.nodes[i].aabb.UpperBound, newOrigin)
	}
}

// Query invokes callback for every leaf whose fat AABB overlaps aabb;
// callback returns false to stop the traversal early.
func (t *Tree) Query(aabb shape.AABB, callback func(ProxyID) bool) {
	if t.root == nullNode {
		return
	}
	stack := []int{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}
		n := &t.nodes[id]
		if !shape.Overlaps(n.aabb, aabb) {
			continue
		}
		if n.isLeaf() {
			if !callback(ProxyID(id)) {
				return
			}
		} else {
			stack = append(stack, n.child1, n.child2)
		}
	}
}

// RayCast invokes callback with the fraction of the segment traveled for
// every leaf whose AABB the segment crosses; callback returns the new,
// possibly shortened max fraction to continue the search with, or a
// non-positive value to stop early.
func (t *Tree) RayCast(input shape.RayCastInput, callback func(ProxyID, shape.RayCastInput) float64) {
	if t.root == nullNode {
		return
	}
	stack := []int{t.root}
	maxFraction := input.MaxFraction
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}
		n := &t.nodes[id]
		segInput := shape.RayCastInput{P1: input.P1, P2: input.P2, MaxFraction: maxFraction}
		if !n.aabb.RayCast(segInput).Hit {
			continue
		}
		if n.isLeaf() {
			value := callback(ProxyID(id), segInput)
			if value <= 0 {
				return
			}
			maxFraction = value
		} else {
			stack = append(stack, n.child1, n.child2)
		}
	}
}
