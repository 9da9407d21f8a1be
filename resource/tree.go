// Package resource implements the path-prefix resource tree, spec §4.2:
// a trie of path segments where exactly one node along any path may carry
// a handler, enforced at registration time. Grounded on the teacher's
// router/inbuilt resource-tree family (router/inbuilt/resource.go,
// router/inbuilt/registrar.go), simplified to the plain prefix trie with
// parent back-pointers spec §3/§9 asks for instead of the teacher's radix
// tree with wildcard segments — this engine doesn't do dynamic routing
// (spec §1 Non-goals).
package resource

import "github.com/indigo-web/reqengine/request"

// Handler turns a Request (with its target already rewritten to the
// unmatched path tail) into however the caller wants to produce a
// Response — the concrete signature lives in the server package, which
// is the only thing that needs to know about Connection/trailer; the
// tree itself is agnostic and stores handlers as opaque values.
type Handler interface{}

// Unregister revokes a registration. Calling it more than once is a
// no-op.
type Unregister func()

// space is a node in the trie.
type space struct {
	name     string
	handler  Handler
	children map[string]*space
	parent   *space
}

func newSpace(name string, parent *space) *space {
	return &space{name: name, parent: parent}
}

// Tree is the resource tree root.
type Tree struct {
	root *space
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{root: newSpace("", nil)}
}

// Register installs handler at path, creating intermediate nodes as
// needed. It fails — returning a nil Unregister — if any node walked
// already carries a handler (the new registration would overlap an
// existing subspace), or if the target node already has a handler or
// already has children (spec §4.2, invariants (i)/(ii) in spec §3).
func (t *Tree) Register(path []string, handler Handler) Unregister {
	node := t.root

	for _, segment := range path {
		if node.handler != nil {
			return nil
		}

		if node.children == nil {
			node.children = make(map[string]*space)
		}

		child, ok := node.children[segment]
		if !ok {
			child = newSpace(segment, node)
			node.children[segment] = child
		}

		node = child
	}

	if node.handler != nil || len(node.children) > 0 {
		return nil
	}

	node.handler = handler

	unregistered := false
	return func() {
		if unregistered {
			return
		}
		unregistered = true
		t.unregister(node)
	}
}

// unregister clears node's handler, then prunes every ancestor that has
// become both handler-less and child-less, per spec §4.2.
func (t *Tree) unregister(node *space) {
	node.handler = nil

	for node != nil && node.handler == nil && len(node.children) == 0 {
		parent := node.parent
		if parent == nil {
			// node is the root; nothing above it to prune from.
			break
		}

		delete(parent.children, node.name)
		node = parent
	}
}

// Lookup descends path as far as matching children go. If the deepest
// matched node carries a handler, it returns that handler and the
// unmatched tail of path that should become the rewritten request
// target (spec §4.2). The second return is false when no handler was
// found anywhere along the descent — callers respond 404.
func (t *Tree) Lookup(path []string) (handler Handler, tail []string, found bool) {
	node := t.root
	matched := 0

	if node.handler != nil {
		return node.handler, path, true
	}

	for matched < len(path) {
		next, ok := node.children[path[matched]]
		if !ok {
			break
		}

		node = next
		matched++

		if node.handler != nil {
			return node.handler, path[matched:], true
		}
	}

	return nil, nil, false
}

// RewriteTarget applies a Lookup's tail to req's target, per spec §4.2
// ("rewrite the request target to the remaining path tail").
func RewriteTarget(req *request.Request, tail []string) {
	req.Target = req.Target.WithPath(tail)
}
