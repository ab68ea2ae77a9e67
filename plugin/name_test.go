package plugin

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// chain links nodes root first and returns the last one.
func chain(nodes ...*node) *node {
	for i := 1; i < len(nodes); i++ {
		nodes[i].parent = nodes[i-1]
	}
	return nodes[len(nodes)-1]
}

func TestParentName(t *testing.T) {
	tests := []struct {
		name      string
		item      Item
		separator string
		expected  string
		ok        bool
	}{
		{
			name:     "CollectionAndFolder",
			item:     chain(&node{id: "c", name: "Collection"}, &node{id: "f", name: "Folder"}, &node{id: "r", name: "Request"}),
			expected: "Collection / Folder",
			ok:       true,
		},
		{
			name:     "BlankNameFallsBackToID",
			item:     chain(&node{id: "c", name: "Collection"}, &node{id: "f-42"}, &node{id: "r", name: "Request"}),
			expected: "Collection / f-42",
			ok:       true,
		},
		{
			name:      "CustomSeparator",
			item:      chain(&node{id: "c", name: "Collection"}, &node{id: "f", name: "Folder"}, &node{id: "r", name: "Request"}),
			separator: ".",
			expected:  "Collection.Folder",
			ok:        true,
		},
		{
			name:      "EmptySeparatorUsesDefault",
			item:      chain(&node{id: "c", name: "Collection"}, &node{id: "f", name: "Folder"}, &node{id: "r", name: "Request"}),
			separator: "",
			expected:  "Collection / Folder",
			ok:        true,
		},
		{
			name:     "TypedNilItem",
			item:     (*node)(nil),
			expected: "",
			ok:       true,
		},
		{
			name:     "NoAncestors",
			item:     &node{id: "r", name: "Request"},
			expected: "",
			ok:       true,
		},
		{
			name:     "NilItem",
			item:     nil,
			expected: "",
			ok:       false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, ok := ParentName(tc.item, tc.separator)

			if diff := cmp.Diff(tc.expected, result); diff != "" {
				t.Errorf("ParentName() mismatch (-want +got):\n%s", diff)
			}
			if ok != tc.ok {
				t.Errorf("ParentName() ok = %v, want %v", ok, tc.ok)
			}
		})
	}
}

func TestNodeParent(t *testing.T) {
	root := &node{id: "c", name: "Collection"}
	item := chain(root, &node{id: "r", name: "Request"})

	if item.Parent() != Item(root) {
		t.Errorf("Parent() = %v, want the collection", item.Parent())
	}
	if root.Parent() != nil {
		t.Errorf("root Parent() = %v, want nil", root.Parent())
	}
}

func TestNilNode(t *testing.T) {
	var n *node

	if n.Name() != "" || n.ID() != "" {
		t.Errorf("nil node Name() = %q, ID() = %q; want empty", n.Name(), n.ID())
	}
	if n.Parent() != nil {
		t.Errorf("nil node Parent() = %v, want nil", n.Parent())
	}
	n.ForEachParent(func(Item) {
		t.Errorf("nil node ForEachParent() called fn")
	})
}
