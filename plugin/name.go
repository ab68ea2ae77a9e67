package plugin

import "strings"

// DefaultSeparator joins the segments of qualified names.
const DefaultSeparator = " / "

// Item is a request or folder that knows its place in the collection tree.
type Item interface {
	Name() string
	ID() string
	// Parent returns the immediate container, or nil at the root.
	Parent() Item
	// ForEachParent calls fn for every ancestor, nearest first.
	ForEachParent(fn func(Item))
}

// ParentName returns the names of the ancestors of item joined by separator,
// root first. An ancestor without a name is represented by its id. An empty
// separator selects DefaultSeparator, so the segments cannot be joined with
// nothing. ok is false when there is no item to resolve.
func ParentName(item Item, separator string) (name string, ok bool) {
	if item == nil {
		return "", false
	}
	if separator == "" {
		separator = DefaultSeparator
	}

	var chain []string
	item.ForEachParent(func(parent Item) {
		label := parent.Name()
		if label == "" {
			label = parent.ID()
		}
		chain = append([]string{label}, chain...)
	})

	return strings.Join(chain, separator), true
}
