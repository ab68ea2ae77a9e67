package plugin

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// node is an entry of the collection tree. The collection itself is the root.
type node struct {
	id     string
	name   string
	parent *node
}

func (n *node) Name() string {
	if n == nil {
		return ""
	}
	return n.name
}

func (n *node) ID() string {
	if n == nil {
		return ""
	}
	return n.id
}

func (n *node) Parent() Item {
	if n == nil || n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) ForEachParent(fn func(Item)) {
	if n == nil {
		return
	}
	for p := n.parent; p != nil; p = p.parent {
		fn(p)
	}
}

// LoadSummary reads a Newman JSON summary from disk.
func LoadSummary(filename string) (*Summary, error) {
	logrus.Infof("Processing file: %s", filename)

	f, err := os.Open(filename)
	if err != nil {
		logger := logrus.WithError(err).WithField("File", filename)
		logger.Error("Failed to read file")
		return nil, errors.New("failed to read file: " + err.Error())
	}
	defer f.Close()

	summary, err := DecodeSummary(f)
	if err != nil {
		logger := logrus.WithError(err).WithField("File", filename)
		logger.Error("Failed to parse run summary")
		return nil, err
	}
	return summary, nil
}

// DecodeSummary decodes a Newman JSON summary.
func DecodeSummary(r io.Reader) (*Summary, error) {
	var summary Summary
	if err := json.NewDecoder(r).Decode(&summary); err != nil {
		return nil, errors.New("failed to parse run summary: " + err.Error())
	}
	return &summary, nil
}

// Executions returns the recorded executions with every item linked to its
// ancestors in the collection. Items missing from the collection have no
// ancestors.
func (s *Summary) Executions() []Execution {
	if s == nil || s.Run == nil || len(s.Run.Executions) == 0 {
		return nil
	}

	index := s.Collection.index()
	executions := make([]Execution, 0, len(s.Run.Executions))
	for _, record := range s.Run.Executions {
		execution := Execution{
			Cursor:           record.Cursor,
			Response:         record.Response,
			Assertions:       record.Assertions,
			PrerequestScript: record.PrerequestScript,
			TestScript:       record.TestScript,
		}
		if record.Item != nil {
			if n, ok := index[record.Item.ID]; ok && record.Item.ID != "" {
				execution.Item = n
			} else {
				execution.Item = &node{id: record.Item.ID, name: record.Item.Name}
			}
		}
		executions = append(executions, execution)
	}
	return executions
}

// index maps item ids to their nodes in the collection tree. When ids repeat
// the first occurrence wins.
func (c *CollectionDefinition) index() map[string]*node {
	index := make(map[string]*node)
	if c == nil {
		return index
	}

	root := &node{id: c.Info.ID, name: c.Info.Name}
	var walk func(parent *node, items []ItemRef)
	walk = func(parent *node, items []ItemRef) {
		for _, item := range items {
			n := &node{id: item.ID, name: item.Name, parent: parent}
			if _, seen := index[item.ID]; !seen {
				index[item.ID] = n
			}
			walk(n, item.Items)
		}
	}
	walk(root, c.Items)
	return index
}
