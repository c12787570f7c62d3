package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/xwidget/internal/log"
	"github.com/zjrosen/xwidget/internal/widget"
)

// NodeDef is the YAML form of one element.
//
//	id: root
//	widget: widgets/text
//	attrs:
//	  content: hello
//	children:
//	  - id: child
type NodeDef struct {
	ID       string            `yaml:"id"`
	Widget   string            `yaml:"widget,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Children []NodeDef         `yaml:"children,omitempty"`
}

var (
	// ErrEmptyTree is returned when a tree file has no root element.
	ErrEmptyTree = errors.New("tree file has no root element")
	// ErrDuplicateID is returned when two elements share an id.
	ErrDuplicateID = errors.New("duplicate element id")
	// ErrMissingID is returned for an element without an id.
	ErrMissingID = errors.New("element id is required")
)

// Parse decodes a YAML tree document and builds the element tree.
func Parse(data []byte) (*Element, error) {
	var def NodeDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse tree: %w", err)
	}
	if def.ID == "" && def.Widget == "" && len(def.Children) == 0 {
		return nil, ErrEmptyTree
	}
	seen := make(map[string]struct{})
	root, err := build(def, "", seen)
	if err != nil {
		return nil, err
	}
	log.Debug(log.CatTree, "tree parsed", "root", root.ID(), "elements", len(seen))
	return root, nil
}

// Load reads and parses a tree file from disk.
func Load(path string) (*Element, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", path, err)
	}
	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// LoadFS reads and parses a tree file from fsys.
func LoadFS(fsys fs.FS, path string) (*Element, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", path, err)
	}
	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

func build(def NodeDef, parentPath string, seen map[string]struct{}) (*Element, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("element under %q: %w", parentPath, ErrMissingID)
	}
	if _, dup := seen[def.ID]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, def.ID)
	}
	seen[def.ID] = struct{}{}

	attrs := make(map[string]string, len(def.Attrs)+1)
	for k, v := range def.Attrs {
		attrs[k] = v
	}
	if def.Widget != "" {
		attrs[widget.PathAttribute] = def.Widget
	}

	el := NewElement(def.ID, attrs)
	for _, childDef := range def.Children {
		child, err := build(childDef, def.ID, seen)
		if err != nil {
			return nil, err
		}
		el.Append(child)
	}
	return el, nil
}

// Marshal renders an element tree back to its YAML form.
func Marshal(root *Element) ([]byte, error) {
	return yaml.Marshal(toDef(root))
}

func toDef(el *Element) NodeDef {
	attrs := el.Attrs()
	def := NodeDef{ID: el.ID()}
	if path, ok := attrs[widget.PathAttribute]; ok {
		def.Widget = path
		delete(attrs, widget.PathAttribute)
	}
	if len(attrs) > 0 {
		def.Attrs = attrs
	}
	for _, c := range el.Elements() {
		def.Children = append(def.Children, toDef(c))
	}
	return def
}
