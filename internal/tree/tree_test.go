package tree

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/xwidget/internal/widget"
)

const sampleTree = `
id: root
widget: widgets/text
attrs:
  content: hello
children:
  - id: child1
    widget: widgets/counter
  - id: child2
    children:
      - id: grandchild
        widget: widgets/theme
`

func TestParse_BuildsTree(t *testing.T) {
	root, err := Parse([]byte(sampleTree))
	require.NoError(t, err)

	require.Equal(t, "root", root.ID())
	path, ok := root.WidgetPath()
	require.True(t, ok)
	require.Equal(t, "widgets/text", path)

	content, ok := root.Attr("content")
	require.True(t, ok)
	require.Equal(t, "hello", content)

	children := root.Elements()
	require.Len(t, children, 2)
	require.Equal(t, "child1", children[0].ID())

	_, managed := children[1].WidgetPath()
	require.False(t, managed, "child2 carries no widget attribute")

	gc := root.Find("grandchild")
	require.NotNil(t, gc)
	require.Same(t, children[1], gc.Parent())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{name: "empty", doc: "", want: ErrEmptyTree},
		{name: "missing id", doc: "id: root\nchildren:\n  - widget: widgets/text\n", want: ErrMissingID},
		{name: "duplicate id", doc: "id: a\nchildren:\n  - id: a\n", want: ErrDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("id: [unterminated"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse tree")
}

func TestLoad_FromDiskAndFS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTree), 0o644))

	root, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, root.Find("grandchild"))

	fsys := fstest.MapFS{"trees/demo.yaml": {Data: []byte(sampleTree)}}
	root, err = LoadFS(fsys, "trees/demo.yaml")
	require.NoError(t, err)
	require.Equal(t, "root", root.ID())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestMarshal_RoundTripsStructure(t *testing.T) {
	root, err := Parse([]byte(sampleTree))
	require.NoError(t, err)

	data, err := Marshal(root)
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, root.Find("grandchild").Attrs(), again.Find("grandchild").Attrs())
	require.Len(t, again.Elements(), 2)
}

func TestElement_AppendRemove(t *testing.T) {
	root := NewElement("root", nil)
	a := NewWidget("a", "widgets/text")
	b := NewElement("b", nil)
	root.Append(a, b)

	require.Len(t, root.Children(), 2)
	require.True(t, root.Remove(a))
	require.False(t, root.Remove(a))
	require.Nil(t, a.Parent())
	require.Len(t, root.Children(), 1)

	// Re-parenting detaches from the previous parent.
	other := NewElement("other", nil)
	other.Append(b)
	require.Empty(t, root.Children())
	require.Same(t, other, b.Parent())
}

func TestElement_Listeners(t *testing.T) {
	el := NewWidget("btn", "widgets/counter")
	owner1, owner2 := new(int), new(int)

	var got []string
	el.AddListener("click", owner1, func(e widget.Event) { got = append(got, "one:"+e.Name) })
	el.AddListener("click", owner2, func(e widget.Event) { got = append(got, "two:"+e.Name) })
	el.AddListener("click", owner1, func(e widget.Event) { got = append(got, "one-again") })

	require.Equal(t, 2, el.ListenerCount("click"))
	require.Equal(t, 2, el.Dispatch("click", nil))
	require.Equal(t, []string{"two:click", "one-again"}, got)

	el.RemoveListener("click", owner2)
	el.RemoveListener("click", owner1)
	require.Equal(t, 0, el.ListenerCount("click"))
	require.Equal(t, 0, el.Dispatch("click", nil))
}

func TestElement_FormatAttrs(t *testing.T) {
	el := NewWidget("title", "widgets/text")
	el.SetAttr("text", "Hi")
	el.SetAttr("content", `say "hi"`)

	require.Equal(t, `content="say \"hi\"" text="Hi"`, el.FormatAttrs(widget.PathAttribute))
	require.Contains(t, el.FormatAttrs(), `widget="widgets/text"`)
	require.Empty(t, NewElement("plain", nil).FormatAttrs())
}
