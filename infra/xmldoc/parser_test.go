package xmldoc

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iveel36/spacetime-sim-2020/core/trace"
)

var _ trace.DocumentParser = (*Parser)(nil)

func TestParseWellFormed(t *testing.T) {
	src := `<?xml version="1.0"?>
<emission-export>
  <timestep time="0.00">
    <vehicle id="a" CO2="1.5"/>
    <vehicle id="b" CO2="2"/>
  </timestep>
</emission-export>`
	p := NewParser()
	root, err := p.Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "emission-export", root.Name)
	require.Len(t, root.Children, 1)
	ts := root.Children[0]
	assert.Equal(t, "0.00", ts.Attrs["time"])
	require.Len(t, ts.Children, 2)
	assert.Equal(t, "b", ts.Children[1].Attrs["id"])
	assert.False(t, p.LastRecovery().Repaired())
	assert.Equal(t, "clean", p.LastRecovery().String())
}

func TestParseTruncated(t *testing.T) {
	src := `<tripinfos><tripinfo id="a" duration="1" arrival="2"/><tripinfo id="b" dur`
	root, rec, err := ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	assert.True(t, rec.Truncated)
	assert.True(t, rec.Repaired())
	require.Len(t, root.Children, 1)
	assert.Equal(t, "a", root.Children[0].Attrs["id"])
}

func TestParseUnclosedElements(t *testing.T) {
	src := `<tripinfos><tripinfo id="a" duration="1" arrival="2"></tripinfo><tripinfo id="b">`
	root, rec, err := ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	assert.True(t, rec.Truncated)
	assert.Equal(t, 2, rec.ClosedElements)
	assert.Len(t, root.FindAll("tripinfo"), 2)
}

func TestParseMismatchedEndTag(t *testing.T) {
	src := `<emission-export><timestep time="1"><vehicle id="x"></timestep><timestep time="2"/></emission-export>`
	root, rec, err := ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	assert.Nil(t, rec.Err)
	assert.Equal(t, 1, rec.AutoClosed)
	require.Len(t, root.Children, 2)
	assert.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, "2", root.Children[1].Attrs["time"])
}

func TestParseResyncsAfterGarbage(t *testing.T) {
	cases := map[string]string{
		"doubled bracket": `<tripinfos><tripinfo id="a"/><<broken/><tripinfo id="c"/></tripinfos>`,
		"bare less-than":  `<tripinfos><tripinfo id="a"/>a < b<tripinfo id="c"/></tripinfos>`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			root, rec, err := ParseDocument(strings.NewReader(src))
			require.NoError(t, err)
			require.Error(t, rec.Err)
			assert.Equal(t, 1, rec.Resyncs)
			assert.False(t, rec.Truncated)
			assert.Zero(t, rec.ClosedElements)
			assert.True(t, rec.Repaired())

			var ids []string
			for _, n := range root.FindAll("tripinfo") {
				ids = append(ids, n.Attrs["id"])
			}
			assert.Equal(t, []string{"a", "c"}, ids)
		})
	}
}

func TestParseResyncKeepsOpenElements(t *testing.T) {
	src := `<emission-export><timestep time="0"><vehicle id="a"/><<x<vehicle id="b"/></timestep>` +
		`<timestep time="1"><vehicle id="c"/></timestep></emission-export>`
	root, rec, err := ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Resyncs)
	require.Len(t, root.Children, 2)
	assert.Len(t, root.Children[0].Children, 2)
	assert.Equal(t, "b", root.Children[0].Children[1].Attrs["id"])
	assert.Equal(t, "c", root.Children[1].Children[0].Attrs["id"])
	assert.Zero(t, rec.ClosedElements)
}

func TestParseDropsIllegalCharacters(t *testing.T) {
	src := "<tripinfos><tripinfo id=\"b\x01x\"/><tripinfo id=\"c\xff\"/><tripinfo id=\"d\"/></tripinfos>"
	root, rec, err := ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	assert.NoError(t, rec.Err)
	assert.Equal(t, 2, rec.IllegalChars)
	assert.Zero(t, rec.Resyncs)
	require.Len(t, root.Children, 3)
	assert.Equal(t, "bx", root.Children[0].Attrs["id"])
	assert.Equal(t, "c", root.Children[1].Attrs["id"])
	assert.Equal(t, "d", root.Children[2].Attrs["id"])
}

func TestParseStrayEndTag(t *testing.T) {
	src := `<tripinfos><tripinfo id="a"/></vehicle><tripinfo id="b"/></tripinfos>`
	root, rec, err := ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.StrayEnds)
	assert.Len(t, root.Children, 2)
}

func TestParseLatin1(t *testing.T) {
	src := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><tripinfos><tripinfo id=\"caf\xe9\"/></tripinfos>"
	root, _, err := ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "café", root.Children[0].Attrs["id"])
}

func TestParseHTMLEntity(t *testing.T) {
	src := `<tripinfos><tripinfo id="a&nbsp;b"/></tripinfos>`
	root, _, err := ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "a\u00a0b", root.Children[0].Attrs["id"])
}

func TestParseEmpty(t *testing.T) {
	for _, src := range []string{"", "   ", `<?xml version="1.0"?>`} {
		_, _, err := ParseDocument(strings.NewReader(src))
		if !errors.Is(err, ErrEmptyDocument) {
			t.Fatalf("input %q: expected ErrEmptyDocument, got %v", src, err)
		}
	}
}

func TestParseExtraRoots(t *testing.T) {
	src := `<tripinfos><tripinfo id="a"/></tripinfos><tripinfo id="b"/>`
	root, rec, err := ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.ExtraRoots)
	assert.Len(t, root.FindAll("tripinfo"), 2)
}

func TestParseUnquotedAttributes(t *testing.T) {
	src := `<tripinfos><tripinfo id=a duration=15 arrival=2></tripinfo></tripinfos>`
	root, _, err := ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "15", root.Children[0].Attrs["duration"])
}
