package xmldoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/iveel36/spacetime-sim-2020/core/trace"
)

// ErrEmptyDocument is returned when no root element could be read.
var ErrEmptyDocument = errors.New("document has no root element")

// Recovery reports the repairs applied while parsing one document.
type Recovery struct {
	// Truncated is set when the input ended inside an element.
	Truncated bool
	// ClosedElements counts elements still open at the end of input.
	ClosedElements int
	// AutoClosed counts elements closed by an end tag of an ancestor.
	AutoClosed int
	// StrayEnds counts end tags that matched no open element.
	StrayEnds int
	// ExtraRoots counts top-level elements folded under the first root.
	ExtraRoots int
	// IllegalChars counts characters dropped before decoding because XML
	// does not allow them or they were not valid UTF-8.
	IllegalChars int
	// Resyncs counts how often decoding restarted after a syntax error.
	Resyncs int
	// Err is the first syntax error met, if any.
	Err error
}

// Repaired reports whether the tree differs from a strict parse.
func (r Recovery) Repaired() bool {
	return r.Err != nil || r.Truncated || r.ClosedElements > 0 || r.AutoClosed > 0 ||
		r.StrayEnds > 0 || r.ExtraRoots > 0 || r.IllegalChars > 0 || r.Resyncs > 0
}

func (r Recovery) String() string {
	if !r.Repaired() {
		return "clean"
	}
	return fmt.Sprintf("truncated=%t closed=%d auto_closed=%d stray_ends=%d extra_roots=%d illegal_chars=%d resyncs=%d err=%v",
		r.Truncated, r.ClosedElements, r.AutoClosed, r.StrayEnds, r.ExtraRoots, r.IllegalChars, r.Resyncs, r.Err)
}

// Parser builds trace trees from loosely formed XML. It never fails on
// markup errors once a root element has been read. Characters XML forbids
// are dropped, an end tag closes every element opened inside the matching
// one, a syntax error skips ahead to the next tag and a truncated input
// keeps everything read so far.
type Parser struct {
	last Recovery
}

// NewParser returns a recovering Parser.
func NewParser() *Parser { return &Parser{} }

// Parse implements trace.DocumentParser.
func (p *Parser) Parse(r io.Reader) (*trace.Node, error) {
	root, rec, err := ParseDocument(r)
	p.last = rec
	return root, err
}

// LastRecovery returns the repairs applied by the previous Parse call.
func (p *Parser) LastRecovery() Recovery { return p.last }

// ParseDocument reads r into a Node tree and reports the repairs it needed.
func ParseDocument(r io.Reader) (*trace.Node, Recovery, error) {
	var rec Recovery
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, rec, err
	}
	data, dropped := sanitize(toUTF8(raw))
	rec.IllegalChars = dropped

	b := &treeBuilder{rec: &rec}
	for pos := 0; pos < len(data); {
		dec := newDecoder(data[pos:])
		err := b.consume(dec)
		if err == nil {
			break
		}
		if rec.Err == nil {
			rec.Err = err
		}
		var se *xml.SyntaxError
		if !errors.As(err, &se) {
			break
		}
		if se.Msg == "unexpected EOF" {
			rec.Truncated = true
			break
		}
		// Resume at the next tag after the failure point.
		from := pos + int(dec.InputOffset()) + 1
		if from >= len(data) {
			break
		}
		next := bytes.IndexByte(data[from:], '<')
		if next < 0 {
			break
		}
		pos = from + next
		rec.Resyncs++
	}

	rec.ClosedElements = len(b.stack)
	if rec.ClosedElements > 0 {
		rec.Truncated = true
	}
	if b.root == nil {
		if rec.Err != nil {
			return nil, rec, fmt.Errorf("%w: %v", ErrEmptyDocument, rec.Err)
		}
		return nil, rec, ErrEmptyDocument
	}
	return b.root, rec, nil
}

// newDecoder returns a lenient decoder over UTF-8 input. Element matching
// is left to treeBuilder so a decoder can start in the middle of a document.
func newDecoder(data []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }
	return dec
}

type treeBuilder struct {
	rec   *Recovery
	root  *trace.Node
	stack []*trace.Node
}

// consume adds tokens from dec until the input ends or a syntax error occurs.
func (b *treeBuilder) consume(dec *xml.Decoder) error {
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			b.open(t)
		case xml.EndElement:
			b.close(t.Name.Local)
		}
	}
}

func (b *treeBuilder) open(t xml.StartElement) {
	n := &trace.Node{Name: t.Name.Local, Attrs: make(map[string]string, len(t.Attr))}
	for _, a := range t.Attr {
		n.Attrs[a.Name.Local] = a.Value
	}
	switch {
	case len(b.stack) > 0:
		parent := b.stack[len(b.stack)-1]
		parent.Children = append(parent.Children, n)
	case b.root == nil:
		b.root = n
	default:
		b.root.Children = append(b.root.Children, n)
		b.rec.ExtraRoots++
	}
	b.stack = append(b.stack, n)
}

// close pops the innermost open element called name and everything above it.
func (b *treeBuilder) close(name string) {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i].Name == name {
			b.rec.AutoClosed += len(b.stack) - 1 - i
			b.stack = b.stack[:i]
			return
		}
	}
	b.rec.StrayEnds++
}

// toUTF8 converts data to UTF-8 according to its XML declaration. Input
// with no declared encoding, or one that cannot be decoded, is returned as is.
func toUTF8(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	label := declaredEncoding(data)
	switch strings.ToLower(label) {
	case "", "utf-8", "utf8":
		return data
	}
	rd, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return data
	}
	out, err := io.ReadAll(rd)
	if err != nil {
		return data
	}
	return out
}

// declaredEncoding returns the encoding named in a leading <?xml ...?>.
func declaredEncoding(data []byte) string {
	data = bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(data, []byte("<?xml")) {
		return ""
	}
	end := bytes.Index(data, []byte("?>"))
	if end < 0 {
		return ""
	}
	decl := string(data[:end])
	i := strings.Index(decl, "encoding")
	if i < 0 {
		return ""
	}
	rest := strings.TrimLeft(decl[i+len("encoding"):], " \t\r\n")
	if !strings.HasPrefix(rest, "=") {
		return ""
	}
	rest = strings.TrimLeft(rest[1:], " \t\r\n")
	if rest == "" || (rest[0] != '"' && rest[0] != '\'') {
		return ""
	}
	j := strings.IndexByte(rest[1:], rest[0])
	if j < 0 {
		return ""
	}
	return rest[1 : 1+j]
}

// sanitize drops invalid UTF-8 and characters outside the XML Char range.
func sanitize(data []byte) ([]byte, int) {
	var (
		out     []byte
		dropped int
	)
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if (r == utf8.RuneError && size == 1) || !isXMLChar(r) {
			if out == nil {
				out = append(make([]byte, 0, len(data)), data[:i]...)
			}
			dropped++
		} else if out != nil {
			out = append(out, data[i:i+size]...)
		}
		i += size
	}
	if out == nil {
		return data, 0
	}
	return out, dropped
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
