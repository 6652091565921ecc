package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// xrefEntry locates one object: either at a byte offset, or as the
// index-th member of object stream container.
type xrefEntry struct {
	offset    int64
	container int
	index     int
	packed    bool
}

// Document is a loaded PDF file.
type Document struct {
	data    []byte
	xref    map[int]xrefEntry
	trailer Dict
	cache   map[int]*Object
}

// PageInfo holds the geometry of a single page in PDF points.
type PageInfo struct {
	Width    float64
	Height   float64
	Rotation int
}

// Open reads a PDF file from disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Load(data)
}

// Load parses a PDF from raw bytes.
func Load(data []byte) (*Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("not a PDF file")
	}
	doc := &Document{
		data:  data,
		xref:  make(map[int]xrefEntry),
		cache: make(map[int]*Object),
	}
	start, err := doc.startXRef()
	if err != nil {
		return nil, err
	}
	seen := map[int64]bool{}
	for off := start; off > 0 && !seen[off]; {
		seen[off] = true
		if off, err = doc.readXRef(off); err != nil {
			return nil, fmt.Errorf("loading xref: %w", err)
		}
	}
	if doc.trailer == nil {
		return nil, fmt.Errorf("no trailer found")
	}
	return doc, nil
}

// Version returns the header version, e.g. "1.4".
func (doc *Document) Version() string {
	line := doc.data[5:min(len(doc.data), 16)]
	if i := bytes.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(string(line))
}

func (doc *Document) startXRef() (int64, error) {
	tail := doc.data[max(0, len(doc.data)-1024):]
	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return 0, fmt.Errorf("startxref not found")
	}
	l := newLexer(tail, i+len("startxref"))
	l.skip()
	off, err := strconv.ParseInt(l.word(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid startxref value: %w", err)
	}
	return off, nil
}

// readXRef loads one cross-reference section and returns the offset of
// the previous section, or 0. Entries already known are never replaced,
// so later revisions win.
func (doc *Document) readXRef(off int64) (int64, error) {
	if off < 0 || off >= int64(len(doc.data)) {
		return 0, fmt.Errorf("xref offset out of bounds: %d", off)
	}
	l := newLexer(doc.data, int(off))
	l.skip()
	var section Dict
	if l.accept("xref") {
		if err := doc.xrefTable(l); err != nil {
			return 0, err
		}
		t, err := l.object()
		if err != nil {
			return 0, fmt.Errorf("parsing trailer: %w", err)
		}
		section = t.Dict
	} else {
		d, err := doc.xrefStream(l)
		if err != nil {
			return 0, err
		}
		section = d
	}
	if doc.trailer == nil {
		doc.trailer = section
	}
	prev, _ := section.Int("Prev")
	return prev, nil
}

func (doc *Document) xrefTable(l *lexer) error {
	for {
		l.skip()
		if l.pos >= len(l.buf) {
			return fmt.Errorf("unterminated xref table")
		}
		if l.accept("trailer") {
			return nil
		}
		first, err1 := strconv.Atoi(l.word())
		l.skip()
		count, err2 := strconv.Atoi(l.word())
		if err1 != nil || err2 != nil {
			return fmt.Errorf("malformed xref subsection header")
		}
		for i := 0; i < count; i++ {
			l.skip()
			offset, _ := strconv.ParseInt(l.word(), 10, 64)
			l.skip()
			l.word()
			l.skip()
			kind := l.word()
			if _, ok := doc.xref[first+i]; ok || kind != "n" {
				continue
			}
			doc.xref[first+i] = xrefEntry{offset: offset}
		}
	}
}

func (doc *Document) xrefStream(l *lexer) (Dict, error) {
	if _, err := l.header(); err != nil {
		return nil, err
	}
	s, err := l.object()
	if err != nil {
		return nil, fmt.Errorf("parsing xref stream: %w", err)
	}
	if s.Kind != Stream {
		return nil, fmt.Errorf("xref section is neither a table nor a stream")
	}
	raw, err := decode(s)
	if err != nil {
		return nil, fmt.Errorf("decoding xref stream: %w", err)
	}

	w := s.Dict["W"]
	if w == nil || w.Kind != Array || len(w.Items) < 3 {
		return nil, fmt.Errorf("xref stream missing /W")
	}
	widths := [3]int{int(w.Items[0].Int), int(w.Items[1].Int), int(w.Items[2].Int)}
	size := widths[0] + widths[1] + widths[2]
	if size == 0 {
		return nil, fmt.Errorf("xref stream has zero-width entries")
	}

	var ranges []int
	if idx := s.Dict["Index"]; idx != nil && idx.Kind == Array {
		for _, it := range idx.Items {
			ranges = append(ranges, int(it.Int))
		}
	} else {
		n, _ := s.Dict.Int("Size")
		ranges = []int{0, int(n)}
	}

	field := func(b []byte, def int) int {
		if len(b) == 0 {
			return def
		}
		v := 0
		for _, c := range b {
			v = v<<8 | int(c)
		}
		return v
	}

	pos := 0
	for r := 0; r+1 < len(ranges); r += 2 {
		for id := ranges[r]; id < ranges[r]+ranges[r+1] && pos+size <= len(raw); id++ {
			row := raw[pos : pos+size]
			pos += size
			typ := field(row[:widths[0]], 1)
			a := field(row[widths[0]:widths[0]+widths[1]], 0)
			b := field(row[widths[0]+widths[1]:], 0)
			if _, ok := doc.xref[id]; ok {
				continue
			}
			switch typ {
			case 1:
				doc.xref[id] = xrefEntry{offset: int64(a)}
			case 2:
				doc.xref[id] = xrefEntry{packed: true, container: a, index: b}
			}
		}
	}
	return s.Dict, nil
}

// Resolve follows obj when it is a reference.
func (doc *Document) Resolve(obj *Object) *Object {
	for depth := 0; obj != nil && obj.Kind == Ref && depth < 32; depth++ {
		obj = doc.lookup(obj.Ref.Number)
	}
	if obj == nil {
		return nullObject
	}
	return obj
}

func (doc *Document) lookup(num int) *Object {
	if o, ok := doc.cache[num]; ok {
		return o
	}
	e, ok := doc.xref[num]
	if !ok {
		return nullObject
	}
	// Guard against reference cycles while this object is being read.
	doc.cache[num] = nullObject
	var o *Object
	var err error
	if e.packed {
		o, err = doc.unpack(num, e)
	} else {
		o, err = doc.readAt(e.offset)
	}
	if err != nil || o == nil {
		o = nullObject
	}
	doc.cache[num] = o
	return o
}

func (doc *Document) readAt(off int64) (*Object, error) {
	if off < 0 || off >= int64(len(doc.data)) {
		return nil, fmt.Errorf("object offset %d out of bounds", off)
	}
	l := newLexer(doc.data, int(off))
	if _, err := l.header(); err != nil {
		return nil, err
	}
	// Streams with an indirect /Length are cut at "endstream" instead.
	return l.object()
}

// unpack reads an object stored inside an object stream.
func (doc *Document) unpack(num int, e xrefEntry) (*Object, error) {
	c := doc.lookup(e.container)
	if c.Kind != Stream {
		return nil, fmt.Errorf("object %d: container %d is not a stream", num, e.container)
	}
	raw, err := decode(c)
	if err != nil {
		return nil, err
	}
	n, _ := c.Dict.Int("N")
	first, _ := c.Dict.Int("First")

	l := newLexer(raw, 0)
	for i := 0; i < int(n); i++ {
		l.skip()
		id, _ := strconv.Atoi(l.word())
		l.skip()
		off, _ := strconv.Atoi(l.word())
		if id == num {
			if int(first)+off >= len(raw) {
				break
			}
			return newLexer(raw, int(first)+off).object()
		}
	}
	return nil, fmt.Errorf("object %d not found in stream %d", num, e.container)
}

// Catalog returns the document catalog dictionary.
func (doc *Document) Catalog() (Dict, error) {
	root := doc.Resolve(doc.trailer["Root"])
	if root.Kind != Dictionary {
		return nil, fmt.Errorf("no /Root catalog")
	}
	return root.Dict, nil
}

// Pages returns all page dictionaries in reading order.
func (doc *Document) Pages() ([]Dict, error) {
	cat, err := doc.Catalog()
	if err != nil {
		return nil, err
	}
	tree := doc.Resolve(cat["Pages"])
	if tree.Kind != Dictionary {
		return nil, fmt.Errorf("no /Pages in catalog")
	}
	var pages []Dict
	doc.walk(tree.Dict, nil, &pages, 0)
	return pages, nil
}

// walk collects leaf pages, copying the inheritable /MediaBox and
// /Rotate down from ancestors.
func (doc *Document) walk(node, inherited Dict, pages *[]Dict, depth int) {
	if depth > maxDepth {
		return
	}
	attrs := Dict{}
	for k, v := range inherited {
		attrs[k] = v
	}
	for _, k := range []string{"MediaBox", "Rotate"} {
		if v, ok := node[k]; ok {
			attrs[k] = v
		}
	}
	if t, _ := node.Name("Type"); t == "Page" {
		page := Dict{}
		for k, v := range attrs {
			page[k] = v
		}
		for k, v := range node {
			page[k] = v
		}
		*pages = append(*pages, page)
		return
	}
	kids := doc.Resolve(node["Kids"])
	if kids.Kind != Array {
		return
	}
	for _, k := range kids.Items {
		if kid := doc.Resolve(k); kid.Kind == Dictionary {
			doc.walk(kid.Dict, attrs, pages, depth+1)
		}
	}
}

// PageCount returns the number of leaf pages.
func (doc *Document) PageCount() (int, error) {
	pages, err := doc.Pages()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// Info reports the dimensions and rotation of a page.
func (doc *Document) Info(page Dict) PageInfo {
	var info PageInfo
	if box := doc.Resolve(page["MediaBox"]); box.Kind == Array && len(box.Items) >= 4 {
		var v [4]float64
		for i := range v {
			v[i], _ = doc.Resolve(box.Items[i]).Number()
		}
		info.Width = v[2] - v[0]
		info.Height = v[3] - v[1]
	}
	if rot, ok := doc.Resolve(page["Rotate"]).Number(); ok {
		info.Rotation = int(rot)
	}
	return info
}

// CountPages is a convenience for Load followed by PageCount.
func CountPages(data []byte) (int, error) {
	doc, err := Load(data)
	if err != nil {
		return 0, err
	}
	return doc.PageCount()
}
