package pageglot

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Rect is a bounding box in CSS pixels, relative to the viewport origin.
type Rect struct {
	X, Y, Width, Height float64
}

// Viewport is the currently visible region of the page.
type Viewport struct {
	Width, Height float64
}

// Intersects reports whether the box has area and overlaps the
// viewport rectangle [0,0]-[Width,Height].
func (r Rect) Intersects(vp Viewport) bool {
	if r.Width <= 0 || r.Height <= 0 {
		return false
	}
	return r.X < vp.Width && r.X+r.Width > 0 &&
		r.Y < vp.Height && r.Y+r.Height > 0
}

// Geometry reports layout boxes for elements. A host embedding backs
// this with real layout; tests and the CLI synthesize boxes.
type Geometry interface {
	BoundsFor(n *html.Node) (Rect, bool)
}

// linguisticContent matches Latin, CJK-unified and Kana characters.
// Fragments without any of these (pure numerals, symbols, punctuation)
// are skipped.
var linguisticContent = regexp.MustCompile(`[A-Za-z\x{00C0}-\x{024F}\x{3040}-\x{30FF}\x{4E00}-\x{9FFF}]`)

// Selector walks a document's text content and produces the candidate
// list of translatable fragments. It owns the fragment arena: each
// discovered node gets a stable integer id, reused across rescans.
type Selector struct {
	maxLen  int
	ignored map[string]bool

	mu     sync.Mutex
	nextID int
	ids    map[*html.Node]int
}

// SelectorOption is a functional option for configuring the Selector.
type SelectorOption func(*Selector)

// WithFragmentMaxLen overrides the fragment length cap.
func WithFragmentMaxLen(n int) SelectorOption {
	return func(s *Selector) {
		s.maxLen = n
	}
}

// WithIgnoredTags replaces the set of non-content tags.
func WithIgnoredTags(tags []string) SelectorOption {
	return func(s *Selector) {
		ignored := make(map[string]bool, len(tags))
		for _, tag := range tags {
			ignored[strings.ToLower(tag)] = true
		}
		s.ignored = ignored
	}
}

// NewSelector creates a Selector with the default rejection rules.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{
		maxLen:  DefaultFragmentMaxLen,
		ignored: IgnoredTags,
		ids:     make(map[*html.Node]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Collect returns every translatable fragment under the document in
// document order.
func (s *Selector) Collect(doc *goquery.Document) []TranslatableFragment {
	return s.collect(doc, nil, Viewport{})
}

// CollectVisible returns the translatable fragments whose nearest
// element ancestor intersects the viewport. A nil Geometry makes every
// fragment visible.
func (s *Selector) CollectVisible(doc *goquery.Document, geo Geometry, vp Viewport) []TranslatableFragment {
	return s.collect(doc, geo, vp)
}

func (s *Selector) collect(doc *goquery.Document, geo Geometry, vp Viewport) []TranslatableFragment {
	var frags []TranslatableFragment

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			// Structural rejects prune whole subtrees.
			if s.ignored[strings.ToLower(n.Data)] {
				return
			}
			// Never translate pageglot's own chrome or markers.
			if hasAttr(n, UIAttr) || hasAttr(n, AnnotationAttr) {
				return
			}
		}

		if n.Type == html.TextNode {
			if frag, ok := s.candidate(n, geo, vp); ok {
				frags = append(frags, frag)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, root := range doc.Nodes {
		walk(root)
	}

	return frags
}

// candidate applies the per-node rejection rules, cheapest first:
// length bounds, the annotated-sibling check, viewport geometry, and
// the linguistic-content regexp last.
func (s *Selector) candidate(n *html.Node, geo Geometry, vp Viewport) (TranslatableFragment, bool) {
	text := strings.TrimSpace(n.Data)
	if text == "" {
		return TranslatableFragment{}, false
	}
	if utf8.RuneCountInString(text) > s.maxLen {
		return TranslatableFragment{}, false
	}

	// Idempotence: a second scan never re-queues annotated text.
	if annotationSibling(n) != nil {
		return TranslatableFragment{}, false
	}

	if geo != nil {
		anc := nearestElement(n)
		if anc == nil {
			return TranslatableFragment{}, false
		}
		box, ok := geo.BoundsFor(anc)
		if !ok || !box.Intersects(vp) {
			return TranslatableFragment{}, false
		}
	}

	if !linguisticContent.MatchString(text) {
		return TranslatableFragment{}, false
	}

	return TranslatableFragment{ID: s.idFor(n), Node: n, Text: text}, true
}

// idFor returns the arena id for a node, assigning one on first sight.
func (s *Selector) idFor(n *html.Node) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.ids[n]; ok {
		return id
	}
	s.nextID++
	s.ids[n] = s.nextID
	return s.nextID
}

func nearestElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}
