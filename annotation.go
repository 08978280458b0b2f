package pageglot

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker attributes on pageglot-owned nodes. Annotation markers carry
// the kind as the attribute value; UI nodes (icon, popup, banner) carry
// UIAttr so the selector never translates the tool's own chrome.
const (
	AnnotationAttr = "data-pageglot-annotation"
	UIAttr         = "data-pageglot-ui"
)

// FailedMarker is the inline text rendered for fragments whose
// translation failed, so the user sees exactly which text failed.
const FailedMarker = "[translation failed]"

// RenderAnnotation attaches an annotation marker immediately after the
// fragment's node, replacing any prior marker for that fragment.
func RenderAnnotation(frag TranslatableFragment, ann Annotation) {
	parent := frag.Node.Parent
	if parent == nil {
		return
	}

	if existing := annotationSibling(frag.Node); existing != nil {
		parent.RemoveChild(existing)
	}

	display := ann.Text
	if ann.Kind == AnnotationFailed {
		display = FailedMarker
	}

	span := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Span,
		Data:     "span",
		Attr: []html.Attribute{
			{Key: AnnotationAttr, Val: string(ann.Kind)},
		},
	}
	span.AppendChild(&html.Node{
		Type: html.TextNode,
		Data: " " + display,
	})

	parent.InsertBefore(span, frag.Node.NextSibling)
}

// RemoveAnnotations strips every annotation marker under the document
// and returns how many were removed.
func RemoveAnnotations(doc *goquery.Document) int {
	sel := doc.Find("span[" + AnnotationAttr + "]")
	n := sel.Length()
	sel.Remove()
	return n
}

// HasAnnotations probes for markers left by a previous content-script
// instance, used to reconcile session state on reattach.
func HasAnnotations(doc *goquery.Document) bool {
	return doc.Find("span[" + AnnotationAttr + "]").Length() > 0
}

// annotationSibling returns the marker element directly following a
// fragment node, if any.
func annotationSibling(n *html.Node) *html.Node {
	sib := n.NextSibling
	if sib != nil && sib.Type == html.ElementNode && hasAttr(sib, AnnotationAttr) {
		return sib
	}
	return nil
}
