package pageglot

import (
	"strings"
	"testing"
)

func TestRenderAnnotation(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>Hello World</p></body></html>`)
	frags := NewSelector().Collect(doc)
	if len(frags) != 1 {
		t.Fatalf("fragments = %d, want 1", len(frags))
	}

	RenderAnnotation(frags[0], Annotation{Kind: AnnotationTranslated, Text: "Hola Mundo"})

	out, err := doc.Html()
	if err != nil {
		t.Fatalf("serializing: %v", err)
	}
	if !strings.Contains(out, AnnotationAttr+`="translated"`) {
		t.Errorf("output missing translated marker: %s", out)
	}
	if !strings.Contains(out, "Hola Mundo") {
		t.Errorf("output missing translation text: %s", out)
	}
	if !strings.Contains(out, "Hello World") {
		t.Error("original text must stay in place")
	}
	if !HasAnnotations(doc) {
		t.Error("HasAnnotations should report the marker")
	}
}

func TestRenderAnnotationReplacesPriorMarker(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>Hello</p></body></html>`)
	frags := NewSelector().Collect(doc)

	RenderAnnotation(frags[0], Annotation{Kind: AnnotationTranslated, Text: "Hola"})
	RenderAnnotation(frags[0], Annotation{Kind: AnnotationTranslated, Text: "Bonjour"})

	sel := doc.Find("span[" + AnnotationAttr + "]")
	if sel.Length() != 1 {
		t.Fatalf("markers = %d, want 1 (re-render replaces)", sel.Length())
	}

	out, _ := doc.Html()
	if strings.Contains(out, "Hola") {
		t.Error("stale marker text should be gone")
	}
	if !strings.Contains(out, "Bonjour") {
		t.Error("new marker text should be present")
	}
}

func TestRenderAnnotationFailed(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>Hello</p></body></html>`)
	frags := NewSelector().Collect(doc)

	RenderAnnotation(frags[0], Annotation{Kind: AnnotationFailed})

	out, _ := doc.Html()
	if !strings.Contains(out, FailedMarker) {
		t.Errorf("output missing failed marker: %s", out)
	}
	if !strings.Contains(out, AnnotationAttr+`="failed"`) {
		t.Errorf("output missing failed kind: %s", out)
	}
}

func TestRemoveAnnotations(t *testing.T) {
	doc := fixtureDoc(t)
	frags := NewSelector().Collect(doc)
	for _, frag := range frags {
		RenderAnnotation(frag, Annotation{Kind: AnnotationTranslated, Text: "x"})
	}

	if n := RemoveAnnotations(doc); n != len(frags) {
		t.Errorf("removed = %d, want %d", n, len(frags))
	}
	if HasAnnotations(doc) {
		t.Error("no markers should remain")
	}

	// Fragments are selectable again after removal.
	if got := NewSelector().Collect(doc); len(got) != len(frags) {
		t.Errorf("fragments after removal = %d, want %d", len(got), len(frags))
	}
}
