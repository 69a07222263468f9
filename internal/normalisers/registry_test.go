package normalisers

import (
	"testing"

	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
)

// Mock normaliser for testing
type mockNormaliser struct {
	name     string
	types    []string
	priority int
}

func (m *mockNormaliser) Normalise(data []byte) (string, error) {
	return string(data) + "-" + m.name, nil
}

func (m *mockNormaliser) SupportedTypes() []string {
	return m.types
}

func (m *mockNormaliser) Priority() int {
	return m.priority
}

func normaliseWith(t *testing.T, n driven.Normaliser, in string) string {
	t.Helper()
	out, err := n.Normalise([]byte(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockNormaliser{name: "test", types: []string{"text/plain"}, priority: 50})

	if n := r.Get("text/plain"); n == nil {
		t.Fatal("expected to find normaliser")
	}
	if n := r.Get("application/json"); n != nil {
		t.Error("expected nil for unregistered type")
	}
}

func TestRegistry_Get_PrioritySelection(t *testing.T) {
	r := NewRegistry()

	// Register in random order
	r.Register(&mockNormaliser{name: "low", types: []string{"text/plain"}, priority: 10})
	r.Register(&mockNormaliser{name: "high", types: []string{"text/plain"}, priority: 90})
	r.Register(&mockNormaliser{name: "medium", types: []string{"text/plain"}, priority: 50})

	n := r.Get("text/plain")
	if n == nil {
		t.Fatal("expected to find normaliser")
	}
	if got := normaliseWith(t, n, "test"); got != "test-high" {
		t.Errorf("expected high priority normaliser, got %s", got)
	}
}

func TestRegistry_GetAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockNormaliser{name: "n1", types: []string{"text/plain"}, priority: 10})
	r.Register(&mockNormaliser{name: "n2", types: []string{"text/plain"}, priority: 90})
	r.Register(&mockNormaliser{name: "n3", types: []string{"text/html"}, priority: 50})

	all := r.GetAll("text/plain")
	if len(all) != 2 {
		t.Fatalf("expected 2 normalisers, got %d", len(all))
	}
	if all[0].Priority() != 90 || all[1].Priority() != 10 {
		t.Errorf("expected priorities [90 10], got [%d %d]", all[0].Priority(), all[1].Priority())
	}

	if all = r.GetAll("text/html"); len(all) != 1 {
		t.Errorf("expected 1 normaliser for text/html, got %d", len(all))
	}
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockNormaliser{name: "n1", types: []string{"text/plain", "text/csv"}, priority: 50})
	r.Register(&mockNormaliser{name: "n2", types: []string{"text/html"}, priority: 50})

	types := r.List()
	expected := []string{"text/csv", "text/html", "text/plain"}
	if len(types) != len(expected) {
		t.Fatalf("expected %d types, got %d", len(expected), len(types))
	}
	for i, exp := range expected {
		if types[i] != exp {
			t.Errorf("expected type %s at index %d, got %s", exp, i, types[i])
		}
	}
}

func TestRegistry_WildcardMatching(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockNormaliser{name: "text-wildcard", types: []string{"text/*"}, priority: 20})
	r.Register(&mockNormaliser{name: "html", types: []string{"text/html"}, priority: 50})

	n := r.Get("text/html")
	if n == nil {
		t.Fatal("expected normaliser for text/html")
	}
	if got := normaliseWith(t, n, "test"); got != "test-html" {
		t.Errorf("expected html normaliser, got %s", got)
	}

	n = r.Get("text/csv")
	if n == nil {
		t.Fatal("expected normaliser for text/csv")
	}
	if got := normaliseWith(t, n, "test"); got != "test-text-wildcard" {
		t.Errorf("expected text-wildcard normaliser, got %s", got)
	}
}

func TestMatchesMIMEType(t *testing.T) {
	tests := []struct {
		name      string
		supported []string
		mimeType  string
		expected  bool
	}{
		{"exact match", []string{"text/plain"}, "text/plain", true},
		{"case insensitive", []string{"TEXT/PLAIN"}, "text/plain", true},
		{"with charset", []string{"text/html"}, "text/html; charset=utf-8", true},
		{"wildcard subtype", []string{"text/*"}, "text/plain", true},
		{"wildcard no match", []string{"text/*"}, "application/pdf", false},
		{"universal wildcard", []string{"*/*"}, "anything/here", true},
		{"no match", []string{"application/pdf"}, "text/html", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesMIMEType(tt.supported, tt.mimeType); got != tt.expected {
				t.Errorf("matchesMIMEType(%v, %s) = %v, want %v", tt.supported, tt.mimeType, got, tt.expected)
			}
		})
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		mimeType string
		want     any
	}{
		{"text/html", &HTMLNormaliser{}},
		{"application/xhtml+xml", &HTMLNormaliser{}},
		{"application/pdf", &PDFNormaliser{}},
		{"text/plain", &PlaintextNormaliser{}},
		{"application/vnd.ms-powerpoint", &PlaintextNormaliser{}},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			n := r.Get(tt.mimeType)
			if n == nil {
				t.Fatalf("expected normaliser for %s", tt.mimeType)
			}
			if got, want := typeName(n), typeName(tt.want); got != want {
				t.Errorf("Get(%s) = %s, want %s", tt.mimeType, got, want)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *HTMLNormaliser:
		return "html"
	case *PDFNormaliser:
		return "pdf"
	case *PlaintextNormaliser:
		return "plaintext"
	default:
		return "other"
	}
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		path        string
		body        string
		want        string
	}{
		{"pdf content type", "application/pdf", "/pluginfile.php/1/x", "", "application/pdf"},
		{"content type with params", "text/html; charset=utf-8", "/intro.html", "<p>x</p>", "text/html"},
		{"octet stream uses extension", "application/octet-stream", "/webservice/pluginfile.php/3/Slides.PDF", "", "application/pdf"},
		{"magic bytes win", "text/html", "/f", "%PDF-1.7\n...", "application/pdf"},
		{"extension without content type", "", "/mod_page/intro.html", "", "text/html"},
		{"sniffed html", "", "/f", "<!DOCTYPE html><html></html>", "text/html"},
		{"sniffed text", "", "/f", "Hallo Welt", "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectType(tt.contentType, tt.path, []byte(tt.body)); got != tt.want {
				t.Errorf("DetectType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.NormaliserRegistry = (*Registry)(nil)
	var _ driven.Normaliser = (*HTMLNormaliser)(nil)
	var _ driven.Normaliser = (*PDFNormaliser)(nil)
	var _ driven.Normaliser = (*PlaintextNormaliser)(nil)
}
