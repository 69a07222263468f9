package normalisers

import "testing"

func TestPDFToText_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"truncated", "%PDF-1.4 truncated"},
		{"not a pdf", "<html></html>"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PDFToText([]byte(tt.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPDFNormaliser_Types(t *testing.T) {
	n := &PDFNormaliser{}
	if types := n.SupportedTypes(); len(types) != 1 || types[0] != "application/pdf" {
		t.Errorf("unexpected types %v", types)
	}
}
