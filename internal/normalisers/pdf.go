package normalisers

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFNormaliser extracts the text layer of PDF attachments.
type PDFNormaliser struct{}

func (n *PDFNormaliser) Normalise(data []byte) (string, error) {
	return PDFToText(data)
}

func (n *PDFNormaliser) SupportedTypes() []string {
	return []string{"application/pdf"}
}

func (n *PDFNormaliser) Priority() int {
	return 50
}

// PDFToText extracts the plain text of a PDF document with collapsed whitespace.
// The PDF reader panics on some malformed input, which is reported as an error.
func PDFToText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract plain text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return collapseSpace(buf.String()), nil
}
