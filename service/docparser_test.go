package service

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseDocumentPlainText(t *testing.T) {
	text := ParseDocument(context.Background(), []byte("This agreement shall renew on 01/15/2026."), "contract.txt")
	if text != "This agreement shall renew on 01/15/2026." {
		t.Errorf("Expected passthrough text, got %q", text)
	}

	text = ParseDocument(context.Background(), []byte("# Terms"), "notes.MD")
	if text != "# Terms" {
		t.Errorf("Expected markdown passthrough, got %q", text)
	}
}

func TestParseDocumentUnsupportedType(t *testing.T) {
	if text := ParseDocument(context.Background(), []byte("binary"), "contract.exe"); text != "" {
		t.Errorf("Expected empty text for unsupported type, got %q", text)
	}
	if text := ParseDocument(context.Background(), []byte("no extension"), "contract"); text != "" {
		t.Errorf("Expected empty text for missing extension, got %q", text)
	}
}

func TestParseDocumentInvalidPDF(t *testing.T) {
	if text := ParseDocument(context.Background(), []byte("not a pdf at all"), "broken.pdf"); text != "" {
		t.Errorf("Expected empty text for invalid PDF, got %q", text)
	}
}

func buildTestDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating zip entry: %v", err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatalf("writing zip entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func TestParseDocumentDOCX(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Payment terms: </w:t></w:r><w:r><w:t>net 30 days</w:t></w:r></w:p>
    <w:p><w:r><w:t>Provider shall maintain the service.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	text := ParseDocument(context.Background(), buildTestDOCX(t, docXML), "contract.docx")
	if !strings.Contains(text, "Payment terms: net 30 days") {
		t.Errorf("Expected runs in one paragraph to join, got %q", text)
	}
	if !strings.Contains(text, "net 30 days\n") {
		t.Errorf("Expected newline at paragraph boundary, got %q", text)
	}
	if !strings.Contains(text, "Provider shall maintain the service.") {
		t.Errorf("Expected second paragraph, got %q", text)
	}
}

func TestParseDocumentDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, _ := w.Create("word/other.xml")
	f.Write([]byte("<doc/>"))
	w.Close()

	if text := ParseDocument(context.Background(), buf.Bytes(), "contract.docx"); text != "" {
		t.Errorf("Expected empty text when document.xml is missing, got %q", text)
	}
}

func TestParseDocumentXLSX(t *testing.T) {
	workbook := excelize.NewFile()
	workbook.SetCellValue("Sheet1", "A1", "Contract")
	workbook.SetCellValue("Sheet1", "B1", "Value")
	workbook.SetCellValue("Sheet1", "A2", "SaaS Agreement")
	workbook.SetCellValue("Sheet1", "B2", 48000)

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}

	text := ParseDocument(context.Background(), buf.Bytes(), "contracts.xlsx")
	if !strings.Contains(text, "Contract\tValue") {
		t.Errorf("Expected tab-separated header row, got %q", text)
	}
	if !strings.Contains(text, "SaaS Agreement\t48000") {
		t.Errorf("Expected data row, got %q", text)
	}
}

func TestParseDocumentInvalidDOCX(t *testing.T) {
	if text := ParseDocument(context.Background(), []byte("not a zip"), "contract.docx"); text != "" {
		t.Errorf("Expected empty text for invalid DOCX, got %q", text)
	}
}
