package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/ronaldwopara/AI-Post-Sales-Copilot/pkg/logger"
)

// ParseDocument decodes a contract document into plain text based on
// its file extension. Unreadable or unsupported files yield an empty
// string rather than an error so the caller can mark the contract
// failed and move on.
func ParseDocument(ctx context.Context, content []byte, filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return parsePDF(ctx, content)
	case ".docx":
		return parseDOCX(ctx, content)
	case ".xlsx", ".xls":
		return parseExcel(ctx, content)
	case ".txt", ".md":
		return string(content)
	default:
		logger.Warn(ctx, "Unsupported document type", "filename", filename)
		return ""
	}
}

func parsePDF(ctx context.Context, content []byte) (text string) {
	// The pdf library panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			logger.Warn(ctx, "PDF parsing panicked", "error", r)
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		logger.Warn(ctx, "Failed to open PDF", "error", err)
		return ""
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		logger.Warn(ctx, "Failed to extract PDF text", "error", err)
		return ""
	}
	data, err := io.ReadAll(plain)
	if err != nil {
		logger.Warn(ctx, "Failed to read PDF text", "error", err)
		return ""
	}
	return string(data)
}

// parseDOCX pulls the text runs out of word/document.xml, emitting a
// newline at each paragraph boundary.
func parseDOCX(ctx context.Context, content []byte) string {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		logger.Warn(ctx, "Failed to open DOCX archive", "error", err)
		return ""
	}

	var document *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		logger.Warn(ctx, "DOCX archive has no document.xml")
		return ""
	}

	rc, err := document.Open()
	if err != nil {
		logger.Warn(ctx, "Failed to read DOCX document", "error", err)
		return ""
	}
	defer rc.Close()

	var (
		sb      strings.Builder
		inText  bool
		decoder = xml.NewDecoder(rc)
	)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn(ctx, "Failed to decode DOCX XML", "error", err)
			return ""
		}
		switch el := token.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(el)
			}
		}
	}
	return sb.String()
}

// parseExcel flattens every sheet into tab-separated rows.
func parseExcel(ctx context.Context, content []byte) string {
	workbook, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		logger.Warn(ctx, "Failed to open spreadsheet", "error", err)
		return ""
	}
	defer workbook.Close()

	var sb strings.Builder
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			logger.Warn(ctx, "Failed to read sheet", "sheet", sheet, "error", err)
			continue
		}
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
