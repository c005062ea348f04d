// Package loader reads knowledge-base files from disk into plain-text
// documents for chunking. One unreadable file never fails a batch; it
// is skipped with a warning and ingestion continues.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"hyperchat/internal/extract"
	"hyperchat/internal/models"
)

// LoadDir walks root recursively and loads every supported file.
func LoadDir(root string) ([]models.Document, error) {
	var docs []models.Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		doc, err := LoadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping document")
			return nil
		}
		if strings.TrimSpace(doc.Text) == "" {
			log.Warn().Str("path", path).Msg("Skipping empty document")
			return nil
		}
		docs = append(docs, doc)
		log.Info().Str("path", path).Msg("Loaded document")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// LoadFile parses a single file by extension.
func LoadFile(path string) (models.Document, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = loadPDF(path)
	case ".docx":
		text, err = loadDOCX(path)
	case ".xlsx":
		text, err = loadXLSX(path)
	case ".ods":
		text, err = loadODS(path)
	case ".md", ".markdown":
		text, err = loadMarkdown(path)
	case ".txt", ".log", ".csv", ".html", ".htm":
		text, err = loadText(path)
	default:
		return models.Document{}, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
	if err != nil {
		return models.Document{}, err
	}
	return models.Document{
		Text:       text,
		SourcePath: path,
		SourceName: filepath.Base(path),
	}, nil
}

func loadPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		pageText, err := reader.Page(i).GetPlainText(nil)
		if err != nil {
			return "", err
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}
	return text.String(), nil
}

func loadDOCX(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	var paragraphs []string
	for _, p := range strings.Split(content, "</w:p>") {
		if text := strings.TrimSpace(extract.ParagraphText(p)); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

func loadXLSX(path string) (string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, sheet := range f.Sheets {
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
	}
	return text.String(), nil
}

func loadODS(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var text strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
	}
	return text.String(), nil
}

// loadMarkdown walks the goldmark AST and keeps only the text runs,
// so markup never ends up in the index.
func loadMarkdown(path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	root := goldmark.New().Parser().Parse(gmtext.NewReader(source))
	var text strings.Builder
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				text.Write(t.Segment.Value(source))
				if t.SoftLineBreak() || t.HardLineBreak() {
					text.WriteString("\n")
				}
			}
		} else if n.Type() == ast.TypeBlock {
			text.WriteString("\n")
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return text.String(), nil
}

func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
