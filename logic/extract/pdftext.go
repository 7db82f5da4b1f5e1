package extract

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0B-\x0C\x0E-\x1F\x7F]`)
	blankRuns    = regexp.MustCompile(`[ \t]+`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

// NewPDFParser 纯文本模型用：把 PDF 转成文本再喂给模型
func NewPDFParser(ctx context.Context) (parser.Parser, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("create pdf parser failed: %w", err)
	}
	return p, nil
}

// pdfText parses the file and returns cleaned text, truncated to maxChars runes.
func pdfText(ctx context.Context, p parser.Parser, fileName string, data []byte, maxChars int) (string, error) {
	docs, err := p.Parse(ctx, bytes.NewReader(data), parser.WithURI(fileName))
	if err != nil {
		return "", fmt.Errorf("parse pdf failed: %w", err)
	}
	text := cleanDocuments(docs)
	if text == "" {
		return "", fmt.Errorf("pdf %s has no extractable text", fileName)
	}
	if r := []rune(text); len(r) > maxChars {
		text = string(r[:maxChars])
	}
	return text, nil
}

// cleanDocuments 清洗数据：去除无法处理的字符和空白页
func cleanDocuments(docs []*schema.Document) string {
	var parts []string
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		content := strings.ToValidUTF8(doc.Content, "")
		content = controlChars.ReplaceAllString(content, "")
		content = blankRuns.ReplaceAllString(content, " ")
		content = blankLines.ReplaceAllString(content, "\n\n")
		content = strings.TrimSpace(content)
		if content == "" || !utf8.ValidString(content) {
			continue
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, "\n\n")
}
