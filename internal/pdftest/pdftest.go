// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftest builds small, valid PDF files for tests. Each page carries
// its text in a single Helvetica text object so extractors can read it back.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
)

// Info holds optional Info dictionary entries for the generated file.
type Info struct {
	Title        string
	Author       string
	CreationDate string
}

// Build returns the bytes of a PDF with one page per element of pages. Lines
// within a page are separated by "\n". An empty string yields a page with no
// text at all.
func Build(pages []string, info *Info) []byte {
	var objs []string

	// 1: catalog, 2: pages tree, 3: font; then a page and a content stream per page.
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		content := contentStream(text)
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i))
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	infoRef := ""
	if info != nil {
		var d strings.Builder
		d.WriteString("<<")
		if info.Title != "" {
			fmt.Fprintf(&d, " /Title (%s)", escape(info.Title))
		}
		if info.Author != "" {
			fmt.Fprintf(&d, " /Author (%s)", escape(info.Author))
		}
		if info.CreationDate != "" {
			fmt.Fprintf(&d, " /CreationDate (%s)", escape(info.CreationDate))
		}
		d.WriteString(" >>")
		objs = append(objs, d.String())
		infoRef = fmt.Sprintf(" /Info %d 0 R", len(objs))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\n", len(objs)+1, infoRef)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

// Write builds a PDF and writes it to path, failing the test on error.
func Write(t testing.TB, path string, pages []string, info *Info) {
	t.Helper()
	if err := os.WriteFile(path, Build(pages, info), 0o644); err != nil {
		t.Fatalf("writing test PDF %s: %v", path, err)
	}
}

func contentStream(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("BT /F1 12 Tf 72 720 Td")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString(" 0 -16 Td")
		}
		fmt.Fprintf(&b, " (%s) Tj", escape(line))
	}
	b.WriteString(" ET")
	return b.String()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
