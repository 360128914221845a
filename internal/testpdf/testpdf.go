// Package testpdf builds small well-formed PDF files for tests. The
// generated files carry a correct xref table so strict parsers accept them
// without repair.
package testpdf

import (
	"bytes"
	"fmt"
	"strings"
)

// Minimal returns a PDF with one page per entry of pageTexts, each page
// showing its text in Helvetica. With no arguments it returns a single
// "Hello, World!" page.
func Minimal(pageTexts ...string) []byte {
	if len(pageTexts) == 0 {
		pageTexts = []string{"Hello, World!"}
	}
	n := len(pageTexts)

	// 1 catalog, 2 page tree, 3 font, then page and contents pairs
	kids := make([]string, n)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	for i, text := range pageTexts {
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			contentStream(text),
		)
	}
	return assemble(objs)
}

// Outlined returns a PDF with one page per title and a flat document
// outline whose entries point at those pages in order.
func Outlined(titles ...string) []byte {
	if len(titles) == 0 {
		titles = []string{"Chapter 1"}
	}
	n := len(titles)
	root := 4 + 2*n // outline root object number

	kids := make([]string, n)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs := []string{
		fmt.Sprintf("<< /Type /Catalog /Pages 2 0 R /Outlines %d 0 R >>", root),
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	for i, title := range titles {
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			contentStream(title),
		)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Outlines /First %d 0 R /Last %d 0 R /Count %d >>", root+1, root+n, n))
	for i, title := range titles {
		item := fmt.Sprintf("<< /Title (%s) /Parent %d 0 R /Dest [%d 0 R /Fit]", escape(title), root, 4+2*i)
		if i > 0 {
			item += fmt.Sprintf(" /Prev %d 0 R", root+i)
		}
		if i < n-1 {
			item += fmt.Sprintf(" /Next %d 0 R", root+i+2)
		}
		objs = append(objs, item+" >>")
	}
	return assemble(objs)
}

// Corrupt returns bytes that no PDF reader accepts.
func Corrupt() []byte {
	return []byte("this is not a portable document\nno header, no xref, no trailer\n")
}

func contentStream(text string) string {
	stream := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", escape(text))
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	s = strings.ReplaceAll(s, ")", `\)`)
	return s
}

func assemble(objs []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs)+1)
	for i, obj := range objs {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objs); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}
