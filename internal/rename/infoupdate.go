// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rename

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/ledongthuc/pdf"
)

var errNoTrailer = errors.New("no trailer found")

var (
	startxrefPattern = regexp.MustCompile(`startxref\s+(\d+)`)
	sizePattern      = regexp.MustCompile(`/Size\s+(\d+)`)
	rootPattern      = regexp.MustCompile(`/Root\s+(\d+\s+\d+\s+R)`)
	idPattern        = regexp.MustCompile(`/ID\s*\[[^\]]*\]`)
)

// trailerInfo is what an incremental update must carry over from the last
// cross-reference section.
type trailerInfo struct {
	prev   int64
	size   int
	root   string
	id     string
	stream bool
}

// appendInfoUpdate appends an incremental update to the PDF at path whose
// Info dictionary holds the current entries with overrides applied. pdfcpu
// stamps CreationDate with the write time; this puts the intended value back
// without rewriting the body again.
func appendInfoUpdate(path string, overrides map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	entries, err := infoEntries(path)
	if err != nil {
		return err
	}
	for k, v := range overrides {
		entries[k] = pdfString(v)
	}

	tr, err := lastTrailer(data)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if !bytes.HasSuffix(data, []byte("\n")) {
		buf.WriteByte('\n')
	}

	infoNum := tr.size
	infoOff := int64(len(data) + buf.Len())
	fmt.Fprintf(&buf, "%d 0 obj\n<<", infoNum)
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, " %s %s", pdfName(k), entries[k])
	}
	buf.WriteString(" >>\nendobj\n")

	xrefOff := int64(len(data) + buf.Len())
	if tr.stream {
		writeXRefStream(&buf, tr, infoNum, infoOff, xrefOff)
	} else {
		fmt.Fprintf(&buf, "xref\n%d 1\n%010d 00000 n \n", infoNum, infoOff)
		fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %s /Info %d 0 R /Prev %d", infoNum+1, tr.root, infoNum, tr.prev)
		if tr.id != "" {
			buf.WriteString(" " + tr.id)
		}
		buf.WriteString(" >>\n")
	}
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOff)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeXRefStream emits an uncompressed cross-reference stream covering the
// new Info object and the stream object itself.
func writeXRefStream(buf *bytes.Buffer, tr trailerInfo, infoNum int, infoOff, xrefOff int64) {
	var rows bytes.Buffer
	for _, off := range []int64{infoOff, xrefOff} {
		rows.WriteByte(1)
		binary.Write(&rows, binary.BigEndian, uint32(off))
		rows.Write([]byte{0, 0})
	}

	fmt.Fprintf(buf, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 2] /Index [%d 2] /Root %s /Info %d 0 R /Prev %d",
		infoNum+1, infoNum+2, infoNum, tr.root, infoNum, tr.prev)
	if tr.id != "" {
		buf.WriteString(" " + tr.id)
	}
	fmt.Fprintf(buf, " /Length %d >>\nstream\n", rows.Len())
	buf.Write(rows.Bytes())
	buf.WriteString("\nendstream\nendobj\n")
}

// lastTrailer locates the final cross-reference section and reads the
// entries an update has to repeat.
func lastTrailer(data []byte) (trailerInfo, error) {
	all := startxrefPattern.FindAllSubmatch(data, -1)
	if len(all) == 0 {
		return trailerInfo{}, errNoTrailer
	}
	prev, err := strconv.ParseInt(string(all[len(all)-1][1]), 10, 64)
	if err != nil || prev <= 0 || prev >= int64(len(data)) {
		return trailerInfo{}, fmt.Errorf("%w: bad startxref", errNoTrailer)
	}

	section := data[prev:]
	if end := bytes.LastIndex(section, []byte("startxref")); end >= 0 {
		section = section[:end]
	}
	tr := trailerInfo{prev: prev}
	if !bytes.HasPrefix(bytes.TrimLeft(section, " \t\r\n"), []byte("xref")) {
		tr.stream = true
		if end := bytes.Index(section, []byte("stream")); end >= 0 {
			section = section[:end]
		}
	} else if i := bytes.LastIndex(section, []byte("trailer")); i >= 0 {
		section = section[i:]
	}

	m := sizePattern.FindSubmatch(section)
	r := rootPattern.FindSubmatch(section)
	if m == nil || r == nil {
		return trailerInfo{}, fmt.Errorf("%w: missing /Size or /Root", errNoTrailer)
	}
	tr.size, _ = strconv.Atoi(string(m[1]))
	tr.root = string(r[1])
	tr.id = string(idPattern.Find(section))
	return tr, nil
}

// infoEntries returns the current Info dictionary rendered as PDF objects,
// keyed by entry name. Entries that are not simple values are dropped.
func infoEntries(path string) (map[string]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries := make(map[string]string)
	info := r.Trailer().Key("Info")
	for _, k := range info.Keys() {
		v := info.Key(k)
		switch v.Kind() {
		case pdf.String:
			entries[k] = pdfString(v.Text())
		case pdf.Name:
			entries[k] = pdfName(v.Name())
		case pdf.Integer:
			entries[k] = strconv.FormatInt(v.Int64(), 10)
		case pdf.Real:
			entries[k] = strconv.FormatFloat(v.Float64(), 'f', -1, 64)
		case pdf.Bool:
			entries[k] = strconv.FormatBool(v.Bool())
		}
	}
	return entries, nil
}

// pdfString renders s as a literal string, or as UTF-16BE hex with a byte
// order mark when it is not plain printable ASCII.
func pdfString(s string) string {
	ascii := true
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			ascii = false
			break
		}
	}
	if ascii {
		return "(" + strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(s) + ")"
	}

	var b strings.Builder
	b.WriteString("<FEFF")
	for _, u := range utf16.Encode([]rune(s)) {
		fmt.Fprintf(&b, "%04X", u)
	}
	b.WriteString(">")
	return b.String()
}

// pdfName renders a name object, escaping delimiters and non-printing bytes.
func pdfName(n string) string {
	var b strings.Builder
	b.WriteByte('/')
	for i := 0; i < len(n); i++ {
		c := n[i]
		if c < '!' || c > '~' || strings.IndexByte("#%()/<>[]{}", c) >= 0 {
			fmt.Fprintf(&b, "#%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
