// Package export turns a list of selected paths into the text block handed to
// the user, and sends it to stdout or the clipboard.
package export

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"unicode"
	"unicode/utf8"

	"github.com/hayeah/aicontent/internal/pathindex"
)

// BinaryPlaceholder replaces the body of a file that looks binary.
const BinaryPlaceholder = "[binary file omitted]"

// Exporter reads selected files from Root and formats them.
type Exporter struct {
	Root      string
	Languages pathindex.Languages
	Logger    *slog.Logger
	// Observe, when set, is called with the formatted block of every file
	// written. The metrics aggregator hooks in here.
	Observe func(p pathindex.Path, block []byte)
}

// NewExporter returns an Exporter for root.
func NewExporter(root string, langs pathindex.Languages, logger *slog.Logger) *Exporter {
	return &Exporter{Root: root, Languages: langs, Logger: logger}
}

// Generate writes one fenced block per path, in the given order. Files that
// cannot be read are skipped. It returns how many files were written.
func (e *Exporter) Generate(w io.Writer, paths []pathindex.Path) (int, error) {
	bw := bufio.NewWriter(w)
	written := 0
	var block bytes.Buffer
	for _, p := range paths {
		content, err := os.ReadFile(filepath.Join(e.Root, p.OS()))
		if err != nil {
			e.Logger.Debug("skipping unreadable file", "path", p, "err", err)
			continue
		}
		if isBinaryFile(content) {
			content = []byte(BinaryPlaceholder)
		}

		block.Reset()
		writeBlock(&block, p, e.Languages.Lookup(string(p)), content)
		if _, err := bw.Write(block.Bytes()); err != nil {
			return written, fmt.Errorf("failed to write export: %w", err)
		}
		if e.Observe != nil {
			e.Observe(p, bytes.Clone(block.Bytes()))
		}
		written++
	}
	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("failed to write export: %w", err)
	}
	return written, nil
}

// Text is Generate into a string.
func (e *Exporter) Text(paths []pathindex.Path) (string, error) {
	var buf bytes.Buffer
	if _, err := e.Generate(&buf, paths); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writeBlock formats:
//
//	===== Start: ./a/x.go =====
//	```go
//	<content>
//	```
//	===== End: ./a/x.go =====
//	<blank line>
func writeBlock(buf *bytes.Buffer, p pathindex.Path, lang string, content []byte) {
	fmt.Fprintf(buf, "===== Start: ./%s =====\n", p)
	fmt.Fprintf(buf, "```%s\n", lang)
	buf.Write(content)
	if len(content) > 0 && content[len(content)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString("```\n")
	fmt.Fprintf(buf, "===== End: ./%s =====\n\n", p)
}

// TotalBytes sums the on-disk sizes of paths. Files are stat'ed on every call;
// files that cannot be stat'ed count as zero.
func TotalBytes(root string, paths []pathindex.Path) int64 {
	var total int64
	for _, p := range paths {
		info, err := os.Stat(filepath.Join(root, p.OS()))
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
	}
	return total
}

// isBinaryFile checks if content is likely binary by sampling the first 100 runes
// and checking if they are printable Unicode characters.
func isBinaryFile(content []byte) bool {
	const sampleSize = 100
	if bytes.IndexByte(content[:min(len(content), 8000)], 0) >= 0 {
		return true
	}

	var nonPrintable, totalRunes int
	for i := 0; i < len(content) && totalRunes < sampleSize; {
		r, size := utf8.DecodeRune(content[i:])
		if r == utf8.RuneError || (!unicode.IsPrint(r) && !unicode.IsSpace(r)) {
			nonPrintable++
		}
		i += size
		totalRunes++
	}

	if totalRunes == 0 {
		return false
	}
	return float64(nonPrintable)/float64(totalRunes) > 0.1
}
