package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// xmlEncodingRe pulls the encoding label out of an XML prolog. Only the
// head of the file is inspected; a missing or utf-8 label means the bytes
// pass through untouched.
var xmlEncodingRe = regexp.MustCompile(`(?i)<\?xml[^>]*?encoding\s*=\s*["']([^"']+)["']`)

// fileContent is one mapper file held fully in memory: the decoded lines
// with their original terminators attached, plus everything needed to
// write the file back byte-faithfully in its original charset and mode.
type fileContent struct {
	lines []string
	enc   encoding.Encoding // nil means utf-8 passthrough
	mode  fs.FileMode
}

// readMapperFile reads path, decodes it according to its XML prolog and
// splits it into terminator-preserving lines. An unknown charset label is
// a read failure: rewriting bytes we cannot decode risks corrupting them.
func readMapperFile(path string) (*fileContent, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var enc encoding.Encoding
	head := raw
	if len(head) > 1024 {
		head = head[:1024]
	}
	if m := xmlEncodingRe.FindSubmatch(head); m != nil {
		label := strings.ToLower(string(m[1]))
		if label != "utf-8" && label != "utf8" {
			e, name := charset.Lookup(label)
			if e == nil {
				return nil, fmt.Errorf("unsupported charset %q", label)
			}
			if name != "utf-8" {
				enc = e
			}
		}
	}

	text := string(raw)
	if enc != nil {
		decoded, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding: %w", err)
		}
		text = string(decoded)
	}

	return &fileContent{
		lines: splitLines(text),
		enc:   enc,
		mode:  info.Mode().Perm(),
	}, nil
}

// writeMapperFile persists newLines over path: the content is re-encoded
// in the file's original charset, written to a temporary file in the same
// directory and renamed into place, so a failed write never leaves a
// half-written mapper behind. With backup set, the previous content is
// kept next to the file as path.bak first.
func writeMapperFile(path string, fc *fileContent, newLines []string, backup bool) error {
	out := []byte(strings.Join(newLines, ""))
	if fc.enc != nil {
		encoded, err := fc.enc.NewEncoder().Bytes(out)
		if err != nil {
			return fmt.Errorf("encoding: %w", err)
		}
		out = encoded
	}

	if backup {
		prev, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading for backup: %w", err)
		}
		if err := os.WriteFile(path+".bak", prev, fc.mode); err != nil {
			return fmt.Errorf("writing backup: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".colmark-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(fc.mode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// splitLines splits text after every newline, keeping the terminator (and
// any preceding carriage return) attached to its line so untouched lines
// round-trip byte for byte.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
