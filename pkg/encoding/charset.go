// Package encoding transcodes model text written in legacy charsets and
// normalizes asset paths found in it.
package encoding

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	textenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned for charset names htmlindex does not know.
var ErrUnknownCharset = errors.New("unknown charset")

// Lookup resolves a charset name such as "euc-kr", "shift_jis" or
// "windows-1252". An empty name or any UTF-8 alias returns nil, meaning the
// text needs no transcoding.
func Lookup(name string) (textenc.Encoding, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	if canonical, _ := htmlindex.Name(enc); canonical == "utf-8" {
		return nil, nil
	}
	return enc, nil
}

// ErrUnencodable is returned for text that charset cannot represent.
var ErrUnencodable = errors.New("text not representable in charset")

// Encodable reports whether s survives encoding to charset.
func Encodable(charset, s string) error {
	enc, err := Lookup(charset)
	if err != nil || enc == nil {
		return err
	}
	if _, err := enc.NewEncoder().String(s); err != nil {
		return fmt.Errorf("%w: %q in %s", ErrUnencodable, s, charset)
	}
	return nil
}

// NewReader wraps r so that it yields UTF-8 decoded from charset.
func NewReader(charset string, r io.Reader) (io.Reader, error) {
	enc, err := Lookup(charset)
	if err != nil || enc == nil {
		return r, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// NewWriter wraps w so that UTF-8 written to it is encoded to charset.
// Close the returned writer to flush any buffered bytes.
func NewWriter(charset string, w io.Writer) (io.WriteCloser, error) {
	enc, err := Lookup(charset)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nopCloser{w}, nil
	}
	return transform.NewWriter(w, enc.NewEncoder()), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NormalizeAssetPath converts Windows separators to forward slashes and
// cleans the result. Case is preserved since most file systems are case
// sensitive.
func NormalizeAssetPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return p
	}
	return path.Clean(p)
}
