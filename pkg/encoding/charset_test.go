package encoding

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		wantNil bool
		wantErr error
	}{
		{"", true, nil},
		{"utf-8", true, nil},
		{"UTF8", true, nil},
		{"euc-kr", false, nil},
		{"windows-1252", false, nil},
		{"no-such-charset", true, ErrUnknownCharset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Lookup(tt.name)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if (enc == nil) != tt.wantNil {
				t.Errorf("expected nil encoding = %v, got %v", tt.wantNil, enc)
			}
		})
	}
}

func TestReaderWriterRoundTrip(t *testing.T) {
	text := "newmtl 프론테라\nmap_Kd 텍스쳐.bmp\n"

	var encoded bytes.Buffer
	w, err := NewWriter("euc-kr", &encoded)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if _, err := io.WriteString(w, text); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if bytes.Equal(encoded.Bytes(), []byte(text)) {
		t.Fatal("EUC-KR output should differ from UTF-8 input")
	}

	r, err := NewReader("euc-kr", &encoded)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(decoded) != text {
		t.Errorf("decoded %q, want %q", decoded, text)
	}
}

func TestNewReaderPassthrough(t *testing.T) {
	src := strings.NewReader("vt 0 1\n")
	r, err := NewReader("", src)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if r != io.Reader(src) {
		t.Error("empty charset should return the reader unchanged")
	}
}

func TestEncodable(t *testing.T) {
	tests := []struct {
		charset string
		text    string
		wantErr error
	}{
		{"", "合.mtl", nil},
		{"utf-8", "合.mtl", nil},
		{"windows-1252", "café.mtl", nil},
		{"windows-1252", "合.mtl", ErrUnencodable},
		{"euc-kr", "프론테라", nil},
		{"no-such-charset", "mtl.mtl", ErrUnknownCharset},
	}

	for _, tt := range tests {
		t.Run(tt.charset+"/"+tt.text, func(t *testing.T) {
			if err := Encodable(tt.charset, tt.text); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNormalizeAssetPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`textures\Wall.png`, "textures/Wall.png"},
		{"./a/../b.jpg", "b.jpg"},
		{"", ""},
		{"/abs/tex.tga", "/abs/tex.tga"},
	}
	for _, tt := range tests {
		if got := NormalizeAssetPath(tt.in); got != tt.want {
			t.Errorf("NormalizeAssetPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
