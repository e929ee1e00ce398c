// Package formats provides parsers and writers for Wavefront OBJ models and
// MTL material libraries.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/objatlas/pkg/encoding"
	"github.com/Faultbox/objatlas/pkg/math"
)

// Parse errors shared by the OBJ and MTL parsers.
var (
	ErrMalformedDirective = errors.New("malformed directive")
	ErrIndexOutOfRange    = errors.New("index out of range")
)

// maxLineLength bounds a single OBJ/MTL line.
const maxLineLength = 1 << 20

// OBJDirective classifies a line of an OBJ file.
type OBJDirective int

// Directive kinds. Everything the merge does not need is OBJOther.
const (
	OBJOther       OBJDirective = iota // Passed through untouched
	OBJBlank                           // Empty or whitespace only
	OBJComment                         // Starts with '#'
	OBJMaterialLib                     // mtllib
	OBJUseMaterial                     // usemtl
	OBJVertex                          // v
	OBJTexCoord                        // vt
	OBJNormal                          // vn
	OBJFace                            // f
)

// String returns the OBJ keyword for the directive.
func (d OBJDirective) String() string {
	switch d {
	case OBJBlank:
		return "blank"
	case OBJComment:
		return "#"
	case OBJMaterialLib:
		return "mtllib"
	case OBJUseMaterial:
		return "usemtl"
	case OBJVertex:
		return "v"
	case OBJTexCoord:
		return "vt"
	case OBJNormal:
		return "vn"
	case OBJFace:
		return "f"
	default:
		return "other"
	}
}

// OBJLine is one source line, kept so the model can be re-emitted in order.
type OBJLine struct {
	Num    int // 1-based line number
	Kind   OBJDirective
	Text   string // Line without its terminator
	Fields []string
}

// TexCoord is a parsed "vt" directive.
type TexCoord struct {
	UV   math.Vec2
	W    float64
	HasW bool
	Line int // Index into OBJ.Lines
}

// FaceVertex holds the resolved 1-based indices of one face corner.
// Zero means the index is absent.
type FaceVertex struct {
	V, VT, VN int
}

// Face is a parsed "f" directive together with the material that was active
// when it was read ("" if no usemtl preceded it).
type Face struct {
	Line     int // 1-based line number
	Material string
	Vertices []FaceVertex
}

// OBJ represents a parsed Wavefront OBJ file.
type OBJ struct {
	Lines        []OBJLine
	MaterialLibs []string
	TexCoords    []TexCoord
	Faces        []Face
	VertexCount  int
	NormalCount  int
}

// HasTexCoords reports whether any face references a texture vertex.
func (o *OBJ) HasTexCoords() bool {
	for _, f := range o.Faces {
		for _, fv := range f.Vertices {
			if fv.VT != 0 {
				return true
			}
		}
	}
	return false
}

// ParseOBJ parses an OBJ model.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	obj := &OBJ{}
	material := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)

	num := 0
	for scanner.Scan() {
		num++
		line := OBJLine{Num: num, Text: scanner.Text()}
		line.Fields, line.Kind = splitOBJLine(line.Text)

		var err error
		switch line.Kind {
		case OBJMaterialLib:
			if len(line.Fields) < 2 {
				err = fmt.Errorf("%w: mtllib needs a file name", ErrMalformedDirective)
				break
			}
			obj.MaterialLibs = append(obj.MaterialLibs, line.Fields[1:]...)
		case OBJUseMaterial:
			if len(line.Fields) != 2 {
				err = fmt.Errorf("%w: usemtl expects 1 argument, got %d", ErrMalformedDirective, len(line.Fields)-1)
				break
			}
			material = line.Fields[1]
		case OBJVertex:
			obj.VertexCount++
		case OBJNormal:
			obj.NormalCount++
		case OBJTexCoord:
			var tc TexCoord
			tc, err = parseTexCoord(line.Fields)
			tc.Line = len(obj.Lines)
			obj.TexCoords = append(obj.TexCoords, tc)
		case OBJFace:
			var face Face
			face, err = obj.parseFace(line.Fields)
			face.Line = num
			face.Material = material
			obj.Faces = append(obj.Faces, face)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", num, err)
		}

		obj.Lines = append(obj.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	if err := obj.checkIndices(); err != nil {
		return nil, err
	}
	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk. Text in a legacy charset is
// decoded to UTF-8 first; an empty charset means UTF-8.
func ParseOBJFile(path, charset string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()

	r, err := encoding.NewReader(charset, f)
	if err != nil {
		return nil, err
	}
	obj, err := ParseOBJ(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obj, nil
}

// splitOBJLine tokenizes a line, dropping trailing comments.
func splitOBJLine(text string) ([]string, OBJDirective) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, OBJBlank
	}
	if strings.HasPrefix(fields[0], "#") {
		return fields, OBJComment
	}
	for i, f := range fields {
		if strings.HasPrefix(f, "#") {
			fields = fields[:i]
			break
		}
	}

	switch fields[0] {
	case "mtllib":
		return fields, OBJMaterialLib
	case "usemtl":
		return fields, OBJUseMaterial
	case "v":
		return fields, OBJVertex
	case "vt":
		return fields, OBJTexCoord
	case "vn":
		return fields, OBJNormal
	case "f":
		return fields, OBJFace
	}
	return fields, OBJOther
}

func parseTexCoord(fields []string) (TexCoord, error) {
	if len(fields) != 3 && len(fields) != 4 {
		return TexCoord{}, fmt.Errorf("%w: vt expects 2 or 3 coordinates, got %d", ErrMalformedDirective, len(fields)-1)
	}

	var vals [3]float64
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return TexCoord{}, fmt.Errorf("%w: vt coordinate %q", ErrMalformedDirective, f)
		}
		vals[i] = v
	}

	return TexCoord{
		UV:   math.Vec2{X: vals[0], Y: vals[1]},
		W:    vals[2],
		HasW: len(fields) == 4,
	}, nil
}

// parseFace parses "f v", "f v/vt", "f v//vn" and "f v/vt/vn" corners.
// Negative indices count back from the elements read so far. Degenerate
// faces with fewer than three corners are kept as written.
func (o *OBJ) parseFace(fields []string) (Face, error) {
	if len(fields) < 2 {
		return Face{}, fmt.Errorf("%w: face without vertices", ErrMalformedDirective)
	}

	face := Face{Vertices: make([]FaceVertex, 0, len(fields)-1)}
	for _, corner := range fields[1:] {
		parts := strings.Split(corner, "/")
		if len(parts) > 3 {
			return Face{}, fmt.Errorf("%w: face vertex %q", ErrMalformedDirective, corner)
		}

		var fv FaceVertex
		var err error
		if fv.V, err = resolveIndex(parts[0], o.VertexCount, true); err != nil {
			return Face{}, fmt.Errorf("face vertex %q: %w", corner, err)
		}
		if len(parts) > 1 {
			if fv.VT, err = resolveIndex(parts[1], len(o.TexCoords), false); err != nil {
				return Face{}, fmt.Errorf("face vertex %q: %w", corner, err)
			}
		}
		if len(parts) > 2 {
			if fv.VN, err = resolveIndex(parts[2], o.NormalCount, false); err != nil {
				return Face{}, fmt.Errorf("face vertex %q: %w", corner, err)
			}
		}
		face.Vertices = append(face.Vertices, fv)
	}
	return face, nil
}

// resolveIndex turns an OBJ index into a 1-based absolute index. An empty
// optional index resolves to 0.
func resolveIndex(s string, count int, required bool) (int, error) {
	if s == "" {
		if required {
			return 0, fmt.Errorf("%w: missing position index", ErrMalformedDirective)
		}
		return 0, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrMalformedDirective, s)
	}
	switch {
	case i == 0:
		return 0, fmt.Errorf("%w: index 0", ErrIndexOutOfRange)
	case i < 0:
		abs := count + 1 + i
		if abs < 1 {
			return 0, fmt.Errorf("%w: relative index %d with %d elements", ErrIndexOutOfRange, i, count)
		}
		return abs, nil
	}
	return i, nil
}

// checkIndices validates positive indices once every element is known, since
// OBJ allows faces to reference elements defined later in the file.
func (o *OBJ) checkIndices() error {
	for _, f := range o.Faces {
		for _, fv := range f.Vertices {
			switch {
			case fv.V > o.VertexCount:
				return fmt.Errorf("line %d: %w: vertex %d of %d", f.Line, ErrIndexOutOfRange, fv.V, o.VertexCount)
			case fv.VT > len(o.TexCoords):
				return fmt.Errorf("line %d: %w: texture vertex %d of %d", f.Line, ErrIndexOutOfRange, fv.VT, len(o.TexCoords))
			case fv.VN > o.NormalCount:
				return fmt.Errorf("line %d: %w: normal %d of %d", f.Line, ErrIndexOutOfRange, fv.VN, o.NormalCount)
			}
		}
	}
	return nil
}
