package formats

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/objatlas/pkg/math"
)

// Line terminators for written files.
const (
	CRLF = "\r\n"
	LF   = "\n"
)

// OBJRewrite describes how WriteOBJ replaces material and texture data.
type OBJRewrite struct {
	MaterialLib string      // Replaces every mtllib argument
	Material    string      // Replaces every usemtl argument
	TexCoords   []math.Vec2 // One per OBJ.TexCoords entry
	LineEnding  string      // CRLF if empty
}

// WriteOBJ re-emits obj line by line. Texture vertices are replaced by
// rw.TexCoords, mtllib and usemtl point at the merged material, and every
// other line is written unchanged.
func WriteOBJ(w io.Writer, obj *OBJ, rw OBJRewrite) error {
	if len(rw.TexCoords) != len(obj.TexCoords) {
		return fmt.Errorf("rewrite has %d texture vertices, model has %d", len(rw.TexCoords), len(obj.TexCoords))
	}
	eol := rw.LineEnding
	if eol == "" {
		eol = CRLF
	}

	bw := bufio.NewWriter(w)
	vt := 0
	for _, line := range obj.Lines {
		text := line.Text
		switch line.Kind {
		case OBJMaterialLib:
			text = "mtllib " + rw.MaterialLib
		case OBJUseMaterial:
			text = "usemtl " + rw.Material
		case OBJTexCoord:
			text = formatTexCoord(rw.TexCoords[vt], obj.TexCoords[vt])
			vt++
		}
		if _, err := bw.WriteString(text); err != nil {
			return err
		}
		if _, err := bw.WriteString(eol); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// formatTexCoord builds a vt line from its fields.
func formatTexCoord(uv math.Vec2, orig TexCoord) string {
	fields := []string{"vt", formatFloat(uv.X), formatFloat(uv.Y)}
	if orig.HasW {
		fields = append(fields, formatFloat(orig.W))
	}
	return strings.Join(fields, " ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// MTLOutput describes the single material written by WriteMTL.
type MTLOutput struct {
	Name       string
	DiffuseMap string
	LineEnding string // CRLF if empty
}

// WriteMTL writes a material library holding exactly one white material
// textured with out.DiffuseMap.
func WriteMTL(w io.Writer, out MTLOutput) error {
	eol := out.LineEnding
	if eol == "" {
		eol = CRLF
	}
	lines := []string{
		"newmtl " + out.Name,
		"Ka 1 1 1",
		"Kd 1 1 1",
		"Ks 1 0 0",
		"map_Kd " + out.DiffuseMap,
	}
	_, err := io.WriteString(w, strings.Join(lines, eol)+eol)
	return err
}
