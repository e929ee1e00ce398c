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
)

// MTL format errors.
var (
	ErrDuplicateMaterial   = errors.New("duplicate material name")
	ErrMapWithoutMaterial  = errors.New("map_Kd before any newmtl")
	ErrDuplicateDiffuseMap = errors.New("material already has a diffuse map")
)

// MTLMaterial is one "newmtl" block of a material library.
type MTLMaterial struct {
	Name       string
	DiffuseMap string // map_Kd path as written, "" if absent
	Line       int    // Line of the newmtl statement
}

// MTL represents a parsed material library. Materials keep file order.
type MTL struct {
	Materials []MTLMaterial
}

// ParseMTL parses a material library. Only newmtl and map_Kd are
// interpreted; every other statement is ignored.
func ParseMTL(r io.Reader) (*MTL, error) {
	mtl := &MTL{}
	seen := make(map[string]bool)
	current := -1

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)

	num := 0
	for scanner.Scan() {
		num++
		fields, _ := splitOBJLine(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: %w: newmtl expects 1 argument, got %d", num, ErrMalformedDirective, len(fields)-1)
			}
			name := fields[1]
			if seen[name] {
				return nil, fmt.Errorf("line %d: %w: %q", num, ErrDuplicateMaterial, name)
			}
			seen[name] = true
			mtl.Materials = append(mtl.Materials, MTLMaterial{Name: name, Line: num})
			current = len(mtl.Materials) - 1
		case "map_Kd":
			if current < 0 {
				return nil, fmt.Errorf("line %d: %w", num, ErrMapWithoutMaterial)
			}
			m := &mtl.Materials[current]
			if m.DiffuseMap != "" {
				return nil, fmt.Errorf("line %d: %w: %q", num, ErrDuplicateDiffuseMap, m.Name)
			}
			path, err := parseMapPath(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", num, err)
			}
			m.DiffuseMap = path
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MTL: %w", err)
	}

	return mtl, nil
}

// ParseMTLFile parses a material library from disk, decoding it from charset
// like ParseOBJFile.
func ParseMTLFile(path, charset string) (*MTL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening MTL file: %w", err)
	}
	defer f.Close()

	r, err := encoding.NewReader(charset, f)
	if err != nil {
		return nil, err
	}
	mtl, err := ParseMTL(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mtl, nil
}

// mapOptionArgs is the number of arguments each texture map option takes.
// Options listed with 3 take between one and three numbers.
var mapOptionArgs = map[string]int{
	"-blendu":  1,
	"-blendv":  1,
	"-boost":   1,
	"-bm":      1,
	"-cc":      1,
	"-clamp":   1,
	"-imfchan": 1,
	"-texres":  1,
	"-type":    1,
	"-mm":      2,
	"-o":       3,
	"-s":       3,
	"-t":       3,
}

// parseMapPath skips texture map options and returns the file name, which
// may contain spaces.
func parseMapPath(args []string) (string, error) {
	i := 0
	for i < len(args) && strings.HasPrefix(args[i], "-") {
		n, ok := mapOptionArgs[args[i]]
		if !ok {
			return "", fmt.Errorf("%w: unknown map option %q", ErrMalformedDirective, args[i])
		}
		i++
		if n == 3 {
			// Up to three numeric components
			for k := 0; k < 3 && i < len(args) && isNumber(args[i]); k++ {
				i++
			}
			continue
		}
		if i+n > len(args) {
			return "", fmt.Errorf("%w: map option %q needs %d arguments", ErrMalformedDirective, args[i-1], n)
		}
		i += n
	}
	if i >= len(args) {
		return "", fmt.Errorf("%w: map_Kd without file name", ErrMalformedDirective)
	}
	return strings.Join(args[i:], " "), nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
