package merge

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/objatlas/internal/assets"
	"github.com/Faultbox/objatlas/internal/config"
	"github.com/Faultbox/objatlas/internal/logger"
	"github.com/Faultbox/objatlas/pkg/atlas"
	"github.com/Faultbox/objatlas/pkg/encoding"
	"github.com/Faultbox/objatlas/pkg/formats"
	"github.com/Faultbox/objatlas/pkg/math"
	"github.com/Faultbox/objatlas/pkg/texture"
)

// Pipeline runs one merge as configured.
type Pipeline struct {
	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
}

// New creates a pipeline reading and writing the process's standard streams
// when the config asks for them.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg, stdin: os.Stdin, stdout: os.Stdout}
}

// SetIO replaces the streams used for "-" input and output.
func (p *Pipeline) SetIO(stdin io.Reader, stdout io.Writer) {
	p.stdin = stdin
	p.stdout = stdout
}

// Plan is a validated and packed merge that has not written anything yet.
type Plan struct {
	OBJ       *formats.OBJ
	Registry  *Registry
	Ownership *Ownership
	Layout    *atlas.Layout
	Packed    []*Material // Materials in the atlas, in Layout.Rects order
	Loader    *assets.Loader
}

// Plan parses the model and its libraries, resolves texture ownership, loads
// the images in use and sizes the atlas.
func (p *Pipeline) Plan() (*Plan, error) {
	obj, baseDir, err := p.readOBJ()
	if err != nil {
		return nil, err
	}
	logger.Info("model parsed",
		zap.Int("lines", len(obj.Lines)),
		zap.Int("texcoords", len(obj.TexCoords)),
		zap.Int("faces", len(obj.Faces)))

	loader := assets.NewLoader(p.cfg.Input.SearchPaths...)
	loader.AddRoot(baseDir)

	reg := NewRegistry()
	for _, lib := range obj.MaterialLibs {
		path := resolveRelative(baseDir, lib)
		mtl, err := formats.ParseMTLFile(path, p.cfg.Input.Encoding)
		if err != nil {
			return nil, err
		}
		if err := reg.AddLibrary(path, mtl); err != nil {
			return nil, err
		}
		loader.AddRoot(filepath.Dir(path))
		logger.Debug("material library loaded", zap.String("path", path), zap.Int("materials", len(mtl.Materials)))
	}

	own, err := Associate(obj, reg)
	if err != nil {
		return nil, err
	}
	if n := own.Unowned(); n > 0 {
		logger.Debug("texture vertices without owner kept as is", zap.Int("count", n))
	}

	plan := &Plan{OBJ: obj, Registry: reg, Ownership: own, Loader: loader}

	var items []atlas.Item
	used := make(map[*Material]bool)
	for _, m := range own.Used() {
		used[m] = true
		if !m.HasImage() {
			logger.Warn("material has no diffuse map, texture coordinates unchanged", zap.String("material", m.Name))
			continue
		}
		img, path, err := loader.Image(m.ImageRef)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", m.Name, err)
		}
		m.Image, m.ImagePath = img, path
		plan.Packed = append(plan.Packed, m)
		items = append(items, atlas.Item{Name: m.Name, Size: m.Size()})
	}
	for _, m := range reg.All() {
		if !used[m] {
			logger.Debug("material owns no texture vertex, not packed", zap.String("material", m.Name))
		}
	}

	order, err := atlas.ParseOrder(p.cfg.Atlas.Order)
	if err != nil {
		return nil, err
	}
	layout, err := atlas.Sizer{MaxSize: p.cfg.Atlas.MaxSize, Order: order}.Pack(items)
	if err != nil {
		return nil, err
	}
	plan.Layout = layout

	for i, m := range plan.Packed {
		if err := m.Place(layout.Rects[i], layout.Transform(i)); err != nil {
			return nil, err
		}
		logger.Debug("material placed",
			zap.String("material", m.Name),
			zap.Stringer("rect", m.Rect),
			zap.Stringer("transform", m.Transform))
	}

	logger.Info("atlas sized",
		zap.Int("size", layout.Size),
		zap.Int("images", len(items)),
		zap.Int("attempts", layout.Attempts),
		zap.Int("free_regions", len(layout.Free)),
		zap.Float64("utilization", layout.Utilization()))

	hits, misses := loader.Stats()
	logger.Debug("images loaded",
		zap.Strings("roots", loader.Roots()),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses))

	return plan, nil
}

// Result describes the files a Run produced.
type Result struct {
	Plan        *Plan
	Atlas       *image.RGBA
	TexturePath string
	MTLPath     string
	OBJPath     string // "-" when written to stdout
}

// Run plans the merge and writes the atlas, material library and model.
// Nothing is written unless every output rendered successfully.
func (p *Pipeline) Run() (*Result, error) {
	plan, err := p.Plan()
	if err != nil {
		return nil, err
	}

	uvs, err := Remap(plan.OBJ, plan.Ownership)
	if err != nil {
		return nil, err
	}

	placements := make([]atlas.Placement, len(plan.Packed))
	for i, m := range plan.Packed {
		placements[i] = atlas.Placement{Name: m.Name, Image: m.Image, Rect: m.Rect}
	}
	img, err := atlas.Composite(plan.Layout.Size, placements)
	plan.Loader.Close()
	if err != nil {
		return nil, err
	}
	if len(plan.Packed) == 0 {
		logger.Warn("no textured material in use, atlas is empty")
	}

	res := &Result{
		Plan:        plan,
		Atlas:       img,
		TexturePath: p.cfg.TexturePath(),
		MTLPath:     p.cfg.MTLLibPath(),
		OBJPath:     p.cfg.OBJPath(),
	}
	if err := p.write(res, uvs); err != nil {
		return nil, err
	}

	logger.Info("merge complete",
		zap.String("texture", res.TexturePath),
		zap.String("mtllib", res.MTLPath),
		zap.String("obj", res.OBJPath))
	return res, nil
}

func (p *Pipeline) write(res *Result, uvs []math.Vec2) error {
	out := p.cfg.Output
	if err := os.MkdirAll(out.Directory, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	eol := formats.CRLF
	if strings.EqualFold(out.LineEnding, "lf") {
		eol = formats.LF
	}
	rw := formats.OBJRewrite{
		MaterialLib: out.MTLLib,
		Material:    out.Material,
		TexCoords:   uvs,
		LineEnding:  eol,
	}
	writeOBJ := func(w io.Writer) error {
		return p.writeText(w, func(w io.Writer) error {
			return formats.WriteOBJ(w, res.Plan.OBJ, rw)
		})
	}

	var st staging
	err := st.write(res.TexturePath, func(w io.Writer) error {
		return texture.Encode(w, res.Atlas, res.TexturePath, texture.EncodeOptions{Quality: out.JPEGQuality})
	})
	if err == nil {
		err = st.write(res.MTLPath, func(w io.Writer) error {
			return p.writeText(w, func(w io.Writer) error {
				return formats.WriteMTL(w, formats.MTLOutput{
					Name:       out.Material,
					DiffuseMap: out.Texture,
					LineEnding: eol,
				})
			})
		})
	}
	if err == nil {
		if res.OBJPath == config.StdIO {
			err = p.writeStdout(writeOBJ)
		} else {
			// Staged last so it is renamed last: the model never points at
			// a library that was not replaced.
			err = st.write(res.OBJPath, writeOBJ)
		}
	}
	if err != nil {
		return multierr.Append(err, st.abort())
	}
	return st.commit()
}

// writeStdout renders fn fully before copying it to stdout, so an encoding
// failure produces no partial output.
func (p *Pipeline) writeStdout(fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Errorf("writing OBJ to stdout: %w", err)
	}
	if _, err := buf.WriteTo(p.stdout); err != nil {
		return fmt.Errorf("writing OBJ to stdout: %w", err)
	}
	return nil
}

// writeText runs fn against w, transcoded to the configured charset.
func (p *Pipeline) writeText(w io.Writer, fn func(io.Writer) error) error {
	cw, err := encoding.NewWriter(p.cfg.Input.Encoding, w)
	if err != nil {
		return err
	}
	if err := fn(cw); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

// readOBJ parses the input model and returns the directory its relative
// references resolve against.
func (p *Pipeline) readOBJ() (*formats.OBJ, string, error) {
	if !p.cfg.ReadsStdin() {
		obj, err := formats.ParseOBJFile(p.cfg.Input.Path, p.cfg.Input.Encoding)
		if err != nil {
			return nil, "", err
		}
		return obj, filepath.Dir(p.cfg.Input.Path), nil
	}

	r, err := encoding.NewReader(p.cfg.Input.Encoding, p.stdin)
	if err != nil {
		return nil, "", err
	}
	obj, err := formats.ParseOBJ(r)
	if err != nil {
		return nil, "", fmt.Errorf("<stdin>: %w", err)
	}
	return obj, ".", nil
}

// resolveRelative joins a reference from a model file onto dir unless it is
// already absolute.
func resolveRelative(dir, ref string) string {
	local := filepath.FromSlash(encoding.NormalizeAssetPath(ref))
	if filepath.IsAbs(local) {
		return local
	}
	return filepath.Join(dir, local)
}
