// Package layout partitions an image into regions and classifies its overall
// arrangement.
//
// The [Analyzer] overlays a fixed-resolution cell grid, merges adjacent
// cells by color similarity, assigns each merged region a structural role,
// folds in recognized text positions as anchors, and finally classifies the
// layout as grid, centered, asymmetric, or freeform.
package layout

import (
	"context"
	"image"
	"math"
	"sort"

	"github.com/kraftysprouts/pinmaker/model"
	"github.com/kraftysprouts/pinmaker/reader"
)

// Config holds the tunable parameters of the analyzer. The defaults are
// calibrated for social-media graphics around 1000px a side; the merge and
// tolerance thresholds are intentionally exposed for recalibration.
type Config struct {
	// GridRows and GridCols set the cell grid resolution.
	GridRows int
	GridCols int

	// MergeThreshold is the maximum mean-color distance (RGB Euclidean)
	// at which two adjacent cells merge into one region.
	MergeThreshold float64

	// MinRegionCells drops merged regions smaller than this many cells.
	MinRegionCells int

	// CenterTolerance is the maximum relative margin asymmetry for a
	// dominant central region to classify the layout as centered.
	CenterTolerance float64

	// GridVarianceTolerance is the maximum relative variance of region
	// sizes below which a near-uniform partition classifies as grid even
	// when it is not perfectly uniform.
	GridVarianceTolerance float64
}

// DefaultConfig returns the default analyzer configuration.
func DefaultConfig() Config {
	return Config{
		GridRows:              20,
		GridCols:              20,
		MergeThreshold:        32,
		MinRegionCells:        4,
		CenterTolerance:       0.15,
		GridVarianceTolerance: 0.25,
	}
}

// Analyzer performs layout analysis.
type Analyzer struct {
	cfg Config
}

// New creates an Analyzer with the default configuration.
func New() *Analyzer {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an Analyzer with a custom configuration.
func NewWithConfig(cfg Config) *Analyzer {
	d := DefaultConfig()
	if cfg.GridRows <= 0 {
		cfg.GridRows = d.GridRows
	}
	if cfg.GridCols <= 0 {
		cfg.GridCols = d.GridCols
	}
	if cfg.MergeThreshold <= 0 {
		cfg.MergeThreshold = d.MergeThreshold
	}
	return &Analyzer{cfg: cfg}
}

// cellStats carries the sampled statistics of one grid cell.
type cellStats struct {
	mean     model.Color
	variance float64
}

// mergedRegion is one group of cells produced by the similarity merge.
type mergedRegion struct {
	bbox     model.BBox // in source image coordinates
	cells    int
	variance float64 // mean cell variance
	role     model.RegionRole
	hasRole  bool
	hasText  bool
}

// Analyze partitions img into regions and classifies the overall layout.
// Text elements anchor region roles: a region containing a majority of a
// text element's box is promoted to a labeled role if it has none yet.
func (a *Analyzer) Analyze(ctx context.Context, img image.Image, texts []model.TextElement) (model.Layout, error) {
	if err := ctx.Err(); err != nil {
		return model.Layout{}, err
	}

	bounds := img.Bounds()
	width := float64(bounds.Dx())
	height := float64(bounds.Dy())
	if width == 0 || height == 0 {
		return model.Layout{Type: model.LayoutFreeform}, nil
	}

	cells := a.sampleCells(img)
	regions := a.mergeCells(cells, width, height)
	a.assignRoles(regions, height)
	a.anchorText(regions, texts)

	layoutType, rows, cols, confidence := a.classify(regions, width, height)

	out := model.Layout{
		Type:       layoutType,
		GridRows:   rows,
		GridCols:   cols,
		Confidence: confidence,
	}
	for _, r := range regions {
		out.Regions = append(out.Regions, model.Region{BBox: r.bbox, Role: r.role})
	}
	return out, nil
}

// sampleCells computes mean color and variance per grid cell on a bounded
// downsample of the image.
func (a *Analyzer) sampleCells(img image.Image) []cellStats {
	sample := reader.Downsample(img, 200)
	bounds := sample.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	rows := a.cfg.GridRows
	cols := a.cfg.GridCols
	cells := make([]cellStats, rows*cols)

	for row := 0; row < rows; row++ {
		y0 := bounds.Min.Y + row*h/rows
		y1 := bounds.Min.Y + (row+1)*h/rows
		for col := 0; col < cols; col++ {
			x0 := bounds.Min.X + col*w/cols
			x1 := bounds.Min.X + (col+1)*w/cols

			var rSum, gSum, bSum, graySum, graySq float64
			n := 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					c := sample.RGBAAt(x, y)
					rSum += float64(c.R)
					gSum += float64(c.G)
					bSum += float64(c.B)
					gray := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
					graySum += gray
					graySq += gray * gray
					n++
				}
			}
			st := cellStats{}
			if n > 0 {
				st.mean = model.Color{
					R: uint8(rSum / float64(n)),
					G: uint8(gSum / float64(n)),
					B: uint8(bSum / float64(n)),
				}
				meanGray := graySum / float64(n)
				st.variance = graySq/float64(n) - meanGray*meanGray
			}
			cells[row*cols+col] = st
		}
	}
	return cells
}

// mergeCells merges adjacent similar cells with union-find and converts each
// surviving group into a region in source-image coordinates.
func (a *Analyzer) mergeCells(cells []cellStats, width, height float64) []*mergedRegion {
	rows := a.cfg.GridRows
	cols := a.cfg.GridCols

	parent := make([]int, len(cells))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			parent[rj] = ri
		}
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if col+1 < cols {
				j := i + 1
				if cells[i].mean.Distance(cells[j].mean) < a.cfg.MergeThreshold {
					union(i, j)
				}
			}
			if row+1 < rows {
				j := i + cols
				if cells[i].mean.Distance(cells[j].mean) < a.cfg.MergeThreshold {
					union(i, j)
				}
			}
		}
	}

	type group struct {
		minRow, minCol int
		maxRow, maxCol int
		cells          int
		varianceSum    float64
	}
	groups := make(map[int]*group)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			root := find(i)
			g := groups[root]
			if g == nil {
				g = &group{minRow: row, minCol: col, maxRow: row, maxCol: col}
				groups[root] = g
			}
			g.minRow = min(g.minRow, row)
			g.minCol = min(g.minCol, col)
			g.maxRow = max(g.maxRow, row)
			g.maxCol = max(g.maxCol, col)
			g.cells++
			g.varianceSum += cells[i].variance
		}
	}

	cellW := width / float64(cols)
	cellH := height / float64(rows)

	roots := make([]int, 0, len(groups))
	for root := range groups {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	var regions []*mergedRegion
	for _, root := range roots {
		g := groups[root]
		if g.cells < a.cfg.MinRegionCells {
			continue
		}
		regions = append(regions, &mergedRegion{
			bbox: model.NewBBox(
				float64(g.minCol)*cellW,
				float64(g.minRow)*cellH,
				float64(g.maxCol-g.minCol+1)*cellW,
				float64(g.maxRow-g.minRow+1)*cellH,
			),
			cells:    g.cells,
			variance: g.varianceSum / float64(g.cells),
		})
	}

	// Largest first so size rank is implicit in the order.
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].cells > regions[j].cells
	})
	return regions
}

// assignRoles derives a role for each region from its relative vertical
// position and size rank: thin bands near the top become headers, near the
// bottom footers, narrow tall regions at the margins sidebars, and the
// largest remaining central region the body.
func (a *Analyzer) assignRoles(regions []*mergedRegion, height float64) {
	bodyTaken := false
	for i, r := range regions {
		centerY := r.bbox.Center().Y / height
		relHeight := r.bbox.Height / height
		tall := r.bbox.Height > 2*r.bbox.Width

		switch {
		case relHeight < 0.35 && centerY < 0.25:
			r.role = model.RoleHeader
			r.hasRole = true
		case relHeight < 0.35 && centerY > 0.75:
			r.role = model.RoleFooter
			r.hasRole = true
		case tall && relHeight > 0.5:
			r.role = model.RoleSidebar
			r.hasRole = true
		case !bodyTaken && i == 0:
			r.role = model.RoleBody
			r.hasRole = true
			bodyTaken = true
		default:
			r.role = model.RoleContent
		}
	}
}

// anchorText promotes unlabeled regions that contain a majority-overlapping
// text element: text near the top marks a header, near the bottom a footer,
// anywhere else a body.
func (a *Analyzer) anchorText(regions []*mergedRegion, texts []model.TextElement) {
	for _, t := range texts {
		for _, r := range regions {
			if t.BBox.OverlapRatio(r.bbox) <= 0.5 {
				continue
			}
			r.hasText = true
			if r.hasRole {
				break
			}
			centerY := r.bbox.Center().Y
			switch {
			case centerY < r.bbox.Height: // region sits in the top band
				r.role = model.RoleHeader
			case t.BBox.Center().Y > r.bbox.Bottom()-r.bbox.Height*0.25:
				r.role = model.RoleFooter
			default:
				r.role = model.RoleBody
			}
			r.hasRole = true
			break
		}
	}
}

// classify determines the overall layout type. Grid wins over asymmetric
// when region sizes are near-uniform, since an approximate partition is
// structurally more useful than a perfect one.
func (a *Analyzer) classify(regions []*mergedRegion, width, height float64) (model.LayoutType, int, int, float64) {
	if len(regions) == 0 {
		return model.LayoutFreeform, 0, 0, 0.5
	}

	if len(regions) == 1 {
		return model.LayoutCentered, 0, 0, 0.9
	}

	// Centered: one dominant region occupying the middle with symmetric
	// margins.
	dominant := regions[0]
	if dominant.bbox.Area() > 0.5*width*height {
		left := dominant.bbox.Left()
		right := width - dominant.bbox.Right()
		top := dominant.bbox.Top()
		bottom := height - dominant.bbox.Bottom()
		hAsym := math.Abs(left-right) / width
		vAsym := math.Abs(top-bottom) / height
		if hAsym < a.cfg.CenterTolerance && vAsym < a.cfg.CenterTolerance {
			return model.LayoutCentered, 0, 0, 1 - (hAsym+vAsym)/2
		}
	}

	sizeVariance := relativeSizeVariance(regions)

	// Grid: regions approximate a uniform N x M partition. The variance
	// tolerance deliberately prefers grid over asymmetric for near-uniform
	// partitions.
	if rows, cols, ok := a.fitGrid(regions, width, height); ok && sizeVariance < a.cfg.GridVarianceTolerance {
		return model.LayoutGrid, rows, cols, 1 - sizeVariance
	}

	if sizeVariance > 0.6 {
		return model.LayoutAsymmetric, 0, 0, math.Min(1, sizeVariance)
	}

	return model.LayoutFreeform, 0, 0, 0.5
}

// fitGrid checks whether the region bboxes tile the canvas as an
// approximately uniform grid, returning the inferred dimensions.
func (a *Analyzer) fitGrid(regions []*mergedRegion, width, height float64) (int, int, bool) {
	n := len(regions)
	if n < 4 {
		return 0, 0, false
	}

	covered := 0.0
	for _, r := range regions {
		covered += r.bbox.Area()
	}
	if covered < 0.8*width*height {
		return 0, 0, false
	}

	// Infer dimensions from distinct row/column starts, snapped to 5% of
	// the canvas.
	cols := distinctPositions(regions, width, func(r *mergedRegion) float64 { return r.bbox.X })
	rows := distinctPositions(regions, height, func(r *mergedRegion) float64 { return r.bbox.Y })
	if rows*cols != n {
		return 0, 0, false
	}
	return rows, cols, true
}

func distinctPositions(regions []*mergedRegion, span float64, pos func(*mergedRegion) float64) int {
	seen := make(map[int]bool)
	for _, r := range regions {
		seen[int(pos(r)/span*20+0.5)] = true
	}
	return len(seen)
}

// relativeSizeVariance is the coefficient-of-variation of region areas.
func relativeSizeVariance(regions []*mergedRegion) float64 {
	var sum, sumSq float64
	for _, r := range regions {
		area := r.bbox.Area()
		sum += area
		sumSq += area * area
	}
	n := float64(len(regions))
	mean := sum / n
	if mean == 0 {
		return 0
	}
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance) / mean
}
