package model

// LayoutType classifies the overall arrangement of an image.
type LayoutType int

const (
	LayoutFreeform LayoutType = iota
	LayoutGrid
	LayoutCentered
	LayoutAsymmetric
)

func (t LayoutType) String() string {
	switch t {
	case LayoutGrid:
		return "grid"
	case LayoutCentered:
		return "centered"
	case LayoutAsymmetric:
		return "asymmetric"
	default:
		return "freeform"
	}
}

// RegionRole is the structural role assigned to a layout region.
type RegionRole int

const (
	RoleContent RegionRole = iota
	RoleHeader
	RoleBody
	RoleFooter
	RoleSidebar
)

func (r RegionRole) String() string {
	switch r {
	case RoleHeader:
		return "header"
	case RoleBody:
		return "body"
	case RoleFooter:
		return "footer"
	case RoleSidebar:
		return "sidebar"
	default:
		return "content"
	}
}

// Region is one merged area of the image with an assigned role.
type Region struct {
	BBox BBox       `json:"bbox"`
	Role RegionRole `json:"role"`
}

// Layout describes the partitioning and classification of an image.
type Layout struct {
	Type     LayoutType `json:"type"`
	Regions  []Region   `json:"regions"`
	GridRows int        `json:"grid_rows,omitempty"`
	GridCols int        `json:"grid_cols,omitempty"`

	// Confidence is a proxy for how cleanly the classification fit, in [0,1].
	Confidence float64 `json:"confidence"`
}
