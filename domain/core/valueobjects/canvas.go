package valueobjects

const (
	// CanvasWidth and CanvasHeight bound the default drawing area.
	CanvasWidth  = 800.0
	CanvasHeight = 600.0

	gridCellWidth  = 160.0
	gridCellHeight = 120.0
	gridMargin     = 80.0

	// 4x3 cells of the sizes above fit between the margins.
	gridCols = 4
	gridRows = 3
)

// CanvasCenter is where the main topic is placed by default.
var CanvasCenter = Position{x: CanvasWidth / 2, y: CanvasHeight / 2}

// DefaultPosition places the node with the given zero-based index on a grid
// that stays inside the canvas. The result depends only on the index.
func DefaultPosition(index int) Position {
	if index < 0 {
		index = 0
	}
	cell := index % (gridCols * gridRows)
	return Position{
		x: gridMargin + float64(cell%gridCols)*gridCellWidth,
		y: gridMargin + float64(cell/gridCols)*gridCellHeight,
	}
}
