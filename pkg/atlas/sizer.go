package atlas

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/objatlas/pkg/math"
)

// DefaultMaxSize is the largest atlas side the Sizer will try unless told
// otherwise.
const DefaultMaxSize = 16384

// Sizing errors.
var (
	ErrDegenerateImage = errors.New("image has zero area")
	ErrAtlasTooLarge   = errors.New("atlas exceeds maximum size")
	ErrInvalidOrder    = errors.New("invalid packing order")
)

// Order selects the sequence in which items are offered to the packer.
type Order int

// Packing orders.
const (
	OrderDeclared Order = iota // Input order
	OrderArea                  // Largest area first
	OrderHeight                // Tallest first
)

// String returns the configuration name of the order.
func (o Order) String() string {
	switch o {
	case OrderDeclared:
		return "declared"
	case OrderArea:
		return "area"
	case OrderHeight:
		return "height"
	default:
		return fmt.Sprintf("Unknown(%d)", int(o))
	}
}

// ParseOrder converts a configuration name into an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "declared":
		return OrderDeclared, nil
	case "area":
		return OrderArea, nil
	case "height":
		return OrderHeight, nil
	}
	return 0, fmt.Errorf("%w: %q (want declared, area or height)", ErrInvalidOrder, s)
}

// Item is a named image extent to be packed.
type Item struct {
	Name string
	Size Size
}

// Layout is the result of a successful sizing run.
type Layout struct {
	// Size is the side of the square atlas, a power of two.
	Size int
	// Rects holds one rectangle per input item, in input order.
	Rects []Rect
	// Attempts counts the packing passes, including the successful one.
	Attempts int
	// Free lists the unused leaf regions of the final packing tree.
	Free []Rect
}

// Transform returns the placement transform of item i.
func (l *Layout) Transform(i int) math.Mat3 {
	return PlacementTransform(l.Size, l.Rects[i])
}

// UsedArea returns the number of atlas pixels covered by items.
func (l *Layout) UsedArea() int {
	used := 0
	for _, r := range l.Rects {
		used += r.Area()
	}
	return used
}

// Utilization returns the used fraction of the atlas, 0.0 to 1.0.
func (l *Layout) Utilization() float64 {
	if l.Size == 0 {
		return 0
	}
	return float64(l.UsedArea()) / float64(l.Size*l.Size)
}

// Sizer finds the smallest power-of-two square that holds every item.
type Sizer struct {
	// MaxSize bounds the atlas side. Zero means DefaultMaxSize.
	MaxSize int
	// Order is the sequence in which items are offered to the packer.
	Order Order
}

// LowerBound returns the smallest power of two whose square is at least area.
// It never returns less than 1.
func LowerBound(area int) int {
	size := 1
	for size*size < area {
		size <<= 1
	}
	return size
}

// PlacementTransform maps image-local normalized coordinates into
// atlas-normalized coordinates for an image placed at r in an atlas of side
// size. The vertical axis flips, so v=0 lands on r's far edge.
func PlacementTransform(size int, r Rect) math.Mat3 {
	s := float64(size)
	return math.Affine(
		float64(r.Width())/s,
		-float64(r.Height())/s,
		float64(r.X0)/s,
		float64(r.Y1)/s,
	)
}

// Validate checks that every item can be packed at all.
func (s Sizer) Validate(items []Item) error {
	maxSize := s.maxSize()
	for _, it := range items {
		if it.Size.Width <= 0 || it.Size.Height <= 0 {
			return fmt.Errorf("%w: %s is %s", ErrDegenerateImage, it.Name, it.Size)
		}
		if it.Size.Width > maxSize || it.Size.Height > maxSize {
			return fmt.Errorf("%w: %s is %s, limit is %d", ErrAtlasTooLarge, it.Name, it.Size, maxSize)
		}
	}
	return nil
}

// Pack sizes the atlas and places every item. Starting at the area lower
// bound, it packs all items into a fresh tree and doubles the side whenever
// any insertion fails.
func (s Sizer) Pack(items []Item) (*Layout, error) {
	if err := s.Validate(items); err != nil {
		return nil, err
	}

	area := 0
	for _, it := range items {
		area += it.Size.Area()
	}

	order := s.sequence(items)
	maxSize := s.maxSize()
	attempts := 0

	for size := LowerBound(area); size <= maxSize; size <<= 1 {
		attempts++
		packer := NewPacker(size)
		rects := make([]Rect, len(items))
		fits := true
		for _, i := range order {
			r, ok := packer.Insert(items[i].Size)
			if !ok {
				fits = false
				break
			}
			rects[i] = r
		}
		if fits {
			return &Layout{
				Size:     size,
				Rects:    rects,
				Attempts: attempts,
				Free:     packer.FreeRegions(),
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: %d items (%d pixels) do not fit in %dx%d",
		ErrAtlasTooLarge, len(items), area, maxSize, maxSize)
}

func (s Sizer) maxSize() int {
	if s.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return s.MaxSize
}

// sequence returns item indices in packing order. Sorting is stable so
// equal keys keep input order.
func (s Sizer) sequence(items []Item) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}

	var less func(a, b Size) bool
	switch s.Order {
	case OrderArea:
		less = func(a, b Size) bool { return a.Area() > b.Area() }
	case OrderHeight:
		less = func(a, b Size) bool { return a.Height > b.Height }
	default:
		return order
	}

	sort.SliceStable(order, func(i, j int) bool {
		return less(items[order[i]].Size, items[order[j]].Size)
	})
	return order
}
