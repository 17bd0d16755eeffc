package dto

import "fmt"

// Operation names a recipe endpoint action for representation selection.
type Operation int

// Recipe operations.
const (
	OpList Operation = iota + 1
	OpCreate
	OpUpdate
	OpRetrieve
	OpUploadImage
)

// Operations lists every operation in declaration order.
var Operations = []Operation{OpList, OpCreate, OpUpdate, OpRetrieve, OpUploadImage}

func (o Operation) String() string {
	switch o {
	case OpList:
		return "list"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpRetrieve:
		return "retrieve"
	case OpUploadImage:
		return "upload_image"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// Builder renders a recipe for one operation. mediaURL is the public
// prefix that stored image references are served under.
type Builder func(r *RecipeSource, mediaURL string) any

// builders maps every Operation to its representation. It must stay
// total over Operations.
var builders = map[Operation]Builder{
	OpList:        buildSummary,
	OpCreate:      buildSummary,
	OpUpdate:      buildSummary,
	OpRetrieve:    buildDetail,
	OpUploadImage: buildImage,
}

// Select returns the builder for op. It panics on an operation outside
// Operations.
func Select(op Operation) Builder {
	b, ok := builders[op]
	if !ok {
		panic(fmt.Sprintf("dto: no representation for %s", op))
	}
	return b
}

// Render is shorthand for Select(op)(r, mediaURL).
func Render(op Operation, r *RecipeSource, mediaURL string) any {
	return Select(op)(r, mediaURL)
}

// RenderAll renders a slice of recipes with the same operation.
func RenderAll(op Operation, rs []*RecipeSource, mediaURL string) []any {
	build := Select(op)
	out := make([]any, len(rs))
	for i, r := range rs {
		out[i] = build(r, mediaURL)
	}
	return out
}
