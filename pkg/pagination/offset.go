// Package pagination provides the offset/limit result envelope shared by the
// result store and the HTTP API.
package pagination

// OffsetResult is one page of items plus the total count in the collection.
type OffsetResult[T any] struct {
	Items   []T   `json:"items"`
	Total   int   `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// NewOffsetResult builds the envelope. Items may be nil for an empty page; it
// is normalized to an empty slice so JSON renders [] rather than null.
func NewOffsetResult[T any](items []T, total, limit, offset int) *OffsetResult[T] {
	if items == nil {
		items = []T{}
	}
	return &OffsetResult[T]{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(items) < total,
	}
}
