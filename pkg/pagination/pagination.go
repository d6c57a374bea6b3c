package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 50
	// MaxLimit caps how many rows any ledger query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
// Ledger listings are ordered newest first, so (limit, offset) pages are
// stable as long as new entries only prepend.
type Params struct {
	Limit  int
	Offset int
}

// Normalize clamps the limit into [1, MaxLimit] and the offset to >= 0.
func (p Params) Normalize() Params {
	out := p
	if out.Limit <= 0 {
		out.Limit = DefaultLimit
	}
	if out.Limit > MaxLimit {
		out.Limit = MaxLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}

// Page describes the slice of a result set a response covers.
type Page struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// NewPage builds page metadata from normalized params and a total count.
func NewPage(params Params, total int64) Page {
	return Page{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: int64(params.Offset+params.Limit) < total,
	}
}
