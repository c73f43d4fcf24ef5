package pagination

// Pagination carries offset-based paging parameters bound from query strings.
type Pagination struct {
	Limit  int `form:"limit,default=50" validate:"gte=1,lte=500"`
	Offset int `form:"offset,default=0" validate:"gte=0"`
}

func (p Pagination) Normalize() Pagination {
	out := p
	if out.Limit <= 0 {
		out.Limit = 50
	}
	if out.Limit > 500 {
		out.Limit = 500
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}
