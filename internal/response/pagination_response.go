package response

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage clamps page/pageSize to sane values and returns the row offset.
func NormalizePage(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

func NewPagination(page, pageSize int, total int64, count int) *Pagination {
	totalPages := int64(0)
	if pageSize > 0 {
		totalPages = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	from, to := 0, 0
	if count > 0 {
		from = (page-1)*pageSize + 1
		to = from + count - 1
	}
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: total,
		HasMore:    int64(page) < totalPages,
		From:       from,
		To:         to,
	}
}
