package utils

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Pagination 分页请求参数，绑定 ?page=&limit=
type Pagination struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

// GetPageOffset 规范化页码并计算偏移量
func (p *Pagination) GetPageOffset() (int, int) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return (p.Page - 1) * p.Limit, p.Limit
}
