package domain

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type PageRequest struct {
	Offset int
	Limit  int
}

func NewPageRequest(offset, limit int) PageRequest {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	return PageRequest{Offset: offset, Limit: limit}
}

type PaginationInfo struct {
	Total       int
	Offset      int
	Limit       int
	CurrentPage int
	TotalPages  int
	NextPage    *int
	PrevPage    *int
}

func NewPaginationInfo(total int, req PageRequest) PaginationInfo {
	req = NewPageRequest(req.Offset, req.Limit)

	info := PaginationInfo{
		Total:       total,
		Offset:      req.Offset,
		Limit:       req.Limit,
		CurrentPage: req.Offset/req.Limit + 1,
		TotalPages:  (total + req.Limit - 1) / req.Limit,
	}
	if info.CurrentPage < info.TotalPages {
		next := info.CurrentPage + 1
		info.NextPage = &next
	}
	if info.CurrentPage > 1 {
		prev := info.CurrentPage - 1
		info.PrevPage = &prev
	}

	return info
}

type Page[T any] struct {
	Items []T
	Info  PaginationInfo
}

func NewPage[T any](items []T, total int, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Info: NewPaginationInfo(total, req)}
}

// SlicePage режет уже отфильтрованный и отсортированный список
func SlicePage[T any](all []T, req PageRequest) Page[T] {
	req = NewPageRequest(req.Offset, req.Limit)
	total := len(all)

	start := min(req.Offset, total)
	end := min(start+req.Limit, total)

	items := make([]T, end-start)
	copy(items, all[start:end])

	return NewPage(items, total, req)
}
