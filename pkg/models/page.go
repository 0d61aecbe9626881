package models

// PageInfo is AniList's pagination block, forwarded to clients as "pagination".
type PageInfo struct {
	Total       int  `json:"total"`
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	HasNextPage bool `json:"hasNextPage"`
	PerPage     int  `json:"perPage"`
}

// PageResult is the data.Page payload of a listing query.
type PageResult struct {
	PageInfo PageInfo      `json:"pageInfo"`
	Media    []MediaRecord `json:"media"`
}

// Result is what the route layer caches: exactly one of Page or Media is set.
type Result struct {
	Page  *PageResult
	Media *MediaRecord
}
