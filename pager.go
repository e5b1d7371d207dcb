package greensite

import (
	"net/url"
	"strconv"

	"github.com/greenusek/greensite/cms"
)

// pagerSiblings is how many pages are linked on each side of the current one.
const pagerSiblings = 2

// Pager is the pagination control of a post listing. First and Last are 0
// when the corresponding jump link is not shown.
type Pager struct {
	Page       int
	TotalPages int
	PrevPage   int
	NextPage   int
	Pages      []int
	First      int
	Last       int

	basePath string
	query    string
}

// NewPager builds the control for p. Links point at basePath and keep query.
func NewPager(p cms.Pagination, basePath, query string) Pager {
	pg := Pager{
		Page:       max(p.Page, 1),
		TotalPages: p.TotalPages,
		PrevPage:   p.PrevPage,
		NextPage:   p.NextPage,
		basePath:   basePath,
		query:      query,
	}
	if pg.TotalPages <= 1 {
		return pg
	}
	lo := max(1, pg.Page-pagerSiblings)
	hi := min(pg.TotalPages, pg.Page+pagerSiblings)
	for i := lo; i <= hi; i++ {
		pg.Pages = append(pg.Pages, i)
	}
	if pg.Page > pagerSiblings+1 {
		pg.First = 1
	}
	if pg.Page < pg.TotalPages-pagerSiblings {
		pg.Last = pg.TotalPages
	}
	return pg
}

// Visible reports whether the listing spans more than one page.
func (p Pager) Visible() bool {
	return p.TotalPages > 1
}

// URL is the link to page n of the listing.
func (p Pager) URL(n int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(n))
	if p.query != "" {
		v.Set("query", p.query)
	}
	return p.basePath + "?" + v.Encode()
}
