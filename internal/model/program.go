package model

// Program is an admissions program entry returned by the load-more
// endpoint with target "programs".
type Program struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	TuitionFee  int64  `json:"tuition_fee"`
}

// NewsItem is a news entry returned by the load-more endpoint with
// target "news".
type NewsItem struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Excerpt string `json:"excerpt"`
	Image   string `json:"image"`
}
