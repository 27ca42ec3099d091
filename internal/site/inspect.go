package site

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// Summary counts what a rendered page shows.
type Summary struct {
	Courses        int  `json:"courses"`
	Team           int  `json:"team"`
	Volunteers     int  `json:"volunteers"`
	Accreditations int  `json:"accreditations"`
	Notice         bool `json:"notice"`
}

// Inspect parses a rendered page and counts course cards, team and volunteer
// cards, accreditation logos and whether the degraded notice is present.
func Inspect(r io.Reader) (Summary, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return Summary{
		Courses:        doc.Find("article.course-card").Length(),
		Team:           doc.Find("#team-members .member-card").Length(),
		Volunteers:     doc.Find("#volunteers .member-card").Length(),
		Accreditations: doc.Find("#accreditations img").Length(),
		Notice:         doc.Find("p.notice").Length() > 0,
	}, nil
}
