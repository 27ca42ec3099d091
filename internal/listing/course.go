package listing

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Course sheet columns.
const (
	ColumnCourseName  = "CourseName"
	ColumnDescription = "Description"
	ColumnPrice       = "Price (EGP)"
	ColumnImageURL    = "ImageURL"
	ColumnBookingLink = "BookingLink"
	ColumnInstructor  = "Instructor"
	ColumnDays        = "days"
	ColumnTime        = "Time"
)

const (
	defaultDescription = "لا يوجد وصف متاح حاليًا."
	defaultBookingURL  = "#"
	defaultInstructor  = "غير محدد"
	defaultSchedule    = "لم يحدد بعد"
)

// Course is one row of the courses sheet. Title is unique within a listing.
type Course struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"` // EGP, 0 means free
	ImageURL    string  `json:"image_url"`
	BookingURL  string  `json:"booking_url"`
	Instructor  string  `json:"instructor"`
	Days        string  `json:"days"`
	Time        string  `json:"time"`
}

// IsFree reports whether the course costs nothing.
func (c Course) IsFree() bool {
	return c.Price == 0
}

// ParseCourses parses the courses sheet. Missing columns fall back to their
// defaults; there is no required-column check.
func ParseCourses(text string) []Course {
	t := parseTable(text)
	if t == nil {
		return []Course{}
	}

	courses := make([]Course, 0, len(t.rows))
	t.each(func(r row) {
		title := r.value(ColumnCourseName, "")
		if title == "" {
			return
		}

		courses = append(courses, Course{
			Title:       title,
			Description: r.value(ColumnDescription, defaultDescription),
			Price:       parsePrice(r.value(ColumnPrice, "")),
			ImageURL:    r.value(ColumnImageURL, CoursePlaceholderImage(title)),
			BookingURL:  r.value(ColumnBookingLink, defaultBookingURL),
			Instructor:  r.value(ColumnInstructor, defaultInstructor),
			Days:        r.value(ColumnDays, defaultSchedule),
			Time:        r.value(ColumnTime, defaultSchedule),
		})
	})
	return courses
}

// CoursePlaceholderImage returns the deterministic stock image used when a course
// has no image of its own.
func CoursePlaceholderImage(title string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/600/400", encodeComponent(title))
}

// parsePrice coerces a price cell to a non-negative number. Anything that is not
// a finite number, including the empty string, is 0.
func parsePrice(v string) float64 {
	if v == "" {
		return 0
	}
	price, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0
	}
	return price
}

// encodeComponent percent-encodes s for use inside a URL path segment or query
// value, writing spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
