package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/menofiaacademy/academy-site/internal/listing"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortBySource SortOrder = "source"
	SortByTitle  SortOrder = "title"
	SortByPrice  SortOrder = "price"
)

// parseSortOrder validates a --sort value
func parseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case SortBySource, SortByTitle, SortByPrice:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort: %s (must be 'source', 'title' or 'price')", s)
	}
}

// sortCourses sorts courses in place. SortBySource keeps sheet order.
func sortCourses(courses []listing.Course, sortOrder SortOrder) {
	switch sortOrder {
	case SortByTitle:
		sort.SliceStable(courses, func(i, j int) bool {
			return strings.ToLower(courses[i].Title) < strings.ToLower(courses[j].Title)
		})
	case SortByPrice:
		sort.SliceStable(courses, func(i, j int) bool {
			if courses[i].Price != courses[j].Price {
				return courses[i].Price < courses[j].Price
			}
			// If prices are equal, sort by title
			return strings.ToLower(courses[i].Title) < strings.ToLower(courses[j].Title)
		})
	}
}
