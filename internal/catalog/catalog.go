// Package catalog loads every listing once and hands the result on as an
// immutable Snapshot.
//
// The three listings are fetched and parsed concurrently. A listing whose source
// is unavailable is left empty and recorded as a Failure; the others still load,
// so the site can render with a degraded-data notice instead of an error page.
package catalog

import (
	"strings"
	"sync"
	"time"

	"github.com/menofiaacademy/academy-site/internal/fallback"
	"github.com/menofiaacademy/academy-site/internal/listing"
	"github.com/menofiaacademy/academy-site/internal/logger"
)

// Listing names used in failures, logs and metrics.
const (
	ListingCourses        = "courses"
	ListingTeam           = "team"
	ListingAccreditations = "accreditations"
)

// DegradedNotice is shown above the content when any listing failed to load.
const DegradedNotice = "فشل تحميل بعض البيانات. قد يتم عرض بيانات احتياطية."

// Published spreadsheet exports.
const (
	CoursesSheetURL        = "https://docs.google.com/spreadsheets/d/1UCJVyMul4YWXPx4uLtdOWKnAoruiFqsc1uj2jT_fd_M/export?format=csv&gid=0"
	TeamSheetURL           = "https://docs.google.com/spreadsheets/d/1lVsyzjcCx6hj9PEA8_D-_BZ__iLmvCpb1GMV7VKLfZ0/export?format=csv&gid=0"
	AccreditationsSheetURL = "https://docs.google.com/spreadsheets/d/1heuXIBCx1tFTp6nDpP7TEoEM_-KuLtRAg5lag0ycBJo/export?format=csv&gid=0"
)

// TextSource fetches listing text with a single fallback.
type TextSource interface {
	FetchWithFallback(primary, backup string) (string, error)
}

// Pair is the primary and backup locator of one listing.
type Pair struct {
	Primary string `json:"primary"`
	Backup  string `json:"backup"`
}

// Sources holds the locators of every listing.
type Sources struct {
	Courses        Pair `json:"courses"`
	Team           Pair `json:"team"`
	Accreditations Pair `json:"accreditations"`
}

// DefaultSources returns the published sheets backed by the bundled copies.
func DefaultSources() Sources {
	return Sources{
		Courses:        Pair{Primary: CoursesSheetURL, Backup: fallback.Courses},
		Team:           Pair{Primary: TeamSheetURL, Backup: fallback.Team},
		Accreditations: Pair{Primary: AccreditationsSheetURL, Backup: fallback.Accreditations},
	}
}

// Failure records a listing that could not be fetched from either locator.
type Failure struct {
	Listing string
	Err     error
}

// Snapshot is the result of one load. It is never modified after Load returns.
type Snapshot struct {
	Courses        []listing.Course
	Team           listing.TeamData
	Accreditations []listing.Accreditation
	Failures       []Failure
	LoadedAt       time.Time
}

// Degraded reports whether any listing failed to load.
func (s Snapshot) Degraded() bool {
	return len(s.Failures) > 0
}

// Notice returns the degraded-data notice, or "" when every listing loaded.
func (s Snapshot) Notice() string {
	if s.Degraded() {
		return DegradedNotice
	}
	return ""
}

// FindCourse returns the course with the given title.
func (s Snapshot) FindCourse(title string) (listing.Course, bool) {
	return findCourse(s.Courses, title)
}

// Load fetches and parses every listing. It never fails as a whole.
func Load(src TextSource, sources Sources) Snapshot {
	start := time.Now()

	var (
		wg             sync.WaitGroup
		courses        []listing.Course
		team           listing.TeamData
		accreditations []listing.Accreditation
		errs           [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		courses, errs[0] = fetchCourses(src, sources.Courses)
	}()
	go func() {
		defer wg.Done()
		team, errs[1] = fetchTeam(src, sources.Team)
	}()
	go func() {
		defer wg.Done()
		accreditations, errs[2] = fetchAccreditations(src, sources.Accreditations)
	}()
	wg.Wait()

	snap := Snapshot{
		Courses:        courses,
		Team:           team,
		Accreditations: accreditations,
		LoadedAt:       time.Now().UTC(),
	}
	for i, name := range []string{ListingCourses, ListingTeam, ListingAccreditations} {
		if errs[i] == nil {
			continue
		}
		snap.Failures = append(snap.Failures, Failure{Listing: name, Err: errs[i]})
		logger.Error("Listing unavailable", logger.Fields{"listing": name}, errs[i])
	}

	logger.RecordTiming("catalog.load", time.Since(start))
	logger.SetGauge("catalog.courses", float64(len(snap.Courses)))
	logger.SetGauge("catalog.team", float64(snap.Team.Len()))
	logger.SetGauge("catalog.accreditations", float64(len(snap.Accreditations)))
	return snap
}

// LoadCourses fetches only the course listing.
func LoadCourses(src TextSource, sources Sources) ([]listing.Course, error) {
	return fetchCourses(src, sources.Courses)
}

// FindCourse returns the course with the given title from courses.
func FindCourse(courses []listing.Course, title string) (listing.Course, bool) {
	return findCourse(courses, title)
}

func findCourse(courses []listing.Course, title string) (listing.Course, bool) {
	title = strings.TrimSpace(title)
	for _, c := range courses {
		if c.Title == title {
			return c, true
		}
	}
	return listing.Course{}, false
}

func fetchCourses(src TextSource, p Pair) ([]listing.Course, error) {
	text, err := src.FetchWithFallback(p.Primary, p.Backup)
	if err != nil {
		return []listing.Course{}, err
	}
	return listing.ParseCourses(text), nil
}

func fetchTeam(src TextSource, p Pair) (listing.TeamData, error) {
	text, err := src.FetchWithFallback(p.Primary, p.Backup)
	if err != nil {
		return listing.TeamData{Team: []listing.TeamMember{}, Volunteers: []listing.TeamMember{}}, err
	}
	return listing.ParseTeam(text), nil
}

func fetchAccreditations(src TextSource, p Pair) ([]listing.Accreditation, error) {
	text, err := src.FetchWithFallback(p.Primary, p.Backup)
	if err != nil {
		return []listing.Accreditation{}, err
	}
	return listing.ParseAccreditations(text), nil
}
