package site

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/menofiaacademy/academy-site/internal/catalog"
	"github.com/menofiaacademy/academy-site/internal/listing"
	"github.com/menofiaacademy/academy-site/internal/registration"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageHome     = "home"
	PageCourses  = "courses"
	PageTeam     = "team"
	PageRegister = "register"
)

// ListingPages are the pages rendered straight from a snapshot.
var ListingPages = []string{PageHome, PageCourses, PageTeam}

// Messages shown on the registration page.
const (
	MessageSuccess        = "تم تسجيلك بنجاح! سنتواصل معك قريبًا."
	MessageSubmitFailed   = "حدث خطأ أثناء إرسال بيانات التسجيل."
	MessageUnexpected     = "حدث خطأ غير متوقع. يرجى المحاولة مرة أخرى."
	MessageInvalid        = "يرجى إدخال جميع البيانات المطلوبة بشكل صحيح."
	MessageCourseNotFound = "الدورة المطلوبة غير متاحة حاليًا."
)

// Options controls how links are written.
type Options struct {
	// RegisterURL is the registration page; the course title is appended as
	// the "course" query parameter.
	RegisterURL string
	// Static writes page links as relative .html files instead of routes.
	Static bool
}

// Renderer executes the page templates.
type Renderer struct {
	pages   map[string]*template.Template
	about   template.HTML
	contact Contact
	opts    Options
	now     func() time.Time
}

// New parses the embedded templates.
func New(opts Options) (*Renderer, error) {
	if opts.RegisterURL == "" {
		opts.RegisterURL = "/register"
	}

	about, err := renderMarkdown(aboutMarkdown)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		pages:   make(map[string]*template.Template),
		about:   about,
		contact: AcademyContact(),
		opts:    opts,
		now:     time.Now,
	}

	for _, page := range []string{PageHome, PageCourses, PageTeam, PageRegister} {
		tmpl, err := template.New("layout.html").Funcs(r.funcs()).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", page, err)
		}
		r.pages[page] = tmpl
	}

	return r, nil
}

// RegisterView is the state of the registration page.
type RegisterView struct {
	CourseTitle string
	Course      *listing.Course
	Values      registration.Data
	Error       string
	Success     bool
	CSRFField   template.HTML
}

// pageData is what every template receives.
type pageData struct {
	Page     string
	Notice   string
	Year     int
	About    template.HTML
	Contact  Contact
	Snapshot catalog.Snapshot
	Register *RegisterView
}

// Render writes one of ListingPages for snap.
func (r *Renderer) Render(w io.Writer, page string, snap catalog.Snapshot) error {
	return r.execute(w, page, pageData{
		Page:     page,
		Notice:   snap.Notice(),
		Snapshot: snap,
	})
}

// RenderRegister writes the registration page. notice is the degraded-data
// notice of the course lookup, if any.
func (r *Renderer) RenderRegister(w io.Writer, view RegisterView, notice string) error {
	return r.execute(w, PageRegister, pageData{
		Page:     PageRegister,
		Notice:   notice,
		Register: &view,
	})
}

func (r *Renderer) execute(w io.Writer, page string, data pageData) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page: %q", page)
	}

	data.Year = r.now().Year()
	data.About = r.about
	data.Contact = r.contact

	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		return fmt.Errorf("rendering %s: %w", page, err)
	}
	return nil
}

// FileName returns the output file of page in a static build.
func FileName(page string) string {
	if page == PageHome {
		return "index.html"
	}
	return page + ".html"
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"priceLabel":  PriceLabel,
		"pageURL":     r.pageURL,
		"registerURL": r.registerURL,
	}
}

func (r *Renderer) pageURL(page string) string {
	if r.opts.Static {
		return FileName(page)
	}
	if page == PageHome {
		return "/"
	}
	return "/" + page
}

func (r *Renderer) registerURL(title string) string {
	sep := "?"
	if strings.Contains(r.opts.RegisterURL, "?") {
		sep = "&"
	}
	return r.opts.RegisterURL + sep + "course=" + url.QueryEscape(title)
}

// PriceLabel formats a course price: "مجاني" for free courses, otherwise the
// amount in Egyptian pounds.
func PriceLabel(price float64) string {
	if price == 0 {
		return "مجاني"
	}
	return strconv.FormatFloat(price, 'f', -1, 64) + " جنيه"
}
