package site

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed about.md
var aboutMarkdown []byte

// mdRenderer escapes raw HTML in its input; WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts Markdown source to trusted HTML.
func renderMarkdown(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // goldmark output with raw HTML escaped
}

// Branch is one of the academy's physical locations.
type Branch struct {
	Name    string
	Address string
}

// Phone is a displayed number and its dialable form.
type Phone struct {
	Display string
	Dial    string
}

// Contact is the academy's fixed contact block.
type Contact struct {
	Name     string
	LogoURL  string
	Branches []Branch
	Phones   []Phone
	Email    string
	Facebook string
}

// AcademyContact returns the contact details shown on the home page.
func AcademyContact() Contact {
	return Contact{
		Name:    "Menofia Courses Academy",
		LogoURL: "https://i.ibb.co/wZW4zgyp/mca.png",
		Branches: []Branch{
			{Name: "الفرع الأول: أشمون", Address: "مدينة أشمون - شارع الصوفى"},
			{Name: "الفرع الثاني: الباجور", Address: "أمام النصب التذكاري وتاون تيم"},
			{Name: "الفرع الثالث: شبين الكوم", Address: "طريق معهد الكبد - أمام كليه طب أسنان مباشرة - برج بلازا- الدور التاني"},
		},
		Phones: []Phone{
			{Display: "010 09160064", Dial: "01009160064"},
			{Display: "01016651051", Dial: "01016651051"},
			{Display: "01206786821", Dial: "01206786821"},
		},
		Email:    "mca.academy2019@gmail.com",
		Facebook: "https://www.facebook.com/menofiaacademy",
	}
}
