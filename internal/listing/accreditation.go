package listing

// Accreditation sheet columns. ImageURL is shared with the other sheets.
const ColumnAltText = "AltText"

const defaultAltText = "Accreditation Logo"

// Accreditation is a partner or accrediting body logo.
type Accreditation struct {
	AltText  string `json:"alt_text"`
	ImageURL string `json:"image_url"`
}

// ParseAccreditations parses the accreditations sheet. The ImageURL column is
// required and designates the row: a logo without an image is dropped.
func ParseAccreditations(text string) []Accreditation {
	t := parseTable(text)
	if t == nil || !checkColumns(t, "accreditations", ColumnImageURL) {
		return []Accreditation{}
	}

	accreditations := make([]Accreditation, 0, len(t.rows))
	t.each(func(r row) {
		imageURL := r.value(ColumnImageURL, "")
		if imageURL == "" {
			return
		}
		accreditations = append(accreditations, Accreditation{
			AltText:  r.value(ColumnAltText, defaultAltText),
			ImageURL: imageURL,
		})
	})
	return accreditations
}
