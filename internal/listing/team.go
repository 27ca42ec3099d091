package listing

import (
	"fmt"
	"strings"
)

// Team sheet columns.
const (
	ColumnName = "Name"
	ColumnJob  = "job"
)

// VolunteerMarker is the job title that files a member under volunteers.
const VolunteerMarker = "متطوع"

// volunteerAlias is accepted alongside VolunteerMarker for sheets kept in English.
const volunteerAlias = "volunteer"

const defaultJobTitle = "عضو فريق"

// TeamMember is one row of the team sheet.
type TeamMember struct {
	Name     string `json:"name"`
	JobTitle string `json:"job_title"`
	ImageURL string `json:"image_url"`
}

// IsVolunteer reports whether the member's job title is the volunteer marker.
func (m TeamMember) IsVolunteer() bool {
	job := strings.TrimSpace(m.JobTitle)
	return strings.EqualFold(job, VolunteerMarker) || strings.EqualFold(job, volunteerAlias)
}

// TeamData is the team sheet split into staff and volunteers.
type TeamData struct {
	Team       []TeamMember `json:"team"`
	Volunteers []TeamMember `json:"volunteers"`
}

// Len returns the total number of members.
func (d TeamData) Len() int {
	return len(d.Team) + len(d.Volunteers)
}

// ParseTeam parses the team sheet. The Name and job columns are required; without
// them the whole sheet is rejected.
func ParseTeam(text string) TeamData {
	data := TeamData{Team: []TeamMember{}, Volunteers: []TeamMember{}}

	t := parseTable(text)
	if t == nil || !checkColumns(t, "team", ColumnName, ColumnJob) {
		return data
	}

	t.each(func(r row) {
		name := r.value(ColumnName, "")
		if name == "" {
			return
		}

		member := TeamMember{
			Name:     name,
			JobTitle: r.value(ColumnJob, defaultJobTitle),
			ImageURL: r.value(ColumnImageURL, AvatarImage(name)),
		}
		if member.IsVolunteer() {
			data.Volunteers = append(data.Volunteers, member)
		} else {
			data.Team = append(data.Team, member)
		}
	})
	return data
}

// AvatarImage returns a generated initials avatar for a member without a photo.
func AvatarImage(name string) string {
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=0284c7&color=fff&size=300", encodeComponent(name))
}
