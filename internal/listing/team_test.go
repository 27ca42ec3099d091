package listing

import (
	"strings"
	"testing"
)

func TestParseTeam_Scenario(t *testing.T) {
	data := ParseTeam("Name,job\nAhmed,Volunteer\nSara,Teacher\n")

	if len(data.Volunteers) != 1 || data.Volunteers[0].Name != "Ahmed" {
		t.Errorf("Volunteers = %+v, want [Ahmed]", data.Volunteers)
	}
	if len(data.Team) != 1 || data.Team[0].Name != "Sara" {
		t.Errorf("Team = %+v, want [Sara]", data.Team)
	}
}

func TestParseTeam_Classification(t *testing.T) {
	tests := []struct {
		name          string
		job           string
		wantVolunteer bool
	}{
		{"arabic marker", VolunteerMarker, true},
		{"arabic marker padded", "  " + VolunteerMarker + "  ", true},
		{"english lower", "volunteer", true},
		{"english upper", "VOLUNTEER", true},
		{"trainer", "مدرب", false},
		{"marker inside longer title", "منسق " + VolunteerMarker, false},
		{"blank job uses default title", "", false},
		{"skip marker job uses default title", "##", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := ParseTeam("Name,job\nMember,\"" + tt.job + "\"\n")
			if data.Len() != 1 {
				t.Fatalf("Len() = %d, want 1", data.Len())
			}
			if got := len(data.Volunteers) == 1; got != tt.wantVolunteer {
				t.Errorf("volunteer = %v, want %v (data %+v)", got, tt.wantVolunteer, data)
			}
		})
	}
}

func TestParseTeam_Defaults(t *testing.T) {
	data := ParseTeam("Name,job,ImageURL\nمحمد علي,,##\nSara,Teacher,https://img/sara.jpg\n")
	if len(data.Team) != 2 {
		t.Fatalf("Team = %+v, want 2 members", data.Team)
	}

	first := data.Team[0]
	if first.JobTitle != defaultJobTitle {
		t.Errorf("JobTitle = %q, want %q", first.JobTitle, defaultJobTitle)
	}
	wantAvatar := "https://ui-avatars.com/api/?name=%D9%85%D8%AD%D9%85%D8%AF%20%D8%B9%D9%84%D9%8A&background=0284c7&color=fff&size=300"
	if first.ImageURL != wantAvatar {
		t.Errorf("ImageURL = %q, want %q", first.ImageURL, wantAvatar)
	}
	if data.Team[1].ImageURL != "https://img/sara.jpg" {
		t.Errorf("ImageURL = %q, want sheet value", data.Team[1].ImageURL)
	}
}

func TestParseTeam_ImageColumnOptional(t *testing.T) {
	data := ParseTeam("Name,job\nSara,Teacher\n")
	if len(data.Team) != 1 {
		t.Fatalf("Team = %+v, want 1 member", data.Team)
	}
	if !strings.HasPrefix(data.Team[0].ImageURL, "https://ui-avatars.com/api/?name=Sara") {
		t.Errorf("ImageURL = %q, want generated avatar", data.Team[0].ImageURL)
	}
}

func TestParseTeam_SkipsPlaceholderNames(t *testing.T) {
	data := ParseTeam("Name,job\n##,Teacher\n,Teacher\nSara,Teacher\nExtra,Field,Here\n")
	if data.Len() != 1 || data.Team[0].Name != "Sara" {
		t.Errorf("ParseTeam() = %+v, want only Sara", data)
	}
}

func TestParseTeam_MissingRequiredColumns(t *testing.T) {
	tests := []struct {
		name        string
		csv         string
		wantMissing []string
	}{
		{"no job", "Name,ImageURL\nSara,x\n", []string{"job"}},
		{"no name", "job,ImageURL\nTeacher,x\n", []string{"Name"}},
		{"neither", "FullName,Role\nSara,Teacher\n", []string{"Name", "job"}},
		{"case matters", "name,Job\nSara,Teacher\n", []string{"Name", "job"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)

			data := ParseTeam(tt.csv)
			if data.Len() != 0 {
				t.Errorf("ParseTeam() = %+v, want empty", data)
			}
			if data.Team == nil || data.Volunteers == nil {
				t.Error("ParseTeam() returned nil slices, want empty")
			}

			out := buf.String()
			if !strings.Contains(out, `"level":"ERROR"`) {
				t.Errorf("no ERROR entry logged: %s", out)
			}
			for _, col := range tt.wantMissing {
				if !strings.Contains(out, `"`+col+`"`) {
					t.Errorf("log does not name missing column %q: %s", col, out)
				}
			}
		})
	}
}

func TestParseTeam_HeaderOnlyLogsNothing(t *testing.T) {
	buf := captureLog(t)
	if data := ParseTeam("Name,job\n"); data.Len() != 0 {
		t.Errorf("ParseTeam() = %+v, want empty", data)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %s", buf.String())
	}
}
