package driven

import (
	"context"
	"net/url"
)

// MoodleCourseRecord is one entry of core_course_get_courses.
// The first record returned by Moodle describes the site itself.
type MoodleCourseRecord struct {
	ID        int    `json:"id"`
	ShortName string `json:"shortname"`
	FullName  string `json:"fullname"`
	Summary   string `json:"summary"`
	Format    string `json:"format"`
}

// MoodleSectionRecord is one entry of core_course_get_contents
type MoodleSectionRecord struct {
	ID      int                  `json:"id"`
	Name    string               `json:"name"`
	Summary string               `json:"summary"`
	Modules []MoodleModuleRecord `json:"modules"`
}

// MoodleModuleRecord is a course module inside a section record
type MoodleModuleRecord struct {
	ID          int                   `json:"id"`
	Name        string                `json:"name"`
	ModName     string                `json:"modname"`
	URL         string                `json:"url"`
	Description string                `json:"description"`
	Contents    []MoodleContentRecord `json:"contents"`
}

// MoodleContentRecord is a file or link attached to a module record
type MoodleContentRecord struct {
	Type     string `json:"type"`
	Filename string `json:"filename"`
	FileURL  string `json:"fileurl"`
	MimeType string `json:"mimetype"`
}

// MoodleClient calls the Moodle web service REST API
type MoodleClient interface {
	// Call invokes a web service function and decodes the JSON result into out
	Call(ctx context.Context, function string, params url.Values, out any) error

	// ListCourses returns all course records, the site record first
	ListCourses(ctx context.Context) ([]MoodleCourseRecord, error)

	// GetCourseContents returns the ordered section records of a course
	GetCourseContents(ctx context.Context, courseID int) ([]MoodleSectionRecord, error)

	// FetchContent downloads a file attachment and returns its readable text
	FetchContent(ctx context.Context, fileURL string) (string, error)

	// SiteURL returns the base URL of the Moodle site
	SiteURL() string
}
