package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Document type discriminators stored under the doc_type metadata key
const (
	DocTypeSite    = "site"
	DocTypeCourse  = "course"
	DocTypeSection = "section"
	DocTypeModule  = "module"
	DocTypeContent = "content"
)

// Metadata keys shared by every rendered entity
const (
	MetaDocType  = "doc_type"
	MetaCourseID = "course_id"
)

// ContentTypeFile is the Moodle content type tag for uploaded files
const ContentTypeFile = "file"

// siteCourseListLimit caps how many course names the site rendering lists
const siteCourseListLimit = 10

// Renderable is implemented by every node of the Moodle hierarchy.
// ToText is the human-readable text that gets embedded, ToMetadata the
// filterable metadata stored next to it.
type Renderable interface {
	ToText() string
	ToMetadata() map[string]string
}

// SiteInfo is the root of a scraped Moodle site
type SiteInfo struct {
	Name    string    `json:"name"`
	URL     string    `json:"url"`
	Summary string    `json:"summary"`
	Courses []*Course `json:"courses"`
}

// Course is a single Moodle course
type Course struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Summary  string     `json:"summary"`
	URL      string     `json:"url"`
	Sections []*Section `json:"sections"`
}

// Section is a course section (topic or week)
type Section struct {
	CourseID int       `json:"course_id"`
	Name     string    `json:"name"`
	Summary  string    `json:"summary"`
	Modules  []*Module `json:"modules"`
}

// Module is an activity or resource inside a section
type Module struct {
	CourseID    int        `json:"course_id"`
	Name        string     `json:"name"`
	ModName     string     `json:"modname"` // module kind, e.g. "resource", "forum"
	URL         string     `json:"url"`
	Description string     `json:"description"`
	Contents    []*Content `json:"contents"`
}

// Content is a file or link attached to a module.
// Text is only populated for HTML file attachments.
type Content struct {
	CourseID int    `json:"course_id"`
	Type     string `json:"type"`
	Filename string `json:"filename"`
	FileURL  string `json:"fileurl"`
	Text     string `json:"text,omitempty"`
}

// NewSiteInfo creates a site with its own empty course list
func NewSiteInfo(name, url, summary string) *SiteInfo {
	return &SiteInfo{
		Name:    name,
		URL:     url,
		Summary: summary,
		Courses: []*Course{},
	}
}

// NewCourse creates a course stub. The URL is derived from the site URL and course ID.
func NewCourse(siteURL string, id int, name, summary string) *Course {
	return &Course{
		ID:       id,
		Name:     name,
		Summary:  summary,
		URL:      CourseURL(siteURL, id),
		Sections: []*Section{},
	}
}

// NewSection creates a section owned by the given course
func NewSection(courseID int, name, summary string) *Section {
	return &Section{
		CourseID: courseID,
		Name:     name,
		Summary:  summary,
		Modules:  []*Module{},
	}
}

// NewModule creates a module owned by the given course
func NewModule(courseID int, name, modName, url, description string) *Module {
	return &Module{
		CourseID:    courseID,
		Name:        name,
		ModName:     modName,
		URL:         url,
		Description: description,
		Contents:    []*Content{},
	}
}

// NewContent creates a content entry owned by the given course
func NewContent(courseID int, contentType, filename, fileURL, text string) *Content {
	return &Content{
		CourseID: courseID,
		Type:     contentType,
		Filename: filename,
		FileURL:  fileURL,
		Text:     text,
	}
}

// CourseURL returns the public view URL of a course
func CourseURL(siteURL string, id int) string {
	return fmt.Sprintf("%s/course/view.php?id=%d", strings.TrimSuffix(siteURL, "/"), id)
}

// IsHTMLFile reports whether a content record is an HTML file attachment
// whose body should be fetched.
func IsHTMLFile(contentType, filename string) bool {
	return contentType == ContentTypeFile && filename != "" && strings.HasSuffix(filename, ".html")
}

// IsPDFFile reports whether a content record is a PDF file attachment
func IsPDFFile(contentType, filename string) bool {
	return contentType == ContentTypeFile && strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// ToText renders the site overview
func (s *SiteInfo) ToText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Site Name: %s\nURL: %s\nSummary: %s\n", s.Name, s.URL, s.Summary)
	if len(s.Courses) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "\n%d courses available", len(s.Courses))
	courses := s.Courses
	if len(courses) > siteCourseListLimit {
		fmt.Fprintf(&b, "\nShowing first %d courses", siteCourseListLimit)
		courses = courses[:siteCourseListLimit]
	}
	for _, c := range courses {
		b.WriteString("\n - " + c.Name)
	}
	return b.String()
}

// ToMetadata returns the site metadata
func (s *SiteInfo) ToMetadata() map[string]string {
	return map[string]string{
		"name":      s.Name,
		"summary":   s.Summary,
		"url":       s.URL,
		MetaDocType: DocTypeSite,
	}
}

// ToText renders the course overview with its section names
func (c *Course) ToText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course %s\nURL: %s\nSummary: %s\n", c.Name, c.URL, c.Summary)
	if len(c.Sections) == 0 {
		return b.String()
	}

	b.WriteString("\nSections:")
	for _, s := range c.Sections {
		b.WriteString("\n - " + s.Name)
	}
	return b.String()
}

// ToMetadata returns the course metadata
func (c *Course) ToMetadata() map[string]string {
	return map[string]string{
		MetaCourseID: strconv.Itoa(c.ID),
		"name":       c.Name,
		"summary":    c.Summary,
		"url":        c.URL,
		MetaDocType:  DocTypeCourse,
	}
}

// ToText renders the section with the names and kinds of its modules
func (s *Section) ToText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course Section %s\nDescription: %s\n", s.Name, s.Summary)
	if len(s.Modules) == 0 {
		return b.String()
	}

	b.WriteString("\nModules:")
	for _, m := range s.Modules {
		fmt.Fprintf(&b, "\n - Module Name %s, Module Type %s", m.Name, m.ModName)
	}
	return b.String()
}

// ToMetadata returns the section metadata
func (s *Section) ToMetadata() map[string]string {
	return map[string]string{
		MetaCourseID:  strconv.Itoa(s.CourseID),
		"name":        s.Name,
		"description": s.Summary,
		MetaDocType:   DocTypeSection,
	}
}

// ToText renders the module with its attached contents
func (m *Module) ToText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course Module %s\nType: %s\nURL: %s\nDescription: %s\n", m.Name, m.ModName, m.URL, m.Description)
	if len(m.Contents) == 0 {
		return b.String()
	}

	b.WriteString("\nContents:")
	for _, c := range m.Contents {
		b.WriteString("\n - " + c.ToText())
	}
	return b.String()
}

// ToMetadata returns the module metadata
func (m *Module) ToMetadata() map[string]string {
	return map[string]string{
		MetaCourseID:  strconv.Itoa(m.CourseID),
		"name":        m.Name,
		"description": m.Description,
		MetaDocType:   DocTypeModule,
	}
}

// ToText renders the file name and, for HTML attachments, the extracted text
func (c *Content) ToText() string {
	text := "Filename: " + c.Filename
	if c.Text != "" {
		text += ", Content: " + c.Text
	}
	return text
}

// ToMetadata returns the content metadata
func (c *Content) ToMetadata() map[string]string {
	return map[string]string{
		MetaCourseID: strconv.Itoa(c.CourseID),
		"filename":   c.Filename,
		MetaDocType:  DocTypeContent,
	}
}

// Flatten walks the site tree depth-first in source order and returns every
// node: the site, then for each course the course itself followed by its
// sections, each section followed by its modules, each module followed by its contents.
func Flatten(site *SiteInfo) []Renderable {
	if site == nil {
		return nil
	}

	nodes := []Renderable{site}
	for _, course := range site.Courses {
		nodes = append(nodes, course)
		for _, section := range course.Sections {
			nodes = append(nodes, section)
			for _, module := range section.Modules {
				nodes = append(nodes, module)
				for _, content := range module.Contents {
					nodes = append(nodes, content)
				}
			}
		}
	}
	return nodes
}
