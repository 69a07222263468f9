package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
)

// Scraper walks a Moodle site and assembles the site → course → section → module → content tree.
type Scraper struct {
	client   driven.MoodleClient
	fetchPDF bool
	logger   *slog.Logger
}

// ScraperConfig holds configuration for the scraper.
type ScraperConfig struct {
	Client driven.MoodleClient

	// FetchPDF also downloads PDF attachments and indexes their text.
	// HTML attachments are always fetched.
	FetchPDF bool

	Logger *slog.Logger
}

// NewScraper creates a new scraper.
func NewScraper(cfg ScraperConfig) *Scraper {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		client:   cfg.Client,
		fetchPDF: cfg.FetchPDF,
		logger:   logger,
	}
}

// Scrape fetches the whole site. The first course record is the site itself,
// the remaining records are real courses. An empty course list returns
// domain.ErrNoData. Any client failure aborts the scrape.
func (s *Scraper) Scrape(ctx context.Context) (*domain.SiteInfo, error) {
	records, err := s.client.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrNoData
	}

	siteURL := s.client.SiteURL()
	front := records[0]
	site := domain.NewSiteInfo(front.FullName, siteURL, front.Summary)

	for _, rec := range records[1:] {
		course := domain.NewCourse(siteURL, rec.ID, rec.FullName, rec.Summary)
		if err := s.scrapeCourse(ctx, course); err != nil {
			return nil, err
		}
		site.Courses = append(site.Courses, course)
	}

	s.logger.Info("moodle site scraped",
		"site", site.Name,
		"courses", len(site.Courses),
	)
	return site, nil
}

// scrapeCourse fills the sections of a course stub.
func (s *Scraper) scrapeCourse(ctx context.Context, course *domain.Course) error {
	sections, err := s.client.GetCourseContents(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("get contents of course %d: %w", course.ID, err)
	}

	for _, secRec := range sections {
		section := domain.NewSection(course.ID, secRec.Name, secRec.Summary)
		for _, modRec := range secRec.Modules {
			module := domain.NewModule(course.ID, modRec.Name, modRec.ModName, modRec.URL, modRec.Description)
			for _, c := range modRec.Contents {
				content, err := s.buildContent(ctx, course.ID, c)
				if err != nil {
					return err
				}
				module.Contents = append(module.Contents, content)
			}
			section.Modules = append(section.Modules, module)
		}
		course.Sections = append(course.Sections, section)
	}

	s.logger.Debug("course scraped", "course_id", course.ID, "sections", len(course.Sections))
	return nil
}

// buildContent converts a content record, fetching the body of HTML file attachments
// and, when enabled, PDF attachments.
func (s *Scraper) buildContent(ctx context.Context, courseID int, rec driven.MoodleContentRecord) (*domain.Content, error) {
	if !s.shouldFetch(rec) {
		return domain.NewContent(courseID, rec.Type, rec.Filename, rec.FileURL, ""), nil
	}

	text, err := s.client.FetchContent(ctx, rec.FileURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rec.Filename, err)
	}
	return domain.NewContent(courseID, rec.Type, rec.Filename, rec.FileURL, text), nil
}

func (s *Scraper) shouldFetch(rec driven.MoodleContentRecord) bool {
	if domain.IsHTMLFile(rec.Type, rec.Filename) {
		return true
	}
	return s.fetchPDF && domain.IsPDFFile(rec.Type, rec.Filename)
}
