package services

import (
	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven/mocks"
)

const testSiteURL = "https://moodle.example.org"

// newTestMoodle returns a mock site with a front page and two courses.
// Course 42 carries one HTML attachment and one PDF.
func newTestMoodle() *mocks.MockMoodleClient {
	m := mocks.NewMockMoodleClient(testSiteURL)
	m.Courses = []driven.MoodleCourseRecord{
		{ID: 1, FullName: "FutureLearnLab", Summary: "Lernen für morgen", Format: "site"},
		{ID: 42, FullName: "Data Literacy", Summary: "Daten verstehen", Format: "topics"},
		{ID: 7, FullName: "Python Basics", Summary: "Erste Schritte", Format: "weeks"},
	}
	m.Contents[42] = []driven.MoodleSectionRecord{
		{
			ID: 1, Name: "Einführung", Summary: "Worum es geht",
			Modules: []driven.MoodleModuleRecord{
				{
					ID: 10, Name: "Skript", ModName: "resource", URL: testSiteURL + "/mod/resource/view.php?id=10",
					Contents: []driven.MoodleContentRecord{
						{Type: domain.ContentTypeFile, Filename: "intro.html", FileURL: testSiteURL + "/pluginfile.php/1/intro.html"},
						{Type: domain.ContentTypeFile, Filename: "slides.pdf", FileURL: testSiteURL + "/pluginfile.php/1/slides.pdf"},
					},
				},
				{ID: 11, Name: "Forum", ModName: "forum", URL: testSiteURL + "/mod/forum/view.php?id=11"},
			},
		},
		{ID: 2, Name: "Statistik", Summary: "Grundlagen"},
	}
	m.Contents[7] = []driven.MoodleSectionRecord{
		{
			ID: 3, Name: "Woche 1", Summary: "Variablen",
			Modules: []driven.MoodleModuleRecord{
				{ID: 20, Name: "Quiz", ModName: "quiz", Description: "Teste dein Wissen"},
			},
		},
	}
	m.Files[testSiteURL+"/pluginfile.php/1/intro.html"] = "Willkommen zum Kurs Data Literacy"
	return m
}
