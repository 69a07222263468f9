package mocks

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
)

// MockMoodleClient is an in-memory Moodle site for testing
type MockMoodleClient struct {
	mu sync.Mutex

	siteURL  string
	Courses  []driven.MoodleCourseRecord
	Contents map[int][]driven.MoodleSectionRecord
	Files    map[string]string

	// Error injection (optional)
	ListErr     error
	ContentsErr map[int]error
	FetchErr    error

	listCalls    int
	contentCalls []int
	fetched      []string
}

// NewMockMoodleClient creates an empty mock site
func NewMockMoodleClient(siteURL string) *MockMoodleClient {
	return &MockMoodleClient{
		siteURL:     siteURL,
		Contents:    make(map[int][]driven.MoodleSectionRecord),
		Files:       make(map[string]string),
		ContentsErr: make(map[int]error),
	}
}

func (m *MockMoodleClient) Call(ctx context.Context, function string, params url.Values, out any) error {
	return errors.New("mock moodle client: Call not supported, use the typed methods")
}

func (m *MockMoodleClient) ListCourses(ctx context.Context) ([]driven.MoodleCourseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Courses, nil
}

func (m *MockMoodleClient) GetCourseContents(ctx context.Context, courseID int) ([]driven.MoodleSectionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contentCalls = append(m.contentCalls, courseID)
	if err := m.ContentsErr[courseID]; err != nil {
		return nil, err
	}
	return m.Contents[courseID], nil
}

func (m *MockMoodleClient) FetchContent(ctx context.Context, fileURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, fileURL)
	if m.FetchErr != nil {
		return "", m.FetchErr
	}
	body, ok := m.Files[fileURL]
	if !ok {
		return "", fmt.Errorf("%w: %s returned status 404", domain.ErrUpstream, fileURL)
	}
	return body, nil
}

func (m *MockMoodleClient) SiteURL() string {
	return m.siteURL
}

// Helper methods for testing

// ListCalls returns how often ListCourses was called
func (m *MockMoodleClient) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// ContentCalls returns the course IDs passed to GetCourseContents, in call order
func (m *MockMoodleClient) ContentCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.contentCalls...)
}

// Fetched returns the file URLs passed to FetchContent, in call order
func (m *MockMoodleClient) Fetched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fetched...)
}
