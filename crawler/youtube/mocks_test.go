package youtube

import (
	"context"

	"github.com/researchaccelerator-hub/youtube-lead-hunter/model"
	youtubemodel "github.com/researchaccelerator-hub/youtube-lead-hunter/model/youtube"
	"github.com/stretchr/testify/mock"
)

// MockSearchProvider is a mock implementation of client.SearchProvider
type MockSearchProvider struct {
	mock.Mock
}

func (m *MockSearchProvider) SearchVideos(ctx context.Context, term string, limit int) (*youtubemodel.SearchResult, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*youtubemodel.SearchResult), args.Error(1)
}

func (m *MockSearchProvider) Name() string {
	return "mock"
}

// MockLeadWriter is a mock implementation of LeadWriter
type MockLeadWriter struct {
	mock.Mock
}

func (m *MockLeadWriter) AppendLeads(leads []model.Lead) error {
	args := m.Called(leads)
	return args.Error(0)
}

func (m *MockLeadWriter) Path() string {
	args := m.Called()
	return args.String(0)
}

// providerFunc adapts a function to client.SearchProvider
type providerFunc func(ctx context.Context, term string, limit int) (*youtubemodel.SearchResult, error)

func (f providerFunc) SearchVideos(ctx context.Context, term string, limit int) (*youtubemodel.SearchResult, error) {
	return f(ctx, term, limit)
}

func (f providerFunc) Name() string {
	return "func"
}

// logRecorder collects sink messages in order
type logRecorder struct {
	lines []string
}

func (r *logRecorder) sink(msg string) {
	r.lines = append(r.lines, msg)
}
