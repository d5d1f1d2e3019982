package enrich

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/company-pipeline/pkg/anthropic"
)

// --- Anthropic Mock ---

type mockAIClient struct {
	mock.Mock
}

func (m *mockAIClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Limiter fake ---

type fakeLimiter struct {
	mu          sync.Mutex
	acquires    int
	successes   int
	errors      int
	rateLimited int
}

func (f *fakeLimiter) Acquire(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquires++
	return nil
}

func (f *fakeLimiter) ReportSuccess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successes++
}

func (f *fakeLimiter) ReportError() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors++
}

func (f *fakeLimiter) ReportRateLimited() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rateLimited++
}

func aiResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 20},
	}
}
