package service

import (
	"context"
	"skillsync-go/internal/model"
	"skillsync-go/pkg/es"
	"skillsync-go/pkg/llm"
)

// fakeLLM 是 llm.Client 的测试替身，返回预设的补全结果。
type fakeLLM struct {
	response     string
	err          error
	lastMessages []llm.Message
	lastJSONMode bool
	calls        int
}

func (f *fakeLLM) ChatCompletion(ctx context.Context, messages []llm.Message, gen *llm.GenerationParams, jsonMode bool) (string, error) {
	f.calls++
	f.lastMessages = messages
	f.lastJSONMode = jsonMode
	return f.response, f.err
}

func (f *fakeLLM) StreamChatMessages(ctx context.Context, messages []llm.Message, gen *llm.GenerationParams, writer llm.MessageWriter) error {
	f.calls++
	f.lastMessages = messages
	return f.err
}

// fakeEmbedder 是 embedding.Client 的测试替身。
type fakeEmbedder struct {
	vector   []float32
	err      error
	lastText string
}

func (f *fakeEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.lastText = text
	return f.vector, f.err
}

// fakeIndex 是 es.Searcher 的测试替身，记录每次调用的 k 与过滤条件。
type fakeIndex struct {
	results     []es.ScoredPosting
	err         error
	lastK       int
	lastFilters map[string]string
	calls       int
}

func (f *fakeIndex) SimilaritySearch(ctx context.Context, queryVector []float32, k int, filters map[string]string) ([]es.ScoredPosting, error) {
	f.calls++
	f.lastK = k
	f.lastFilters = filters
	return f.results, f.err
}

// fakeHistoryRepo 是 repository.HistoryRepository 的测试替身。
type fakeHistoryRepo struct {
	entries   map[string][]model.RecommendationEntry
	appendErr error
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{entries: make(map[string][]model.RecommendationEntry)}
}

func (f *fakeHistoryRepo) AppendEntry(ctx context.Context, identity string, entry model.RecommendationEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries[identity] = append(f.entries[identity], entry)
	return nil
}

func (f *fakeHistoryRepo) GetRecent(ctx context.Context, identity string) ([]model.RecommendationEntry, error) {
	return f.entries[identity], nil
}

// stubExtraction 返回固定的抽取结果。
type stubExtraction struct {
	profile  *model.CandidateProfile
	degraded bool
	err      error
}

func (s *stubExtraction) ExtractProfile(ctx context.Context, rawText string) (*model.CandidateProfile, bool, error) {
	return s.profile, s.degraded, s.err
}

// stubSearch 按调用次序返回预设结果，并记录每次收到的过滤条件。
type stubSearch struct {
	resultsPerCall [][]model.SearchResult
	err            error
	filterCalls    []map[string]string
}

func (s *stubSearch) SearchJobs(ctx context.Context, query string, k int, filters map[string]string) ([]model.SearchResult, error) {
	s.filterCalls = append(s.filterCalls, filters)
	if s.err != nil {
		return nil, s.err
	}
	idx := len(s.filterCalls) - 1
	if idx >= len(s.resultsPerCall) {
		return []model.SearchResult{}, nil
	}
	return s.resultsPerCall[idx], nil
}

// stubGap 返回固定的差距分析结果。
type stubGap struct {
	report          *model.GapReport
	err             error
	lastDescription string
}

func (s *stubGap) AnalyzeGap(ctx context.Context, querySummary, jobDescription string) (*model.GapReport, error) {
	s.lastDescription = jobDescription
	return s.report, s.err
}
