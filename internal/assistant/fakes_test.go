package assistant

import (
	"context"
	"errors"
	"sync"
)

var errUpstream = errors.New("upstream down")

type fakeGenerator struct {
	reply       string
	err         error
	prompts     []string
	maxTokens   int
	temperature float32
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.maxTokens = maxTokens
	f.temperature = temperature
	return f.reply, f.err
}

type fakeClassifier struct {
	tasks   []string
	err     error
	queries []string
}

func (f *fakeClassifier) Classify(_ context.Context, query string) ([]string, error) {
	f.queries = append(f.queries, query)
	return f.tasks, f.err
}

type fakeChat struct {
	err     error
	queries []string
}

func (f *fakeChat) Chat(_ context.Context, query string) (string, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return "", f.err
	}
	return "chat:" + query, nil
}

type fakeSearcher struct {
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) (string, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return "", f.err
	}
	return "search:" + query, nil
}

type fakeApps struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (f *fakeApps) Open(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "open:"+name)
	return f.err
}

func (f *fakeApps) Close(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "close:"+name)
	return f.err
}

type fakePlaces struct {
	result *Restaurant
	err    error
	foods  []string
}

func (f *fakePlaces) FindNearby(_ context.Context, food string) (*Restaurant, error) {
	f.foods = append(f.foods, food)
	return f.result, f.err
}

type harness struct {
	gen        *fakeGenerator
	classifier *fakeClassifier
	chat       *fakeChat
	search     *fakeSearcher
	apps       *fakeApps
	places     *fakePlaces
	assistant  *Assistant
}

func newHarness(generalTasks bool) *harness {
	h := &harness{
		gen:        &fakeGenerator{},
		classifier: &fakeClassifier{},
		chat:       &fakeChat{},
		search:     &fakeSearcher{},
		apps:       &fakeApps{},
		places:     &fakePlaces{},
	}
	rec := NewRecommender(h.gen, RecommenderConfig{MaxTokens: 300, Temperature: 0.7}, nil,
		WithPicker(func(int) int { return 0 }))
	disp := NewDispatcher(h.chat, h.search, h.apps, nil)
	h.assistant = New(h.classifier, h.search, h.places, rec, disp, Options{GeneralTasks: generalTasks}, nil)
	return h
}
