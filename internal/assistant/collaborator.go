package assistant

import (
	"context"
)

// TextGenerator 文本生成服务
// 返回的文本不保证符合任何格式
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// TaskClassifier 意图分类服务
// 返回带前缀的任务文本，顺序即执行顺序
type TaskClassifier interface {
	Classify(ctx context.Context, query string) ([]string, error)
}

// ChatResponder 一般对话服务
type ChatResponder interface {
	Chat(ctx context.Context, query string) (string, error)
}

// Searcher 实时搜索服务，结果文本中自带来源链接
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// AppController 本地应用控制
type AppController interface {
	Open(ctx context.Context, name string) error
	Close(ctx context.Context, name string) error
}

// PlaceFinder 附近餐厅检索
// 没有结果时返回 (nil, nil)
type PlaceFinder interface {
	FindNearby(ctx context.Context, food string) (*Restaurant, error)
}
