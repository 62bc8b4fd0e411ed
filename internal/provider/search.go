package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"mealmood-server/internal/assistant"
	"mealmood-server/internal/config"
)

// NoSearchResultsReply 搜索没有结果时的回复
const NoSearchResultsReply = "검색 결과가 없습니다."

// searchTimeout 单次搜索请求的超时
const searchTimeout = 15 * time.Second

// WebSearcher 基于 Google Programmable Search 的实时搜索
// 取前几条结果交给文本生成服务总结，并在末尾附上来源链接
type WebSearcher struct {
	service     *customsearch.Service
	cx          string
	results     int
	summarizer  assistant.TextGenerator
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewWebSearcher 创建 WebSearcher 实例
// 参数:
//   - cfg: 搜索配置，Endpoint 为空时使用官方地址
//   - gen: 用于总结搜索结果，可以为 nil
//   - genCfg: 总结时使用的生成参数
//   - logger: 日志器
//
// 返回:
//   - *WebSearcher: 搜索实例
//   - error: 客户端创建失败
func NewWebSearcher(cfg config.SearchConfig, gen assistant.TextGenerator, genCfg config.OpenAIConfig, logger *zap.Logger) (*WebSearcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := cfg.Results
	if results <= 0 {
		results = 3
	}

	opts := []option.ClientOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		// 没有 Key 时不去找默认凭据，请求由服务端拒绝
		opts = append(opts, option.WithoutAuthentication())
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := customsearch.NewService(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create custom search client: %w", err)
	}

	return &WebSearcher{
		service:     service,
		cx:          cfg.CX,
		results:     results,
		summarizer:  gen,
		maxTokens:   genCfg.MaxTokens,
		temperature: genCfg.Temperature,
		logger:      logger,
	}, nil
}

// Search 执行搜索并返回总结文本
// 网络或鉴权失败返回错误；没有结果不算错误
func (s *WebSearcher) Search(ctx context.Context, query string) (string, error) {
	items, err := s.fetch(ctx, query)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return NoSearchResultsReply, nil
	}

	summary := s.summarize(ctx, query, items)

	var b strings.Builder
	b.WriteString(summary)
	b.WriteString("\n\n출처:")
	for _, item := range items {
		fmt.Fprintf(&b, "\n- %s: %s", item.Title, item.Link)
	}
	return b.String(), nil
}

func (s *WebSearcher) fetch(ctx context.Context, query string) ([]*customsearch.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	resp, err := s.service.Cse.List().
		Cx(s.cx).
		Q(query).
		Num(int64(s.results)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to call search service: %w", err)
	}

	items := resp.Items
	if len(items) > s.results {
		items = items[:s.results]
	}
	return items, nil
}

// summarize 让文本生成服务总结搜索结果
// 总结失败时退回到直接列出摘要
func (s *WebSearcher) summarize(ctx context.Context, query string, items []*customsearch.Result) string {
	var snippets strings.Builder
	for i, item := range items {
		fmt.Fprintf(&snippets, "%d. %s\n%s\n", i+1, item.Title, item.Snippet)
	}

	if s.summarizer != nil {
		prompt := fmt.Sprintf("다음은 \"%s\"에 대한 검색 결과입니다. 핵심 내용을 한국어로 3문장 이내로 요약해 주세요.\n\n%s", query, snippets.String())
		out, err := s.summarizer.Generate(ctx, prompt, s.maxTokens, s.temperature)
		if err == nil && strings.TrimSpace(out) != "" {
			return strings.TrimSpace(out)
		}
		if err != nil {
			s.logger.Warn("Failed to summarize search results", zap.String("query", query), zap.Error(err))
		}
	}
	return strings.TrimSpace(snippets.String())
}
