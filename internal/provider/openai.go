// Package provider 实现助手依赖的外部服务
// 包括 OpenAI 文本生成、网页搜索、Google Places 和本地应用控制
package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"mealmood-server/internal/config"
)

// ErrEmptyCompletion 模型没有返回任何候选
var ErrEmptyCompletion = errors.New("openai returned no choices")

const chatSystemPrompt = "당신은 친절한 한국어 AI 비서입니다. 사용자의 질문에 간결하고 정확하게 한국어로 답하세요."

const classifySystemPrompt = `당신은 사용자의 요청을 작업 단위로 분류하는 분류기입니다.
요청을 아래 형식의 줄로만 출력하세요. 설명이나 다른 문장은 출력하지 마세요.
- general (질문): 일반적인 대화나 지식 질문
- realtime (질문): 최신 정보나 실시간 검색이 필요한 질문
- open (앱 이름): 애플리케이션 열기
- close (앱 이름): 애플리케이션 닫기
여러 작업이 있으면 순서대로 한 줄에 하나씩 출력하세요.`

// minTemperature 代替 0 的采样温度
// 请求体里 temperature 为 0 会被省略，服务端会按默认值 1.0 采样
const minTemperature = math.SmallestNonzeroFloat32

// listMarker 行首的列表符号，包括 "-"、"*"、"•" 和 "1." / "2)" 这样的编号
var listMarker = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)

// OpenAI go-openai 客户端的封装
// 同时实现 TextGenerator、TaskClassifier 和 ChatResponder
type OpenAI struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewOpenAI 创建 OpenAI 实例
// 参数:
//   - cfg: OpenAI 配置，BaseURL 为空时使用官方地址
//   - logger: 日志器
func NewOpenAI(cfg config.OpenAIConfig, logger *zap.Logger) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAI{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Generate 单轮文本生成
func (o *OpenAI) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	return o.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}, maxTokens, temperature)
}

// Chat 一般对话
func (o *OpenAI) Chat(ctx context.Context, query string) (string, error) {
	return o.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: chatSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}, o.maxTokens, o.temperature)
}

// Classify 把用户输入拆成带前缀的任务行
// 模型没有给出任何可用的行时，整句按 general 处理
func (o *OpenAI) Classify(ctx context.Context, query string) ([]string, error) {
	out, err := o.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: classifySystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}, o.maxTokens, minTemperature)
	if err != nil {
		return nil, err
	}

	tasks := ParseClassifierOutput(out)
	if len(tasks) == 0 {
		o.logger.Warn("Classifier returned no tasks", zap.String("output", out))
		return []string{"general " + query}, nil
	}
	return tasks, nil
}

// ParseClassifierOutput 把模型输出按行拆分
// 去掉列表符号、编号和空行，其余内容原样保留
func ParseClassifierOutput(out string) []string {
	var tasks []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		line = listMarker.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tasks = append(tasks, line)
	}
	return tasks
}

func (o *OpenAI) complete(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int, temperature float32) (string, error) {
	if temperature == 0 {
		temperature = minTemperature
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
