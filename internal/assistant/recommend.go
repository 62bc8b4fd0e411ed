package assistant

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
)

// 回复中三行的固定前缀
const (
	emotionLinePrefix = "기분 요약:"
	foodLinePrefix    = "추천 음식:"
	reasonLinePrefix  = "추천 이유:"
)

// EmotionLabels 提示词要求模型从中选择的六种情绪
var EmotionLabels = []string{"행복", "우울", "스트레스", "화남", "긴장", "지루함"}

// FallbackFoods 模型没有给出菜名时的候选
var FallbackFoods = []string{"김밥", "떡볶이", "비빔밥", "갈비탕", "파스타", "치킨"}

// Recommendation 情绪推荐结果
// 任一字段为空表示模型回复里没有对应的行
type Recommendation struct {
	Emotion string `json:"emotion,omitempty"`
	Food    string `json:"food,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// RecommenderConfig 文本生成参数
type RecommenderConfig struct {
	MaxTokens   int     // 最大输出 token 数
	Temperature float32 // 采样温度
}

// Recommender 情绪→美食推荐映射器
type Recommender struct {
	gen    TextGenerator
	cfg    RecommenderConfig
	now    func() time.Time
	pick   func(n int) int
	logger *zap.Logger
}

// RecommenderOption 可选配置
type RecommenderOption func(*Recommender)

// WithClock 替换当前时间来源
func WithClock(now func() time.Time) RecommenderOption {
	return func(r *Recommender) { r.now = now }
}

// WithPicker 替换兜底菜名的随机选择
func WithPicker(pick func(n int) int) RecommenderOption {
	return func(r *Recommender) { r.pick = pick }
}

// NewRecommender 创建 Recommender 实例
func NewRecommender(gen TextGenerator, cfg RecommenderConfig, logger *zap.Logger, opts ...RecommenderOption) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recommender{
		gen:    gen,
		cfg:    cfg,
		now:    time.Now,
		pick:   rand.Intn,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommend 分析情绪并推荐菜品
// 生成服务失败或回复格式不对都不算错误，缺失的菜名由兜底列表补齐
// 参数:
//   - ctx: 上下文
//   - text: 用户原文
//   - recentFoods: 最近推荐过、需要排除的菜名
//
// 返回:
//   - Recommendation: Food 和 Reason 一定非空
func (r *Recommender) Recommend(ctx context.Context, text string, recentFoods []string) Recommendation {
	prompt := BuildPrompt(text, r.now(), recentFoods)

	reply, err := r.gen.Generate(ctx, prompt, r.cfg.MaxTokens, r.cfg.Temperature)
	if err != nil {
		r.logger.Warn("Text generation failed, using fallback food", zap.Error(err))
		reply = ""
	}

	rec := ParseRecommendation(reply)
	return CompleteWithFallback(rec, r.pick)
}

// TimeSlot 根据小时返回时间段
// [0,11) 아침，[11,17) 점심，[17,24) 저녁
func TimeSlot(hour int) string {
	switch {
	case hour < 11:
		return "아침"
	case hour < 17:
		return "점심"
	default:
		return "저녁"
	}
}

// BuildPrompt 构造情绪分析+美食推荐提示词
func BuildPrompt(text string, now time.Time, recentFoods []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n사용자의 메시지: \"%s\"\n\n", text)
	fmt.Fprintf(&b, "- 현재 시간은 %s %s입니다.\n", now.Format("2006년 01월 02일"), TimeSlot(now.Hour()))
	fmt.Fprintf(&b, "- 사용자의 기분을 하나의 감정(%s)으로 분석해주세요.\n", strings.Join(EmotionLabels, ", "))
	b.WriteString("- 그 감정에 어울리는 한국 음식을 추천해주세요.\n")
	fmt.Fprintf(&b, "- 최근 추천된 음식(%s)은 제외하고 추천해주세요.\n", strings.Join(recentFoods, ", "))
	b.WriteString("- 흔하지 않고 특별한 음식을 추천해주세요.\n")
	b.WriteString("- 추천 이유는 감정과 연결하여 따뜻하게 설명해주세요.\n\n")
	b.WriteString("형식:\n")
	b.WriteString(emotionLinePrefix + " (감정)\n")
	b.WriteString(foodLinePrefix + " (음식 이름)\n")
	b.WriteString(reasonLinePrefix + " (이유)\n")
	return b.String()
}

// ParseRecommendation 逐行扫描模型回复
// 每个前缀只取第一次出现的行，找不到的字段留空
func ParseRecommendation(reply string) Recommendation {
	var rec Recommendation
	var seenEmotion, seenFood, seenReason bool

	for _, line := range strings.Split(strings.TrimSpace(reply), "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, emotionLinePrefix):
			if !seenEmotion {
				rec.Emotion = strings.TrimSpace(strings.TrimPrefix(line, emotionLinePrefix))
				seenEmotion = true
			}
		case strings.HasPrefix(line, foodLinePrefix):
			if !seenFood {
				rec.Food = strings.TrimSpace(strings.TrimPrefix(line, foodLinePrefix))
				seenFood = true
			}
		case strings.HasPrefix(line, reasonLinePrefix):
			if !seenReason {
				rec.Reason = strings.TrimSpace(strings.TrimPrefix(line, reasonLinePrefix))
				seenReason = true
			}
		}
	}
	return rec
}

// CompleteWithFallback 菜名缺失时从 FallbackFoods 中均匀随机选一个
// 并把推荐理由替换为通用句子；菜名存在时原样返回
func CompleteWithFallback(rec Recommendation, pick func(n int) int) Recommendation {
	if rec.Food != "" {
		return rec
	}
	rec.Food = FallbackFoods[pick(len(FallbackFoods))]
	rec.Reason = rec.Food + " 추천해드려요!"
	return rec
}
