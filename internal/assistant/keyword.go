// Package assistant 实现对话助手的核心逻辑
// 包括关键词分类、任务分发、情绪→美食推荐映射和回复拼装
// 所有外部能力（LLM、搜索、地图、应用控制）都通过接口注入
package assistant

import (
	"strings"
)

// 固定回复文案
const (
	GreetingReply      = "안녕하세요! 무엇을 도와드릴까요?"
	FarewellReply      = "안녕히 가세요! 좋은 하루 보내세요."
	EmptyInputReply    = "기분이나 명령을 입력해 주세요!"
	NotUnderstoodReply = "해당 명령을 이해하지 못했습니다."
	OffTopicReply      = "주제와 맞지 않는 대화입니다. 감정이나 기분에 대해 말씀해주시면 관련된 음식을 추천해 드릴게요."
)

// NewsQuery 新闻意图统一改写成的搜索词
const NewsQuery = "오늘 뉴스"

// MusicSiteSuffix 音乐意图附加的站点限定
const MusicSiteSuffix = " site:youtube.com"

var (
	// 精确匹配的问候语（去首尾空白后整句比较，区分大小写）
	exactGreetings = []string{"안녕하세요", "안녕", "하이", "안녕!"}
	exactFarewells = []string{"안녕히 가세요", "잘가", "바이"}

	newsKeywords  = []string{"뉴스", "주요 소식"}
	musicKeywords = []string{"노래", "음악", "곡", "뮤직", "추천해줘"}

	// DetectGreeting 使用的关键词，farewell 优先
	farewellKeywords = []string{"잘 가", "다음에", "또 봐", "그럼 안녕", "나 갈게", "끝"}
	greetingKeywords = []string{"안녕", "하이", "안녕하세요", "반가워"}
)

// emotionKeywords 情绪相关关键词，按情绪族分组
var emotionKeywords = map[string][]string{
	"general":    {"기분", "감정", "먹고 싶어", "배고파", "위로", "마음"},
	"joy":        {"행복", "기뻐", "기쁘", "신나", "좋아서", "설레", "즐거", "뿌듯"},
	"calm":       {"평온", "편안", "차분", "여유", "느긋", "힐링"},
	"anger":      {"화나", "화가", "짜증", "열받", "빡치", "분노", "억울"},
	"sadness":    {"슬퍼", "슬프", "우울", "눈물", "서운", "외로", "속상", "그리워"},
	"anxiety":    {"불안", "긴장돼", "긴장", "초조", "걱정", "조마조마", "스트레스"},
	"fear":       {"무서", "두려", "겁나", "공포", "떨려"},
	"shame":      {"창피", "부끄러", "민망", "수치", "쪽팔"},
	"fatigue":    {"피곤", "힘들어", "힘들", "지쳐", "지친", "졸려", "녹초", "번아웃"},
	"confusion":  {"혼란", "헷갈", "복잡해", "모르겠"},
	"surprise":   {"놀랐", "놀라", "깜짝", "당황"},
	"numbness":   {"무기력", "멍해", "공허", "아무 느낌", "허무", "지루해", "지루", "심심"},
	"indecision": {"고민", "결정을 못", "뭐 먹지", "뭘 먹", "선택을 못", "망설"},
}

// Route 一条输入最终落到的顶层状态
type Route string

const (
	RouteEmpty       Route = "empty"        // 空输入
	RouteExactPhrase Route = "exact_phrase" // 精确问候/告别
	RouteNews        Route = "news"         // 新闻短路
	RouteMusic       Route = "music"        // 音乐短路
	RouteEmotion     Route = "emotion"      // 情绪推荐
	RouteGeneral     Route = "general"      // 通用任务分发
)

// GreetingKind DetectGreeting 的结果
type GreetingKind string

const (
	GreetingNone     GreetingKind = ""
	GreetingHello    GreetingKind = "greeting"
	GreetingFarewell GreetingKind = "farewell"
)

// ExactPhraseReply 判断输入是否为固定问候/告别语
// 返回对应的固定回复和是否命中
func ExactPhraseReply(text string) (string, bool) {
	cleaned := strings.TrimSpace(text)
	if containsExact(exactGreetings, cleaned) {
		return GreetingReply, true
	}
	if containsExact(exactFarewells, cleaned) {
		return FarewellReply, true
	}
	return "", false
}

// HasNewsIntent 是否包含新闻意图关键词
func HasNewsIntent(text string) bool {
	return containsAny(text, newsKeywords)
}

// HasMusicIntent 是否包含音乐意图关键词
func HasMusicIntent(text string) bool {
	return containsAny(text, musicKeywords)
}

// IsEmotionRelated 是否包含任意情绪相关关键词
func IsEmotionRelated(text string) bool {
	for _, words := range emotionKeywords {
		if containsAny(text, words) {
			return true
		}
	}
	return false
}

// EmotionFamilies 返回文本命中的情绪族（无序去重）
func EmotionFamilies(text string) []string {
	var families []string
	for family, words := range emotionKeywords {
		if containsAny(text, words) {
			families = append(families, family)
		}
	}
	return families
}

// DetectGreeting 宽松的问候/告别识别
// 先转小写，告别关键词优先于问候关键词
func DetectGreeting(text string) GreetingKind {
	lowered := strings.ToLower(text)
	if containsAny(lowered, farewellKeywords) {
		return GreetingFarewell
	}
	if containsAny(lowered, greetingKeywords) {
		return GreetingHello
	}
	return GreetingNone
}

// Classify 按优先级计算输入的顶层路由
// 空输入 → 精确问候 → 新闻 → 音乐 → 情绪 → 通用
func Classify(text string) Route {
	if strings.TrimSpace(text) == "" {
		return RouteEmpty
	}
	if _, ok := ExactPhraseReply(text); ok {
		return RouteExactPhrase
	}
	if HasNewsIntent(text) {
		return RouteNews
	}
	if HasMusicIntent(text) {
		return RouteMusic
	}
	if IsEmotionRelated(text) {
		return RouteEmotion
	}
	return RouteGeneral
}

func containsExact(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
