package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Options Assistant 的行为开关
type Options struct {
	// GeneralTasks 为 false 时，非情绪类输入直接返回 OffTopicReply，不走任务分发
	GeneralTasks bool
}

// Assistant 顶层的分类-回复状态机
// 每条输入只会落到一个终态：精确问候、实时短路、情绪推荐或通用分发
type Assistant struct {
	classifier  TaskClassifier
	searcher    Searcher
	places      PlaceFinder
	recommender *Recommender
	dispatcher  *Dispatcher
	opts        Options
	logger      *zap.Logger
}

// New 创建 Assistant 实例
func New(
	classifier TaskClassifier,
	searcher Searcher,
	places PlaceFinder,
	recommender *Recommender,
	dispatcher *Dispatcher,
	opts Options,
	logger *zap.Logger,
) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		classifier:  classifier,
		searcher:    searcher,
		places:      places,
		recommender: recommender,
		dispatcher:  dispatcher,
		opts:        opts,
		logger:      logger,
	}
}

// Respond 对一条用户输入生成回复
// 参数:
//   - ctx: 上下文
//   - text: 用户原始输入
//   - recentFoods: 最近推荐过的菜名，情绪推荐时排除
//
// 返回:
//   - *Reply: 回复内容（情绪路径下可能带餐厅信息和地图链接）
//   - error: 外部服务故障，调用方负责转换成用户可见的错误
func (a *Assistant) Respond(ctx context.Context, text string, recentFoods []string) (*Reply, error) {
	route := Classify(text)

	switch route {
	case RouteEmpty:
		return &Reply{Route: route, Message: EmptyInputReply}, nil

	case RouteExactPhrase:
		msg, _ := ExactPhraseReply(text)
		return &Reply{Route: route, Message: msg}, nil

	case RouteNews:
		return a.search(ctx, route, NewsQuery)

	case RouteMusic:
		return a.search(ctx, route, text+MusicSiteSuffix)

	case RouteEmotion:
		return a.recommend(ctx, text, recentFoods)

	default:
		if !a.opts.GeneralTasks {
			return &Reply{Route: route, Message: OffTopicReply}, nil
		}
		return a.dispatch(ctx, text)
	}
}

// search 实时搜索短路
func (a *Assistant) search(ctx context.Context, route Route, query string) (*Reply, error) {
	out, err := a.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return &Reply{Route: route, Message: out}, nil
}

// recommend 情绪推荐 + 附近餐厅
func (a *Assistant) recommend(ctx context.Context, text string, recentFoods []string) (*Reply, error) {
	rec := a.recommender.Recommend(ctx, text, recentFoods)

	restaurant, err := a.places.FindNearby(ctx, rec.Food)
	if err != nil {
		return nil, fmt.Errorf("find restaurant for %q: %w", rec.Food, err)
	}

	a.logger.Debug("Emotion recommendation",
		zap.String("emotion", rec.Emotion),
		zap.String("food", rec.Food),
		zap.Bool("restaurant_found", restaurant != nil),
	)
	return AssembleRecommendation(rec, restaurant), nil
}

// dispatch 多任务分发
func (a *Assistant) dispatch(ctx context.Context, text string) (*Reply, error) {
	raws, err := a.classifier.Classify(ctx, strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("classify tasks: %w", err)
	}

	out, err := a.dispatcher.Dispatch(ctx, ParseTasks(raws))
	if err != nil {
		return nil, err
	}
	return &Reply{Route: RouteGeneral, Message: out}, nil
}
