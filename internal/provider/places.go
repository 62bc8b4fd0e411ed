package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"mealmood-server/internal/assistant"
	"mealmood-server/internal/config"
)

// Places 基于 Google Places Text Search 的附近餐厅检索
type Places struct {
	client   *maps.Client
	region   string
	language string
	logger   *zap.Logger
}

// NewPlaces 创建 Places 实例
// 参数:
//   - cfg: Places 配置
//   - logger: 日志器
//   - opts: 额外的客户端选项（测试时用于替换 BaseURL）
//
// 返回:
//   - *Places: 检索实例
//   - error: API Key 缺失等初始化错误
func NewPlaces(cfg config.PlacesConfig, logger *zap.Logger, opts ...maps.ClientOption) (*Places, error) {
	options := append([]maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}, opts...)
	client, err := maps.NewClient(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Places{
		client:   client,
		region:   cfg.Region,
		language: cfg.Language,
		logger:   logger,
	}, nil
}

// FindNearby 以 "{地区} {菜名}" 检索，取第一条结果
// 没有结果返回 (nil, nil)
func (p *Places) FindNearby(ctx context.Context, food string) (*assistant.Restaurant, error) {
	query := strings.TrimSpace(p.region + " " + food)

	resp, err := p.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    query,
		Language: p.language,
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return nil, nil
		}
		return nil, fmt.Errorf("places text search: %w", err)
	}
	if len(resp.Results) == 0 {
		p.logger.Debug("No restaurant found", zap.String("query", query))
		return nil, nil
	}

	place := resp.Results[0]
	restaurant := &assistant.Restaurant{
		Name:      place.Name,
		Address:   place.FormattedAddress,
		Latitude:  place.Geometry.Location.Lat,
		Longitude: place.Geometry.Location.Lng,
		PlaceID:   place.PlaceID,
	}
	if place.Rating > 0 {
		// float32 直接转换会带出多余的小数位
		rating, _ := strconv.ParseFloat(strconv.FormatFloat(float64(place.Rating), 'f', -1, 32), 64)
		restaurant.Rating = &rating
	}
	if place.UserRatingsTotal > 0 {
		reviews := place.UserRatingsTotal
		restaurant.ReviewCount = &reviews
	}
	return restaurant, nil
}
