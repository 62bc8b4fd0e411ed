package assistant

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// mapPlaceURL 地图深链模板
const mapPlaceURL = "https://www.google.com/maps/place/?q=place_id:%s"

// Restaurant 附近餐厅检索结果
type Restaurant struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"reviews,omitempty"`
	PlaceID     string   `json:"place_id"`
}

// Reply 一次回复的完整结果
type Reply struct {
	Route      Route           `json:"route"`
	Message    string          `json:"message"`
	MapURL     string          `json:"url,omitempty"`
	PlaceName  string          `json:"name,omitempty"`
	Restaurant *Restaurant     `json:"restaurant,omitempty"`
	Food       *Recommendation `json:"recommendation,omitempty"`
}

// MapURL 根据 place_id 生成地图链接
func MapURL(placeID string) string {
	return fmt.Sprintf(mapPlaceURL, placeID)
}

// AssembleRecommendation 把推荐结果和餐厅检索结果合成一条回复
// restaurant 为 nil 表示附近没有找到，属于正常结果
func AssembleRecommendation(rec Recommendation, restaurant *Restaurant) *Reply {
	reply := &Reply{
		Route: RouteEmotion,
		Food:  &rec,
	}

	if restaurant == nil {
		reply.Message = fmt.Sprintf("%s<br><br>근처 '%s' 식당을 찾지 못했습니다.", rec.Reason, rec.Food)
		return reply
	}

	rating := "정보 없음"
	if restaurant.Rating != nil {
		rating = strconv.FormatFloat(*restaurant.Rating, 'f', -1, 64)
	}
	reviews := "없음"
	if restaurant.ReviewCount != nil {
		reviews = strconv.Itoa(*restaurant.ReviewCount)
	}

	var b strings.Builder
	b.WriteString(rec.Reason + "<br><br>")
	b.WriteString("추천 식당: <strong>" + restaurant.Name + "</strong><br>")
	b.WriteString("주소: " + restaurant.Address + "<br>")
	b.WriteString("평점: " + rating + "점 (리뷰 " + reviews + "명)<br>")

	reply.Message = b.String()
	reply.MapURL = MapURL(restaurant.PlaceID)
	reply.PlaceName = restaurant.Name
	reply.Restaurant = restaurant
	return reply
}

// JoinTaskOutputs 每个输出后追加换行，最后只去掉末尾空白
// 空输出同样贡献一个换行
func JoinTaskOutputs(outputs []string) string {
	var b strings.Builder
	for _, out := range outputs {
		b.WriteString(out)
		b.WriteString("\n")
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}
