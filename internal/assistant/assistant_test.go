package assistant

import (
	"context"
	"errors"
	"testing"
)

func TestRespondExactGreetingSkipsClassifier(t *testing.T) {
	h := newHarness(true)
	for _, text := range []string{"안녕", "안녕하세요", "하이", "안녕!"} {
		reply, err := h.assistant.Respond(context.Background(), text, nil)
		if err != nil {
			t.Fatalf("respond: %v", err)
		}
		if reply.Message != GreetingReply {
			t.Fatalf("%q: unexpected reply %q", text, reply.Message)
		}
	}
	if len(h.classifier.queries) != 0 || len(h.search.queries) != 0 {
		t.Fatalf("collaborators must not be called for exact greetings")
	}
}

func TestRespondNewsAlwaysSearchesTodayNews(t *testing.T) {
	h := newHarness(true)
	for _, text := range []string{"뉴스", "오늘 스포츠 뉴스 알려줘", "우울한데 뉴스 좀"} {
		reply, err := h.assistant.Respond(context.Background(), text, nil)
		if err != nil {
			t.Fatalf("respond: %v", err)
		}
		if reply.Message != "search:"+NewsQuery {
			t.Fatalf("%q: unexpected reply %q", text, reply.Message)
		}
	}
	for _, q := range h.search.queries {
		if q != NewsQuery {
			t.Fatalf("unexpected query %q", q)
		}
	}
}

func TestRespondMusicAppendsSiteSuffix(t *testing.T) {
	h := newHarness(true)
	text := "잔잔한 노래 틀어줘 "
	if _, err := h.assistant.Respond(context.Background(), text, nil); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if len(h.search.queries) != 1 || h.search.queries[0] != text+" site:youtube.com" {
		t.Fatalf("unexpected search queries %q", h.search.queries)
	}
}

func TestRespondEmotionWithRestaurant(t *testing.T) {
	h := newHarness(true)
	h.gen.reply = "기분 요약: 스트레스\n추천 음식: 쭈꾸미볶음\n추천 이유: 매콤해서 풀려요"
	h.places.result = &Restaurant{Name: "쭈꾸미집", Address: "수원", PlaceID: "pid"}

	reply, err := h.assistant.Respond(context.Background(), "스트레스 받아", []string{"냉면"})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if reply.Route != RouteEmotion {
		t.Fatalf("unexpected route %s", reply.Route)
	}
	if reply.MapURL != MapURL("pid") || reply.PlaceName != "쭈꾸미집" {
		t.Fatalf("unexpected restaurant fields %+v", reply)
	}
	if len(h.places.foods) != 1 || h.places.foods[0] != "쭈꾸미볶음" {
		t.Fatalf("unexpected place lookups %v", h.places.foods)
	}
	if reply.Food == nil || reply.Food.Emotion != "스트레스" {
		t.Fatalf("recommendation not attached: %+v", reply.Food)
	}
}

func TestRespondEmotionFallbackAndNoMatch(t *testing.T) {
	h := newHarness(true)
	h.gen.reply = "형식을 지키지 않은 답변"

	reply, err := h.assistant.Respond(context.Background(), "기분이 묘해", nil)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	want := "김밥 추천해드려요!<br><br>근처 '김밥' 식당을 찾지 못했습니다."
	if reply.Message != want {
		t.Fatalf("unexpected message %q", reply.Message)
	}
}

func TestRespondEmotionPlaceFaultPropagates(t *testing.T) {
	h := newHarness(true)
	h.gen.reply = "추천 음식: 수제비"
	h.places.err = errUpstream

	if _, err := h.assistant.Respond(context.Background(), "힘들어", nil); !errors.Is(err, errUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestRespondGeneralDispatch(t *testing.T) {
	h := newHarness(true)
	h.classifier.tasks = []string{"general 오늘 날씨", "open 계산기"}

	reply, err := h.assistant.Respond(context.Background(), "오늘 날씨 알려주고 계산기 열어", nil)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if reply.Message != "chat:오늘 날씨\n계산기을(를) 열었습니다." {
		t.Fatalf("unexpected message %q", reply.Message)
	}
	if len(h.apps.calls) != 1 {
		t.Fatalf("expected one app call, got %v", h.apps.calls)
	}
}

func TestRespondOffTopicWhenGeneralDisabled(t *testing.T) {
	h := newHarness(false)
	reply, err := h.assistant.Respond(context.Background(), "계산기 열어", nil)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if reply.Message != OffTopicReply {
		t.Fatalf("unexpected message %q", reply.Message)
	}
	if len(h.classifier.queries) != 0 {
		t.Fatalf("classifier must not run when general tasks are disabled")
	}
}

func TestRespondEmptyInput(t *testing.T) {
	h := newHarness(true)
	for _, text := range []string{"", "   ", "\n\t"} {
		reply, err := h.assistant.Respond(context.Background(), text, nil)
		if err != nil {
			t.Fatalf("respond: %v", err)
		}
		if reply.Message != EmptyInputReply || reply.Route != RouteEmpty {
			t.Fatalf("unexpected reply %+v", reply)
		}
	}
	if len(h.classifier.queries)+len(h.search.queries)+len(h.gen.prompts) != 0 {
		t.Fatalf("empty input must not reach any collaborator")
	}
}

func TestRespondClassifierFault(t *testing.T) {
	h := newHarness(true)
	h.classifier.err = errUpstream
	if _, err := h.assistant.Respond(context.Background(), "계산기 열어", nil); !errors.Is(err, errUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
