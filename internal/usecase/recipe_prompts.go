package usecase

import (
	"fmt"
	"strings"

	"github.com/fridgechef/backend/internal/domain"
)

const searchSystemPrompt = "당신은 요리 전문가입니다. 제공된 재료를 사용하여 실용적이고 맛있는 레시피를 추천합니다. " +
	"항상 유효한 JSON 형식으로 응답하세요."

const suggestionSystemPrompt = "당신은 한국 요리 전문가입니다. 제공된 재료와 선호도에 맞는 요리를 추천합니다. " +
	"항상 유효한 JSON 형식으로 응답하세요."

// favoriteMenus is the curated preference list sent with every generative prompt.
const favoriteMenus = `- 국물 요리: 김치찌개, 된장찌개, 순두부찌개, 부대찌개, 갈비탕, 설렁탕, 미역국 등
- 밥 요리: 비빔밥, 김치볶음밥, 볶음밥, 주먹밥 등
- 고기 요리: 불고기, 삼겹살, 갈비, 제육볶음 등
- 간단 요리: 계란말이, 계란후라이, 계란찜, 두부조림, 나물 등
- 면 요리: 라면, 짜장면, 비빔국수 등
- 간식: 떡볶이, 순대, 어묵 등`

const recipeJSONShape = `{
  "recipes": [
    {
      "name": "요리 이름 (한국어)",
      "description": "간단한 설명 (50자 이내)",
      "cookingTime": 30,
      "difficulty": "쉬움|보통|어려움",
      "ingredients": ["재료1", "재료2", "재료3"],
      "steps": ["1단계 설명", "2단계 설명", "3단계 설명"]
    }
  ]
}`

// buildSearchPrompt asks for up to three recipes that use the given ingredients.
func buildSearchPrompt(ingredients []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "다음 재료들을 사용하여 만들 수 있는 맛있는 요리 레시피 3개를 추천해주세요.\n\n")
	fmt.Fprintf(&b, "재료: %s\n\n", strings.Join(ingredients, ", "))
	fmt.Fprintf(&b, "한국인들이 선호하는 메뉴를 우선적으로 추천해주세요:\n%s\n\n", favoriteMenus)
	fmt.Fprintf(&b, "각 레시피에 대해 다음 형식의 JSON으로 응답해주세요:\n%s\n\n", recipeJSONShape)
	b.WriteString("중요:\n")
	b.WriteString("- 모든 내용은 한국어로 작성해주세요\n")
	b.WriteString("- 실제로 제공된 재료를 사용할 수 있는 레시피만 추천해주세요\n")
	b.WriteString("- 조리 방법은 단계별로 명확하게 작성해주세요\n")
	b.WriteString("- 최대 3개의 레시피만 추천해주세요")
	return b.String()
}

// SuggestionRequest is the context for an enrichment prompt.
type SuggestionRequest struct {
	Ingredients []string
	Preferences []string
	Weather     domain.WeatherSnapshot
}

// buildSuggestionPrompt adds taste preferences and weather to the ingredient list.
func buildSuggestionPrompt(req SuggestionRequest) string {
	preferences := strings.Join(req.Preferences, ", ")
	if preferences == "" {
		preferences = "없음"
	}

	var b strings.Builder
	b.WriteString("다음 정보를 바탕으로 한국인들이 선호하는 요리를 추천해주세요:\n\n")
	fmt.Fprintf(&b, "보유 재료: %s\n", strings.Join(req.Ingredients, ", "))
	fmt.Fprintf(&b, "선호 맛: %s\n", preferences)
	fmt.Fprintf(&b, "날씨: %s, %d°C\n\n", req.Weather.Condition, req.Weather.Temp)
	fmt.Fprintf(&b, "한국인들이 가장 선호하는 메뉴를 우선적으로 추천해주세요:\n%s\n\n", favoriteMenus)
	fmt.Fprintf(&b, "다음 형식의 JSON으로 응답해주세요:\n%s\n", recipeJSONShape)
	b.WriteString("최대 3개의 요리를 추천해주세요.")
	return b.String()
}
