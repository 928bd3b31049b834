package usecase

import "github.com/fridgechef/backend/internal/domain"

// builtinCatalog is the fixed recipe set every recommendation pass starts from.
var builtinCatalog = []domain.Recipe{
	{
		ID:          "1",
		Name:        "된장찌개",
		CookingTime: 30,
		Difficulty:  domain.DifficultyEasy,
		Ingredients: []string{"된장", "두부", "대파", "감자", "고춧가루"},
		Steps: []string{
			"물 500ml를 끓인다",
			"된장 2큰술을 풀어 넣는다",
			"감자를 넣고 5분 끓인다",
			"두부와 대파를 넣고 3분 더 끓인다",
			"고춧가루를 넣고 마무리한다",
		},
		Weather: []string{domain.ConditionClear, domain.ConditionClouds, domain.ConditionRain},
		Tags:    []string{"한식", "국물요리"},
	},
	{
		ID:          "2",
		Name:        "김치볶음밥",
		Image:       "/img/김치볶음밥.jpg",
		CookingTime: 15,
		Difficulty:  domain.DifficultyEasy,
		Ingredients: []string{"김치", "밥", "계란", "대파", "참기름"},
		Steps: []string{
			"김치를 잘게 썬다",
			"팬에 기름을 두르고 김치를 볶는다",
			"밥을 넣고 볶는다",
			"계란을 풀어 넣고 섞는다",
			"대파와 참기름을 넣고 마무리한다",
		},
		Weather: []string{domain.ConditionClear, domain.ConditionClouds},
		Tags:    []string{"한식", "간단요리"},
	},
	{
		ID:          "3",
		Name:        "삼겹살 구이",
		CookingTime: 20,
		Difficulty:  domain.DifficultyEasy,
		Ingredients: []string{"삼겹살", "소금", "후추", "상추", "깻잎"},
		Steps: []string{
			"삼겹살을 적당한 크기로 자른다",
			"팬에 굽는다",
			"소금, 후추로 간을 한다",
			"상추와 깻잎과 함께 먹는다",
		},
		Weather: []string{domain.ConditionClear},
		Tags:    []string{"한식", "고기요리"},
	},
	{
		ID:          "4",
		Name:        "콩나물국",
		CookingTime: 15,
		Difficulty:  domain.DifficultyEasy,
		Ingredients: []string{"콩나물", "대파", "고춧가루", "멸치육수"},
		Steps: []string{
			"멸치육수를 끓인다",
			"콩나물을 넣고 끓인다",
			"대파와 고춧가루를 넣는다",
			"5분 더 끓인다",
		},
		Weather: []string{domain.ConditionClouds, domain.ConditionRain},
		Tags:    []string{"한식", "국물요리"},
	},
	{
		ID:          "5",
		Name:        "계란말이",
		Image:       "/img/계란말이.jpg",
		CookingTime: 10,
		Difficulty:  domain.DifficultyMedium,
		Ingredients: []string{"계란", "당근", "대파", "소금"},
		Steps: []string{
			"계란을 풀어 준비한다",
			"당근과 대파를 잘게 썬다",
			"계란에 섞어 소금으로 간한다",
			"팬에 부어 말아 만든다",
		},
		Weather: []string{domain.ConditionClear, domain.ConditionClouds},
		Tags:    []string{"한식", "간단요리"},
	},
	{
		ID:          "6",
		Name:        "파스타",
		CookingTime: 25,
		Difficulty:  domain.DifficultyMedium,
		Ingredients: []string{"파스타면", "토마토", "올리브오일", "마늘", "파마산치즈"},
		Steps: []string{
			"파스타면을 삶는다",
			"마늘을 볶는다",
			"토마토를 넣고 끓인다",
			"면을 넣고 섞는다",
			"치즈를 뿌린다",
		},
		Weather: []string{domain.ConditionClear},
		Tags:    []string{"양식", "파스타"},
	},
}

// BuiltinCatalog returns a deep copy of the built-in recipes, safe to mutate.
func BuiltinCatalog() []domain.Recipe {
	out := make([]domain.Recipe, len(builtinCatalog))
	for i, r := range builtinCatalog {
		out[i] = cloneRecipe(r)
		out[i].Provenance = domain.ProvenanceBuiltin
	}
	return out
}

// FindBuiltin returns the built-in recipe with the given ID.
func FindBuiltin(id string) (domain.Recipe, bool) {
	for _, r := range builtinCatalog {
		if r.ID == id {
			c := cloneRecipe(r)
			c.Provenance = domain.ProvenanceBuiltin
			return c, true
		}
	}
	return domain.Recipe{}, false
}

func cloneRecipe(r domain.Recipe) domain.Recipe {
	r.Ingredients = append([]string(nil), r.Ingredients...)
	r.Steps = append([]string(nil), r.Steps...)
	r.Tags = append([]string(nil), r.Tags...)
	r.Weather = append([]string(nil), r.Weather...)
	return r
}
