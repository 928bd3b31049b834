package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Compiled patterns for pantry name cleanup
var (
	// Matches quantities like "300g", "2개", "1.5 kg", "3큰술", "1팩"
	ingredientQuantityPattern = regexp.MustCompile(`\d+(\.\d+)?\s*(kg|g|ml|l|개|큰술|작은술|컵|팩|봉지|모|단|알)?`)

	// Matches parenthesised notes like "(국산)" or "[냉동]"
	bracketNotePattern = regexp.MustCompile(`[(\[][^)\]]*[)\]]`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ingredientNoiseWords are shop labels that say nothing about the ingredient itself.
var ingredientNoiseWords = map[string]bool{
	"국산":    true,
	"국내산":   true,
	"수입산":   true,
	"유기농":   true,
	"친환경":   true,
	"신선한":   true,
	"냉동":    true,
	"냉장":    true,
	"손질된":   true,
	"fresh": true,
}

// ingredientTranslations maps Korean pantry names to English database terms.
var ingredientTranslations = map[string]string{
	"계란":    "egg",
	"달걀":    "egg",
	"감자":    "potato",
	"당근":    "carrot",
	"양파":    "onion",
	"마늘":    "garlic",
	"대파":    "green onion",
	"파":     "onion",
	"고추":    "pepper",
	"고춧가루":  "pepper",
	"된장":    "soybean paste",
	"고추장":   "chili paste",
	"김치":    "kimchi",
	"두부":    "tofu",
	"돼지고기":  "pork",
	"소고기":   "beef",
	"닭고기":   "chicken",
	"생선":    "fish",
	"밥":     "rice",
	"면":     "noodle",
	"파스타":   "pasta",
	"토마토":   "tomato",
	"치즈":    "cheese",
	"버터":    "butter",
	"우유":    "milk",
	"크림":    "cream",
	"올리브오일": "olive oil",
	"식용유":   "cooking oil",
	"소금":    "salt",
	"후추":    "pepper",
	"설탕":    "sugar",
	"밀가루":   "flour",
	"빵":     "bread",
}

// translationKeysByLength lists table keys longest first so "고춧가루" wins over "고추".
var translationKeysByLength = func() []string {
	keys := make([]string, 0, len(ingredientTranslations))
	for k := range ingredientTranslations {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len([]rune(keys[i])) != len([]rune(keys[j])) {
			return len([]rune(keys[i])) > len([]rune(keys[j]))
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// IngredientTranslator turns pantry names into search-friendly English terms
type IngredientTranslator struct {
	log zerolog.Logger
}

// NewIngredientTranslator creates a new ingredient translator
func NewIngredientTranslator(log zerolog.Logger) *IngredientTranslator {
	return &IngredientTranslator{log: log.With().Str("component", "translator").Logger()}
}

// Translate cleans a pantry name and maps it to an English term.
// Names with no table entry are returned cleaned and lower-cased.
func (t *IngredientTranslator) Translate(name string) string {
	original := name

	// Step 1: Remove bracketed notes and quantities
	cleaned := bracketNotePattern.ReplaceAllString(name, " ")
	cleaned = ingredientQuantityPattern.ReplaceAllString(cleaned, " ")

	// Step 2: Remove noise words
	var kept []string
	for _, word := range strings.Fields(strings.ToLower(cleaned)) {
		if !ingredientNoiseWords[word] {
			kept = append(kept, word)
		}
	}
	cleaned = whitespacePattern.ReplaceAllString(strings.Join(kept, " "), " ")
	cleaned = strings.TrimSpace(cleaned)

	// Step 3: Exact table lookup, then the longest key contained in the name
	translated := cleaned
	if en, ok := ingredientTranslations[cleaned]; ok {
		translated = en
	} else {
		for _, key := range translationKeysByLength {
			if strings.Contains(cleaned, key) {
				translated = ingredientTranslations[key]
				break
			}
		}
	}

	t.log.Trace().Str("input", original).Str("output", translated).Msg("translated ingredient")
	return translated
}

// TranslateAll translates names, dropping empties and duplicates while keeping order.
func (t *IngredientTranslator) TranslateAll(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		en := t.Translate(n)
		if en == "" || seen[en] {
			continue
		}
		seen[en] = true
		out = append(out, en)
	}
	return out
}
