package domain

// Weather condition vocabulary.
const (
	ConditionClear        = "맑음"
	ConditionClouds       = "흐림"
	ConditionRain         = "비"
	ConditionDrizzle      = "이슬비"
	ConditionThunderstorm = "천둥번개"
	ConditionSnow         = "눈"
	ConditionFog          = "안개"
	ConditionHaze         = "연무"
)

// WeatherSnapshot is the current weather for a city.
type WeatherSnapshot struct {
	Temp      int    `json:"temp"`
	Condition string `json:"condition"`
	Icon      string `json:"icon"`
}

// ProviderWeather is the raw reading returned by a live weather provider.
type ProviderWeather struct {
	Temp           float64
	ConditionLabel string
}

// DateInfo is the calendar view of "now" used by seasonal suggestions.
type DateInfo struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Day       int    `json:"day"`
	DayOfWeek string `json:"dayOfWeek"`
	Hour      int    `json:"hour"`
	Minute    int    `json:"minute"`
}
