package engine

// Phase - фаза таймлайна. Фаза определяет объем событий дня, вероятность
// раскрытия подсказки pointsToward и активность групповых чатов.
type Phase struct {
	Name         string
	MinEvents    int
	MaxEvents    int
	RevealChance float64 // вероятность, что событие дня раскроет подсказку
	ChatChance   float64 // вероятность активности одного чата за день
}

// Таблица фаз 30-дневного сезона. В референсном поведении вероятность
// раскрытия для Middle расходилась с комментарием (фактически ~90%);
// здесь зафиксированы задокументированные 40%.
var phases = []struct {
	lastDay int
	phase   Phase
}{
	{10, Phase{Name: "early", MinEvents: 3, MaxEvents: 5, RevealChance: 0.0, ChatChance: 0.30}},
	{20, Phase{Name: "middle", MinEvents: 5, MaxEvents: 7, RevealChance: 0.40, ChatChance: 0.45}},
	{25, Phase{Name: "late", MinEvents: 7, MaxEvents: 10, RevealChance: 0.60, ChatChance: 0.60}},
	{29, Phase{Name: "climax", MinEvents: 10, MaxEvents: 15, RevealChance: 0.80, ChatChance: 0.75}},
	{30, Phase{Name: "resolution", MinEvents: 5, MaxEvents: 5, RevealChance: 1.0, ChatChance: 0.90}},
}

// canonicalSeasonDays - длина сезона, на которую рассчитана таблица фаз.
const canonicalSeasonDays = 30

// PhaseForDay возвращает фазу дня для сезона длины totalDays. Дни сезонов
// нестандартной длины проецируются на 30-дневную таблицу пропорционально,
// последний день всегда попадает в фазу разрешения. Дни за пределами
// таблицы прижимаются к последней фазе.
func PhaseForDay(day, totalDays int) Phase {
	if totalDays <= 0 {
		totalDays = canonicalSeasonDays
	}
	scaled := day
	if totalDays != canonicalSeasonDays {
		scaled = (day*canonicalSeasonDays + totalDays - 1) / totalDays
	}
	for _, p := range phases {
		if scaled <= p.lastDay {
			return p.phase
		}
	}
	return phases[len(phases)-1].phase
}
