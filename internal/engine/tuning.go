package engine

import (
	"time"

	"babylon-engine/internal/models"
)

// Tuning - именованные параметры генерации. Значения по умолчанию
// повторяют поведение продакшена; инжектируются целиком, чтобы тесты
// и эксперименты не трогали код движка.
type Tuning struct {
	// Размер каста
	MainCount       int
	SupportingCount int
	ExtraCount      int

	// Длина таймлайна в днях
	Days int

	// Сколько вопросов переживает ранжирование
	QuestionTarget int

	// Веса тиров при отборе, отдельная таблица на каждую целевую роль
	TierWeights map[models.Role]map[models.Tier]float64

	// Веса начальной удачи: low / medium / high
	InitialLuckWeights [3]float64

	// Фоновый дрейф состояния
	DriftMoodChance       float64 // шанс сдвига настроения за день
	DriftLargeSwingChance float64 // шанс крупного скачка вместо обычного
	DriftMoodStep         float64
	DriftMoodLargeStep    float64
	DriftLuckChance       float64 // шанс сдвига удачи на один шаг

	// Смещения от событий
	EventPolarityBias float64 // вероятность сдвига в сторону полярности события
	EventMoodStep     float64
	EventLuckChance   float64

	// Ретраи батча групповых сообщений
	ChatRetryAttempts int
	ChatRetryPause    time.Duration
}

// FirstResolutionDay возвращает первый день впрыска окончательных
// событий-подтверждений: последние три дня сезона независимо от его длины,
// чтобы ни один вопрос не дошел до финала неподтвержденным.
func (t Tuning) FirstResolutionDay() int {
	day := t.Days - 2
	if day < 1 {
		return 1
	}
	return day
}

// DefaultTuning возвращает параметры генерации по умолчанию.
func DefaultTuning() Tuning {
	return Tuning{
		MainCount:       3,
		SupportingCount: 15,
		ExtraCount:      50,

		Days:           30,
		QuestionTarget: 3,

		TierWeights: map[models.Role]map[models.Tier]float64{
			// Главные роли сильно тянутся к верхним тирам
			models.RoleMain: {
				models.TierS: 10, models.TierA: 6, models.TierB: 3, models.TierC: 1, models.TierD: 1,
			},
			models.RoleSupporting: {
				models.TierS: 2, models.TierA: 4, models.TierB: 6, models.TierC: 4, models.TierD: 2,
			},
			// Статисты - наоборот, к нижним
			models.RoleExtra: {
				models.TierS: 1, models.TierA: 1, models.TierB: 3, models.TierC: 6, models.TierD: 10,
			},
		},

		InitialLuckWeights: [3]float64{30, 40, 30},

		DriftMoodChance:       0.60,
		DriftLargeSwingChance: 0.05,
		DriftMoodStep:         0.1,
		DriftMoodLargeStep:    0.2,
		DriftLuckChance:       0.15,

		EventPolarityBias: 0.70,
		EventMoodStep:     0.15,
		EventLuckChance:   0.30,

		ChatRetryAttempts: 5,
		ChatRetryPause:    time.Second,
	}
}
