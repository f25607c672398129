package models

import (
	"time"

	"github.com/google/uuid"
)

// KeyOutcome - итог одного вопроса для межигровой преемственности.
type KeyOutcome struct {
	QuestionText string `json:"questionText"`
	Outcome      bool   `json:"outcome"`
	Explanation  string `json:"explanation"`
}

// GameHistory - сводка завершенной игры. Производится из одного
// GeneratedGame и потребляется как контекст следующей генерацией.
type GameHistory struct {
	GameID      uuid.UUID    `json:"gameId"`
	Summary     string       `json:"summary"`
	KeyOutcomes []KeyOutcome `json:"keyOutcomes"`
	Highlights  []WorldEvent `json:"highlights"`  // до 10 событий с раскрытым pointsToward
	TopMoments  []FeedPost   `json:"topMoments"`  // до 5 постов с максимальным |sentiment|
	CreatedAt   time.Time    `json:"createdAt"`
}
