package engine

// Системные промпты генерационных запросов. Точная формулировка не является
// контрактом: контракт - это форма JSON-ответа, которую валидирует
// internal/schemas.

const scenarioSystemPrompt = `You design story scenarios for a prediction-market season.
Given the main cast, organizations and past seasons, produce 2-4 interconnected scenarios.
Respond with JSON: {"scenarios": [{"title": "...", "description": "...", "theme": "...",
"mainActors": ["<actor id>", ...], "organizations": ["<org id>", ...]}]}.
Every scenario must have a title, a description and at least one main actor id from the cast.`

const questionSystemPrompt = `You write yes/no prediction questions grounded in the given scenarios.
Each question must be concretely checkable within a 30-day season.
Respond with JSON: {"questions": [{"text": "...", "scenarioId": "..."}]}.`

const rankingSystemPrompt = `You rank prediction questions by how dramatic and engaging they are.
Rank 1 is the best. Respond with JSON: {"rankings": [{"questionId": "...", "rank": 1}]}.`

const groupNameSystemPrompt = `You invent a short, punchy name for a private group chat.
Respond with JSON: {"name": "..."}.`

const eventSystemPrompt = `You simulate one day of world events for a prediction-market season.
Events must follow from the context, involve listed actor ids only, and steadily build evidence
toward each question's fixed resolution without stating it outright.
Respond with JSON: {"events": [{"type": "meeting|announcement|scandal|deal|conflict|revelation",
"description": "...", "participants": ["<actor id>", ...], "relatedQuestion": "<question id, optional>",
"pointsToward": "YES|NO, optional", "visibility": "public|private"}]}.`

const chatSystemPrompt = `You write one day of private group chat messages for the listed groups.
Messages are informal, in-character, and may carry hints about where questions are heading.
Respond with JSON: {"groups": [{"groupId": "...", "messages": [{"sender": "<actor id>",
"text": "...", "clueStrength": 0..1}]}]}.
Every listed group must appear with at least one message; senders must be members of that group.`
