package service

import (
	"encoding/json"
	"regexp"
	"strings"
)

// isValidJSON проверяет, можно ли распарсить строку как JSON.
func isValidJSON(s string) bool {
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}

// balanceBrackets пытается добавить недостающие закрывающие скобки в конце
// строки. Скобки внутри строковых литералов игнорируются.
func balanceBrackets(text string) string {
	balanceCurly := 0
	balanceSquare := 0
	inString := false
	escape := false

	for _, r := range text {
		if escape {
			escape = false
			continue
		}
		if r == '\\' {
			escape = true
			continue
		}
		// Важно: проверяем кавычку ДО проверки скобок
		if r == '"' {
			inString = !inString
		}
		if !inString {
			switch r {
			case '{':
				balanceCurly++
			case '}':
				balanceCurly--
			case '[':
				balanceSquare++
			case ']':
				balanceSquare--
			}
		}
	}

	balancedText := text
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "{") {
		for balanceSquare > 0 {
			balancedText += "]"
			balanceSquare--
		}
		for balanceCurly > 0 {
			balancedText += "}"
			balanceCurly--
		}
	} else if strings.HasPrefix(trimmed, "[") {
		for balanceCurly > 0 {
			balancedText += "}"
			balanceCurly--
		}
		for balanceSquare > 0 {
			balancedText += "]"
			balanceSquare--
		}
	}

	return balancedText
}

// processPotentialJSON пытается привести строку к валидному JSON (trim, балансировка скобок).
func processPotentialJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if isValidJSON(trimmed) {
		return trimmed
	}
	balanced := balanceBrackets(trimmed)
	if isValidJSON(balanced) {
		return balanced
	}
	return ""
}

var (
	jsonBlockRegex = regexp.MustCompile("(?s)```json\\s*([\\s\\S]*?)\\s*```")
	anyBlockRegex  = regexp.MustCompile("(?s)```\\s*([\\s\\S]*?)\\s*```")
)

// ExtractJSONContent извлекает JSON-фрагмент из сырого текста ответа AI.
// Порядок: блок ```json ...```, затем любой блок ```...```, затем текст между
// первой открывающей и последней закрывающей скобкой. Возвращает пустую
// строку, если валидный JSON извлечь не удалось.
func ExtractJSONContent(rawText string) string {
	rawText = strings.TrimSpace(rawText)

	// 1. Поиск ```json ... ```
	matches := jsonBlockRegex.FindStringSubmatch(rawText)
	if len(matches) > 1 {
		if result := processPotentialJSON(matches[1]); result != "" {
			return result
		}
	}

	// 2. Поиск ``` ... ``` (если ```json не найден или невалиден)
	matches = anyBlockRegex.FindStringSubmatch(rawText)
	if len(matches) > 1 {
		if result := processPotentialJSON(matches[1]); result != "" {
			return result
		}
	}

	// 3. Поиск между первой {/[ и последней }/]
	firstBrace := strings.Index(rawText, "{")
	lastBrace := strings.LastIndex(rawText, "}")
	firstBracket := strings.Index(rawText, "[")
	lastBracket := strings.LastIndex(rawText, "]")

	startIdx := -1
	endIdx := -1

	if firstBrace != -1 && (firstBracket == -1 || firstBrace < firstBracket) {
		startIdx = firstBrace
		endIdx = lastBrace
	} else if firstBracket != -1 {
		startIdx = firstBracket
		endIdx = lastBracket
	}

	if startIdx != -1 {
		var potentialJSON string
		if endIdx != -1 && endIdx > startIdx {
			potentialJSON = rawText[startIdx : endIdx+1]
		} else {
			potentialJSON = rawText[startIdx:]
		}
		if result := processPotentialJSON(potentialJSON); result != "" {
			return result
		}
	}

	return ""
}
