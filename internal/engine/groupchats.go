package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"babylon-engine/internal/models"
	"babylon-engine/internal/schemas"
	"babylon-engine/internal/service"
)

// Лимиты участников: у чатов главных акторов до 6 собеседников,
// у чатов топовых второстепенных - до 5.
const (
	mainChatPeerLimit    = 6
	supportChatPeerLimit = 5
	supportChatAdmins    = 2
)

// buildGroupChats выводит приватные чаты из графа связей: по чату на каждого
// главного актора (положительно связанные собеседники) и до двух чатов
// топовых (S/A) второстепенных. Имя чата запрашивается у коллаборатора,
// ID образуется из имени; коллизия разрешается суффиксом с текущим
// количеством чатов.
func (e *Engine) buildGroupChats(ctx context.Context, setup *models.GameSetup) ([]models.GroupChat, error) {
	var chats []models.GroupChat
	usedIDs := make(map[string]bool)

	create := func(admin models.Actor, peerLimit int) error {
		peers := positivePeers(admin.ID, setup.Connections, peerLimit)
		if len(peers) == 0 {
			log.Printf("[Engine] У актора %s нет положительных связей, чат не создается", admin.Name)
			return nil
		}

		name, err := e.requestGroupName(ctx, admin, peers, setup)
		if err != nil {
			return err
		}

		id := slugify(name)
		if id == "" {
			// Имя целиком из не-ASCII символов дает пустой слаг
			id = "chat"
		}
		if usedIDs[id] {
			id = fmt.Sprintf("%s-%d", id, len(chats))
		}
		usedIDs[id] = true

		chats = append(chats, models.GroupChat{
			ID:      id,
			Name:    name,
			AdminID: admin.ID,
			Members: append([]string{admin.ID}, peers...),
			Theme:   fmt.Sprintf("inner circle of %s", admin.Name),
		})
		return nil
	}

	for _, m := range setup.ActorsByRole(models.RoleMain) {
		if err := create(m, mainChatPeerLimit); err != nil {
			return nil, err
		}
	}

	// До двух топовых второстепенных получают собственный чат
	added := 0
	for _, s := range setup.ActorsByRole(models.RoleSupporting) {
		if added >= supportChatAdmins {
			break
		}
		if s.Tier != models.TierS && s.Tier != models.TierA {
			continue
		}
		if err := create(s, supportChatPeerLimit); err != nil {
			return nil, err
		}
		added++
	}

	log.Printf("[Engine] Создано групповых чатов: %d", len(chats))
	return chats, nil
}

// requestGroupName запрашивает у коллаборатора контекстное имя чата.
func (e *Engine) requestGroupName(ctx context.Context, admin models.Actor, peers []string, setup *models.GameSetup) (string, error) {
	var input strings.Builder
	fmt.Fprintf(&input, "Admin: %s (%s).\nMembers:\n", admin.Name, admin.Personality)
	for _, id := range peers {
		if a, ok := setup.ActorByID(id); ok {
			fmt.Fprintf(&input, "  - %s\n", a.Name)
		}
	}

	raw, _, err := e.ai.GenerateJSON(ctx, "group_name", groupNameSystemPrompt, input.String(), service.GenerationParams{})
	if err != nil {
		return "", fmt.Errorf("ошибка генерации имени чата для %s: %w", admin.Name, err)
	}

	name, err := schemas.ParseGroupName(raw)
	if err != nil {
		return "", fmt.Errorf("невалидный ответ имени чата для %s: %w", admin.Name, err)
	}
	return name, nil
}

// slugify приводит имя чата к ID: строчные буквы/цифры, остальное - дефис.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
