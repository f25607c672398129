package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"babylon-engine/internal/models"
)

const (
	listActorsQuery = `
        SELECT id, name, tier, domains, affiliations, personality
        FROM actors
        ORDER BY tier, id
    `
	getActorQuery = `
        SELECT id, name, tier, domains, affiliations, personality
        FROM actors
        WHERE id = $1
    `
	listOrganizationsQuery = `
        SELECT id, name, type, description
        FROM organizations
        ORDER BY id
    `
)

// actorRow - строка таблицы actors. Роль, настроение и удача в БД не
// хранятся: они назначаются селектором на каждый прогон заново.
type actorRow struct {
	ID           string   `db:"id"`
	Name         string   `db:"name"`
	Tier         string   `db:"tier"`
	Domains      []string `db:"domains"`
	Affiliations []string `db:"affiliations"`
	Personality  string   `db:"personality"`
}

type pgActorRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPgActorRepository создает репозиторий пула акторов поверх PostgreSQL.
func NewPgActorRepository(db *pgxpool.Pool, logger *zap.Logger) ActorRepository {
	return &pgActorRepository{
		db:     db,
		logger: logger.Named("ActorRepo"),
	}
}

func (r *pgActorRepository) ListActors(ctx context.Context) ([]models.Actor, error) {
	var rows []actorRow
	if err := pgxscan.Select(ctx, r.db, &rows, listActorsQuery); err != nil {
		r.logger.Error("Ошибка загрузки пула акторов", zap.Error(err))
		return nil, fmt.Errorf("ошибка загрузки пула акторов: %w", err)
	}

	actors := make([]models.Actor, 0, len(rows))
	for _, row := range rows {
		actors = append(actors, row.toModel())
	}
	r.logger.Debug("Пул акторов загружен", zap.Int("count", len(actors)))
	return actors, nil
}

func (r *pgActorRepository) GetActor(ctx context.Context, id string) (*models.Actor, error) {
	var row actorRow
	if err := pgxscan.Get(ctx, r.db, &row, getActorQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Актор не найден", zap.String("actor_id", id))
			return nil, ErrNotFound
		}
		r.logger.Error("Ошибка загрузки актора", zap.String("actor_id", id), zap.Error(err))
		return nil, fmt.Errorf("ошибка загрузки актора '%s': %w", id, err)
	}
	actor := row.toModel()
	return &actor, nil
}

func (r *pgActorRepository) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	var orgs []models.Organization
	if err := pgxscan.Select(ctx, r.db, &orgs, listOrganizationsQuery); err != nil {
		r.logger.Error("Ошибка загрузки организаций", zap.Error(err))
		return nil, fmt.Errorf("ошибка загрузки организаций: %w", err)
	}
	return orgs, nil
}

func (row actorRow) toModel() models.Actor {
	return models.Actor{
		ID:           row.ID,
		Name:         row.Name,
		Tier:         models.Tier(row.Tier),
		Domains:      row.Domains,
		Affiliations: row.Affiliations,
		Personality:  row.Personality,
	}
}
