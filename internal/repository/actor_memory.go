package repository

import (
	"context"

	"babylon-engine/internal/models"
)

// memoryActorRepository - пул акторов в памяти. Используется в тестах и
// в локальном запуске без PostgreSQL.
type memoryActorRepository struct {
	actors []models.Actor
	orgs   []models.Organization
}

// NewMemoryActorRepository создает пул акторов из готовых срезов.
// Срезы не копируются, владение переходит репозиторию.
func NewMemoryActorRepository(actors []models.Actor, orgs []models.Organization) ActorRepository {
	return &memoryActorRepository{actors: actors, orgs: orgs}
}

func (r *memoryActorRepository) ListActors(ctx context.Context) ([]models.Actor, error) {
	out := make([]models.Actor, len(r.actors))
	copy(out, r.actors)
	return out, nil
}

func (r *memoryActorRepository) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	out := make([]models.Organization, len(r.orgs))
	copy(out, r.orgs)
	return out, nil
}

func (r *memoryActorRepository) GetActor(ctx context.Context, id string) (*models.Actor, error) {
	for i := range r.actors {
		if r.actors[i].ID == id {
			actor := r.actors[i]
			return &actor, nil
		}
	}
	return nil, ErrNotFound
}
