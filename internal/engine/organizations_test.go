package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babylon-engine/internal/models"
)

func TestExtractOrganizations_WeightOrdering(t *testing.T) {
	eng := &Engine{orgs: []models.Organization{
		{ID: "org-media", Name: "Helix", Type: "media"},
		{ID: "org-co", Name: "Northwind", Type: "company"},
		{ID: "org-gov", Name: "Bureau", Type: "government"},
	}}

	actors := []models.Actor{
		// main (вес 3) тянет org-co
		{ID: "a1", Role: models.RoleMain, Affiliations: []string{"org-co"}},
		// два supporting (вес 2) тянут org-media: суммарно 4 > 3
		{ID: "a2", Role: models.RoleSupporting, Affiliations: []string{"org-media"}},
		{ID: "a3", Role: models.RoleSupporting, Affiliations: []string{"org-media"}},
		// extra (вес 1) тянет org-gov и неизвестную организацию
		{ID: "a4", Role: models.RoleExtra, Affiliations: []string{"org-gov", "org-ghost"}},
	}

	orgs := eng.extractOrganizations(actors)
	require.Len(t, orgs, 3, "неизвестная организация отброшена")
	assert.Equal(t, "org-media", orgs[0].ID)
	assert.Equal(t, "org-co", orgs[1].ID)
	assert.Equal(t, "org-gov", orgs[2].ID)
}

func TestExtractOrganizations_NoAffiliations(t *testing.T) {
	eng := &Engine{orgs: []models.Organization{{ID: "org-1"}}}
	orgs := eng.extractOrganizations([]models.Actor{{ID: "a1", Role: models.RoleMain}})
	assert.Empty(t, orgs)
}
