package checklist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"checklist-service/internal/model"
)

func findItem(items []model.ChecklistItem, title string) *model.ChecklistItem {
	for i := range items {
		if items[i].Title == title {
			return &items[i]
		}
	}
	return nil
}

func TestGenerateFiltersByTechnologyAndSiteType(t *testing.T) {
	items := Generate("landing", "wordpress", nil)
	require.NotEmpty(t, items)

	for _, item := range items {
		techOK := false
		for _, tag := range item.Technologies {
			if tag == "all" || tag == "wordpress" {
				techOK = true
			}
		}
		assert.True(t, techOK, "item %q not applicable to wordpress", item.Title)

		siteOK := false
		for _, tag := range item.SiteTypes {
			if tag == "all" || tag == "landing" {
				siteOK = true
			}
		}
		assert.True(t, siteOK, "item %q not applicable to landing", item.Title)
	}

	// React-only items must not survive a wordpress generation.
	assert.Nil(t, findItem(items, "Build de producción sin warnings"))
	// Ecommerce-only items must not survive a landing generation.
	assert.Nil(t, findItem(items, "Pasarela de pago en modo producción"))
}

func TestGenerateEscalatesCriticalPhasesOneStep(t *testing.T) {
	items := Generate("ecommerce", "wordpress", nil)
	require.NotEmpty(t, items)

	// qa is critical for ecommerce: high escalates to critical.
	crossBrowser := findItem(items, "Pruebas cross-browser completadas")
	require.NotNil(t, crossBrowser)
	assert.Equal(t, model.WeightCritical, crossBrowser.Weight)

	// medium escalates to high in a critical phase.
	spelling := findItem(items, "Ortografía y contenido revisados")
	require.NotNil(t, spelling)
	assert.Equal(t, model.WeightHigh, spelling.Weight)

	// critical stays critical, no wraparound.
	purchase := findItem(items, "Flujo de compra validado con pedido real")
	require.NotNil(t, purchase)
	assert.Equal(t, model.WeightCritical, purchase.Weight)

	// development is not critical for ecommerce: weights are untouched.
	links := findItem(items, "Enlaces internos sin errores 404")
	require.NotNil(t, links)
	assert.Equal(t, model.WeightHigh, links.Weight)
}

func TestGenerateLowWeightNeverEscalates(t *testing.T) {
	// design is critical for blog; the favicon item is low and must stay low.
	items := Generate("blog", "wordpress", nil)
	favicon := findItem(items, "Favicon e imagen para compartir en redes")
	require.NotNil(t, favicon)
	assert.Equal(t, model.WeightLow, favicon.Weight)
}

func TestGenerateIsDeterministic(t *testing.T) {
	first := Generate("ecommerce", "react", nil)
	second := Generate("ecommerce", "react", nil)
	assert.Equal(t, first, second)

	// Repetition with other inputs in between does not disturb the result.
	Generate("landing", "wordpress", nil)
	third := Generate("ecommerce", "react", nil)
	assert.Equal(t, first, third)
}

func TestGenerateHonorsApplicableAreas(t *testing.T) {
	items := Generate("corporate", "wordpress", []string{"qa", "security"})
	require.NotEmpty(t, items)
	for _, item := range items {
		assert.Contains(t, []string{"qa", "security"}, item.Phase)
	}
}

func TestGenerateStampsPendingStatus(t *testing.T) {
	for _, item := range Generate("landing", "wordpress", nil) {
		assert.Equal(t, model.ItemStatusPending, item.Status)
		assert.Zero(t, item.ProjectID, "project id is stamped by the caller")
	}
}

func TestGenerateLandingWordpressIncludesCTA(t *testing.T) {
	items := Generate("landing", "wordpress", nil)

	cta := findItem(items, "CTA claros y destacados")
	require.NotNil(t, cta, "landing/wordpress checklist must include the CTA item")
	assert.Equal(t, "design", cta.Phase)
	// design is critical for landing but the item is already critical.
	assert.Equal(t, model.WeightCritical, cta.Weight)
	assert.Equal(t, model.ItemStatusPending, cta.Status)
}

type fakeItemStore struct {
	count      int
	countErr   error
	project    *model.Project
	inserted   []model.ChecklistItem
	insertErr  error
	bulkCalled int
}

func (f *fakeItemStore) CountByProject(ctx context.Context, projectID int) (int, error) {
	return f.count, f.countErr
}

func (f *fakeItemStore) BulkInsert(ctx context.Context, project *model.Project, items []model.ChecklistItem) error {
	f.bulkCalled++
	if f.insertErr != nil {
		return f.insertErr
	}
	f.project = project
	f.inserted = items
	return nil
}

func TestInitializerStampsProjectAndPersists(t *testing.T) {
	store := &fakeItemStore{}
	init := NewInitializer(store, nil, zap.NewNop())

	project := &model.Project{ID: 42, SiteType: "landing", Technology: "wordpress"}
	items, err := init.Initialize(context.Background(), project)
	require.NoError(t, err)
	require.NotEmpty(t, items)

	assert.Equal(t, 1, store.bulkCalled)
	for _, item := range store.inserted {
		assert.Equal(t, 42, item.ProjectID)
	}

	// The store receives the project itself, not just the stamped items.
	require.NotNil(t, store.project)
	assert.Equal(t, "landing", store.project.SiteType)
	assert.Equal(t, "wordpress", store.project.Technology)
}

func TestInitializerRefusesNonEmptyChecklist(t *testing.T) {
	store := &fakeItemStore{count: 7}
	init := NewInitializer(store, nil, zap.NewNop())

	_, err := init.Initialize(context.Background(), &model.Project{ID: 1, SiteType: "blog", Technology: "wordpress"})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.Zero(t, store.bulkCalled)
}

func TestInitializerPropagatesInsertError(t *testing.T) {
	insertErr := errors.New("insert failed")
	store := &fakeItemStore{insertErr: insertErr}
	init := NewInitializer(store, nil, zap.NewNop())

	_, err := init.Initialize(context.Background(), &model.Project{ID: 1, SiteType: "blog", Technology: "wordpress"})
	assert.ErrorIs(t, err, insertErr)
}
