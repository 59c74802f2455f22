package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/interfaces"
	"github.com/ternarybob/artifex/internal/models"
)

func noopHandler(ctx context.Context, req *models.ToolRequest, progress interfaces.ProgressReporter) (*models.JobResult, error) {
	return &models.JobResult{}, nil
}

func TestRegistryNilLoggerFallsBack(t *testing.T) {
	// Register logs each tool; a nil logger must not panic.
	registry := NewRegistry(DefaultEstimates(), nil)
	registry.Register(models.Tool{Name: "pdf_merger", Category: models.CategoryPDF}, noopHandler)
	registry.Seal()

	_, tool, err := registry.Resolve("pdf_merger")
	require.NoError(t, err)
	assert.Equal(t, "pdf_merger", tool.Name)
}

func TestRegistryResolveExactMatch(t *testing.T) {
	registry := NewRegistry(DefaultEstimates(), arbor.NewLogger())
	registry.Register(models.Tool{Name: "pdf_merger", Category: models.CategoryPDF}, noopHandler)
	registry.Seal()

	handler, tool, err := registry.Resolve("pdf_merger")
	require.NoError(t, err)
	assert.NotNil(t, handler)
	assert.Equal(t, "pdf_merger", tool.Name)
	assert.Equal(t, 5, tool.EstimatedSeconds)
}

func TestRegistryResolveRejectsSubstrings(t *testing.T) {
	registry := NewRegistry(DefaultEstimates(), arbor.NewLogger())
	registry.Register(models.Tool{Name: "pdf_merger", Category: models.CategoryPDF}, noopHandler)
	registry.Seal()

	// Partial keys and containing strings must not route
	for _, name := range []string{"pdf", "merger", "pdf_merger_v2", "PDF_MERGER"} {
		_, _, err := registry.Resolve(name)
		require.Error(t, err, "name %q should not resolve", name)
		assert.ErrorIs(t, err, models.ErrToolNotFound)
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	registry := NewRegistry(DefaultEstimates(), arbor.NewLogger())
	registry.Seal()

	_, _, err := registry.Resolve("not_a_real_tool")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrToolNotFound)

	var unknown *models.UnknownToolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "not_a_real_tool", unknown.Name)
}

func TestRegistryDuplicateRegistrationPanics(t *testing.T) {
	registry := NewRegistry(DefaultEstimates(), arbor.NewLogger())
	registry.Register(models.Tool{Name: "word_counter"}, noopHandler)

	assert.Panics(t, func() {
		registry.Register(models.Tool{Name: "word_counter"}, noopHandler)
	})
}

func TestRegistryRegisterAfterSealPanics(t *testing.T) {
	registry := NewRegistry(DefaultEstimates(), arbor.NewLogger())
	registry.Seal()

	assert.Panics(t, func() {
		registry.Register(models.Tool{Name: "late_tool"}, noopHandler)
	})
}

func TestRegistryList(t *testing.T) {
	registry := NewRegistry(DefaultEstimates(), arbor.NewLogger())
	registry.Register(models.Tool{Name: "word_counter", Category: models.CategoryText}, noopHandler)
	registry.Register(models.Tool{Name: "pdf_merger", Category: models.CategoryPDF}, noopHandler)
	registry.Register(models.Tool{Name: "csv_json_converter", Category: models.CategoryData}, noopHandler)
	registry.Seal()

	list := registry.List()
	require.Len(t, list, 3)
	assert.Equal(t, "csv_json_converter", list[0].Name)
	assert.Equal(t, "pdf_merger", list[1].Name)
	assert.Equal(t, "word_counter", list[2].Name)
}

func TestEstimatesDefaults(t *testing.T) {
	estimates := DefaultEstimates()

	assert.Equal(t, 5, estimates.Seconds("pdf_merger"))
	assert.Equal(t, 3, estimates.Seconds("pdf_splitter"))
	assert.Equal(t, 25, estimates.Seconds("pdf_ocr"))
	assert.Equal(t, DefaultEstimateSeconds, estimates.Seconds("never_heard_of_it"))
}

func TestEstimatesLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimates.yaml")
	content := "pdf_merger: 9\nbrand_new_tool: 42\nbad_entry: -1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	estimates := DefaultEstimates()
	require.NoError(t, estimates.LoadOverrides(path))

	assert.Equal(t, 9, estimates.Seconds("pdf_merger"))
	assert.Equal(t, 42, estimates.Seconds("brand_new_tool"))
	// Non-positive overrides are ignored
	assert.Equal(t, DefaultEstimateSeconds, estimates.Seconds("bad_entry"))
	// Untouched entries keep their defaults
	assert.Equal(t, 3, estimates.Seconds("pdf_splitter"))
}

func TestEstimatesLoadOverridesMissingFile(t *testing.T) {
	estimates := DefaultEstimates()
	err := estimates.LoadOverrides("/nonexistent/estimates.yaml")
	assert.Error(t, err)
}
