package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

func testStats() *domain.IndexStats {
	return &domain.IndexStats{
		Documents: 2,
		Chunks:    5,
		PerFile:   map[string]int{"uu_23_2007.pdf": 4, "speed.txt": 1},
		PerClass:  map[string]int{"regulation": 4, "": 1},
	}
}

func TestStatsCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.stats = testStats()

	out, err := execute("stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents: 2")
	assert.Contains(t, out, "Chunks: 5")
	assert.Contains(t, out, "uu_23_2007.pdf")
	assert.Contains(t, out, "regulation")
	assert.Contains(t, out, "(unclassified)")
}

func TestStatsCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.stats = testStats()

	out, err := execute("stats", "--json")

	require.NoError(t, err)
	var stats domain.IndexStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 5, stats.Chunks)
	assert.Equal(t, 4, stats.PerFile["uu_23_2007.pdf"])
}

func TestStatsCmd_RejectsArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("stats", "extra")

	assert.Error(t, err)
}
