package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

func TestAddCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("add", "/tmp/pm_63_2019.pdf",
		"--by", "dishub", "--class", "regulation", "--description", "Standar pelayanan")

	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/pm_63_2019.pdf"}, ts.index.added)
	assert.Equal(t, domain.DocumentMetadata{
		UploadBy:      "dishub",
		DocumentClass: "regulation",
		Description:   "Standar pelayanan",
	}, ts.index.addMeta)
	assert.Contains(t, out, "Added pm_63_2019.pdf (4 chunks).")
}

func TestAddCmd_RequiresFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("add")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAddCmd_Unsupported(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.err = domain.ErrUnsupportedType

	_, err := execute("add", "/tmp/slides.pptx")

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRemoveCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("remove", "speed.txt")

	require.NoError(t, err)
	assert.Equal(t, []string{"speed.txt"}, ts.index.removed)
	assert.Contains(t, out, "Removed speed.txt.")
}

func TestRemoveCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.err = errors.New("permission denied")

	_, err := execute("remove", "speed.txt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestReviseCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("revise", "speed.txt#0", "Kecepatan", "maksimum", "80", "km/jam.")

	require.NoError(t, err)
	assert.Equal(t, "Kecepatan maksimum 80 km/jam.", ts.index.revised["speed.txt#0"])
	assert.Contains(t, out, "Revised chunk speed.txt#0.")
}

func TestReviseCmd_NotFound(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.err = domain.ErrNotFound

	_, err := execute("revise", "missing.txt#3", "teks")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.txt#3 is not indexed")
}

func TestReviseCmd_RequiresText(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("revise", "speed.txt#0")

	assert.Error(t, err)
}
