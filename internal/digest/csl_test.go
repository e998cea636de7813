package digest

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

func TestWriteBibliography(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteBibliography(sampleRecs(), dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var items []CSLItem
	require.NoError(t, yaml.Unmarshal(data, &items))
	require.Len(t, items, 2)

	// Items are sorted by ID.
	first := items[0]
	assert.Equal(t, "2301.07041", first.ID)
	assert.Equal(t, "article", first.Type)
	assert.Equal(t, "Attention Revisited", first.Title)
	assert.Equal(t, "http://arxiv.org/abs/2301.07041v1", first.URL)
	require.Len(t, first.Author, 2)
	assert.Equal(t, CSLName{Given: "Ada", Family: "Lovelace"}, first.Author[0])
	require.NotNil(t, first.Issued)
	assert.Equal(t, [][]int{{2023, 1, 17}}, first.Issued.DateParts)
}

func TestWriteBibliographyDeduplicatesAcrossCategories(t *testing.T) {
	paper := types.Paper{ID: "2301.07041", Title: "Attention Revisited", Published: time.Now()}
	recs := types.RecommendationMap{
		"nlp": {{Paper: paper, Reason: "a"}},
		"llm": {{Paper: paper, Reason: "b"}},
	}

	path, err := WriteBibliography(recs, t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var items []CSLItem
	require.NoError(t, yaml.Unmarshal(data, &items))
	assert.Len(t, items, 1)
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		in   string
		want CSLName
	}{
		{"Ada Lovelace", CSLName{Given: "Ada", Family: "Lovelace"}},
		{"Jean van der Berg", CSLName{Given: "Jean van der", Family: "Berg"}},
		{"Plato", CSLName{Literal: "Plato"}},
		{"  ", CSLName{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseAuthorName(tt.in), tt.in)
	}
}
