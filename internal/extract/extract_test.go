package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocuments_PlainText(t *testing.T) {
	docs, err := Documents("notes.txt", []byte("  Blood pressure basics.\nMonitor daily.  "))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "notes.txt", docs[0].Source)
	assert.Equal(t, 1, docs[0].Page)
	assert.Equal(t, "Blood pressure basics.\nMonitor daily.", docs[0].Content)
	assert.NotEmpty(t, docs[0].ID)
}

func TestDocuments_EmptyText(t *testing.T) {
	docs, err := Documents("empty.txt", []byte("   \n  "))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocuments_StableIDPerSource(t *testing.T) {
	a, err := Documents("a.txt", []byte("one"))
	require.NoError(t, err)
	b, err := Documents("a.txt", []byte("two"))
	require.NoError(t, err)
	c, err := Documents("c.txt", []byte("one"))
	require.NoError(t, err)

	assert.Equal(t, a[0].ID, b[0].ID)
	assert.NotEqual(t, a[0].ID, c[0].ID)
}

func TestDocuments_CorruptPDF(t *testing.T) {
	_, err := Documents("broken.pdf", []byte("this is not a pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.pdf")
}
