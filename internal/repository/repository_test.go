package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_Value(t *testing.T) {
	v, err := Tags(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = Tags{"sci-fi", "经典"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["sci-fi","经典"]`, v)
}

func TestTags_Scan(t *testing.T) {
	var tags Tags

	require.NoError(t, tags.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, Tags{"a", "b"}, tags)

	require.NoError(t, tags.Scan(`[]`))
	assert.Equal(t, Tags{}, tags)

	require.NoError(t, tags.Scan(nil))
	assert.NotNil(t, tags)
	assert.Empty(t, tags)

	assert.Error(t, tags.Scan(42))
	assert.Error(t, tags.Scan("not json"))
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%foo%", ContainsPattern("foo"))
	assert.Equal(t, `%100\%\_off\\%`, ContainsPattern(`100%_off\`))
	assert.Equal(t, "%%", ContainsPattern(""))
}
