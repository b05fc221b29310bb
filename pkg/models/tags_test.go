package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagMapPreservesInsertionOrder(t *testing.T) {
	var m TagMap
	m.Set("parody", []string{"p"})
	m.Set("artist", []string{"a"})
	m.Set("group", []string{"g"})

	assert.Equal(t, []string{"parody", "artist", "group"}, m.Namespaces())

	// replacing keeps position
	m.Set("artist", []string{"a2"})
	assert.Equal(t, []string{"parody", "artist", "group"}, m.Namespaces())
	assert.Equal(t, []string{"a2"}, m.Get("artist"))
}

func TestTagMapAdd(t *testing.T) {
	var m TagMap
	m.Add("artist", "x")
	m.Add("artist", "y")
	m.Add("artist", "x") // duplicate ignored

	assert.Equal(t, []string{"x", "y"}, m.Get("artist"))
	assert.Equal(t, 1, m.Len())
}

func TestTagMapSetCopiesInput(t *testing.T) {
	tags := []string{"x"}
	var m TagMap
	m.Set("artist", tags)

	tags[0] = "mutated"
	assert.Equal(t, []string{"x"}, m.Get("artist"))
}

func TestTagMapJSONRoundTrip(t *testing.T) {
	var m TagMap
	m.Set("parody", []string{"p1", "p2"})
	m.Set("artist", []string{"a"})

	b, err := json.Marshal(m)
	require.NoError(t, err)

	var back TagMap
	require.NoError(t, json.Unmarshal(b, &back))

	assert.True(t, m.Equal(back))
	assert.Equal(t, []string{"parody", "artist"}, back.Namespaces())
}

func TestTagMapEmptyJSON(t *testing.T) {
	var m TagMap
	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	var back TagMap
	require.NoError(t, json.Unmarshal([]byte("[]"), &back))
	assert.True(t, back.IsEmpty())
}

func TestTagMapEqual(t *testing.T) {
	var a, b TagMap
	a.Set("artist", []string{"x"})
	b.Set("artist", []string{"x"})
	assert.True(t, a.Equal(b))

	b.Add("artist", "y")
	assert.False(t, a.Equal(b))

	// order matters
	var c, d TagMap
	c.Set("a", []string{"1"})
	c.Set("b", []string{"2"})
	d.Set("b", []string{"2"})
	d.Set("a", []string{"1"})
	assert.False(t, c.Equal(d))
}
