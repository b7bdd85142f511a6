package service

import (
	"context"
	"errors"
	"testing"

	"github.com/SimoHua/symphonyx/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTeams(t *testing.T) {
	names, members, err := ParseTeams(`[
		{"teamName":"Core","users":["u1","u2","u1"]},
		{"teamName":"Infra","users":["u3"]},
		{"teamName":"Core","users":["u4","u2"]}
	]`)

	require.NoError(t, err)
	assert.Equal(t, []string{"Core", "Infra"}, names)
	assert.Equal(t, []string{"u1", "u2", "u4"}, members["Core"])
	assert.Equal(t, []string{"u3"}, members["Infra"])
}

func TestEncodeTeams_RoundTrip(t *testing.T) {
	raw, err := EncodeTeams([]ArchivedTeam{
		{TeamName: "Core", Users: []string{"u1", "u2"}},
		{TeamName: "Infra"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"teamName":"Core","users":["u1","u2"]},{"teamName":"Infra","users":[]}]`, raw)

	names, members, err := ParseTeams(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Core", "Infra"}, names)
	assert.Equal(t, []string{"u1", "u2"}, members["Core"])
	assert.Empty(t, members["Infra"])

	raw, err = EncodeTeams(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestParseTeams_Corrupt(t *testing.T) {
	_, _, err := ParseTeams(`[{"teamName":`)
	assert.Error(t, err)
}

func TestRosterResolver_Resolve(t *testing.T) {
	users := newFakeUsers(alice, bob, carol)
	r := NewRosterResolver(users)

	roster, err := r.Resolve(context.Background(), &model.Archive{
		ID:    "a1",
		Teams: `[{"teamName":"B","users":["u2","gone","u1"]},{"teamName":"A","users":["u1","u3"]}]`,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, roster.TeamNames)
	require.Len(t, roster.Members["B"], 2)
	assert.Equal(t, "bob", roster.Members["B"][0].Name)
	assert.Equal(t, "https://img.example.com/alice.png", roster.Members["B"][1].AvatarURL)

	team, ok := roster.TeamOf("u1")
	assert.True(t, ok)
	assert.Equal(t, "B", team)
	team, ok = roster.TeamOf("u3")
	assert.True(t, ok)
	assert.Equal(t, "A", team)
	_, ok = roster.TeamOf("gone")
	assert.False(t, ok)
}

func TestRosterResolver_NilAndCorrupt(t *testing.T) {
	r := NewRosterResolver(newFakeUsers(alice))

	roster, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, roster.TeamNames)

	roster, err = r.Resolve(context.Background(), &model.Archive{ID: "x", Teams: "oops"})
	require.NoError(t, err)
	assert.Empty(t, roster.TeamNames)
	_, ok := roster.TeamOf("u1")
	assert.False(t, ok)
}

func TestRosterResolver_DirectoryFailure(t *testing.T) {
	users := newFakeUsers(alice)
	users.err = errors.New("db down")
	r := NewRosterResolver(users)

	roster, err := r.Resolve(context.Background(), &model.Archive{ID: "a1", Teams: `[{"teamName":"A","users":["u1"]}]`})

	assert.Error(t, err)
	assert.Empty(t, roster.TeamNames)
}
