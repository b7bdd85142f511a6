package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SimoHua/symphonyx/internal/logger"
	"github.com/SimoHua/symphonyx/internal/model"
)

// Roster is the resolved team membership of one period.
type Roster struct {
	TeamNames []string
	Members   map[string][]model.MemberDescriptor
	teamOf    map[string]string
}

func emptyRoster() *Roster {
	return &Roster{Members: map[string][]model.MemberDescriptor{}, teamOf: map[string]string{}}
}

// TeamOf returns the first team that declares userID.
func (r *Roster) TeamOf(userID string) (string, bool) {
	t, ok := r.teamOf[userID]
	return t, ok
}

// ArchivedTeam is one entry of the team list frozen into an archive.
type ArchivedTeam struct {
	TeamName string   `json:"teamName"`
	Users    []string `json:"users"`
}

// EncodeTeams serializes teams into the archive format read by ParseTeams.
func EncodeTeams(teams []ArchivedTeam) (string, error) {
	if teams == nil {
		teams = []ArchivedTeam{}
	}
	for i := range teams {
		if teams[i].Users == nil {
			teams[i].Users = []string{}
		}
	}
	out, err := json.Marshal(teams)
	if err != nil {
		return "", fmt.Errorf("encode archive teams: %w", err)
	}
	return string(out), nil
}

// ParseTeams decodes the archived team list, merging repeated team names
// and dropping repeated member ids within a team.
func ParseTeams(raw string) ([]string, map[string][]string, error) {
	var teams []ArchivedTeam
	if err := json.Unmarshal([]byte(raw), &teams); err != nil {
		return nil, nil, fmt.Errorf("parse archive teams: %w", err)
	}

	var names []string
	members := make(map[string][]string, len(teams))
	seen := make(map[string]map[string]struct{}, len(teams))
	for _, t := range teams {
		if _, ok := seen[t.TeamName]; !ok {
			names = append(names, t.TeamName)
			seen[t.TeamName] = map[string]struct{}{}
			members[t.TeamName] = []string{}
		}
		for _, id := range t.Users {
			if _, dup := seen[t.TeamName][id]; dup {
				continue
			}
			seen[t.TeamName][id] = struct{}{}
			members[t.TeamName] = append(members[t.TeamName], id)
		}
	}
	return names, members, nil
}

type RosterResolver struct {
	users UserDirectory
	log   *slog.Logger
}

func NewRosterResolver(users UserDirectory) *RosterResolver {
	return &RosterResolver{users: users, log: logger.With("component", "roster")}
}

// Resolve expands an archive into teams of member descriptors. A nil or
// corrupt archive yields an empty roster and unknown member ids are left out;
// both are logged. Only a failing directory query is returned as an error.
func (r *RosterResolver) Resolve(ctx context.Context, a *model.Archive) (*Roster, error) {
	roster := emptyRoster()
	if a == nil {
		return roster, nil
	}

	names, ids, err := ParseTeams(a.Teams)
	if err != nil {
		r.log.Error("resolve roster", "archive_id", a.ID, "err", err)
		return roster, nil
	}

	var all []string
	for _, n := range names {
		all = append(all, ids[n]...)
	}
	users, err := r.users.GetUsersByIDs(ctx, all)
	if err != nil {
		return roster, fmt.Errorf("resolve roster of archive %s: %w", a.ID, err)
	}
	byID := make(map[string]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	roster.TeamNames = names
	for _, team := range names {
		descs := make([]model.MemberDescriptor, 0, len(ids[team]))
		for _, id := range ids[team] {
			u, ok := byID[id]
			if !ok {
				r.log.Warn("roster member not found", "archive_id", a.ID, "team", team, "user_id", id)
				continue
			}
			descs = append(descs, model.MemberDescriptor{
				ID:         u.ID,
				Name:       u.Name,
				AvatarURL:  u.AvatarURL,
				RealName:   u.RealName,
				UpdateTime: u.UpdateTime,
			})
			if _, ok := roster.teamOf[id]; !ok {
				roster.teamOf[id] = team
			}
		}
		roster.Members[team] = descs
	}
	return roster, nil
}
