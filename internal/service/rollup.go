package service

import (
	"time"

	"github.com/SimoHua/symphonyx/internal/model"
	"github.com/SimoHua/symphonyx/internal/times"
)

type memberKey struct {
	team   string
	userID string
}

// rollupTree indexes the team and member nodes seeded from a roster so a
// paragraph finds its bucket without scanning. teams keeps roster order.
type rollupTree struct {
	teams      []*model.TeamNode
	teamIdx    map[string]*model.TeamNode
	memberIdx  map[memberKey]*model.MemberNode
	authors    map[string]map[string]struct{}
	week       bool
	currentDay int
	loc        *time.Location
}

func seedDayTree(r *Roster) *rollupTree {
	return seed(r, false, 0, nil, nil)
}

// seedWeekTree gives every member one day node per day 1..currentDay.
func seedWeekTree(r *Roster, currentDay int, labels Labels, loc *time.Location) *rollupTree {
	return seed(r, true, currentDay, labels, loc)
}

func seed(r *Roster, week bool, currentDay int, labels Labels, loc *time.Location) *rollupTree {
	t := &rollupTree{
		teams:      make([]*model.TeamNode, 0, len(r.TeamNames)),
		teamIdx:    make(map[string]*model.TeamNode, len(r.TeamNames)),
		memberIdx:  make(map[memberKey]*model.MemberNode),
		authors:    make(map[string]map[string]struct{}, len(r.TeamNames)),
		week:       week,
		currentDay: currentDay,
		loc:        loc,
	}
	for _, name := range r.TeamNames {
		team := &model.TeamNode{TeamName: name, Users: []*model.MemberNode{}}
		for _, m := range r.Members[name] {
			key := memberKey{team: name, userID: m.ID}
			if _, dup := t.memberIdx[key]; dup {
				continue
			}
			node := &model.MemberNode{
				ID:             m.ID,
				UserName:       m.Name,
				UserAvatarURL:  m.AvatarURL,
				UserRealName:   m.RealName,
				UserUpdateTime: m.UpdateTime,
				Paragraphs:     []*model.ParagraphView{},
			}
			if week {
				node.Paragraphs = nil
				node.WeekDays = make([]*model.DayNode, 0, currentDay)
				for d := 1; d <= currentDay; d++ {
					node.WeekDays = append(node.WeekDays, &model.DayNode{
						WeekDay:     d,
						WeekDayName: labels.WeekDayName(d),
						Paragraphs:  []*model.ParagraphView{},
					})
				}
			}
			t.memberIdx[key] = node
			team.Users = append(team.Users, node)
		}
		t.teams = append(t.teams, team)
		t.teamIdx[name] = team
		t.authors[name] = map[string]struct{}{}
	}
	return t
}

// place appends v to its author's bucket and reports whether it was kept.
// Paragraphs of authors outside the roster, or on a week day after
// currentDay, are not placed.
func (t *rollupTree) place(v *model.ParagraphView, r *Roster) bool {
	team, ok := r.TeamOf(v.AuthorID)
	if !ok {
		return false
	}
	member, ok := t.memberIdx[memberKey{team: team, userID: v.AuthorID}]
	if !ok {
		return false
	}

	if t.week {
		day := times.WeekDay(times.FromMillis(v.CreateTime, t.loc))
		if day > t.currentDay {
			return false
		}
		d := member.WeekDays[day-1]
		d.Paragraphs = append(d.Paragraphs, v)
	} else {
		member.Paragraphs = append(member.Paragraphs, v)
	}
	v.Team = team
	t.authors[team][v.AuthorID] = struct{}{}
	return true
}

// complete fills in total and done once every paragraph is placed.
func (t *rollupTree) complete() []*model.TeamNode {
	for _, team := range t.teams {
		if !t.week {
			team.Total = len(team.Users)
			team.Done = len(t.authors[team.TeamName])
			continue
		}
		team.Total = len(team.Users) * 7
		team.Done = 0
		for _, m := range team.Users {
			m.Done = 0
			for _, d := range m.WeekDays {
				if len(d.Paragraphs) > 0 {
					m.Done++
				}
			}
			team.Done += m.Done
		}
	}
	return t.teams
}
