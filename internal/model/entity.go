package model

import "encoding/json"

// TeamNode is one team of a rollup. Users keeps roster order.
type TeamNode struct {
	TeamName string        `json:"team_name"`
	Users    []*MemberNode `json:"users"`
	Total    int           `json:"total"`
	Done     int           `json:"done"`
}

// MemberNode holds Paragraphs in the day view and WeekDays in the week view.
// A non-nil WeekDays marks a week node.
type MemberNode struct {
	ID             string           `json:"id"`
	UserName       string           `json:"user_name"`
	UserAvatarURL  string           `json:"user_avatar_url"`
	UserRealName   string           `json:"user_real_name"`
	UserUpdateTime int64            `json:"user_update_time"`
	Paragraphs     []*ParagraphView `json:"paragraphs"`
	WeekDays       []*DayNode       `json:"week_days"`
	Done           int              `json:"done"`
}

// MarshalJSON writes only the fields of the node's view. Empty lists are
// written as [] and done is always present in the week view.
func (m MemberNode) MarshalJSON() ([]byte, error) {
	type member MemberNode
	if m.WeekDays != nil {
		return json.Marshal(struct {
			member
			Paragraphs *struct{} `json:"paragraphs,omitempty"`
		}{member: member(m)})
	}
	if m.Paragraphs == nil {
		m.Paragraphs = []*ParagraphView{}
	}
	return json.Marshal(struct {
		member
		WeekDays *struct{} `json:"week_days,omitempty"`
		Done     *struct{} `json:"done,omitempty"`
	}{member: member(m)})
}

type DayNode struct {
	WeekDay     int              `json:"week_day"`
	WeekDayName string           `json:"week_day_name"`
	Paragraphs  []*ParagraphView `json:"paragraphs"`
}

// ParagraphView is the rendered, in-memory copy of a paragraph.
type ParagraphView struct {
	ID              string         `json:"id"`
	AuthorID        string         `json:"author_id"`
	AuthorName      string         `json:"author_name"`
	AuthorAvatarURL string         `json:"author_avatar_url"`
	Content         string         `json:"content"`
	CreateTime      int64          `json:"create_time"`
	Team            string         `json:"team,omitempty"`
	Participants    []*Participant `json:"participants"`
}

type Participant struct {
	ID            string `json:"id"`
	UserName      string `json:"user_name"`
	UserAvatarURL string `json:"user_avatar_url"`
	URL           string `json:"url"`
}

// MemberDescriptor is a resolved roster member.
type MemberDescriptor struct {
	ID         string
	Name       string
	AvatarURL  string
	RealName   string
	UpdateTime int64
}

// JournalView is one entry of the recent journals listing.
type JournalView struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Type         int            `json:"type"`
	CreateTime   int64          `json:"create_time"`
	AuthorID     string         `json:"author_id"`
	AuthorName   string         `json:"author_name"`
	Permalink    string         `json:"permalink"`
	Participants []*Participant `json:"participants"`
}

// ParticipantHolder is anything the participant annotator can decorate.
type ParticipantHolder interface {
	ThreadID() string
	SetParticipants([]*Participant)
}

func (p *ParagraphView) ThreadID() string                  { return p.ID }
func (p *ParagraphView) SetParticipants(ps []*Participant) { p.Participants = ps }
func (j *JournalView) ThreadID() string                    { return j.ID }
func (j *JournalView) SetParticipants(ps []*Participant)   { j.Participants = ps }
