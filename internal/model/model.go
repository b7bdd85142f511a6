package model

// Status values shared by users, articles and comments.
const (
	StatusValid       = 0
	StatusInvalid     = 1
	StatusNotVerified = 2
)

// Article types.
const (
	ArticleTypeNormal           = 0
	ArticleTypeDiscussion       = 1
	ArticleTypeCityBroadcast    = 2
	ArticleTypeJournalParagraph = 3
	ArticleTypeJournalSection   = 4
	ArticleTypeJournalChapter   = 5
)

// Archive kinds.
const (
	ArchiveKindDay  = "day"
	ArchiveKindWeek = "week"
)

const RoleAdmin = "adminRole"

type User struct {
	ID         string `gorm:"primaryKey;size:32" json:"id"`
	Name       string `gorm:"uniqueIndex;size:64" json:"user_name"`
	Email      string `gorm:"size:255" json:"-"`
	RealName   string `gorm:"size:64" json:"user_real_name"`
	AvatarURL  string `gorm:"size:255" json:"user_avatar_url"`
	URL        string `gorm:"size:255" json:"user_url"`
	Role       string `gorm:"size:32" json:"user_role"`
	Status     int    `json:"user_status"`
	UpdateTime int64  `json:"user_update_time"`
}

// Article covers every post kind; journal paragraphs, sections and chapters
// are articles distinguished by Type. ID is a millisecond timestamp string, so
// id order is creation order.
type Article struct {
	ID         string `gorm:"primaryKey;size:32" json:"id"`
	Title      string `gorm:"size:255" json:"title"`
	Content    string `gorm:"type:text" json:"content"`
	AuthorID   string `gorm:"index;size:32" json:"author_id"`
	Type       int    `gorm:"index:idx_article_type_time" json:"type"`
	Status     int    `json:"status"`
	ParentID   string `gorm:"size:32" json:"parent_id"`
	Permalink  string `gorm:"size:255" json:"permalink"`
	Tags       string `gorm:"size:255" json:"tags"`
	CreateTime int64  `gorm:"index:idx_article_type_time" json:"create_time"`
	UpdateTime int64  `json:"update_time"`
}

// Archive freezes the team roster of one day or one week. Teams holds the
// serialized list `[{"teamName": "...", "users": ["id", ...]}]`.
type Archive struct {
	ID        string `gorm:"primaryKey;size:32" json:"id"`
	Kind      string `gorm:"uniqueIndex:uk_archive_period;size:8" json:"kind"`
	StartTime int64  `gorm:"uniqueIndex:uk_archive_period" json:"start_time"`
	Teams     string `gorm:"type:text" json:"teams"`
}

type Comment struct {
	ID         string `gorm:"primaryKey;size:32" json:"id"`
	ArticleID  string `gorm:"index;size:32" json:"article_id"`
	AuthorID   string `gorm:"size:32" json:"author_id"`
	Content    string `gorm:"type:text" json:"content"`
	Status     int    `json:"status"`
	CreateTime int64  `json:"create_time"`
}

type Tag struct {
	ID    string `gorm:"primaryKey;size:32" json:"id"`
	Title string `gorm:"uniqueIndex;size:64" json:"title"`
	URI   string `gorm:"size:255" json:"uri"`
}

func (User) TableName() string    { return "users" }
func (Article) TableName() string { return "articles" }
func (Archive) TableName() string { return "archives" }
func (Comment) TableName() string { return "comments" }
func (Tag) TableName() string     { return "tags" }

// Invalid reports whether the account is blocked.
func (u *User) Invalid() bool { return u.Status == StatusInvalid }
