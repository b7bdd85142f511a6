package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SimoHua/symphonyx/internal/i18n"
	"github.com/SimoHua/symphonyx/internal/markdown"
	"github.com/SimoHua/symphonyx/internal/model"
	"github.com/SimoHua/symphonyx/internal/store"

	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	byID        map[string]*model.User
	err         error
	nameLookups atomic.Int32
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*model.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("get user %s: %w", id, store.ErrNotFound)
	}
	return u, nil
}

func (f *fakeUsers) GetUserByName(_ context.Context, name string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, fmt.Errorf("get user %s: %w", name, store.ErrNotFound)
}

func (f *fakeUsers) GetUsersByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []model.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) FindExistingNames(_ context.Context, names []string) ([]string, error) {
	f.nameLookups.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for _, n := range names {
		for _, u := range f.byID {
			if u.Name == n {
				out = append(out, n)
				break
			}
		}
	}
	return out, nil
}

type fakeArticles struct {
	mu       sync.Mutex
	articles []model.Article
	err      error
	gets     int
}

func (f *fakeArticles) add(a model.Article) { f.articles = append(f.articles, a) }

func (f *fakeArticles) QueryByTypeAndTimeRange(ctx context.Context, typ int, start, end time.Time) ([]model.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []model.Article
	for _, a := range f.articles {
		if a.Type == typ && a.CreateTime >= start.UnixMilli() && a.CreateTime <= end.UnixMilli() {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreateTime != out[j].CreateTime {
			return out[i].CreateTime < out[j].CreateTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeArticles) Get(_ context.Context, id string) (*model.Article, error) {
	f.mu.Lock()
	f.gets++
	f.mu.Unlock()
	for i := range f.articles {
		if f.articles[i].ID == id {
			a := f.articles[i]
			return &a, nil
		}
	}
	return nil, fmt.Errorf("get article %s: %w", id, store.ErrNotFound)
}

func (f *fakeArticles) Latest(_ context.Context, typ int) (*model.Article, error) {
	return f.latest(typ, false)
}

func (f *fakeArticles) LatestValid(_ context.Context, typ int) (*model.Article, error) {
	return f.latest(typ, true)
}

func (f *fakeArticles) latest(typ int, validOnly bool) (*model.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	var latest *model.Article
	for i := range f.articles {
		a := &f.articles[i]
		if validOnly && a.Status != model.StatusValid {
			continue
		}
		if a.Type == typ && (latest == nil || a.ID > latest.ID) {
			latest = a
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("latest article: %w", store.ErrNotFound)
	}
	return latest, nil
}

func (f *fakeArticles) ExistsByAuthorInRange(_ context.Context, typ int, authorID string, start, end time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, a := range f.articles {
		if a.Type == typ && a.AuthorID == authorID && a.CreateTime >= start.UnixMilli() && a.CreateTime <= end.UnixMilli() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeArticles) Page(_ context.Context, typ, page, size int) ([]model.Article, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var all []model.Article
	for _, a := range f.articles {
		if a.Type == typ && a.Status == model.StatusValid {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	from := (page - 1) * size
	if from >= len(all) {
		return nil, int64(len(all)), nil
	}
	to := min(from+size, len(all))
	return all[from:to], int64(len(all)), nil
}

type fakeArchives struct {
	day, week *model.Archive
	err       error
}

func (f *fakeArchives) GetDailyArchive(context.Context, time.Time) (*model.Archive, error) {
	return f.get(f.day)
}

func (f *fakeArchives) GetWeeklyArchive(context.Context, time.Time) (*model.Archive, error) {
	return f.get(f.week)
}

func (f *fakeArchives) get(a *model.Archive) (*model.Archive, error) {
	if f.err != nil {
		return nil, f.err
	}
	if a == nil {
		return nil, fmt.Errorf("get archive: %w", store.ErrNotFound)
	}
	return a, nil
}

type fakeComments struct {
	mu        sync.Mutex
	byArticle map[string][]string
	requested []string
}

func (f *fakeComments) LatestCommenterIDs(_ context.Context, articleID string, limit int) ([]string, error) {
	f.mu.Lock()
	f.requested = append(f.requested, articleID)
	f.mu.Unlock()
	ids := f.byArticle[articleID]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

type fakeTags struct {
	mu    sync.Mutex
	tags  []model.Tag
	calls int
}

func (f *fakeTags) FindByTitles(_ context.Context, titles []string) ([]model.Tag, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	var out []model.Tag
	for _, t := range f.tags {
		for _, title := range titles {
			if t.Title == title {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

type env struct {
	users    *fakeUsers
	articles *fakeArticles
	archives *fakeArchives
	comments *fakeComments
	tags     *fakeTags
	labels   *i18n.Labels
	content  *ContentService
	journal  *JournalService
}

const servePath = "http://localhost"

var (
	alice = &model.User{ID: "u1", Name: "alice", AvatarURL: "https://img.example.com/alice.png", RealName: "Alice"}
	bob   = &model.User{ID: "u2", Name: "bob", AvatarURL: "https://img.example.com/bob.png"}
	carol = &model.User{ID: "u3", Name: "carol"}
)

func newEnv(t *testing.T, users ...*model.User) *env {
	t.Helper()
	labels, err := i18n.New("en", nil)
	require.NoError(t, err)

	e := &env{
		users:    newFakeUsers(users...),
		articles: &fakeArticles{},
		archives: &fakeArchives{},
		comments: &fakeComments{byArticle: map[string][]string{}},
		tags:     &fakeTags{},
		labels:   labels,
	}
	e.content = NewContentService(e.users, e.articles, e.tags, markdown.New(), labels, servePath, servePath+"/static")
	e.journal = NewJournalService(JournalDeps{
		Users:        e.users,
		Articles:     e.articles,
		Archives:     e.archives,
		Fetcher:      NewParagraphFetcher(e.articles, time.UTC),
		Roster:       NewRosterResolver(e.users),
		Content:      e.content,
		Participants: NewParticipantService(e.comments, e.users, 5, 4, servePath),
		Labels:       labels,
		Workers:      4,
		FetchTimeout: time.Second,
	})
	return e
}

func (e *env) dayRoster(teams string) {
	e.archives.day = &model.Archive{ID: "ad", Kind: model.ArchiveKindDay, Teams: teams}
}

func (e *env) weekRoster(teams string) {
	e.archives.week = &model.Archive{ID: "aw", Kind: model.ArchiveKindWeek, Teams: teams}
}

// paragraph adds a journal paragraph at ts; ids follow creation time.
func (e *env) paragraph(author *model.User, ts time.Time, content string) model.Article {
	id := strconv.FormatInt(ts.UnixMilli(), 10)
	for _, a := range e.articles.articles {
		if a.ID == id {
			id += "1"
		}
	}
	a := model.Article{
		ID:         id,
		AuthorID:   author.ID,
		Content:    content,
		Type:       model.ArticleTypeJournalParagraph,
		Status:     model.StatusValid,
		CreateTime: ts.UnixMilli(),
	}
	e.articles.add(a)
	return a
}
