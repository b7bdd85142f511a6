package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SimoHua/symphonyx/internal/i18n"
	"github.com/SimoHua/symphonyx/internal/logger"
	"github.com/SimoHua/symphonyx/internal/model"
	"github.com/SimoHua/symphonyx/internal/store"
	"github.com/SimoHua/symphonyx/internal/times"

	"golang.org/x/sync/errgroup"
)

type JournalDeps struct {
	Users        UserDirectory
	Articles     ArticleStore
	Archives     ArchiveStore
	Fetcher      *ParagraphFetcher
	Roster       *RosterResolver
	Content      *ContentService
	Participants *ParticipantService
	Labels       Labels
	Workers      int
	FetchTimeout time.Duration
}

// JournalService builds the day (section) and week (chapter) rollups. Each
// call builds its tree from scratch; nothing is cached across calls.
type JournalService struct {
	users        UserDirectory
	articles     ArticleStore
	archives     ArchiveStore
	fetcher      *ParagraphFetcher
	roster       *RosterResolver
	content      *ContentService
	participants *ParticipantService
	labels       Labels
	workers      int
	timeout      time.Duration
	log          *slog.Logger
}

func NewJournalService(d JournalDeps) *JournalService {
	if d.Workers < 1 {
		d.Workers = 1
	}
	return &JournalService{
		users:        d.Users,
		articles:     d.Articles,
		archives:     d.Archives,
		fetcher:      d.Fetcher,
		roster:       d.Roster,
		content:      d.Content,
		participants: d.Participants,
		labels:       d.Labels,
		workers:      d.Workers,
		timeout:      d.FetchTimeout,
		log:          logger.With("component", "journal"),
	}
}

// Section is the day rollup of t's calendar day. On failure it returns an
// empty list together with the error, never a partial tree.
func (s *JournalService) Section(ctx context.Context, t time.Time, viewer *model.User) ([]*model.TeamNode, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	t = t.In(s.fetcher.Location())

	archive, err := s.archive(ctx, s.archives.GetDailyArchive, t)
	if err != nil {
		return s.fail("section", t, err)
	}
	if archive == nil {
		return []*model.TeamNode{}, nil
	}
	roster, paragraphs, err := s.load(ctx, archive, s.fetcher.Day, t)
	if err != nil {
		return s.fail("section", t, err)
	}
	views, err := s.transformAll(ctx, paragraphs, viewer)
	if err != nil {
		return s.fail("section", t, err)
	}

	tree := seedDayTree(roster)
	for _, v := range views {
		if !tree.place(v, roster) {
			s.log.Debug("paragraph outside roster", "id", v.ID, "author_id", v.AuthorID)
		}
	}
	if err := s.annotate(ctx, views); err != nil {
		return s.fail("section", t, err)
	}
	return tree.complete(), nil
}

// Chapter is the week rollup of weekOf's Monday-to-Sunday week as seen at
// now: members get one day node per elapsed day of the week.
func (s *JournalService) Chapter(ctx context.Context, weekOf, now time.Time, viewer *model.User) ([]*model.TeamNode, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	loc := s.fetcher.Location()
	weekOf = weekOf.In(loc)

	archive, err := s.archive(ctx, s.archives.GetWeeklyArchive, weekOf)
	if err != nil {
		return s.fail("chapter", weekOf, err)
	}
	if archive == nil {
		return []*model.TeamNode{}, nil
	}
	roster, paragraphs, err := s.load(ctx, archive, s.fetcher.Week, weekOf)
	if err != nil {
		return s.fail("chapter", weekOf, err)
	}
	views, err := s.transformAll(ctx, paragraphs, viewer)
	if err != nil {
		return s.fail("chapter", weekOf, err)
	}

	currentDay := times.CurrentDay(weekOf, now)
	tree := seedWeekTree(roster, currentDay, s.labels, loc)
	for _, v := range views {
		if !tree.place(v, roster) {
			s.log.Debug("paragraph not placed", "id", v.ID, "author_id", v.AuthorID, "current_day", currentDay)
		}
	}
	if err := s.annotate(ctx, views); err != nil {
		return s.fail("chapter", weekOf, err)
	}
	return tree.complete(), nil
}

func (s *JournalService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *JournalService) fail(kind string, t time.Time, err error) ([]*model.TeamNode, error) {
	s.log.Error("build "+kind, "date", t.Format(time.DateOnly), "err", err)
	return []*model.TeamNode{}, fmt.Errorf("build %s of %s: %w", kind, t.Format(time.DateOnly), err)
}

// archive returns nil without error when the period was never archived.
func (s *JournalService) archive(ctx context.Context,
	get func(context.Context, time.Time) (*model.Archive, error), t time.Time) (*model.Archive, error) {
	a, err := get(ctx, t)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Warn("no archive for period", "date", t.Format(time.DateOnly))
		return nil, nil
	}
	return a, err
}

// load resolves the roster and fetches the period's paragraphs concurrently.
func (s *JournalService) load(ctx context.Context, archive *model.Archive,
	fetch func(context.Context, time.Time) ([]model.Article, error), t time.Time) (*Roster, []model.Article, error) {
	var (
		roster     *Roster
		paragraphs []model.Article
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, err = s.roster.Resolve(gctx, archive)
		return err
	})
	g.Go(func() error {
		var err error
		paragraphs, err = fetch(gctx, t)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return roster, paragraphs, nil
}

// transformAll renders paragraphs with at most s.workers transforms in
// flight. Views come back in fetch order.
func (s *JournalService) transformAll(ctx context.Context, paragraphs []model.Article, viewer *model.User) ([]*model.ParagraphView, error) {
	authors, err := s.authors(ctx, paragraphs)
	if err != nil {
		return nil, err
	}
	parents := s.parents(ctx, paragraphs)

	views := make([]*model.ParagraphView, len(paragraphs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range paragraphs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := &paragraphs[i]
			author := authors[p.AuthorID]
			content := s.content.TransformOrPlaceholder(gctx, p, ModerationContext{
				Author: author,
				Parent: parents[p.ParentID],
				Viewer: viewer,
			})
			views[i] = newParagraphView(p, author, content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

func newParagraphView(p *model.Article, author *model.User, content string) *model.ParagraphView {
	v := &model.ParagraphView{
		ID:           p.ID,
		AuthorID:     p.AuthorID,
		Content:      content,
		CreateTime:   p.CreateTime,
		Participants: []*model.Participant{},
	}
	if author != nil {
		v.AuthorName = author.Name
		v.AuthorAvatarURL = author.AvatarURL
	}
	return v
}

// authors loads every paragraph author once per call.
func (s *JournalService) authors(ctx context.Context, paragraphs []model.Article) (map[string]*model.User, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, p := range paragraphs {
		if _, ok := seen[p.AuthorID]; !ok {
			seen[p.AuthorID] = struct{}{}
			ids = append(ids, p.AuthorID)
		}
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load paragraph authors: %w", err)
	}
	memo := make(map[string]*model.User, len(users))
	for i := range users {
		memo[users[i].ID] = &users[i]
	}
	return memo, nil
}

// parents loads the distinct parent threads. Missing or unreadable parents
// are treated as absent.
func (s *JournalService) parents(ctx context.Context, paragraphs []model.Article) map[string]*model.Article {
	out := make(map[string]*model.Article)
	for _, p := range paragraphs {
		if p.ParentID == "" {
			continue
		}
		if _, ok := out[p.ParentID]; ok {
			continue
		}
		a, err := s.articles.Get(ctx, p.ParentID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("load parent thread", "id", p.ParentID, "err", err)
		}
		out[p.ParentID] = a
	}
	return out
}

func (s *JournalService) annotate(ctx context.Context, views []*model.ParagraphView) error {
	holders := make([]model.ParticipantHolder, len(views))
	for i, v := range views {
		holders[i] = v
	}
	return s.participants.Annotate(ctx, holders)
}

// HasSectionToday reports whether the newest section was created on now's
// calendar day.
func (s *JournalService) HasSectionToday(ctx context.Context, now time.Time) (bool, error) {
	latest, err := s.fetcher.LatestOfType(ctx, model.ArticleTypeJournalSection)
	if err != nil || latest == nil {
		return false, err
	}
	loc := s.fetcher.Location()
	return times.SameDay(now.In(loc), times.FromMillis(latest.CreateTime, loc)), nil
}

// HasChapterWeek reports whether the newest chapter was created in now's
// ISO week.
func (s *JournalService) HasChapterWeek(ctx context.Context, now time.Time) (bool, error) {
	latest, err := s.fetcher.LatestOfType(ctx, model.ArticleTypeJournalChapter)
	if err != nil || latest == nil {
		return false, err
	}
	loc := s.fetcher.Location()
	return times.SameWeek(now.In(loc), times.FromMillis(latest.CreateTime, loc)), nil
}

// HasPostParagraphToday reports whether the user wrote at least one
// paragraph on now's calendar day. An unknown user has not.
func (s *JournalService) HasPostParagraphToday(ctx context.Context, userName string, now time.Time) (bool, error) {
	u, err := s.users.GetUserByName(ctx, userName)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.fetcher.PostedToday(ctx, u.ID, now)
}

// RecentJournals lists week chapters newest first. The first page starts
// with the newest valid section. Titles of blocked authors are masked.
func (s *JournalService) RecentJournals(ctx context.Context, page, size int) ([]*model.JournalView, int, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	var articles []model.Article
	if page == 1 {
		section, err := s.fetcher.LatestValidOfType(ctx, model.ArticleTypeJournalSection)
		if err != nil {
			return nil, 0, fmt.Errorf("recent journals: %w", err)
		}
		if section != nil {
			articles = append(articles, *section)
		}
	}
	chapters, total, err := s.articles.Page(ctx, model.ArticleTypeJournalChapter, page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("recent journals: %w", err)
	}
	articles = append(articles, chapters...)
	pageCount := int((total + int64(size) - 1) / int64(size))

	authors, err := s.authors(ctx, articles)
	if err != nil {
		return nil, 0, fmt.Errorf("recent journals: %w", err)
	}
	views := make([]*model.JournalView, 0, len(articles))
	holders := make([]model.ParticipantHolder, 0, len(articles))
	for _, a := range articles {
		v := &model.JournalView{
			ID:           a.ID,
			Title:        a.Title,
			Type:         a.Type,
			CreateTime:   a.CreateTime,
			AuthorID:     a.AuthorID,
			Permalink:    a.Permalink,
			Participants: []*model.Participant{},
		}
		if u := authors[a.AuthorID]; u != nil {
			v.AuthorName = u.Name
			if u.Invalid() {
				v.Title = s.labels.Get(i18n.ArticleTitleBlockLabel)
			}
		}
		views = append(views, v)
		holders = append(holders, v)
	}
	if err := s.participants.Annotate(ctx, holders); err != nil {
		return nil, 0, fmt.Errorf("recent journals: %w", err)
	}
	return views, pageCount, nil
}
