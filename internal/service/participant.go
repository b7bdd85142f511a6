package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SimoHua/symphonyx/internal/logger"
	"github.com/SimoHua/symphonyx/internal/model"

	"golang.org/x/sync/errgroup"
)

// ParticipantService attaches the most recent distinct commenters of each
// thread, at most limit per thread.
type ParticipantService struct {
	comments  CommentStore
	users     UserDirectory
	limit     int
	workers   int
	servePath string
	log       *slog.Logger
}

func NewParticipantService(comments CommentStore, users UserDirectory, limit, workers int, servePath string) *ParticipantService {
	if workers < 1 {
		workers = 1
	}
	return &ParticipantService{
		comments:  comments,
		users:     users,
		limit:     limit,
		workers:   workers,
		servePath: strings.TrimSuffix(servePath, "/"),
		log:       logger.With("component", "participant"),
	}
}

// Annotate sets participants on every holder; holders without any get an
// empty list. Per-thread lookup failures are logged and skipped. Only a done
// context is returned as an error.
func (s *ParticipantService) Annotate(ctx context.Context, holders []model.ParticipantHolder) error {
	ids := make([][]string, len(holders))
	if s.limit > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)
		for i, h := range holders {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				got, err := s.comments.LatestCommenterIDs(gctx, h.ThreadID(), s.limit)
				if err != nil {
					s.log.Warn("load participants", "thread_id", h.ThreadID(), "err", err)
					return nil
				}
				ids[i] = got
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	users, err := s.lookup(ctx, ids)
	if err != nil {
		return err
	}
	for i, h := range holders {
		ps := make([]*model.Participant, 0, len(ids[i]))
		for _, id := range ids[i] {
			if p, ok := users[id]; ok {
				ps = append(ps, p)
			}
		}
		h.SetParticipants(ps)
	}
	return nil
}

func (s *ParticipantService) lookup(ctx context.Context, ids [][]string) (map[string]*model.Participant, error) {
	seen := make(map[string]struct{})
	var all []string
	for _, list := range ids {
		for _, id := range list {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				all = append(all, id)
			}
		}
	}

	out := make(map[string]*model.Participant, len(all))
	if len(all) == 0 {
		return out, nil
	}
	users, err := s.users.GetUsersByIDs(ctx, all)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Warn("load participant users", "err", err)
		return out, nil
	}
	for _, u := range users {
		if u.Invalid() {
			continue
		}
		out[u.ID] = &model.Participant{
			ID:            u.ID,
			UserName:      u.Name,
			UserAvatarURL: u.AvatarURL,
			URL:           s.servePath + "/member/" + u.Name,
		}
	}
	return out, nil
}
