package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/SimoHua/symphonyx/internal/logger"
	"github.com/SimoHua/symphonyx/internal/model"
	"github.com/SimoHua/symphonyx/internal/service"
	"github.com/SimoHua/symphonyx/internal/times"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// rosterFile lists teams by member user name, e.g.
//
//	teams:
//	  - name: Core
//	    users: [alice, bob]
type rosterFile struct {
	Teams []struct {
		Name  string   `yaml:"name"`
		Users []string `yaml:"users"`
	} `yaml:"teams"`
}

type userLookup interface {
	GetUserByName(ctx context.Context, name string) (*model.User, error)
}

type archiveSaver interface {
	Save(ctx context.Context, a *model.Archive) error
}

func freezeRoster(ctx context.Context, path, kinds string, at time.Time, users userLookup, archives archiveSaver) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read roster: %w", err)
	}
	teams, err := encodeTeams(ctx, data, users)
	if err != nil {
		return err
	}

	for _, kind := range strings.Split(kinds, ",") {
		kind = strings.TrimSpace(kind)
		var start time.Time
		switch kind {
		case model.ArchiveKindDay:
			start = times.DayStart(at)
		case model.ArchiveKindWeek:
			start = times.WeekStart(at)
		default:
			return fmt.Errorf("unknown archive kind %q", kind)
		}
		a := &model.Archive{
			ID:        strings.ReplaceAll(uuid.NewString(), "-", ""),
			Kind:      kind,
			StartTime: start.UnixMilli(),
			Teams:     teams,
		}
		if err := archives.Save(ctx, a); err != nil {
			return fmt.Errorf("save %s archive: %w", kind, err)
		}
		logger.Info("roster: archive frozen", "kind", kind, "start", start.Format(time.DateOnly))
	}
	return nil
}

// encodeTeams resolves member names to ids and serializes the archive team
// list. Unknown names are skipped with a warning.
func encodeTeams(ctx context.Context, data []byte, users userLookup) (string, error) {
	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return "", fmt.Errorf("parse roster: %w", err)
	}

	teams := make([]service.ArchivedTeam, 0, len(rf.Teams))
	for _, t := range rf.Teams {
		entry := service.ArchivedTeam{TeamName: t.Name, Users: []string{}}
		for _, name := range t.Users {
			u, err := users.GetUserByName(ctx, name)
			if err != nil {
				logger.Warn("roster: member skipped", "team", t.Name, "name", name, "err", err)
				continue
			}
			entry.Users = append(entry.Users, u.ID)
		}
		teams = append(teams, entry)
	}

	return service.EncodeTeams(teams)
}
