package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DoyleJ11/dualstrike/internal/engine"
)

// Postgres persists matches as normalized rows. Balls are keyed by
// (over_id, ball_number) and inserted with ON CONFLICT DO NOTHING so a
// redelivered ball is never written twice.
type Postgres struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPostgres(dsn string, debug bool, logger *zap.Logger) (*Postgres, error) {
	gormConfig := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	if debug {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&matchRow{}, &inningsRow{}, &overRow{}, &ballRow{}, &rankingRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Postgres{db: db, logger: logger.Named("pgstore")}, nil
}

func (s *Postgres) SaveMatch(ctx context.Context, m engine.Match) error {
	rows := toRows(m)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows.match).Error; err != nil {
			return fmt.Errorf("upsert match: %w", err)
		}
		if len(rows.innings) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows.innings).Error; err != nil {
				return fmt.Errorf("upsert innings: %w", err)
			}
		}
		if len(rows.overs) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows.overs).Error; err != nil {
				return fmt.Errorf("upsert overs: %w", err)
			}
		}

		// Undone balls are the ones past the end of their over.
		for _, in := range m.Innings {
			for _, o := range in.Overs {
				res := tx.Where("over_id = ? AND ball_number > ?", o.ID, len(o.Balls)).Delete(&ballRow{})
				if res.Error != nil {
					return fmt.Errorf("delete undone balls: %w", res.Error)
				}
				if res.RowsAffected > 0 {
					s.logger.Debug("removed undone balls",
						zap.String("match_id", m.ID),
						zap.String("over_id", o.ID),
						zap.Int64("count", res.RowsAffected))
				}
			}
		}
		if len(rows.balls) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "over_id"}, {Name: "ball_number"}},
				DoNothing: true,
			}).Create(&rows.balls).Error
			if err != nil {
				return fmt.Errorf("insert balls: %w", err)
			}
		}

		// Rankings are final once written.
		if len(rows.rankings) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows.rankings).Error; err != nil {
				return fmt.Errorf("insert rankings: %w", err)
			}
		}
		return nil
	})
}

func (s *Postgres) LoadMatch(ctx context.Context, id string) (engine.Match, error) {
	db := s.db.WithContext(ctx)
	var rows matchRows

	if err := db.First(&rows.match, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return engine.Match{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return engine.Match{}, fmt.Errorf("load match: %w", err)
	}
	if err := db.Where("match_id = ?", id).Order("idx").Find(&rows.innings).Error; err != nil {
		return engine.Match{}, fmt.Errorf("load innings: %w", err)
	}
	if err := db.Where("match_id = ?", id).Order("over_number").Find(&rows.overs).Error; err != nil {
		return engine.Match{}, fmt.Errorf("load overs: %w", err)
	}
	if err := db.Where("match_id = ?", id).Order("ball_number").Find(&rows.balls).Error; err != nil {
		return engine.Match{}, fmt.Errorf("load balls: %w", err)
	}
	if err := db.Where("match_id = ?", id).Order("position").Find(&rows.rankings).Error; err != nil {
		return engine.Match{}, fmt.Errorf("load rankings: %w", err)
	}
	return fromRows(rows), nil
}

func (s *Postgres) ListMatches(ctx context.Context) ([]Summary, error) {
	var matches []matchRow
	err := s.db.WithContext(ctx).
		Select("id", "team_ids", "state", "updated_at").
		Order("updated_at DESC").Order("id").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]Summary, 0, len(matches))
	for _, r := range matches {
		out = append(out, Summary{ID: r.ID, TeamIDs: r.TeamIDs, State: r.State, UpdatedAt: r.UpdatedAt})
	}
	return out, nil
}

func (s *Postgres) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
