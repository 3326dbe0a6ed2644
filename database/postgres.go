package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdlog "log"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/aether-backend/errs"
	"github.com/rpupo63/aether-backend/models"
)

// documentRow stores one document per row with the body in a jsonb column.
type documentRow struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;not null"`
	Collection string         `gorm:"type:text;not null;index:idx_documents_collection"`
	Body       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRow) TableName() string {
	return "documents"
}

func (r documentRow) record() (models.ProjectRecord, error) {
	var project models.Project
	if err := json.Unmarshal(r.Body, &project); err != nil {
		return models.ProjectRecord{}, fmt.Errorf("%w: document %s: %v", errs.ErrMalformedRecord, r.ID, err)
	}
	return models.ProjectRecord{
		ID:        r.ID.String(),
		Project:   project,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

type PostgresConfig struct {
	DSN         string
	ReplicaDSNs []string
	Logger      zerolog.Logger
}

// PostgresStore keeps documents in a single jsonb table on Postgres.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db}
}

// OpenPostgres connects, registers read replicas and migrates the documents table.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	gormLogger := logger.New(
		stdlog.New(cfg.Logger, "", 0),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if len(cfg.ReplicaDSNs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.ReplicaDSNs))
		for _, dsn := range cfg.ReplicaDSNs {
			replicas = append(replicas, postgres.Open(dsn))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("register replicas: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&documentRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate documents table: %w", err)
	}

	return NewPostgresStore(db), nil
}

// parseDocumentID is the only place a client id is turned into a row key.
func parseDocumentID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q: %v", errs.ErrInvalidIdentifier, id, err)
	}
	return parsed, nil
}

func (s *PostgresStore) Insert(ctx context.Context, collection string, project models.Project) (string, error) {
	body, err := json.Marshal(project)
	if err != nil {
		return "", err
	}

	row := documentRow{
		ID:         uuid.New(),
		Collection: collection,
		Body:       datatypes.JSON(body),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return row.ID.String(), nil
}

func (s *PostgresStore) Find(ctx context.Context, collection string, filter Filter, limit int64) ([]models.ProjectRecord, error) {
	records := []models.ProjectRecord{}
	if limit <= 0 {
		return records, nil
	}

	q := s.db.WithContext(ctx).Where("collection = ?", collection)
	if len(filter) > 0 {
		// jsonb containment of a flat object is field-wise equality
		containment, err := json.Marshal(filter)
		if err != nil {
			return nil, err
		}
		q = q.Where("body @> ?::jsonb", string(containment))
	}

	var rows []documentRow
	if err := q.Limit(int(limit)).Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		record, err := row.record()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, collection string, id string) (*models.ProjectRecord, error) {
	docID, err := parseDocumentID(id)
	if err != nil {
		return nil, err
	}

	var row documentRow
	err = s.db.WithContext(ctx).
		Where("id = ? AND collection = ?", docID, collection).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	record, err := row.record()
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *PostgresStore) Name() string {
	return s.db.Migrator().CurrentDatabase()
}

func (s *PostgresStore) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&documentRow{}).
		Distinct("collection").
		Order("collection").
		Pluck("collection", &names).Error
	return names, err
}

func (s *PostgresStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
