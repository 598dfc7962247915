package repository

import (
	"context"
	"errors"
	"fmt"

	"bitwise74/files-api/internal/apperr"
	"bitwise74/files-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type SQLOpts struct {
	// Driver is either sqlite or postgres
	Driver string
	DSN    string
}

// SQL is the gorm backed repository
type SQL struct {
	db *gorm.DB
}

func NewSQL(ctx context.Context, o SQLOpts) (*SQL, error) {
	var dialector gorm.Dialector

	switch o.Driver {
	case "sqlite":
		dialector = sqlite.Open(o.DSN)
	case "postgres":
		dialector = postgres.Open(o.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", o.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", o.Driver, err)
	}

	// sqlite allows a single writer, one connection avoids lock errors
	if o.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.WithContext(ctx).AutoMigrate(model.User{}, model.File{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	zap.L().Debug("Connected to sql database", zap.String("driver", o.Driver))

	return &SQL{db: db}, nil
}

func sqlErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.ErrConflict
	}

	return fmt.Errorf("%w: %w", apperr.ErrStoreUnavailable, err)
}

func (s *SQL) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, sqlErr(err)
	}

	return &u, nil
}

func (s *SQL) FindUserByID(ctx context.Context, id model.RecordID) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, sqlErr(err)
	}

	return &u, nil
}

func (s *SQL) InsertUser(ctx context.Context, u *model.User) error {
	u.ID = model.NewRecordID()

	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		u.ID = model.RecordID{}
		return sqlErr(err)
	}

	return nil
}

func (s *SQL) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return 0, sqlErr(err)
	}

	return n, nil
}

func (s *SQL) InsertFile(ctx context.Context, f *model.File) error {
	f.ID = model.NewRecordID()

	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		f.ID = model.RecordID{}
		return sqlErr(err)
	}

	return nil
}

func (s *SQL) FindFileByID(ctx context.Context, id model.RecordID) (*model.File, error) {
	var f model.File
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, sqlErr(err)
	}

	return &f, nil
}

func (s *SQL) FindFileByIDForOwner(ctx context.Context, id, userID model.RecordID) (*model.File, error) {
	var f model.File
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&f).
		Error
	if err != nil {
		return nil, sqlErr(err)
	}

	return &f, nil
}

func (s *SQL) ListFiles(ctx context.Context, userID, parentID model.RecordID, page int) ([]model.File, error) {
	files := []model.File{}

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND parent_id = ?", userID, parentID).
		Order("id asc").
		Offset(skipFor(page)).
		Limit(PageSize).
		Find(&files).
		Error
	if err != nil {
		return nil, sqlErr(err)
	}

	return files, nil
}

func (s *SQL) SetPublic(ctx context.Context, id model.RecordID, public bool) (*model.File, error) {
	var f model.File

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.File{}).Where("id = ?", id).Update("is_public", public)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("id = ?", id).First(&f).Error
	})
	if err != nil {
		return nil, sqlErr(err)
	}

	return &f, nil
}

func (s *SQL) CountFiles(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.File{}).Count(&n).Error; err != nil {
		return 0, sqlErr(err)
	}

	return n, nil
}

func (s *SQL) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (s *SQL) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
