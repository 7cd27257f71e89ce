package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// UserStore persists users
type UserStore struct {
	DB *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{DB: db}
}

// Create adds a user with an already hashed password
func (s *UserStore) Create(ctx context.Context, username, passwordHash, role string) (*User, error) {
	if role != RoleAdmin && role != RoleStaff {
		return nil, apperr.InvalidInput(fmt.Sprintf("unknown role '%s'", role))
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, apperr.Database(err, "could not check username")
	}
	if count > 0 {
		return nil, apperr.New(apperr.CodeConflict, fmt.Sprintf("user '%s' already exists", username))
	}

	user := &User{Username: username, PasswordHash: passwordHash, Role: role}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, apperr.Database(err, "could not create user")
	}
	return user, nil
}

// ByUsername loads a user for login
func (s *UserStore) ByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user", username)
		}
		return nil, apperr.Database(err, "could not load user")
	}
	return &user, nil
}

// StaffByIDs resolves ids to staff users in the given order. Unknown ids and non-staff users are rejected.
func (s *UserStore) StaffByIDs(ctx context.Context, ids []string) ([]User, error) {
	var found []User
	if len(ids) > 0 {
		if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
			return nil, apperr.Database(err, "could not load staff")
		}
	}
	byID := make(map[string]User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}

	users := make([]User, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok || u.Role != RoleStaff {
			return nil, apperr.InvalidInput(fmt.Sprintf("invalid staff ID: %s", id))
		}
		users = append(users, u)
	}
	return users, nil
}

// CountByRole counts users holding role
func (s *UserStore) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

// OpenInMemory opens a private in-memory SQLite database with the schema applied
func OpenInMemory(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
