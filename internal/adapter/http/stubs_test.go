package http

import (
	"context"

	"github.com/iho/banksync/internal/domain"
)

type stubSyncService struct{}

func (stubSyncService) Start(domain.SyncConfig) error { return nil }
func (stubSyncService) Stop(context.Context) error    { return nil }
func (stubSyncService) Frame() []byte                 { return nil }

func (stubSyncService) Status() domain.RunSnapshot {
	return domain.RunSnapshot{Status: domain.StatusIdle}
}

type stubSettings struct{}

func (stubSettings) Save(context.Context, *domain.Settings) error { return nil }
func (stubSettings) Get(context.Context, string) (*domain.Settings, error) {
	return nil, domain.ErrSettingsNotFound
}

type stubUsers struct{}

func (stubUsers) Create(context.Context, *domain.User) error { return nil }
func (stubUsers) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (stubUsers) GetByID(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

type stubIDs struct{}

func (stubIDs) Generate() string { return "user-1" }
