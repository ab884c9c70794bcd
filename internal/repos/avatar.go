package repos

import (
    "context"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/basespeak/basespeak-backend/internal/logger"
    "github.com/basespeak/basespeak-backend/internal/types"
)

type AvatarRepo interface {
    Create(ctx context.Context, tx *gorm.DB, avatar *types.Avatar) (*types.Avatar, error)
    GetByID(ctx context.Context, tx *gorm.DB, userID, avatarID uuid.UUID) (*types.Avatar, error)
    GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.Avatar, error)
    Update(ctx context.Context, tx *gorm.DB, avatar *types.Avatar) (*types.Avatar, error)
}

type avatarRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewAvatarRepo(db *gorm.DB, baseLog *logger.Logger) AvatarRepo {
    return &avatarRepo{
        db:  db,
        log: baseLog.With("repo", "AvatarRepo"),
    }
}

func (ar *avatarRepo) Create(ctx context.Context, tx *gorm.DB, avatar *types.Avatar) (*types.Avatar, error) {
    if tx == nil {
        tx = ar.db
    }
    if err := tx.WithContext(ctx).Create(avatar).Error; err != nil {
        ar.log.Error("failed to create avatar", "error", err)
        return nil, err
    }
    return avatar, nil
}

func (ar *avatarRepo) GetByID(ctx context.Context, tx *gorm.DB, userID, avatarID uuid.UUID) (*types.Avatar, error) {
    if tx == nil {
        tx = ar.db
    }
    var avatar types.Avatar
    if err := tx.WithContext(ctx).
        Where("user_id = ? AND id = ?", userID, avatarID).
        First(&avatar).Error; err != nil {
        if err != gorm.ErrRecordNotFound {
            ar.log.Error("failed to get avatar by id", "error", err)
        }
        return nil, err
    }
    return &avatar, nil
}

func (ar *avatarRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.Avatar, error) {
    if tx == nil {
        tx = ar.db
    }
    var avatars []types.Avatar
    if err := tx.WithContext(ctx).
        Where("user_id = ?", userID).
        Order("created_at DESC").
        Find(&avatars).Error; err != nil {
        ar.log.Error("failed to get avatars by userID", "error", err)
        return nil, err
    }
    return avatars, nil
}

func (ar *avatarRepo) Update(ctx context.Context, tx *gorm.DB, avatar *types.Avatar) (*types.Avatar, error) {
    if tx == nil {
        tx = ar.db
    }
    if err := tx.WithContext(ctx).Save(avatar).Error; err != nil {
        ar.log.Error("failed to update avatar", "error", err)
        return nil, err
    }
    return avatar, nil
}
