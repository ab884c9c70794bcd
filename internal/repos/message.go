package repos

import (
    "context"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/basespeak/basespeak-backend/internal/logger"
    "github.com/basespeak/basespeak-backend/internal/types"
)

type MessageRepo interface {
    Create(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error)
    GetByID(ctx context.Context, tx *gorm.DB, messageID uuid.UUID) (*types.Message, error)
    GetByAvatarID(ctx context.Context, tx *gorm.DB, userID, avatarID uuid.UUID) ([]types.Message, error)
    GetByJobID(ctx context.Context, tx *gorm.DB, jobID string) (*types.Message, error)
    Update(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error)
}

type messageRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
    return &messageRepo{
        db:  db,
        log: baseLog.With("repo", "MessageRepo"),
    }
}

func (mr *messageRepo) Create(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error) {
    if tx == nil {
        tx = mr.db
    }
    if err := tx.WithContext(ctx).Create(msg).Error; err != nil {
        mr.log.Error("failed to create message", "error", err)
        return nil, err
    }
    return msg, nil
}

func (mr *messageRepo) GetByID(ctx context.Context, tx *gorm.DB, messageID uuid.UUID) (*types.Message, error) {
    if tx == nil {
        tx = mr.db
    }
    var msg types.Message
    if err := tx.WithContext(ctx).
        Where("id = ?", messageID).
        First(&msg).Error; err != nil {
        if err != gorm.ErrRecordNotFound {
            mr.log.Error("failed to get message by id", "error", err)
        }
        return nil, err
    }
    return &msg, nil
}

func (mr *messageRepo) GetByAvatarID(ctx context.Context, tx *gorm.DB, userID, avatarID uuid.UUID) ([]types.Message, error) {
    if tx == nil {
        tx = mr.db
    }
    var msgs []types.Message
    if err := tx.WithContext(ctx).
        Where("user_id = ? AND avatar_id = ?", userID, avatarID).
        Order("created_at ASC").
        Find(&msgs).Error; err != nil {
        mr.log.Error("failed to get messages by avatarID", "error", err)
        return nil, err
    }
    return msgs, nil
}

func (mr *messageRepo) GetByJobID(ctx context.Context, tx *gorm.DB, jobID string) (*types.Message, error) {
    if tx == nil {
        tx = mr.db
    }
    var msg types.Message
    if err := tx.WithContext(ctx).
        Where("job_id = ?", jobID).
        First(&msg).Error; err != nil {
        if err != gorm.ErrRecordNotFound {
            mr.log.Error("failed to get message by jobID", "error", err)
        }
        return nil, err
    }
    return &msg, nil
}

func (mr *messageRepo) Update(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error) {
    if tx == nil {
        tx = mr.db
    }
    if err := tx.WithContext(ctx).Save(msg).Error; err != nil {
        mr.log.Error("failed to update message", "error", err)
        return nil, err
    }
    return msg, nil
}
