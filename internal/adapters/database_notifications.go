package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/prepcheck/prepcheck/internal/domain"
)

// region notifications

func (r *SqlRepo) GetNotification(
	ctx context.Context,
	id domain.NotificationIdentifier,
) (*domain.Notification, error) {
	var notification domain.Notification

	err := r.db.WithContext(ctx).First(&notification, "identifier = ?", id).Error

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &notification, nil
}

func (r *SqlRepo) GetUserNotifications(
	ctx context.Context,
	id domain.UserIdentifier,
) ([]domain.Notification, error) {
	var notifications []domain.Notification

	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		Order("created_at desc").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *SqlRepo) SaveNotification(
	ctx context.Context,
	id domain.NotificationIdentifier,
	updateFunc func(n *domain.Notification) (*domain.Notification, error),
) error {
	userInfo := domain.GetUserInfo(ctx)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var notification domain.Notification
		err := tx.Attrs(domain.Notification{
			BaseModel:  newBaseModel(userInfo),
			Identifier: id,
		}).FirstOrCreate(&notification, "identifier = ?", id).Error
		if err != nil {
			return err
		}

		updated, err := updateFunc(&notification)
		if err != nil {
			return err
		}

		updated.UpdatedBy = userInfo.UserId()
		updated.UpdatedAt = time.Now()

		return tx.Save(updated).Error
	})
}

func (r *SqlRepo) DeleteNotification(ctx context.Context, id domain.NotificationIdentifier) error {
	return r.db.WithContext(ctx).Delete(&domain.Notification{}, "identifier = ?", id).Error
}

// DeleteExpiredNotifications removes all non-persistent notifications whose expiry lies in the past.
func (r *SqlRepo) DeleteExpiredNotifications(ctx context.Context, now time.Time) (int, error) {
	result := r.db.WithContext(ctx).
		Where("persistent = ?", false).
		Where("expires_at IS NOT NULL").
		Where("expires_at <= ?", now).
		Delete(&domain.Notification{})
	if result.Error != nil {
		return 0, result.Error
	}

	return int(result.RowsAffected), nil
}

// endregion notifications

// region statistics

// GetAdminOverview collects the portal-wide counters for the admin dashboard.
func (r *SqlRepo) GetAdminOverview(ctx context.Context) (*domain.AdminOverview, error) {
	overview := &domain.AdminOverview{}

	counts := []struct {
		model  any
		target *int
	}{
		{&domain.User{}, &overview.UserCount},
		{&domain.Subject{}, &overview.SubjectCount},
		{&domain.Question{}, &overview.QuestionCount},
		{&domain.MockTest{}, &overview.MockTestCount},
		{&domain.Attempt{}, &overview.AttemptCount},
		{&domain.Notification{}, &overview.NotificationCount},
	}
	for _, c := range counts {
		var count int64
		if err := r.db.WithContext(ctx).Model(c.model).Count(&count).Error; err != nil {
			return nil, err
		}
		*c.target = int(count)
	}

	return overview, nil
}

// endregion statistics
