package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/unimart/internal/models"
)

// UserRepo scopes users by their own id: a principal only ever sees itself.
type UserRepo struct {
	*Repository[models.User]
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{Repository: NewRepository[models.User](db, "id", "user")}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err, "get user")
	}
	return &u, nil
}

func (r *UserRepo) ExistsByEmailOrTelephone(ctx context.Context, email string, telephone *string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if telephone != nil {
		q = q.Or("telephone = ?", *telephone)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err, "count user")
	}
	return n > 0, nil
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	_, err := r.Update(ctx, id, map[string]any{"last_login": at}, id)
	return err
}

func (r *UserRepo) AddRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return translate(err, "add refresh token")
	}
	return nil
}

func (r *UserRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := r.db.WithContext(ctx).Where("jti = ?", jti).First(&t).Error; err != nil {
		return nil, translate(err, "get refresh token")
	}
	return &t, nil
}

// RevokeRefresh marks an unrevoked token as used. ErrNotFound when it was
// already revoked, so concurrent rotations of one token cannot both win.
func (r *UserRepo) RevokeRefresh(ctx context.Context, jti string) error {
	res := r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("jti = ? AND revoked = ?", jti, false).
		Update("revoked", true)
	if res.Error != nil {
		return translate(res.Error, "revoke refresh token")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "revoke refresh token")
	}
	return nil
}

// RevokeRefreshByHash is used on logout and ignores unknown tokens.
func (r *UserRepo) RevokeRefreshByHash(ctx context.Context, hash string) error {
	err := r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token_hash = ?", hash).
		Update("revoked", true).Error
	if err != nil {
		return translate(err, "revoke refresh token")
	}
	return nil
}
