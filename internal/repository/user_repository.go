package repository

import (
	"cbda_exam_backend/internal/model"
	"cbda_exam_backend/internal/store"
	"cbda_exam_backend/internal/util"
)

type UserRepository struct {
	Store store.Store
	Path  string
}

func NewUserRepository(s store.Store, path string) *UserRepository {
	return &UserRepository{Store: s, Path: path}
}

func (r *UserRepository) All() ([]model.User, error) {
	var users []model.User
	if err := r.Store.Load(r.Path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindByEmail 精确匹配（区分大小写）
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	users, err := r.All()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, util.ErrUserNotFound
}

func (r *UserRepository) FindByID(id string) (*model.User, error) {
	users, err := r.All()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, util.ErrUserNotFound
}

// Create 追加新用户。邮箱唯一性在写入时持锁校验，避免并发注册同一邮箱。
func (r *UserRepository) Create(user *model.User) error {
	return r.Store.Update(r.Path, func() error {
		var users []model.User
		if err := r.Store.Load(r.Path, &users); err != nil {
			return err
		}
		for i := range users {
			if users[i].Email == user.Email {
				return util.ErrEmailRegistered
			}
		}
		users = append(users, *user)
		return r.Store.Save(r.Path, users)
	})
}

// UpdateEmail 改写匹配记录的邮箱字段并持久化整个序列
func (r *UserRepository) UpdateEmail(userID, newEmail string) error {
	return r.Store.Update(r.Path, func() error {
		var users []model.User
		if err := r.Store.Load(r.Path, &users); err != nil {
			return err
		}

		idx := -1
		for i := range users {
			if users[i].ID == userID {
				idx = i
			}
			if users[i].Email == newEmail && users[i].ID != userID {
				return util.ErrEmailRegistered
			}
		}
		if idx < 0 {
			return util.ErrUserNotFound
		}

		users[idx].Email = newEmail
		return r.Store.Save(r.Path, users)
	})
}
