package repository

import (
	"cbda_exam_backend/internal/model"
	"cbda_exam_backend/internal/store"
	"cbda_exam_backend/internal/util"
)

type ResultRepository struct {
	Store store.Store
	Path  string
}

func NewResultRepository(s store.Store, path string) *ResultRepository {
	return &ResultRepository{Store: s, Path: path}
}

func (r *ResultRepository) All() ([]model.Result, error) {
	var results []model.Result
	if err := r.Store.Load(r.Path, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ResultRepository) Append(result *model.Result) error {
	return r.Store.Update(r.Path, func() error {
		var results []model.Result
		if err := r.Store.Load(r.Path, &results); err != nil {
			return err
		}
		results = append(results, *result)
		return r.Store.Save(r.Path, results)
	})
}

func (r *ResultRepository) FindByUser(userID string) ([]model.Result, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}
	filtered := []model.Result{}
	for _, res := range all {
		if res.UserID == userID {
			filtered = append(filtered, res)
		}
	}
	return filtered, nil
}

// Delete 按ID删除并重写整个文件，不存在时返回 ErrResultNotFound 且不落盘
func (r *ResultRepository) Delete(id string) error {
	return r.Store.Update(r.Path, func() error {
		var results []model.Result
		if err := r.Store.Load(r.Path, &results); err != nil {
			return err
		}

		idx := -1
		for i := range results {
			if results[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return util.ErrResultNotFound
		}

		results = append(results[:idx], results[idx+1:]...)
		return r.Store.Save(r.Path, results)
	})
}
