package repository

import (
	"cbda_exam_backend/internal/model"
	"cbda_exam_backend/internal/store"
	"cbda_exam_backend/internal/util"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// QuestionRepository 每套题一个文件，文件名由 (testType, testId) 派生。
// 存储层本身不感知这个键，只拿到算好的路径。
type QuestionRepository struct {
	Store store.Store
	Dir   string
}

func NewQuestionRepository(s store.Store, dir string) *QuestionRepository {
	return &QuestionRepository{Store: s, Dir: dir}
}

// sanitizeKey 过滤路径分隔符等危险字符，防止目录穿越
func sanitizeKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (r *QuestionRepository) path(testType, testID string) string {
	return filepath.Join(r.Dir, fmt.Sprintf("%s_%s.json", sanitizeKey(testType), sanitizeKey(testID)))
}

// Save 覆盖该 (testType, testId) 之前的全部内容
func (r *QuestionRepository) Save(testType, testID string, questions []model.Question) error {
	path := r.path(testType, testID)
	return r.Store.Update(path, func() error {
		return r.Store.Save(path, questions)
	})
}

func (r *QuestionRepository) Find(testType, testID string) ([]model.Question, error) {
	path := r.path(testType, testID)
	if !r.Store.Exists(path) {
		return nil, util.ErrQuestionSetNotFound
	}
	var questions []model.Question
	if err := r.Store.Load(path, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ListSets 扫描题库目录，汇总每套题的概要
func (r *QuestionRepository) ListSets() ([]model.QuestionSetInfo, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.QuestionSetInfo{}, nil
		}
		return nil, err
	}

	sets := []model.QuestionSetInfo{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		base := strings.TrimSuffix(name, ".json")
		parts := strings.SplitN(base, "_", 2)
		if len(parts) != 2 {
			continue
		}

		var questions []model.Question
		if err := r.Store.Load(filepath.Join(r.Dir, name), &questions); err != nil {
			// 损坏的文件跳过，不影响其它套题的列表
			continue
		}

		sets = append(sets, model.QuestionSetInfo{
			TestType:      parts[0],
			TestID:        parts[1],
			QuestionCount: len(questions),
			Filename:      name,
		})
	}
	return sets, nil
}
