package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrCorrupted 数据文件存在但不是合法JSON
var ErrCorrupted = errors.New("corrupted data file")

// Store 是所有仓储层共用的持久化抽象：每个文件保存一个JSON数组。
// 注入接口便于测试替换为内存实现。
type Store interface {
	// Load 读取整个文件到 out（指向切片的指针）。文件不存在时 out 保持零值、返回 nil。
	Load(path string, out interface{}) error
	// Save 序列化整个序列并原子替换文件内容
	Save(path string, v interface{}) error
	// Update 持有该路径的互斥锁执行 fn，保证同一文件的
	// 读-改-写不会在进程内交错（跨进程仍是 last-write-wins，见 README）
	Update(path string, fn func() error) error
	// Exists 文件是否存在
	Exists(path string) bool
}

// FileStore 基于本地磁盘的实现，每个路径一把锁
type FileStore struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewFileStore() *FileStore {
	return &FileStore{locks: make(map[string]*sync.Mutex)}
}

func (s *FileStore) pathLock(path string) *sync.Mutex {
	key := filepath.Clean(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *FileStore) Load(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// 空文件按空序列处理
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupted, path, err)
	}
	return nil
}

func (s *FileStore) Save(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// 先写临时文件再rename，避免进程崩溃留下截断的文件
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}

func (s *FileStore) Update(path string, fn func() error) error {
	l := s.pathLock(path)
	l.Lock()
	defer l.Unlock()
	return fn()
}

func (s *FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
