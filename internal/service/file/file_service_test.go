package service

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"filesafe/config"
	apperrors "filesafe/internal/errors"
	"filesafe/internal/database"
	"filesafe/internal/logger"
	"filesafe/internal/repository"
	"filesafe/internal/storage"
)

func TestMain(m *testing.M) {
	_ = logger.Init(&logger.Config{Level: "error", Output: "console"})
	os.Exit(m.Run())
}

// testEnv 文件服务测试环境
type testEnv struct {
	svc     FileService
	gateway storage.Gateway
	users   repository.UserRepository
	alice   *database.User
	bob     *database.User
}

// setupFileService 构造基于内存数据库和临时目录的文件服务
func setupFileService(t *testing.T, cfg config.FileConfig) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.User{}, &database.File{}))

	gw, err := storage.NewGateway(t.TempDir())
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	alice, err := users.Create("alice", "hash-alice")
	require.NoError(t, err)
	bob, err := users.Create("bob", "hash-bob")
	require.NoError(t, err)

	return &testEnv{
		svc:     NewFileService(repository.NewFileRepository(db), gw, cfg),
		gateway: gw,
		users:   users,
		alice:   alice,
		bob:     bob,
	}
}

func defaultFileConfig() config.FileConfig {
	return config.FileConfig{
		MaxFileSize:       1024,
		AllowedExtensions: []string{"*"},
	}
}

// TestFileServiceUpload 测试文件上传
func TestFileServiceUpload(t *testing.T) {
	env := setupFileService(t, defaultFileConfig())

	t.Run("上传后元数据完整", func(t *testing.T) {
		file, err := env.svc.Upload(env.alice.ID, "notes.txt", "text/plain", strings.NewReader("0123456789"))
		require.NoError(t, err)

		assert.Len(t, file.UniqueID, 36)
		assert.Equal(t, "notes.txt", file.OriginalFilename)
		assert.Equal(t, "text/plain", file.MimeType)
		assert.Equal(t, int64(10), file.FileSize)
		assert.Equal(t, env.alice.ID, file.UploaderID)

		// 内容确实落盘
		content, err := os.ReadFile(file.StoredPath)
		require.NoError(t, err)
		assert.Equal(t, "0123456789", string(content))
	})

	t.Run("超过大小上限返回错误且不留下文件", func(t *testing.T) {
		cfg := defaultFileConfig()
		cfg.MaxFileSize = 5
		small := setupFileService(t, cfg)

		_, err := small.svc.Upload(small.alice.ID, "big.txt", "text/plain", strings.NewReader("way too large"))
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrFileSizeTooLarge))

		entries, err := os.ReadDir(small.gateway.Root())
		require.NoError(t, err)
		assert.Empty(t, entries)

		list, err := small.svc.ListByUploader(small.alice.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("扩展名不在白名单时拒绝", func(t *testing.T) {
		cfg := defaultFileConfig()
		cfg.AllowedExtensions = []string{".txt", ".pdf"}
		restricted := setupFileService(t, cfg)

		_, err := restricted.svc.Upload(restricted.alice.ID, "evil.exe", "", strings.NewReader("x"))
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrFileTypeNotAllowed))

		_, err = restricted.svc.Upload(restricted.alice.ID, "report.PDF", "", strings.NewReader("x"))
		assert.NoError(t, err)
	})
}

// TestFileServiceDownload 测试文件下载
func TestFileServiceDownload(t *testing.T) {
	env := setupFileService(t, defaultFileConfig())

	uploaded, err := env.svc.Upload(env.alice.ID, "data.txt", "text/plain", strings.NewReader("payload"))
	require.NoError(t, err)

	t.Run("按唯一标识下载内容", func(t *testing.T) {
		file, content, err := env.svc.Download(uploaded.UniqueID)
		require.NoError(t, err)
		defer content.Close()

		assert.Equal(t, "data.txt", file.OriginalFilename)
		data, err := io.ReadAll(content)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	})

	t.Run("记录不存在返回文件未找到", func(t *testing.T) {
		_, _, err := env.svc.Download("00000000-0000-0000-0000-000000000000")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrFileNotFound))
	})

	t.Run("记录存在但磁盘文件丢失属于一致性故障", func(t *testing.T) {
		victim, err := env.svc.Upload(env.alice.ID, "lost.txt", "text/plain", strings.NewReader("gone"))
		require.NoError(t, err)
		require.NoError(t, os.Remove(victim.StoredPath))

		_, _, err = env.svc.Download(victim.UniqueID)
		require.Error(t, err)
		// 绝不能当作404
		assert.True(t, apperrors.IsCode(err, apperrors.ErrFileMissingOnDisk))
		assert.False(t, apperrors.IsCode(err, apperrors.ErrFileNotFound))
	})
}

// TestFileServiceListByUploader 测试按上传者列表查询
func TestFileServiceListByUploader(t *testing.T) {
	env := setupFileService(t, defaultFileConfig())

	_, err := env.svc.Upload(env.alice.ID, "a1.txt", "", strings.NewReader("1"))
	require.NoError(t, err)
	_, err = env.svc.Upload(env.alice.ID, "a2.txt", "", strings.NewReader("2"))
	require.NoError(t, err)
	_, err = env.svc.Upload(env.bob.ID, "b1.txt", "", strings.NewReader("3"))
	require.NoError(t, err)

	aliceFiles, err := env.svc.ListByUploader(env.alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceFiles, 2)
	for _, f := range aliceFiles {
		assert.Equal(t, env.alice.ID, f.UploaderID)
	}

	bobFiles, err := env.svc.ListByUploader(env.bob.ID)
	require.NoError(t, err)
	require.Len(t, bobFiles, 1)
	assert.Equal(t, "b1.txt", bobFiles[0].OriginalFilename)
}

// TestFileServiceDelete 测试文件删除
func TestFileServiceDelete(t *testing.T) {
	env := setupFileService(t, defaultFileConfig())

	uploaded, err := env.svc.Upload(env.alice.ID, "target.txt", "text/plain", strings.NewReader("data"))
	require.NoError(t, err)

	t.Run("非所有者删除被拒绝且文件不受影响", func(t *testing.T) {
		err := env.svc.Delete(uploaded.UniqueID, env.bob.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFileOwner))

		// 记录和磁盘文件都还在
		_, err = env.svc.GetByUniqueID(uploaded.UniqueID)
		assert.NoError(t, err)
		_, err = os.Stat(uploaded.StoredPath)
		assert.NoError(t, err)
	})

	t.Run("所有者删除后记录和磁盘文件都消失", func(t *testing.T) {
		require.NoError(t, env.svc.Delete(uploaded.UniqueID, env.alice.ID))

		_, err := env.svc.GetByUniqueID(uploaded.UniqueID)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrFileNotFound))

		_, err = os.Stat(uploaded.StoredPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("删除不存在的文件返回文件未找到", func(t *testing.T) {
		err := env.svc.Delete("00000000-0000-0000-0000-000000000000", env.alice.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrFileNotFound))
	})

	t.Run("磁盘文件已丢失时仍可删除记录", func(t *testing.T) {
		orphaned, err := env.svc.Upload(env.alice.ID, "half.txt", "", strings.NewReader("x"))
		require.NoError(t, err)
		require.NoError(t, os.Remove(orphaned.StoredPath))

		require.NoError(t, env.svc.Delete(orphaned.UniqueID, env.alice.ID))

		_, err = env.svc.GetByUniqueID(orphaned.UniqueID)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrFileNotFound))
	})
}
