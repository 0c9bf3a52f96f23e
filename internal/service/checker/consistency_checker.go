// Package service 提供元数据与磁盘文件的一致性检查服务
// 周期性扫描两类分歧：
// - 存活记录对应的磁盘文件丢失（一致性故障，error级别）
// - 磁盘文件没有对应的存活记录（孤儿文件，warn级别）
// 检查只读取和记录日志，不做任何自动修复
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"filesafe/internal/database"
	"filesafe/internal/logger"
)

// Report 单次检查的结果统计
type Report struct {
	// CheckedRecords 检查的存活记录数
	CheckedRecords int
	// MissingBlobs 磁盘文件丢失的记录数
	MissingBlobs int
	// OrphanBlobs 没有存活记录的磁盘文件数
	OrphanBlobs int
}

// ConsistencyChecker 一致性检查服务接口
type ConsistencyChecker interface {
	// Start 启动后台周期检查
	// ctx取消或调用Stop后退出
	Start(ctx context.Context) error

	// Stop 停止后台检查并等待当前轮次结束
	Stop() error

	// RunOnce 立即执行一轮检查
	RunOnce() (*Report, error)
}

// consistencyChecker 一致性检查服务实现
type consistencyChecker struct {
	db       *gorm.DB
	root     string
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewConsistencyChecker 创建一致性检查服务实例
// 参数:
//   - db: 数据库连接
//   - root: 文件存储根目录
//   - interval: 检查间隔
func NewConsistencyChecker(db *gorm.DB, root string, interval time.Duration) ConsistencyChecker {
	return &consistencyChecker{
		db:       db,
		root:     root,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start 启动后台周期检查
func (c *consistencyChecker) Start(ctx context.Context) error {
	if c.interval <= 0 {
		return fmt.Errorf("check interval must be positive")
	}

	logger.Infof("一致性检查服务启动，检查间隔: %s", c.interval)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("一致性检查服务收到上下文取消信号，退出")
				return
			case <-c.stopChan:
				logger.Info("一致性检查服务停止")
				return
			case <-ticker.C:
				if _, err := c.RunOnce(); err != nil {
					logger.Errorf("一致性检查执行失败: %v", err)
				}
			}
		}
	}()

	return nil
}

// Stop 停止后台检查并等待当前轮次结束
func (c *consistencyChecker) Stop() error {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	c.wg.Wait()
	return nil
}

// RunOnce 立即执行一轮检查
func (c *consistencyChecker) RunOnce() (*Report, error) {
	report := &Report{}

	// 默认查询范围只含存活记录，软删除的记录不参与检查
	var files []database.File
	if err := c.db.Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to list file records: %w", err)
	}
	report.CheckedRecords = len(files)

	referenced := make(map[string]struct{}, len(files))
	for _, file := range files {
		referenced[filepath.Base(file.StoredPath)] = struct{}{}

		if _, err := os.Stat(file.StoredPath); err != nil {
			if os.IsNotExist(err) {
				report.MissingBlobs++
				logger.Errorf("一致性故障：文件记录存在但磁盘文件丢失 (UUID: %s, 路径: %s)",
					file.UniqueID, file.StoredPath)
			} else {
				logger.Errorf("一致性检查无法访问磁盘文件 (UUID: %s, 路径: %s): %v",
					file.UniqueID, file.StoredPath, err)
			}
		}
	}

	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage root: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// 上传中的临时文件不算孤儿
		if strings.HasPrefix(entry.Name(), "upload_") {
			continue
		}
		if _, ok := referenced[entry.Name()]; !ok {
			report.OrphanBlobs++
			logger.Warnf("孤儿文件：磁盘文件没有对应的存活记录 (路径: %s)",
				filepath.Join(c.root, entry.Name()))
		}
	}

	if report.MissingBlobs == 0 && report.OrphanBlobs == 0 {
		logger.Debugf("一致性检查完成，共检查 %d 条记录，未发现分歧", report.CheckedRecords)
	} else {
		logger.Warnf("一致性检查完成，共检查 %d 条记录，磁盘文件丢失 %d，孤儿文件 %d",
			report.CheckedRecords, report.MissingBlobs, report.OrphanBlobs)
	}

	return report, nil
}
