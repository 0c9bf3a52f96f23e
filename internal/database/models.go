// Package database 定义了数据库相关的模型和结构体
// 包含用户和文件元数据两类核心数据模型
package database

// 此文件保留作为数据库模型包的入口文件
// 具体的模型定义已拆分到以下文件：
// - user_models.go: 用户模型（User）
// - file_models.go: 文件模型（File）
