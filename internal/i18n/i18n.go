// Package i18n 提供国际化支持
// 负责管理应用程序的语言包和翻译功能
package i18n

import (
	"sync"

	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"

	"filesafe/internal/logger"
)

// 支持的语言
const (
	LangZhCN = "zh-CN"
	LangEnUS = "en-US"
)

var (
	instance *I18n
	once     sync.Once

	// 语言包存储
	translations = map[string]map[string]string{
		LangZhCN: {
			"success":               "成功",
			"internal_server_error": "服务器内部错误",
			"invalid_params":        "参数错误",
			"unauthorized":          "未授权",
			"forbidden":             "禁止访问",
			"not_found":             "资源未找到",

			"username_taken":      "用户名已被注册",
			"invalid_credentials": "用户名或密码错误",
			"user_not_found":      "用户不存在",
			"register_failed":     "注册失败",

			"invalid_token": "令牌无效或已过期",

			"file_not_found":        "文件未找到",
			"file_missing_on_disk":  "文件记录存在但磁盘文件丢失",
			"file_upload_failed":    "文件上传失败",
			"file_write_failed":     "文件写入失败",
			"file_remove_failed":    "文件删除失败",
			"file_read_failed":      "文件读取失败",
			"file_size_too_large":   "文件大小超限",
			"file_type_not_allowed": "文件类型不允许",
			"not_file_owner":        "无权操作他人文件",

			"database_query":        "数据库查询错误",
			"database_insert":       "数据库插入错误",
			"database_delete":       "数据库删除错误",
			"record_not_found":      "记录未找到",
			"record_already_exists": "记录已存在",

			"unknown_error": "未知错误",
		},
		LangEnUS: {
			"success":               "Success",
			"internal_server_error": "Internal Server Error",
			"invalid_params":        "Invalid Parameters",
			"unauthorized":          "Unauthorized",
			"forbidden":             "Forbidden",
			"not_found":             "Resource Not Found",

			"username_taken":      "Username Already Registered",
			"invalid_credentials": "Incorrect Username Or Password",
			"user_not_found":      "User Not Found",
			"register_failed":     "Register Failed",

			"invalid_token": "Invalid Or Expired Token",

			"file_not_found":        "File Not Found",
			"file_missing_on_disk":  "File Record Exists But Blob Missing On Disk",
			"file_upload_failed":    "File Upload Failed",
			"file_write_failed":     "File Write Failed",
			"file_remove_failed":    "File Remove Failed",
			"file_read_failed":      "File Read Failed",
			"file_size_too_large":   "File Size Too Large",
			"file_type_not_allowed": "File Type Not Allowed",
			"not_file_owner":        "Not The File Owner",

			"database_query":        "Database Query Error",
			"database_insert":       "Database Insert Error",
			"database_delete":       "Database Delete Error",
			"record_not_found":      "Record Not Found",
			"record_already_exists": "Record Already Exists",

			"unknown_error": "Unknown Error",
		},
	}
)

// I18n 国际化管理器
type I18n struct {
	translators map[string]ut.Translator
	defaultLang string
}

// GetInstance 获取I18n单例
func GetInstance() *I18n {
	once.Do(func() {
		instance = &I18n{
			translators: make(map[string]ut.Translator),
			defaultLang: LangZhCN,
		}
		instance.initTranslators()
	})
	return instance
}

// initTranslators 初始化翻译器
func (i *I18n) initTranslators() {
	zhCN := zh.New()
	enUS := en_US.New()
	uni := ut.New(zhCN, enUS, zhCN)

	// 注册支持的语言，使用locale库的标识符
	langMappings := map[string]string{
		LangZhCN: "zh",
		LangEnUS: "en_US",
	}

	for ourLang, localeLang := range langMappings {
		trans, found := uni.GetTranslator(localeLang)
		if !found {
			logger.Errorf("初始化翻译器失败 for language %s (locale: %s): translator not found", ourLang, localeLang)
			continue
		}
		i.translators[ourLang] = trans
	}
}

// Translate 根据键和语言获取翻译
func (i *I18n) Translate(key, lang string) string {
	if translation, found := translations[lang][key]; found {
		return translation
	}

	// 当前语言没有找到时回退到默认语言
	if lang != i.defaultLang {
		if translation, found := translations[i.defaultLang][key]; found {
			return translation
		}
	}

	logger.Warnf("未找到翻译: %s, 语言: %s", key, lang)
	return key
}

// SetDefaultLanguage 设置默认语言
func (i *I18n) SetDefaultLanguage(lang string) {
	i.defaultLang = lang
}

// GetDefaultLanguage 获取默认语言
func (i *I18n) GetDefaultLanguage() string {
	return i.defaultLang
}

// IsSupportedLanguage 检查语言是否支持
func (i *I18n) IsSupportedLanguage(lang string) bool {
	_, exists := i.translators[lang]
	return exists
}
