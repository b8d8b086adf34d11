package gormrepo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Xushengqwer/campus_service/myErrors"
)

// translate 把 gorm 的错误（需开启 TranslateError）映射为仓库层错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return myErrors.ErrRepoNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return myErrors.ErrRepoDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return myErrors.ErrRepoNotFound
	}
	return err
}

// MySQL 默认 sql_mode 下字面量里的反斜杠本身会被转义，这里用 '!' 作转义符
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern 生成子串匹配模式，查询中的 % 和 _ 按字面匹配。
// 调用方需对列使用 LOWER() 并传入已小写的 q
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// likeAny 生成 (LOWER(col1) LIKE ? ESCAPE '!' OR ...)，每列占一个参数
func likeAny(columns ...string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = "LOWER(" + col + ") LIKE ? ESCAPE '!'"
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
