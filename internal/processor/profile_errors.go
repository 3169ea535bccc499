package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrNoFile               = errors.New("未提供文件")
	ErrDocumentDecodeFailed = errors.New("解码PDF文档失败")
	ErrEmptyDocument        = errors.New("文档不含可用内容")
	ErrSuggestionFailed     = errors.New("生成档案点评失败")
)

// ProfileProcessError 包含详细错误信息的自定义错误
type ProfileProcessError struct {
	Filename string
	Op       string
	BaseErr  error
	Detail   string
}

func (e *ProfileProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 文件:%s): %s", e.BaseErr, e.Op, e.Filename, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 文件:%s)", e.BaseErr, e.Op, e.Filename)
}

func (e *ProfileProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ProfileProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewNoFileError(detail string) error {
	return &ProfileProcessError{
		Filename: "",
		Op:       "upload",
		BaseErr:  ErrNoFile,
		Detail:   detail,
	}
}

func NewDecodeError(filename, detail string) error {
	return &ProfileProcessError{
		Filename: filename,
		Op:       "decode",
		BaseErr:  ErrDocumentDecodeFailed,
		Detail:   detail,
	}
}

func NewEmptyDocumentError(filename string) error {
	return &ProfileProcessError{
		Filename: filename,
		Op:       "extract",
		BaseErr:  ErrEmptyDocument,
	}
}

func NewSuggestionError(filename, detail string) error {
	return &ProfileProcessError{
		Filename: filename,
		Op:       "suggest",
		BaseErr:  ErrSuggestionFailed,
		Detail:   detail,
	}
}
