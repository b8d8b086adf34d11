package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/campus_service/models/dto"
)

// formFile 打开 multipart 中的可选文件字段。
// 字段不存在时返回 (nil, noop, nil)；调用方必须 defer release()。
func formFile(c *gin.Context, field string, maxBytes int64) (*dto.FileUpload, func(), error) {
	noop := func() {}
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, fmt.Errorf("invalid multipart form: %w", err)
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, noop, fmt.Errorf("file exceeds %d MB", maxBytes>>20)
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("cannot open uploaded file: %w", err)
	}
	return &dto.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}, func() { _ = file.Close() }, nil
}
