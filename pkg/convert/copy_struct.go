package convert

import (
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// CopyStruct copies same-named fields from src to dst (dst must be a pointer)
// CopyStruct 将 src 中同名字段复制到 dst（dst 必须为指针）
func CopyStruct(dst interface{}, src interface{}) error {
	if err := copier.Copy(dst, src); err != nil {
		return errors.Wrap(err, "copy struct failed")
	}
	return nil
}
