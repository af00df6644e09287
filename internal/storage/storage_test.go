package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, "attachment; filename=book.pdf", contentDisposition("book.pdf"))
	assert.Equal(t, `attachment; filename="my book.pdf"`, contentDisposition("my book.pdf"))
	assert.Equal(t, "attachment; filename*=utf-8''%E4%B8%89%E4%BD%93.epub", contentDisposition("三体.epub"))
}
