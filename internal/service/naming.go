package service

import (
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"bookshelf/internal/model"
)

const (
	storageNameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	storageNameTokenLen = 8
	placeholderExt      = ".tmp"
)

// StorageName derives a blob key from the original file name:
// <unix-millis>_<random token><ext>. The random token keeps two names minted
// in the same millisecond apart.
func StorageName(original string, now time.Time) (string, error) {
	token, err := gonanoid.Generate(storageNameAlphabet, storageNameTokenLen)
	if err != nil {
		return "", fmt.Errorf("generate storage name: %w", err)
	}
	return fmt.Sprintf("%d_%s%s", now.UnixMilli(), token, storageExt(original)), nil
}

// storageExt returns the lowercased extension reduced to [a-z0-9.].
func storageExt(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return placeholderExt
	}
	ext := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, strings.ToLower(name[i:]))
	if ext == "" || ext == "." {
		return placeholderExt
	}
	return ext
}

// NormalizeTags splits a comma separated tag string. Full-width commas count
// as separators; segments are trimmed and empty ones dropped. Order is kept
// and duplicates are not removed.
func NormalizeTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(strings.ReplaceAll(raw, "，", ","), ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// CollectTags returns the distinct tags across books in first-seen order.
func CollectTags(books []model.Book) []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, b := range books {
		for _, tag := range b.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}
