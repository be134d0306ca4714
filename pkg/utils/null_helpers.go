package utils

import (
	"strings"

	"github.com/aarondl/null/v8"
)

// TrimmedString возвращает null.String без пробелов по краям; пустая строка - NULL.
func TrimmedString(s null.String) null.String {
	if !s.Valid {
		return s
	}
	trimmed := strings.TrimSpace(s.String)
	if trimmed == "" {
		return null.String{}
	}
	return null.StringFrom(trimmed)
}

// FirstPresent - первое непустое значение, иначе NULL.
func FirstPresent(values ...null.String) null.String {
	for _, v := range values {
		if v = TrimmedString(v); v.Valid {
			return v
		}
	}
	return null.String{}
}
