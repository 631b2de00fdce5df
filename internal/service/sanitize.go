package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	plainTextPolicy = bluemonday.StrictPolicy()
	richTextPolicy  = bluemonday.UGCPolicy()
)

func sanitizePlain(input string) string {
	return strings.TrimSpace(plainTextPolicy.Sanitize(input))
}

func sanitizeRich(input string) string {
	return strings.TrimSpace(richTextPolicy.Sanitize(input))
}
