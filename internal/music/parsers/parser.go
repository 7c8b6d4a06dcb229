package parsers

import (
	"errors"
	"strings"
)

const (
	ExtractorYTDLP = "ytdlp"
	ExtractorKKDAI = "kkdai"
)

var (
	ErrNoResults   = errors.New("no results for query")
	ErrEmptyStream = errors.New("extractor returned an empty stream URL")
)

func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
