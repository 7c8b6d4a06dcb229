package kkdai

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

var errUnsupportedURL = errors.New("[kkdai] unsupported URL format")

func extractYouTubeID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", errUnsupportedURL
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	var id string

	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"), strings.HasPrefix(u.Path, "/embed/"), strings.HasPrefix(u.Path, "/live/"):
			parts := strings.Split(strings.Trim(u.Path, "/"), "/")
			if len(parts) >= 2 {
				id = parts[1]
			}
		}
	default:
		return "", errUnsupportedURL
	}

	if !videoIDPattern.MatchString(id) {
		return "", errors.New("[kkdai] invalid YouTube video id")
	}
	return id, nil
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
