package openai

import (
	"net/url"
	"strings"
)

// endpointSuffixes 是用户常误把完整接口地址填成 base_url 时带上的后缀。
var endpointSuffixes = []string{"/chat/completions", "/completions", "/responses"}

// normalizeBaseURL 去掉接口后缀并保证路径以 /v1 结尾。
func normalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	path := strings.TrimRight(parsed.Path, "/")
	for _, suffix := range endpointSuffixes {
		if strings.HasSuffix(path, suffix) {
			path = strings.TrimRight(strings.TrimSuffix(path, suffix), "/")
			break
		}
	}
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	for strings.Contains(path, "/v1/v1") {
		path = strings.ReplaceAll(path, "/v1/v1", "/v1")
	}

	parsed.Path = path
	return parsed.String()
}
