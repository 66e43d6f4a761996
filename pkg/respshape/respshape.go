// Package respshape normalizes the JSON payload layouts returned by image
// generation and editing vendors down to a single URL. The same endpoint has
// answered with different layouts across model versions, so extraction runs
// an ordered matcher list and the first layout that fits wins.
package respshape

type matcher func(payload map[string]any) (string, bool)

var generationMatchers = []matcher{
	resultListURLs,
	resultListURL,
	resultObjectURLs,
	resultObjectURL,
	topLevel("result_url"),
	topLevel("url"),
	topLevelList("result_urls"),
}

var editMatchers = []matcher{
	topLevel("result_url"),
	topLevelList("urls"),
	topLevel("url"),
}

// ExtractImageURL returns the first image URL found in a generation payload.
func ExtractImageURL(payload map[string]any) (string, bool) {
	return extract(payload, generationMatchers)
}

// ExtractResultURL returns the result URL from an editing payload, such as a
// background removal response.
func ExtractResultURL(payload map[string]any) (string, bool) {
	return extract(payload, editMatchers)
}

func extract(payload map[string]any, matchers []matcher) (string, bool) {
	if payload == nil {
		return "", false
	}
	for _, m := range matchers {
		if url, ok := m(payload); ok {
			return url, true
		}
	}
	return "", false
}

// result[0].urls[0]
func resultListURLs(p map[string]any) (string, bool) {
	first, ok := firstObject(p["result"])
	if !ok {
		return "", false
	}
	return firstString(first["urls"])
}

// result[0].url
func resultListURL(p map[string]any) (string, bool) {
	first, ok := firstObject(p["result"])
	if !ok {
		return "", false
	}
	return stringValue(first["url"])
}

// result.urls[0]
func resultObjectURLs(p map[string]any) (string, bool) {
	obj, ok := p["result"].(map[string]any)
	if !ok {
		return "", false
	}
	return firstString(obj["urls"])
}

// result.url
func resultObjectURL(p map[string]any) (string, bool) {
	obj, ok := p["result"].(map[string]any)
	if !ok {
		return "", false
	}
	return stringValue(obj["url"])
}

func topLevel(key string) matcher {
	return func(p map[string]any) (string, bool) {
		return stringValue(p[key])
	}
}

func topLevelList(key string) matcher {
	return func(p map[string]any) (string, bool) {
		return firstString(p[key])
	}
}

func firstObject(v any) (map[string]any, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	obj, ok := list[0].(map[string]any)
	return obj, ok
}

func firstString(v any) (string, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return "", false
	}
	return stringValue(list[0])
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
