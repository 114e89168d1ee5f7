package spoc

import "net/http"

// UserAgent is the browser the backend expects to be talking to.
const UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"

// DefaultHeaders is the fixed header bundle sent with every request.
// The values mirror what the SPOC web client sends and must not be changed.
// Origin, Token and Cookie are negotiable and added per request.
var DefaultHeaders = map[string]string{
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "zh-CN,zh;q=0.9",
	"Cache-Control":      "no-cache",
	"Connection":         "keep-alive",
	"Content-Type":       "application/json;charset=UTF-8",
	"DNT":                "1",
	"Pragma":             "no-cache",
	"RoleCode":           "01",
	"Sec-Fetch-Dest":     "empty",
	"Sec-Fetch-Mode":     "cors",
	"Sec-Fetch-Site":     "same-origin",
	"User-Agent":         UserAgent,
	"X-Requested-With":   "XMLHttpRequest",
	"sec-ch-ua":          `"Not_A Brand";v="99", "Chromium";v="142"`,
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": `"Linux"`,
}

// applyHeaders sets the fixed bundle plus the session headers on req.
// Header names are set verbatim, without canonicalization.
func applyHeaders(req *http.Request, origin, token, cookie string) {
	for key, value := range DefaultHeaders {
		req.Header[key] = []string{value}
	}
	req.Header["Origin"] = []string{origin}
	req.Header["Token"] = []string{token}
	req.Header["Cookie"] = []string{cookie}
}
