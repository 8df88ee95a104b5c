package entities

import "fmt"

// Browser is the short browser code used by the iMacros init command
type Browser string

const (
	BrowserIE      Browser = "ie"
	BrowserFirefox Browser = "fx"
	BrowserChrome  Browser = "cr"
	BrowserOpera   Browser = "op"
)

var knownBrowsers = map[Browser]string{
	BrowserIE:      "internet explorer",
	BrowserFirefox: "firefox",
	BrowserChrome:  "chrome",
	BrowserOpera:   "opera",
}

// ParseBrowser - validates a browser code
func ParseBrowser(code string) (Browser, error) {
	b := Browser(code)
	if _, ok := knownBrowsers[b]; !ok {
		return "", fmt.Errorf("%w: invalid browser code: %s", ErrInvalidArgument, code)
	}
	return b, nil
}

// WebDriverName - returns the W3C browserName capability for the code
func (b Browser) WebDriverName() string {
	return knownBrowsers[b]
}
