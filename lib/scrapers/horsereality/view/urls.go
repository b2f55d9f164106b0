package view

import (
	"fmt"
	"regexp"
	"strconv"
)

var siteUrlRegex = regexp.MustCompile(`^https?://(?:(?:www|v2)\.)?horsereality\.com`)
var horsePageRegex = regexp.MustCompile(`^(?:https?://(?:(?:www|v2)\.)?horsereality\.com)?/horses/(\d{1,10})`)

// IsSiteUrl reports whether `url` points at Horse Reality.
func IsSiteUrl(url string) bool {
	return siteUrlRegex.MatchString(url)
}

// LifenumberFromUrl extracts the lifenumber of a horse page url.
func LifenumberFromUrl(url string) (int, bool) {
	match := horsePageRegex.FindStringSubmatch(url)
	if match == nil {
		return 0, false
	}
	lifenumber, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return lifenumber, true
}

func HorsePath(lifenumber int) string {
	return fmt.Sprintf("/horses/%d/", lifenumber)
}
