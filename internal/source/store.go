package source

import (
	"regexp"
	"strings"
)

// siteCurrency maps a marketplace site code to its settlement currency.
var siteCurrency = map[string]string{
	"UK": "GBP",
	"DE": "EUR", "FR": "EUR", "IT": "EUR", "ES": "EUR",
	"US": "USD", "CA": "CAD",
	"JP": "JPY", "AU": "AUD",
}

var (
	// store name then site: "4-DE2025Jul...", "智能万物店铺10_UK 2025Nov..."
	nameSitePattern = regexp.MustCompile(`(?i)^(.+?)[-_\s]+(UK|DE|US|CA|FR|IT|ES|JP|AU)(?:[\s_\-\d]|$)`)
	// site then store name: "UK 2025Apr...", "DE_2025Apr..."
	siteNamePattern = regexp.MustCompile(`(?i)^(UK|DE|US|CA|FR|IT|ES|JP|AU)[-_\s]+(.+)$`)
	// unified exports carry no site and settle in the US
	unifiedPattern = regexp.MustCompile(`(?i)\d{4}(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)MonthlyUnifiedTransaction`)
)

// storeIdentity extracts the store name and site code from an export file
// name. Site may be empty when the name carries no recognizable code.
func storeIdentity(filename string) (store, site string) {
	base := filename
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	if m := nameSitePattern.FindStringSubmatch(base); m != nil {
		return strings.TrimSpace(m[1]), strings.ToUpper(m[2])
	}
	if m := siteNamePattern.FindStringSubmatch(base); m != nil {
		return strings.TrimSpace(m[2]), strings.ToUpper(m[1])
	}
	if unifiedPattern.MatchString(base) {
		return base, "US"
	}
	return base, ""
}

// entityID builds the canonical aggregation entity from a store name and an
// optional site code.
func entityID(store, site string) string {
	id := strings.ToLower(strings.TrimSpace(store))
	id = strings.ReplaceAll(id, " ", "_")
	if site != "" {
		id += "_" + strings.ToLower(site)
	}
	return id
}
