// Package catalog holds the static table of NEON PhenoCam sites. The table
// is embedded at build time; lookups never touch the network.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

//go:embed sites.json
var sitesJSON []byte

// Site describes a fixed camera location with a stable code and metadata.
type Site struct {
	Code        string `json:"siteCode"`
	Domain      string `json:"domainCode"`
	Description string `json:"siteDescription"`
	State       string `json:"stateCode"`
	Type        string `json:"siteType"`
}

// ArchiveID returns the identifier used in archive URLs for a given product,
// e.g. "NEON.D16.ABBY.DP1.00033".
func (s Site) ArchiveID(productID string) string {
	return fmt.Sprintf("NEON.%s.%s.%s", s.Domain, s.Code, productID)
}

var (
	loadOnce sync.Once
	byCode   map[string]Site
	ordered  []Site
	loadErr  error
)

func load() {
	var sites []Site
	if err := jsoniter.Unmarshal(sitesJSON, &sites); err != nil {
		loadErr = fmt.Errorf("failed to parse embedded site catalog: %w", err)
		return
	}

	byCode = make(map[string]Site, len(sites))
	for _, s := range sites {
		byCode[s.Code] = s
	}

	// Sites command groups by domain, so keep a domain-then-code order.
	ordered = sites
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Domain != ordered[j].Domain {
			return ordered[i].Domain < ordered[j].Domain
		}
		return ordered[i].Code < ordered[j].Code
	})
}

// Lookup returns the site for a code, or false if the code is unknown.
func Lookup(code string) (Site, bool) {
	loadOnce.Do(load)
	if loadErr != nil {
		return Site{}, false
	}
	s, ok := byCode[code]
	return s, ok
}

// All returns every catalog site, ordered by domain code then site code.
func All() []Site {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil
	}
	out := make([]Site, len(ordered))
	copy(out, ordered)
	return out
}
