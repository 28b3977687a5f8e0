package catalog

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantOK     bool
		wantDomain string
	}{
		{name: "known site", code: "ABBY", wantOK: true, wantDomain: "D16"},
		{name: "another known site", code: "BART", wantOK: true, wantDomain: "D01"},
		{name: "unknown site", code: "NOPE", wantOK: false},
		{name: "lowercase is not normalized", code: "abby", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site, ok := Lookup(tt.code)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.code, ok, tt.wantOK)
			}
			if ok && site.Domain != tt.wantDomain {
				t.Errorf("Lookup(%q).Domain = %s, want %s", tt.code, site.Domain, tt.wantDomain)
			}
		})
	}
}

func TestArchiveID(t *testing.T) {
	site, ok := Lookup("ABBY")
	if !ok {
		t.Fatal("ABBY missing from catalog")
	}
	if got := site.ArchiveID("DP1.00033"); got != "NEON.D16.ABBY.DP1.00033" {
		t.Errorf("ArchiveID() = %s, want NEON.D16.ABBY.DP1.00033", got)
	}
}

func TestAllSorted(t *testing.T) {
	sites := All()
	if len(sites) == 0 {
		t.Fatal("All() returned no sites")
	}

	for i := 1; i < len(sites); i++ {
		prev, cur := sites[i-1], sites[i]
		if prev.Domain > cur.Domain {
			t.Fatalf("sites out of domain order: %s before %s", prev.Domain, cur.Domain)
		}
		if prev.Domain == cur.Domain && prev.Code > cur.Code {
			t.Fatalf("sites out of code order within %s: %s before %s", cur.Domain, prev.Code, cur.Code)
		}
	}
}
