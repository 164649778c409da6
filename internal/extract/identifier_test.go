package extract

import (
	"regexp"
	"testing"
)

func mustSnapshot(t *testing.T, url, title, html string) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(url, title, html)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return snap
}

func TestNoManufacturers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want bool
	}{
		{"explicit marker", "<body>There are no manufacturers found for LM358N</body>", true},
		{"no results", "<body>No results found</body>", true},
		{"loose phrasing", "<body>no Manufacturer was found</body>", true},
		{"normal page", "<body>42 distributors stock this part</body>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			snap := mustSnapshot(t, "http://example.com", "", "<html>"+tt.body+"</html>")
			if got := NoManufacturers(snap); got != tt.want {
				t.Errorf("NoManufacturers = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractMPNsShortCircuitsOnEmptyPage(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		There are no manufacturers found for this search.
		<a href="/detail/LM358N-OLD7">LM358N-OLD7</a>
	</body></html>`
	snap := mustSnapshot(t, "http://example.com/parametric/opamps", "Op Amps", html)

	if got := ExtractMPNs(snap); len(got) != 0 {
		t.Errorf("expected no MPNs on empty-results page, got %v", got)
	}
}

func TestExtractMPNsFromDetailLinks(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<a href="https://example.com/detail/LM358N-X9/Texas-Instruments">broken label</a>
		<a href="/detail/[STM32F103]">STM32F103</a>
		<a href="/detail/short">short</a>
		<a href="/other/NE555P77">NE555P77</a>
	</body></html>`
	snap := mustSnapshot(t, "http://example.com/parametric/amps", "Amps", html)

	got := ExtractMPNs(snap)
	set := make(map[string]bool, len(got))
	for _, mpn := range got {
		set[mpn] = true
	}

	// URL path segment wins over the link's visible text.
	if !set["LM358N-X9"] {
		t.Errorf("expected LM358N-X9 from URL path, got %v", got)
	}
	if !set["STM32F103"] {
		t.Errorf("expected bracket-stripped STM32F103, got %v", got)
	}
	if set["SHORT"] {
		t.Errorf("candidate under 6 chars must be rejected, got %v", got)
	}
}

func TestExtractMPNsFormatInvariant(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<a href="/detail/LM358N-X9">LM358N-X9</a>
		Featured part STM32F407VGT6 by: STMicroelectronics.
		Also mentioned: CONNECTORS (not a part), AB12, TINY1.
	</body></html>`
	snap := mustSnapshot(t, "http://example.com/parametric/mcu", "MCUs", html)

	digit := regexp.MustCompile(`[0-9]`)
	alpha := regexp.MustCompile(`^[A-Za-z]+$`)

	got := ExtractMPNs(snap)
	if len(got) == 0 {
		t.Fatal("expected at least one validated MPN")
	}
	for _, mpn := range got {
		if len(mpn) < 6 || len(mpn) > 40 {
			t.Errorf("MPN %q length %d outside [6,40]", mpn, len(mpn))
		}
		if !digit.MatchString(mpn) {
			t.Errorf("MPN %q has no digit", mpn)
		}
		if alpha.MatchString(mpn) {
			t.Errorf("MPN %q is purely alphabetic", mpn)
		}
	}
}

func TestExtractMPNsDeduplicates(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<a href="/detail/LM358N-X9">LM358N-X9</a>
		<a href="/detail/LM358N-X9">LM358N-X9 again</a>
		LM358N-X9 appears in text too.
	</body></html>`
	snap := mustSnapshot(t, "http://example.com/parametric/amps", "Amps", html)

	got := ExtractMPNs(snap)
	count := 0
	for _, mpn := range got {
		if mpn == "LM358N-X9" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected LM358N-X9 exactly once, got %d in %v", count, got)
	}
}

func TestMatchesDetailLinkEncodedSlash(t *testing.T) {
	t.Parallel()

	hrefs := []string{"/detail/BAV99%2F7-F"}
	if !matchesDetailLink("BAV99/7-F", hrefs) {
		t.Error("expected slash candidate to match percent-encoded href")
	}
	if matchesDetailLink("OTHER123", hrefs) {
		t.Error("unrelated candidate must not match")
	}
}
