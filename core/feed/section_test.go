package feed

import "testing"

func TestKindSlugRoundTrip(t *testing.T) {
	for _, k := range sectionOrder {
		slug := k.Slug()
		if slug == "" {
			t.Fatalf("kind %d has no slug", k)
		}
		resolved, ok := KindFromSlug(slug)
		if !ok || resolved != k {
			t.Errorf("slug %q did not round-trip, got %d", slug, resolved)
		}
	}
	if _, ok := KindFromSlug("not_a_section"); ok {
		t.Error("unknown slug must not resolve")
	}
}

func TestKindCaps(t *testing.T) {
	for _, k := range sectionOrder {
		want := 15
		if k == KindRecentlyPlayed {
			want = 10
		}
		if got := k.Cap(); got != want {
			t.Errorf("%s cap = %d, want %d", k.Slug(), got, want)
		}
	}
}
