package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("GET", "/?"+query, nil)
	return FromContext(e.NewContext(req, httptest.NewRecorder()))
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", DefaultLimit, 0},
		{"limit=50&offset=10", 50, 10},
		{"limit=0", DefaultLimit, 0},
		{"limit=-5&offset=-1", DefaultLimit, 0},
		{"limit=9999", MaxLimit, 0},
		{"limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tc := range cases {
		p := paramsFor(t, tc.query)
		if p.Limit != tc.wantLimit || p.Offset != tc.wantOffset {
			t.Errorf("%q: got %d/%d, want %d/%d", tc.query, p.Limit, p.Offset, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestNewResponseHasMore(t *testing.T) {
	r := NewResponse(nil, 45, Params{Limit: 20, Offset: 0})
	if !r.HasMore {
		t.Error("0+20 of 45 should have more")
	}
	r = NewResponse(nil, 45, Params{Limit: 20, Offset: 40})
	if r.HasMore {
		t.Error("40+20 of 45 should not have more")
	}
}
