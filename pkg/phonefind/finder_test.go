package phonefind

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

type stubSearcher struct {
	urls []string
	err  error
}

func (s *stubSearcher) Search(ctx context.Context, query string) ([]string, error) {
	return s.urls, s.err
}

func TestPhonePattern(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "parenthesized area code",
			text: `Fale conosco: (11) 4002-8922`,
			want: "(11) 4002-8922",
		},
		{
			name: "bare area code",
			text: `tel 11 4002-8922 ramal 3`,
			want: "11 4002-8922",
		},
		{
			name: "mobile with five digits",
			text: `WhatsApp: (21) 98765-4321`,
			want: "(21) 98765-4321",
		},
		{
			name: "no phone",
			text: `entre em contato por email`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := phonePattern.FindString(tt.text); got != tt.want {
				t.Errorf("FindString(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestPhoneForCompany_Found(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Contato: (11) 4002-8922</body></html>`))
	}))
	defer page.Close()

	finder := NewFinder(&stubSearcher{urls: []string{page.URL}}, zerolog.Nop())

	got := finder.PhoneForCompany(context.Background(), "ACME")
	if got != "(11) 4002-8922" {
		t.Errorf("PhoneForCompany() = %q, want %q", got, "(11) 4002-8922")
	}
}

func TestPhoneForCompany_NoPhoneOnPage(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>sem telefone aqui</body></html>`))
	}))
	defer page.Close()

	finder := NewFinder(&stubSearcher{urls: []string{page.URL}}, zerolog.Nop())

	if got := finder.PhoneForCompany(context.Background(), "ACME"); got != NotFound {
		t.Errorf("PhoneForCompany() = %q, want %q", got, NotFound)
	}
}

func TestPhoneForCompany_SearchError(t *testing.T) {
	finder := NewFinder(&stubSearcher{err: errors.New("search down")}, zerolog.Nop())

	if got := finder.PhoneForCompany(context.Background(), "ACME"); got != NotFound {
		t.Errorf("PhoneForCompany() = %q, want %q", got, NotFound)
	}
}

func TestPhoneForCompany_PlaceholderName(t *testing.T) {
	searcher := &stubSearcher{urls: []string{"http://should-not-be-fetched"}}
	finder := NewFinder(searcher, zerolog.Nop())

	if got := finder.PhoneForCompany(context.Background(), NotFound); got != NotFound {
		t.Errorf("PhoneForCompany(N/A) = %q, want %q", got, NotFound)
	}
	if got := finder.PhoneForCompany(context.Background(), ""); got != NotFound {
		t.Errorf("PhoneForCompany(\"\") = %q, want %q", got, NotFound)
	}
}

func TestPhoneForCompany_DeadResultPage(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer page.Close()

	finder := NewFinder(&stubSearcher{urls: []string{page.URL}}, zerolog.Nop())

	if got := finder.PhoneForCompany(context.Background(), "ACME"); got != NotFound {
		t.Errorf("PhoneForCompany() = %q, want %q", got, NotFound)
	}
}

func TestWebSearcher_ExtractsResultLinks(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			t.Error("Search query not propagated")
		}
		w.Write([]byte(`<html><body>
			<a href="https://acme.example.com/">ACME</a>
			<a href="https://other.example.com/">Other</a>
		</body></html>`))
	}))
	defer engine.Close()

	searcher := NewWebSearcher(engine.URL, 1)

	urls, err := searcher.Search(context.Background(), "site oficial ACME")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(urls) != 1 {
		t.Fatalf("Search() returned %d urls, want 1 (maxResults)", len(urls))
	}
	if urls[0] != "https://acme.example.com/" {
		t.Errorf("Search() urls[0] = %q, want first result", urls[0])
	}
}

func TestWebSearcher_SkipsEngineOwnLinks(t *testing.T) {
	var engine *httptest.Server
	engine = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<a href="` + engine.URL + `/settings">Settings</a>
			<a href="https://acme.example.com/">ACME</a>
		</body></html>`))
	}))
	defer engine.Close()

	searcher := NewWebSearcher(engine.URL, 5)

	urls, err := searcher.Search(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://acme.example.com/" {
		t.Errorf("Search() = %v, want only the external link", urls)
	}
}
