// Package testutil provides testing utilities for the CNPJ enrichment client.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock registry endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockReceitaWS is a configurable mock ReceitaWS server for testing.
type MockReceitaWS struct {
	server   *httptest.Server
	mu       sync.Mutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	seqs     map[string][]MockResponse
	seqPos   map[string]int

	// Tracking
	RequestCount int
	PathCounts   map[string]int
}

// NewMockReceitaWS creates a new mock registry server.
func NewMockReceitaWS() *MockReceitaWS {
	mock := &MockReceitaWS{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		seqs:       make(map[string][]MockResponse),
		seqPos:     make(map[string]int),
		PathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.PathCounts[r.URL.Path]++

		if seq, ok := mock.seqs[r.URL.Path]; ok {
			pos := mock.seqPos[r.URL.Path]
			if pos < len(seq)-1 {
				mock.seqPos[r.URL.Path] = pos + 1
			}
			resp := seq[pos]
			mock.mu.Unlock()
			writeResponse(w, resp)
			return
		}

		handler, ok := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if ok {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server base URL, including the /v1/cnpj prefix.
func (m *MockReceitaWS) URL() string {
	return m.server.URL + "/v1/cnpj"
}

// Close shuts down the mock server.
func (m *MockReceitaWS) Close() {
	m.server.Close()
}

// Reset clears all tracking counters and scripted sequences.
func (m *MockReceitaWS) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.PathCounts = make(map[string]int)
	m.seqs = make(map[string][]MockResponse)
	m.seqPos = make(map[string]int)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockReceitaWS) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetCompanyResponse configures a fixed response for one CNPJ.
func (m *MockReceitaWS) SetCompanyResponse(cnpj string, resp MockResponse) {
	m.SetHandler("/v1/cnpj/"+cnpj, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// SetSequence scripts a sequence of responses for one CNPJ. Each request
// consumes the next response; the last one repeats once the script runs out.
func (m *MockReceitaWS) SetSequence(cnpj string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := "/v1/cnpj/" + cnpj
	m.seqs[path] = responses
	m.seqPos[path] = 0
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockReceitaWS) GetRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RequestCount
}

// GetPathCount returns the number of requests made for one CNPJ.
func (m *MockReceitaWS) GetPathCount(cnpj string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PathCounts["/v1/cnpj/"+cnpj]
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// defaultHandler mimics the registry's answer for an unknown CNPJ: HTTP 200
// with an ERROR status payload.
func (m *MockReceitaWS) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ERROR","message":"CNPJ inválido"}`))
}

// NewOKResponse creates a 200 response with the given payload body.
func NewOKResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
	}
}

// NewCompanyResponse creates a typical resolved payload with a QSA list.
func NewCompanyResponse() MockResponse {
	return NewOKResponse(`{
		"status": "OK",
		"nome": "ACME COMERCIO LTDA",
		"situacao": "ATIVA",
		"municipio": "SAO PAULO",
		"uf": "SP",
		"telefone": "(11) 4002-8922",
		"qsa": [
			{"nome": "MARIA DA SILVA", "qual": "49-Sócio-Administrador"},
			{"nome": "JOAO DE SOUZA", "qual": "22-Sócio"}
		]
	}`)
}

// NewErrorStatusResponse creates a 200 response carrying an ERROR status.
func NewErrorStatusResponse(message string) MockResponse {
	return NewOKResponse(`{"status":"ERROR","message":"` + message + `"}`)
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"message": "too many requests"}`,
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message": "internal server error"}`,
	}
}
