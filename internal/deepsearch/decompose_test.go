package deepsearch

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/jusconsultus/lexsearch/config"
	"github.com/jusconsultus/lexsearch/provider"
)

type stubProvider struct {
	calls    int
	response string
	err      error
}

func (s *stubProvider) Complete(_ context.Context, _ []provider.Message, _ provider.Options) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func stubEngine(prov provider.CompletionProvider) *Engine {
	return NewEngine(nil, nil, prov, nil, nil, nil,
		config.SearchConfig{}, config.LLMConfig{}, config.CacheConfig{})
}

func TestDecomposeShortCircuit(t *testing.T) {
	stub := &stubProvider{response: `["should not be used"]`}
	e := stubEngine(stub)

	got := e.Decompose(context.Background(), "what is VAWC", "", nil)
	if !reflect.DeepEqual(got, []string{"what is VAWC"}) {
		t.Fatalf("got %v", got)
	}
	if stub.calls != 0 {
		t.Fatalf("provider called %d times for a trivial query", stub.calls)
	}
}

func TestDecomposeNilProvider(t *testing.T) {
	e := stubEngine(nil)
	query := "what are the remedies available to an employee who was dismissed without due process"
	got := e.Decompose(context.Background(), query, "", nil)
	if !reflect.DeepEqual(got, []string{query}) {
		t.Fatalf("got %v", got)
	}
}

func TestDecomposeProviderFailure(t *testing.T) {
	stub := &stubProvider{err: errors.New("upstream timeout")}
	e := stubEngine(stub)

	query := "what are the elements of illegal dismissal and the remedies available under the Labor Code"
	got := e.Decompose(context.Background(), query, "", nil)
	if !reflect.DeepEqual(got, []string{query}) {
		t.Fatalf("got %v, want the original query on failure", got)
	}
	if stub.calls != 1 {
		t.Fatalf("provider calls = %d", stub.calls)
	}
}

func TestDecomposeParsesProviderOutput(t *testing.T) {
	stub := &stubProvider{response: "Here you go:\n[\"illegal dismissal elements\", \"security of tenure jurisprudence\"]\nDone."}
	e := stubEngine(stub)

	query := "what are the elements of illegal dismissal and the remedies available under the Labor Code"
	got := e.Decompose(context.Background(), query, "explain", nil)
	want := []string{"illegal dismissal elements", "security of tenure jurisprudence"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseSubQueries(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"bare array", `["a b c", "d e f"]`, []string{"a b c", "d e f"}},
		{"surrounded by prose", `Sure! ["one query"] hope that helps`, []string{"one query"}},
		{"no array", "I could not decompose this.", nil},
		{"malformed json", `[not json]`, nil},
		{"drops empties", `["kept", "", "  "]`, []string{"kept"}},
		{"caps at five", `["1","2","3","4","5","6","7"]`, []string{"1", "2", "3", "4", "5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseSubQueries(tc.raw)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
