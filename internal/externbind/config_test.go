package externbind

import "testing"

func TestParseConfig_ValidGoBind(t *testing.T) {
	yaml := `
binds:
  - snippet: fs.readFile
    pkg: os
    symbol: ReadFile
`
	cfg, err := ParseConfig([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bind, ok := cfg.BySnippet("fs.readFile")
	if !ok {
		t.Fatal("expected to find the fs.readFile bind")
	}
	if !bind.IsGoBind() || bind.IsGrpcBind() {
		t.Errorf("expected a go bind, got %+v", bind)
	}
}

func TestParseConfig_ValidGrpcBind(t *testing.T) {
	yaml := `
binds:
  - snippet: greet.sayHello
    proto: ./greet.proto
`
	cfg, err := ParseConfig([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bind, _ := cfg.BySnippet("greet.sayHello")
	if !bind.IsGrpcBind() || bind.IsGoBind() {
		t.Errorf("expected a grpc bind, got %+v", bind)
	}
}

func TestParseConfig_RejectsBindWithBothPkgAndProto(t *testing.T) {
	yaml := `
binds:
  - snippet: ambiguous
    pkg: os
    proto: ./x.proto
`
	if _, err := ParseConfig([]byte(yaml), "test.yaml"); err == nil {
		t.Fatal("expected an error for a bind with both pkg and proto set")
	}
}

func TestParseConfig_RejectsGoBindMissingSymbol(t *testing.T) {
	yaml := `
binds:
  - snippet: fs.readFile
    pkg: os
`
	if _, err := ParseConfig([]byte(yaml), "test.yaml"); err == nil {
		t.Fatal("expected an error for a go bind missing symbol")
	}
}

func TestParseConfig_RejectsBindMissingSnippet(t *testing.T) {
	yaml := `
binds:
  - pkg: os
    symbol: ReadFile
`
	if _, err := ParseConfig([]byte(yaml), "test.yaml"); err == nil {
		t.Fatal("expected an error for a bind missing snippet")
	}
}

func TestBySnippet_ReturnsFalseForUnknownSnippet(t *testing.T) {
	cfg := &Config{}
	if _, ok := cfg.BySnippet("nope"); ok {
		t.Error("expected BySnippet to return false for an unknown snippet")
	}
}
