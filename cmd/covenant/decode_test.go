package main

import "testing"

func TestDecodeProgram_TwoFunctionsWithACall(t *testing.T) {
	doc := `{
		"snippets": [
			{
				"id": "greet",
				"kind": "fn",
				"declared_effects": [],
				"signature": {"params": [{"name": "name", "type": {"kind": "named", "path": ["String"]}}],
					"return_type": {"kind": "named", "path": ["String"]}},
				"body": [
					{"id": "s0", "kind": "call", "output_binding": "msg", "call_target": "format",
						"call_args": [{"name": "name", "binding": "name"}]},
					{"id": "s1", "kind": "return", "return_value": "msg"}
				],
				"line": 1
			},
			{
				"id": "format",
				"kind": "fn",
				"declared_effects": [],
				"signature": {"params": [{"name": "name", "type": {"kind": "named", "path": ["String"]}}],
					"return_type": {"kind": "named", "path": ["String"]}},
				"body": [
					{"id": "s0", "kind": "return", "return_value": "name"}
				],
				"line": 10
			}
		]
	}`

	program, err := DecodeProgram([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !program.IsSnippets() {
		t.Fatal("expected a snippets-mode program")
	}
	if len(program.Snippets) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(program.Snippets))
	}

	greet := program.Snippets[0]
	if greet.ID != "greet" || len(greet.Body) != 2 {
		t.Fatalf("unexpected greet snippet: %+v", greet)
	}
	if greet.Body[0].CallTarget != "format" {
		t.Errorf("expected call target format, got %q", greet.Body[0].CallTarget)
	}
	if greet.Signature.ReturnType == nil {
		t.Error("expected a decoded return type")
	}
}

func TestDecodeProgram_RejectsUnknownSnippetKind(t *testing.T) {
	doc := `{"snippets": [{"id": "x", "kind": "bogus"}]}`
	if _, err := DecodeProgram([]byte(doc)); err == nil {
		t.Fatal("expected an error for an unrecognized snippet kind")
	}
}

func TestDecodeProgram_MalformedJSONIsAnError(t *testing.T) {
	if _, err := DecodeProgram([]byte("not json")); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
