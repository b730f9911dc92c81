package externbind

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cyrusattoun/covenant/internal/span"
)

func TestVerify_UnknownSnippetIsUndefinedSymbol(t *testing.T) {
	cfg := &Config{}
	b := NewBinder()

	_, err := b.Verify(cfg, "fs.readFile", "go:os#ReadFile", nil, span.New(0, 1))
	if err == nil {
		t.Fatal("expected an error for an unbound snippet")
	}
	if err.Code != "E-TYPE-002" {
		t.Errorf("code = %s, want E-TYPE-002", err.Code)
	}
}

func TestVerify_MalformedSourcePrefixNeverPanics(t *testing.T) {
	cfg := &Config{Binds: []Bind{{Snippet: "fs.readFile", Pkg: "os", Symbol: "ReadFile"}}}
	b := NewBinder()

	_, err := b.Verify(cfg, "fs.readFile", "not-a-real-prefix", nil, span.New(0, 1))
	if err == nil {
		t.Fatal("expected an error for a source with no recognized prefix")
	}
}

func TestVerify_GoBindResolvesRealStdlibFunction(t *testing.T) {
	cfg := &Config{Binds: []Bind{{Snippet: "fs.readFile", Pkg: "os", Symbol: "ReadFile"}}}
	b := NewBinder()

	resolved, err := b.Verify(cfg, "fs.readFile", "go:os#ReadFile", []string{"filesystem.read"}, span.New(0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Kind != "go" || resolved.Target != "os.ReadFile" {
		t.Errorf("unexpected resolution: %+v", resolved)
	}
}

func TestVerify_GoBindWithIOSurfaceAndNoEffectWarns(t *testing.T) {
	cfg := &Config{Binds: []Bind{{Snippet: "fs.readFile", Pkg: "os", Symbol: "ReadFile"}}}
	b := NewBinder()

	resolved, err := b.Verify(cfg, "fs.readFile", "go:os#ReadFile", nil, span.New(0, 1))
	if err == nil {
		t.Fatal("expected a W-EXTERN-001 warning diagnostic")
	}
	if err.Code != "W-EXTERN-001" {
		t.Errorf("code = %s, want W-EXTERN-001", err.Code)
	}
	if resolved == nil {
		t.Error("expected a resolved bind alongside the warning")
	}
}

func TestVerify_GoBindMissingSymbolIsUndefinedSymbol(t *testing.T) {
	cfg := &Config{Binds: []Bind{{Snippet: "fs.bogus", Pkg: "os", Symbol: "DefinitelyNotARealFunc"}}}
	b := NewBinder()

	_, err := b.Verify(cfg, "fs.bogus", "go:os#DefinitelyNotARealFunc", []string{"filesystem"}, span.New(0, 1))
	if err == nil {
		t.Fatal("expected an error for a missing symbol")
	}
	if err.Code != "E-SYMBOL-001" && err.Code != "E-TYPE-002" {
		t.Errorf("unexpected code: %s", err.Code)
	}
}

func TestVerify_GrpcBindResolvesMethodFromProtoFile(t *testing.T) {
	dir := t.TempDir()
	protoPath := filepath.Join(dir, "greet.proto")
	proto := `syntax = "proto3";
package greet;

service Greeter {
	rpc SayHello (HelloRequest) returns (HelloReply);
}

message HelloRequest {
	string name = 1;
}

message HelloReply {
	string message = 1;
}
`
	if err := os.WriteFile(protoPath, []byte(proto), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Binds: []Bind{{Snippet: "greet.sayHello", Proto: protoPath}}}
	b := NewBinder()

	resolved, err := b.Verify(cfg, "greet.sayHello", "grpc:greet.Greeter/SayHello", nil, span.New(0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Kind != "grpc" || resolved.Target != "greet.Greeter/SayHello" {
		t.Errorf("unexpected resolution: %+v", resolved)
	}
	if len(resolved.RequestFields) != 1 || resolved.RequestFields[0] != "name:string" {
		t.Errorf("unexpected request fields: %v", resolved.RequestFields)
	}
}

func TestVerify_GrpcBindMissingMethodIsUndefinedSymbol(t *testing.T) {
	dir := t.TempDir()
	protoPath := filepath.Join(dir, "greet.proto")
	proto := `syntax = "proto3";
package greet;

service Greeter {
	rpc SayHello (HelloRequest) returns (HelloReply);
}

message HelloRequest { string name = 1; }
message HelloReply { string message = 1; }
`
	if err := os.WriteFile(protoPath, []byte(proto), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Binds: []Bind{{Snippet: "greet.sayBye", Proto: protoPath}}}
	b := NewBinder()

	_, err := b.Verify(cfg, "greet.sayBye", "grpc:greet.Greeter/SayBye", nil, span.New(0, 1))
	if err == nil {
		t.Fatal("expected an error for a method that doesn't exist in the proto")
	}
}

func TestVerify_GrpcSourceWithoutSlashIsMalformed(t *testing.T) {
	cfg := &Config{Binds: []Bind{{Snippet: "greet.sayHello", Proto: "unused.proto"}}}
	b := NewBinder()

	_, err := b.Verify(cfg, "greet.sayHello", "grpc:noSlashHere", nil, span.New(0, 1))
	if err == nil {
		t.Fatal("expected an error for a grpc source with no service/method separator")
	}
}
