package externbind

import (
	"fmt"
	"go/types"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"golang.org/x/tools/go/packages"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/cyrusattoun/covenant/internal/diagnostics"
	"github.com/cyrusattoun/covenant/internal/span"
)

// ioPackagePrefixes are Go package paths whose symbols are assumed to
// perform I/O, the same heuristic funxy's ext/inspector.go would need to
// warn on bindings with implausible effect declarations.
var ioPackagePrefixes = []string{
	"os", "net", "database/sql", "io", "bufio", "net/http", "syscall",
}

// ResolvedBind is the successful result of Verify: which Extern snippet
// was bound, and to what.
type ResolvedBind struct {
	Snippet string
	Kind    string // "go" or "grpc"
	Target  string // Go "pkg.Symbol" or gRPC "service/method"

	// RequestFields is populated only for grpc binds: the resolved
	// method's input message fields as "name:scalarType" pairs, so a
	// downstream codegen consumer knows the call's argument shape
	// without re-parsing the .proto itself.
	RequestFields []string
}

// Binder resolves Extern declarations' source strings against a Config,
// one Go package load (cached per package path, mirroring ext.Inspector's
// loadedPkgs map) or one .proto parse (cached per proto path) at a time.
type Binder struct {
	loadedPkgs map[string]*packages.Package
	loadedFDs  map[string][]*desc.FileDescriptor
}

// NewBinder creates an empty Binder.
func NewBinder() *Binder {
	return &Binder{
		loadedPkgs: map[string]*packages.Package{},
		loadedFDs:  map[string][]*desc.FileDescriptor{},
	}
}

// Verify resolves one Extern declaration's source string against cfg,
// returning either a ResolvedBind or a diagnostic. sp is the Extern
// declaration's span, used to attach any diagnostic to the right
// location. It never panics on a malformed source string.
func (b *Binder) Verify(cfg *Config, snippet, source string, declaredEffects []string, sp span.Span) (*ResolvedBind, *diagnostics.DiagnosticError) {
	bind, ok := cfg.BySnippet(snippet)
	if !ok {
		return nil, diagnostics.New(diagnostics.ErrUndefinedSymbol, sp,
			fmt.Sprintf("no extern bind declared for %q", snippet)).WithSubject(snippet)
	}

	switch {
	case strings.HasPrefix(source, "go:"):
		if !bind.IsGoBind() {
			return nil, diagnostics.New(diagnostics.ErrTypeMismatch, sp,
				fmt.Sprintf("%q has a go: source but its bind is not a go bind", snippet)).WithSubject(snippet)
		}
		return b.verifyGoBind(bind, declaredEffects, sp)

	case strings.HasPrefix(source, "grpc:"):
		if !bind.IsGrpcBind() {
			return nil, diagnostics.New(diagnostics.ErrTypeMismatch, sp,
				fmt.Sprintf("%q has a grpc: source but its bind is not a grpc bind", snippet)).WithSubject(snippet)
		}
		return b.verifyGrpcBind(bind, strings.TrimPrefix(source, "grpc:"), sp)

	default:
		return nil, diagnostics.New(diagnostics.ErrTypeMismatch, sp,
			fmt.Sprintf("%q: source %q has no recognized go: or grpc: prefix", snippet, source)).WithSubject(snippet)
	}
}

func (b *Binder) verifyGoBind(bind Bind, declaredEffects []string, sp span.Span) (*ResolvedBind, *diagnostics.DiagnosticError) {
	pkg, err := b.loadPackage(bind.Pkg)
	if err != nil {
		return nil, diagnostics.New(diagnostics.ErrUndefinedSymbol, sp,
			fmt.Sprintf("loading package %s: %s", bind.Pkg, err)).WithSubject(bind.Snippet)
	}

	obj := pkg.Types.Scope().Lookup(bind.Symbol)
	if obj == nil {
		return nil, diagnostics.New(diagnostics.ErrUndefinedSymbol, sp,
			fmt.Sprintf("symbol %q not found in package %s", bind.Symbol, bind.Pkg)).WithSubject(bind.Snippet)
	}
	if _, isFunc := obj.(*types.Func); !isFunc {
		return nil, diagnostics.New(diagnostics.ErrTypeMismatch, sp,
			fmt.Sprintf("%q in package %s is not a function", bind.Symbol, bind.Pkg)).WithSubject(bind.Snippet)
	}

	result := &ResolvedBind{Snippet: bind.Snippet, Kind: "go", Target: bind.Pkg + "." + bind.Symbol}
	if hasIOSurface(bind.Pkg) && len(declaredEffects) == 0 {
		return result, diagnostics.New(diagnostics.WarnExternUse, sp,
			fmt.Sprintf("%s.%s has I/O surface but declares no effect", bind.Pkg, bind.Symbol)).WithSubject(bind.Snippet)
	}
	return result, nil
}

func (b *Binder) loadPackage(pkgPath string) (*packages.Package, error) {
	if pkg, ok := b.loadedPkgs[pkgPath]; ok {
		return pkg, nil
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo}
	pkgs, err := packages.Load(cfg, pkgPath)
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("package %s not found", pkgPath)
	}
	pkg := pkgs[0]
	for _, e := range pkg.Errors {
		return nil, fmt.Errorf("%s: %s", pkgPath, e.Msg)
	}
	b.loadedPkgs[pkgPath] = pkg
	return pkg, nil
}

func hasIOSurface(pkgPath string) bool {
	for _, prefix := range ioPackagePrefixes {
		if pkgPath == prefix || strings.HasPrefix(pkgPath, prefix+"/") {
			return true
		}
	}
	return false
}

func (b *Binder) verifyGrpcBind(bind Bind, sourceRemainder string, sp span.Span) (*ResolvedBind, *diagnostics.DiagnosticError) {
	serviceMethod := strings.SplitN(sourceRemainder, "/", 2)
	if len(serviceMethod) != 2 || serviceMethod[0] == "" || serviceMethod[1] == "" {
		return nil, diagnostics.New(diagnostics.ErrTypeMismatch, sp,
			fmt.Sprintf("malformed grpc source %q, expected grpc:<service>/<method>", "grpc:"+sourceRemainder)).WithSubject(bind.Snippet)
	}
	serviceName, methodName := serviceMethod[0], serviceMethod[1]

	fds, err := b.loadProto(bind.Proto)
	if err != nil {
		return nil, diagnostics.New(diagnostics.ErrUndefinedSymbol, sp,
			fmt.Sprintf("parsing proto %s: %s", bind.Proto, err)).WithSubject(bind.Snippet)
	}

	for _, fd := range fds {
		svc := fd.FindService(serviceName)
		if svc == nil {
			continue
		}
		method := svc.FindMethodByName(methodName)
		if method == nil {
			return nil, diagnostics.New(diagnostics.ErrUndefinedSymbol, sp,
				fmt.Sprintf("method %q not found on service %s in %s", methodName, serviceName, bind.Proto)).WithSubject(bind.Snippet)
		}
		return &ResolvedBind{
			Snippet:       bind.Snippet,
			Kind:          "grpc",
			Target:        serviceName + "/" + methodName,
			RequestFields: requestFieldSummary(method),
		}, nil
	}
	return nil, diagnostics.New(diagnostics.ErrUndefinedSymbol, sp,
		fmt.Sprintf("service %q not found in %s", serviceName, bind.Proto)).WithSubject(bind.Snippet)
}

// requestFieldSummary lists a gRPC method's input message fields as
// "name:scalarType" pairs, condensing descriptorpb.FieldDescriptorProto_Type
// the same way builtins_grpc.go's dynamic-message marshaling does when
// deciding how to represent a proto field as a language value.
func requestFieldSummary(method *desc.MethodDescriptor) []string {
	input := method.GetInputType()
	if input == nil {
		return nil
	}
	fields := input.GetFields()
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.GetName()+":"+scalarTypeName(f.GetType()))
	}
	return out
}

func scalarTypeName(t descriptorpb.FieldDescriptorProto_Type) string {
	switch t {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32, descriptorpb.FieldDescriptorProto_TYPE_SINT32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32, descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT64, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64,
		descriptorpb.FieldDescriptorProto_TYPE_UINT32, descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_UINT64, descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return "int"
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return "float"
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return "bool"
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return "string"
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return "bytes"
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		return "message"
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return "enum"
	default:
		return "unknown"
	}
}

func (b *Binder) loadProto(path string) ([]*desc.FileDescriptor, error) {
	if fds, ok := b.loadedFDs[path]; ok {
		return fds, nil
	}
	parser := protoparse.Parser{ImportPaths: []string{"."}}
	fds, err := parser.ParseFiles(path)
	if err != nil {
		return nil, err
	}
	b.loadedFDs[path] = fds
	return fds, nil
}
