package main

// decode.go turns the pre-parsed snippet-IR JSON cmd/covenant accepts on
// stdin into an *ast.Program. The JSON shape mirrors internal/ast's
// Snippet/Step/Type/Pattern node kinds directly rather than introducing a
// parallel wire format, the way funxy's own parser builds ast.Program
// straight from tokens with no intermediate representation.

import (
	"encoding/json"
	"fmt"

	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/span"
)

type programWire struct {
	Snippets []snippetWire `json:"snippets"`
}

type snippetWire struct {
	ID              string            `json:"id"`
	Kind            string            `json:"kind"`
	DeclaredEffects []string          `json:"declared_effects"`
	Requires        []string          `json:"requires"`
	Tests           []string          `json:"tests"`
	Covers          []string          `json:"covers"`
	Relations       []relationWire    `json:"relations"`
	Signature       signatureWire     `json:"signature"`
	Body            []stepWire        `json:"body"`
	Implements      string            `json:"implements"`
	TargetPlatform  string            `json:"target_platform"`
	StructFields    []fieldWire       `json:"struct_fields"`
	EnumVariants    []variantWire     `json:"enum_variants"`
	ExternSource    string            `json:"extern_source"`
	Tables          []tableWire       `json:"tables"`
	Line            int               `json:"line"`
}

type relationWire struct {
	Target string `json:"target"`
	Type   string `json:"type"`
}

type signatureWire struct {
	Generics   []string    `json:"generics"`
	Params     []paramWire `json:"params"`
	ReturnType *typeWire   `json:"return_type"`
}

type paramWire struct {
	Name string   `json:"name"`
	Type typeWire `json:"type"`
}

type fieldWire struct {
	Name string   `json:"name"`
	Type typeWire `json:"type"`
}

// typeWire is a kind-discriminated encoding of ast.Type's variants.
type typeWire struct {
	Kind     string     `json:"kind"`
	Path     []string   `json:"path,omitempty"`
	Generics []typeWire `json:"generics,omitempty"`
	Inner    *typeWire  `json:"inner,omitempty"`
	Element  *typeWire  `json:"element,omitempty"`
	Members  []typeWire `json:"members,omitempty"`
	Elements []typeWire `json:"elements,omitempty"`
	Params   []typeWire `json:"params,omitempty"`
	Return   *typeWire  `json:"return,omitempty"`
	Fields   []fieldWire `json:"fields,omitempty"`
}

func (t *typeWire) toAST() ast.Type {
	if t == nil {
		return nil
	}
	sp := span.Dummy()
	switch t.Kind {
	case "named":
		generics := make([]ast.Type, len(t.Generics))
		for i, g := range t.Generics {
			generics[i] = g.toAST()
		}
		return &ast.NamedType{Path: &ast.TypePath{Segments: t.Path, Generics: generics, SpanValue: sp}, SpanValue: sp}
	case "optional":
		return &ast.OptionalType{Inner: t.Inner.toAST(), SpanValue: sp}
	case "list":
		return &ast.ListType{Element: t.Element.toAST(), SpanValue: sp}
	case "union":
		members := make([]ast.Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = m.toAST()
		}
		return &ast.UnionType{Members: members, SpanValue: sp}
	case "tuple":
		elems := make([]ast.Type, len(t.Elements))
		for i, e := range t.Elements {
			elems[i] = e.toAST()
		}
		return &ast.TupleType{Elements: elems, SpanValue: sp}
	case "function":
		params := make([]ast.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.toAST()
		}
		return &ast.FunctionType{Params: params, Return: t.Return.toAST(), SpanValue: sp}
	case "struct":
		fields := make([]*ast.FieldType, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = &ast.FieldType{Name: f.Name, Type: f.Type.toAST(), SpanValue: sp}
		}
		return &ast.StructType{Fields: fields, SpanValue: sp}
	default:
		// An empty or unrecognized kind degrades to a single-segment named
		// type carrying the kind string itself, so a malformed document
		// still produces a Program the pipeline can run diagnostics over
		// rather than one decode.go has to reject outright.
		return &ast.NamedType{Path: &ast.TypePath{Segments: []string{t.Kind}, SpanValue: sp}, SpanValue: sp}
	}
}

type variantWire struct {
	Name   string          `json:"name"`
	Fields variantFieldsWire `json:"fields"`
}

type variantFieldsWire struct {
	Kind        string      `json:"kind"` // "unit", "tuple", "struct"
	TupleTypes  []typeWire  `json:"tuple_types"`
	StructField []fieldWire `json:"struct_fields"`
}

func (v variantFieldsWire) toAST() ast.VariantFields {
	switch v.Kind {
	case "tuple":
		types := make([]ast.Type, len(v.TupleTypes))
		for i, t := range v.TupleTypes {
			types[i] = t.toAST()
		}
		return ast.VariantFields{Kind: ast.VariantTuple, TupleTypes: types}
	case "struct":
		fields := make([]*ast.FieldDecl, len(v.StructField))
		for i, f := range v.StructField {
			fields[i] = &ast.FieldDecl{Name: f.Name, Type: f.Type.toAST(), SpanValue: span.Dummy()}
		}
		return ast.VariantFields{Kind: ast.VariantStruct, StructField: fields}
	default:
		return ast.VariantFields{Kind: ast.VariantUnit}
	}
}

type tableWire struct {
	Name    string        `json:"name"`
	Columns []columnWire  `json:"columns"`
}

type columnWire struct {
	Name      string `json:"name"`
	Type      string `json:"type"` // int, string, bool, float, datetime, bytes, or a table name for a reference
	Primary   bool   `json:"primary"`
	Unique    bool   `json:"unique"`
	Nullable  bool   `json:"nullable"`
	Auto      bool   `json:"auto"`
}

func columnTypeKind(name string) ast.ColumnTypeKind {
	switch name {
	case "int":
		return ast.ColumnInt
	case "string":
		return ast.ColumnString
	case "bool":
		return ast.ColumnBool
	case "float":
		return ast.ColumnFloat
	case "datetime":
		return ast.ColumnDateTime
	case "bytes":
		return ast.ColumnBytes
	default:
		return ast.ColumnReference
	}
}

// literalWire mirrors ast.Literal.
type literalWire struct {
	Kind  string      `json:"kind"` // int, float, string, bool, none
	Int   int64       `json:"int,omitempty"`
	Float float64     `json:"float,omitempty"`
	Str   string      `json:"str,omitempty"`
	Bool  bool        `json:"bool,omitempty"`
}

func (l *literalWire) toAST() *ast.Literal {
	if l == nil {
		return nil
	}
	lit := &ast.Literal{SpanValue: span.Dummy()}
	switch l.Kind {
	case "int":
		lit.Kind, lit.IntValue = ast.LitInt, l.Int
	case "float":
		lit.Kind, lit.FloatVal = ast.LitFloat, l.Float
	case "string":
		lit.Kind, lit.StrValue = ast.LitString, l.Str
	case "bool":
		lit.Kind, lit.BoolValue = ast.LitBool, l.Bool
	default:
		lit.Kind = ast.LitNone
	}
	return lit
}

// patternWire is a kind-discriminated encoding of ast.Pattern's variants.
type patternWire struct {
	Kind       string             `json:"kind"` // wildcard, binding, literal, variant
	Name       string             `json:"name,omitempty"`
	Value      *literalWire       `json:"value,omitempty"`
	Path       []string           `json:"path,omitempty"`
	Positional []patternWire      `json:"positional,omitempty"`
	Named      []namedPatternWire `json:"named,omitempty"`
	IsUnit     bool               `json:"is_unit,omitempty"`
}

type namedPatternWire struct {
	Name    string      `json:"name"`
	Pattern patternWire `json:"pattern"`
}

func (p *patternWire) toAST() ast.Pattern {
	if p == nil {
		return nil
	}
	sp := span.Dummy()
	switch p.Kind {
	case "binding":
		return &ast.BindingPattern{Name: p.Name, SpanValue: sp}
	case "literal":
		return &ast.LiteralPattern{Value: p.Value.toAST(), SpanValue: sp}
	case "variant":
		positional := make([]ast.Pattern, len(p.Positional))
		for i := range p.Positional {
			positional[i] = p.Positional[i].toAST()
		}
		named := make([]ast.NamedPatternField, len(p.Named))
		for i, n := range p.Named {
			named[i] = ast.NamedPatternField{Name: n.Name, Pattern: n.Pattern.toAST()}
		}
		return &ast.VariantPattern{
			Path:      &ast.TypePath{Segments: p.Path, SpanValue: sp},
			Fields:    ast.VariantPatternFields{Positional: positional, Named: named, IsUnit: p.IsUnit},
			SpanValue: sp,
		}
	default:
		return &ast.WildcardPattern{SpanValue: sp}
	}
}

// stepWire mirrors ast.Step. Every field that refers to a value in ast.Step
// refers to a prior step's output binding name here too, matching the
// SSA-style snippet body spec.md §3 describes.
type stepWire struct {
	ID            string         `json:"id"`
	Kind          string         `json:"kind"`
	OutputBinding string         `json:"output_binding"`

	BindLiteral *literalWire `json:"bind_literal,omitempty"`
	BindFrom    string       `json:"bind_from,omitempty"`

	ComputeOp     string   `json:"compute_op,omitempty"`
	ComputeUnary  *string  `json:"compute_unary,omitempty"`
	ComputeInputs []string `json:"compute_inputs,omitempty"`

	CallTarget string          `json:"call_target,omitempty"`
	CallArgs   []keyedArgWire  `json:"call_args,omitempty"`
	HandleArm  *handleArmWire  `json:"handle_arm,omitempty"`

	IfCond string     `json:"if_cond,omitempty"`
	IfThen []stepWire `json:"if_then,omitempty"`
	IfElse []stepWire `json:"if_else,omitempty"`

	ForBinding string     `json:"for_binding,omitempty"`
	ForOver    string     `json:"for_over,omitempty"`
	ForBody    []stepWire `json:"for_body,omitempty"`

	MatchOn   string              `json:"match_on,omitempty"`
	MatchArms []stepMatchArmWire  `json:"match_arms,omitempty"`

	DBTarget    *typePathWire  `json:"db_target,omitempty"`
	DBBody      *queryBodyWire `json:"db_body,omitempty"`
	DBValue     string         `json:"db_value,omitempty"`
	DBAssigns   []keyedArgWire `json:"db_assigns,omitempty"`
	DBCondition string         `json:"db_condition,omitempty"`

	ReturnValue string `json:"return_value,omitempty"`
}

type typePathWire struct {
	Segments []string `json:"segments"`
}

func (t *typePathWire) toAST() *ast.TypePath {
	if t == nil {
		return nil
	}
	return &ast.TypePath{Segments: t.Segments, SpanValue: span.Dummy()}
}

type queryBodyWire struct {
	Columns []string `json:"columns"`
}

func (q *queryBodyWire) toAST() *ast.QueryBody {
	if q == nil {
		return nil
	}
	return &ast.QueryBody{Columns: q.Columns, SpanValue: span.Dummy()}
}

type keyedArgWire struct {
	Name    string `json:"name"`
	Binding string `json:"binding"`
}

type handleArmWire struct {
	Pattern patternWire `json:"pattern"`
	Body    []stepWire  `json:"body"`
}

type stepMatchArmWire struct {
	Pattern patternWire `json:"pattern"`
	Body    []stepWire  `json:"body"`
}

var binaryOps = map[string]ast.BinaryOp{
	"+": ast.OpAdd, "-": ast.OpSub, "*": ast.OpMul, "/": ast.OpDiv, "%": ast.OpMod,
	"=": ast.OpEq, "!=": ast.OpNe, "<": ast.OpLt, "<=": ast.OpLe, ">": ast.OpGt, ">=": ast.OpGe,
	"&&": ast.OpAnd, "||": ast.OpOr, "contains": ast.OpContains,
}

var stepKinds = map[string]ast.StepKind{
	"bind": ast.StepBind, "compute": ast.StepCompute, "call": ast.StepCall,
	"if": ast.StepIf, "for": ast.StepFor, "match": ast.StepMatch,
	"query": ast.StepQuery, "insert": ast.StepInsert, "update": ast.StepUpdate,
	"delete": ast.StepDelete, "return": ast.StepReturn,
}

func stepsToAST(ws []stepWire) []*ast.Step {
	out := make([]*ast.Step, len(ws))
	for i, w := range ws {
		out[i] = w.toAST()
	}
	return out
}

func (w stepWire) toAST() *ast.Step {
	s := &ast.Step{
		ID:            w.ID,
		Kind:          stepKinds[w.Kind],
		OutputBinding: w.OutputBinding,
		SpanValue:     span.Dummy(),

		BindLiteral: w.BindLiteral.toAST(),
		BindFrom:    w.BindFrom,

		ComputeOp:     binaryOps[w.ComputeOp],
		ComputeInputs: w.ComputeInputs,

		CallTarget: w.CallTarget,

		IfCond: w.IfCond,
		IfThen: stepsToAST(w.IfThen),
		IfElse: stepsToAST(w.IfElse),

		ForBinding: w.ForBinding,
		ForOver:    w.ForOver,
		ForBody:    stepsToAST(w.ForBody),

		MatchOn: w.MatchOn,

		DBTarget:    w.DBTarget.toAST(),
		DBBody:      w.DBBody.toAST(),
		DBValue:     w.DBValue,
		DBAssigns:   keyedArgsToAST(w.DBAssigns),
		DBCondition: w.DBCondition,

		ReturnValue: w.ReturnValue,
	}
	if w.ComputeUnary != nil {
		var u ast.UnaryOp
		if *w.ComputeUnary == "!" {
			u = ast.OpNot
		} else {
			u = ast.OpNeg
		}
		s.ComputeUnary = &u
	}
	if w.CallArgs != nil {
		s.CallArgs = keyedArgsToAST(w.CallArgs)
	}
	if w.HandleArm != nil {
		s.HandleArm = &ast.HandleArm{Pattern: w.HandleArm.Pattern.toAST(), Body: stepsToAST(w.HandleArm.Body)}
	}
	for _, arm := range w.MatchArms {
		s.MatchArms = append(s.MatchArms, ast.StepMatchArm{Pattern: arm.Pattern.toAST(), Body: stepsToAST(arm.Body)})
	}
	return s
}

func keyedArgsToAST(ws []keyedArgWire) []ast.KeyedArg {
	out := make([]ast.KeyedArg, len(ws))
	for i, w := range ws {
		out[i] = ast.KeyedArg{Name: w.Name, Binding: w.Binding}
	}
	return out
}

var snippetKinds = map[string]ast.SnippetKind{
	"fn": ast.SnippetFunction, "struct": ast.SnippetStruct, "enum": ast.SnippetEnum,
	"module": ast.SnippetModule, "database": ast.SnippetDatabase, "extern": ast.SnippetExtern,
	"extern-abstract": ast.SnippetExternAbstract, "extern-impl": ast.SnippetExternImpl,
	"test": ast.SnippetTest, "data": ast.SnippetData,
}

// DecodeProgram parses snippet-IR JSON into an *ast.Program in
// ast.ProgramSnippets mode. It is the only place in this module that
// constructs ast nodes outside of a real parser, since the concrete
// lexer/parser collaborator stays out of scope.
func DecodeProgram(data []byte) (*ast.Program, error) {
	var wire programWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("parsing snippet-IR JSON: %w", err)
	}

	snippets := make([]*ast.Snippet, len(wire.Snippets))
	for i, sw := range wire.Snippets {
		kind, ok := snippetKinds[sw.Kind]
		if !ok {
			return nil, fmt.Errorf("snippet %q: unrecognized kind %q", sw.ID, sw.Kind)
		}

		sp := span.New(sw.Line, sw.Line+1)

		params := make([]*ast.Parameter, len(sw.Signature.Params))
		for j, p := range sw.Signature.Params {
			params[j] = &ast.Parameter{Name: p.Name, Type: p.Type.toAST(), SpanValue: sp}
		}

		relations := make([]ast.RelationRef, len(sw.Relations))
		for j, r := range sw.Relations {
			relations[j] = ast.RelationRef{Target: r.Target, RelationType: r.Type}
		}

		structFields := make([]*ast.FieldDecl, len(sw.StructFields))
		for j, f := range sw.StructFields {
			structFields[j] = &ast.FieldDecl{Name: f.Name, Type: f.Type.toAST(), SpanValue: sp}
		}

		enumVariants := make([]*ast.VariantDecl, len(sw.EnumVariants))
		for j, v := range sw.EnumVariants {
			enumVariants[j] = &ast.VariantDecl{Name: v.Name, Fields: v.Fields.toAST(), SpanValue: sp}
		}

		tables := make([]*ast.TableDecl, len(sw.Tables))
		for j, tbl := range sw.Tables {
			columns := make([]*ast.ColumnDecl, len(tbl.Columns))
			for k, c := range tbl.Columns {
				colType := ast.ColumnType{Kind: columnTypeKind(c.Type)}
				if colType.Kind == ast.ColumnReference {
					colType.RefTarget = c.Type
				}
				columns[k] = &ast.ColumnDecl{
					Name: c.Name,
					Type: colType,
					Attrs: ast.ColumnAttrs{
						Primary: c.Primary, Unique: c.Unique, Nullable: c.Nullable, Auto: c.Auto,
					},
					SpanValue: sp,
				}
			}
			tables[j] = &ast.TableDecl{Name: tbl.Name, Columns: columns, SpanValue: sp}
		}

		snippets[i] = &ast.Snippet{
			ID:              sw.ID,
			Kind:            kind,
			DeclaredEffect:  sw.DeclaredEffects,
			Requires:        sw.Requires,
			Tests:           sw.Tests,
			Covers:          sw.Covers,
			Relations:       relations,
			Signature: ast.Signature{
				Generics:   sw.Signature.Generics,
				Params:     params,
				ReturnType: sw.Signature.ReturnType.toAST(),
			},
			Body:           stepsToAST(sw.Body),
			Implements:     sw.Implements,
			TargetPlatform: sw.TargetPlatform,
			StructFields:   structFields,
			EnumVariants:   enumVariants,
			ExternSource:   sw.ExternSource,
			Tables:         tables,
			SpanValue:      sp,
		}
	}

	return &ast.Program{Kind: ast.ProgramSnippets, Snippets: snippets, SpanValue: span.Dummy()}, nil
}
